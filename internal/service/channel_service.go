package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/probablyup/spectrum/internal/model"
	"github.com/probablyup/spectrum/internal/queue"
	channelrepo "github.com/probablyup/spectrum/internal/repository/channel"
)

// enqueueTimeout bounds the fire-and-forget notification enqueue
const enqueueTimeout = 10 * time.Second

// ChannelCreator is the slice of the channel repository the service needs
type ChannelCreator interface {
	Create(ctx context.Context, input channelrepo.CreateChannelInput) (*model.Channel, error)
}

// ChannelService wraps channel creation with its side effects
type ChannelService struct {
	repo   ChannelCreator
	queue  queue.Queue
	logger *zap.Logger
}

// NewChannelService creates a new ChannelService
func NewChannelService(repo ChannelCreator, q queue.Queue, logger *zap.Logger) *ChannelService {
	return &ChannelService{
		repo:   repo,
		queue:  q,
		logger: logger,
	}
}

// Create inserts a new channel. When the channel is public, a "channel
// notification" job is enqueued fire-and-forget: the enqueue races with
// this function's return and its outcome is invisible to the caller.
func (s *ChannelService) Create(ctx context.Context, input channelrepo.CreateChannelInput, userID string) (*model.Channel, error) {
	created, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	if !created.IsPrivate {
		go s.notifyChannelCreated(created, userID)
	}

	return created, nil
}

// CreateGeneral creates the default "General" channel for a community,
// used during community bootstrap
func (s *ChannelService) CreateGeneral(ctx context.Context, communityID, userID string) (*model.Channel, error) {
	return s.Create(ctx, channelrepo.CreateChannelInput{
		CommunityID: communityID,
		Name:        "General",
		Slug:        "general",
		Description: "General chatter",
		IsPrivate:   false,
		IsDefault:   true,
	}, userID)
}

// CreateOffTopic creates the "Off Topic" channel for a community, used
// during community bootstrap
func (s *ChannelService) CreateOffTopic(ctx context.Context, communityID, userID string) (*model.Channel, error) {
	return s.Create(ctx, channelrepo.CreateChannelInput{
		CommunityID: communityID,
		Name:        "Off Topic",
		Slug:        "off-topic",
		Description: "Off topic chatter",
		IsPrivate:   false,
		IsDefault:   false,
	}, userID)
}

// notifyChannelCreated runs detached from the creating request, so it
// carries its own context. Failures are logged and dropped; notification
// delivery is not part of the create contract.
func (s *ChannelService) notifyChannelCreated(channel *model.Channel, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()

	payload := queue.ChannelNotificationPayload{
		Channel: channel,
		UserID:  userID,
	}
	if err := s.queue.Enqueue(ctx, queue.JobChannelNotification, payload); err != nil {
		s.logger.Warn("failed to enqueue channel notification",
			zap.String("channel_id", channel.ID),
			zap.Error(err),
		)
	}
}
