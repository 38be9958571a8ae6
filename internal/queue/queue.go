package queue

import (
	"context"

	"github.com/probablyup/spectrum/internal/model"
)

// Queue enqueues background jobs for asynchronous processing. Delivery is
// best-effort, at-most-once; consumers live outside this repo.
type Queue interface {
	Enqueue(ctx context.Context, job string, payload any) error
}

// JobChannelNotification announces a newly created public channel to the
// community's members
const JobChannelNotification = "channel notification"

// ChannelNotificationPayload is the payload of JobChannelNotification
type ChannelNotificationPayload struct {
	Channel *model.Channel `json:"channel"`
	UserID  string         `json:"userId"`
}
