package channel

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/probablyup/spectrum/internal/model"
)

// Pool interface for abstracting pgx connection pool
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// CreateChannelInput carries the fields of a channel to insert. ID is
// generated when empty.
type CreateChannelInput struct {
	ID          string
	CommunityID string
	Name        string
	Description string
	Slug        string
	IsPrivate   bool
	IsDefault   bool
}

// EditChannelInput is a typed patch for Edit. Nil fields keep the current
// value.
type EditChannelInput struct {
	ID          string
	Name        *string
	Description *string
	Slug        *string
	IsPrivate   *bool
}

// Repository defines query and persistence operations for channels.
//
// Read operations never return soft-deleted channels. Point lookups on a
// missing or deleted channel resolve to (nil, nil), not an error.
type Repository interface {
	// GetByCommunity retrieves all live channels in a community
	GetByCommunity(ctx context.Context, communityID string) ([]*model.Channel, error)

	// GetPublicIDsByCommunity retrieves the ids of a community's non-private
	// live channels; used to scope thread visibility for anonymous viewers
	GetPublicIDsByCommunity(ctx context.Context, communityID string) ([]string, error)

	// GetIDsByUserAndCommunity retrieves the deduplicated union of the
	// community's public channel ids and the user's active-membership
	// channel ids, preserving first-seen order
	GetIDsByUserAndCommunity(ctx context.Context, communityID, userID string) ([]string, error)

	// GetByUser retrieves the channels where the user has an active
	// membership, with the membership metadata stripped
	GetByUser(ctx context.Context, userID string) ([]*model.Channel, error)

	// GetBySlug retrieves a single channel by its slug and its community's slug
	GetBySlug(ctx context.Context, slug, communitySlug string) (*model.Channel, error)

	// GetByID retrieves a single channel by its ID
	GetByID(ctx context.Context, id string) (*model.Channel, error)

	// GetMany retrieves a batch of channels by id list
	GetMany(ctx context.Context, ids []string) ([]*model.Channel, error)

	// GetMetaData retrieves a channel's thread count and active member
	// count, fetched concurrently
	GetMetaData(ctx context.Context, id string) (*model.ChannelMetaData, error)

	// GetThreadCounts retrieves live thread counts grouped per channel id
	GetThreadCounts(ctx context.Context, ids []string) (map[string]int, error)

	// GetMemberCounts retrieves active member counts grouped per channel id
	GetMemberCounts(ctx context.Context, ids []string) (map[string]int, error)

	// GetMemberCount retrieves the size of the channel's embedded member
	// list (a direct column read, not a membership join)
	GetMemberCount(ctx context.Context, id string) (int, error)

	// Create inserts a new channel and returns the inserted record
	Create(ctx context.Context, input CreateChannelInput) (*model.Channel, error)

	// Edit merges the patch into the stored channel and writes it back.
	// Returns the old record when the patch changes nothing, nil when the
	// target does not exist.
	Edit(ctx context.Context, input EditChannelInput) (*model.Channel, error)

	// Delete soft-deletes a channel: sets deleted_at and replaces the slug
	// with a fresh unique value so the original slug frees up for reuse
	Delete(ctx context.Context, id string) (*model.Channel, error)

	// Archive sets archived_at on a channel
	Archive(ctx context.Context, id string) (*model.Channel, error)

	// Restore clears archived_at on a channel
	Restore(ctx context.Context, id string) (*model.Channel, error)

	// ArchiveAllPrivate archives every private live channel in a community
	ArchiveAllPrivate(ctx context.Context, communityID string) ([]*model.Channel, error)
}
