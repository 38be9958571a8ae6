package channel

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/probablyup/spectrum/internal/model"
)

// channelColumns is the projection shared by every channel query;
// returningColumns mirrors it without the table alias for
// INSERT/UPDATE ... RETURNING clauses
const (
	channelColumns   = "c.id, c.community_id, c.name, c.description, c.slug, c.is_private, c.is_default, c.members, c.created_at, c.deleted_at, c.archived_at"
	returningColumns = "id, community_id, name, description, slug, is_private, is_default, members, created_at, deleted_at, archived_at"
)

// activeMemberFilter keeps only active membership rows: member, not
// blocked, not pending
const activeMemberFilter = "uc.is_member = true AND uc.is_blocked = false AND uc.is_pending = false"

// channelRepository implements Repository using PostgreSQL
type channelRepository struct {
	pool Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool Pool) Repository {
	return &channelRepository{
		pool: pool,
	}
}

// scanChannel scans one channel row; pgx.Rows satisfies pgx.Row
func scanChannel(row pgx.Row) (*model.Channel, error) {
	var channel model.Channel
	err := row.Scan(
		&channel.ID,
		&channel.CommunityID,
		&channel.Name,
		&channel.Description,
		&channel.Slug,
		&channel.IsPrivate,
		&channel.IsDefault,
		&channel.Members,
		&channel.CreatedAt,
		&channel.DeletedAt,
		&channel.ArchivedAt,
	)
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

// collectChannels drains a channel result set
func collectChannels(rows pgx.Rows, operation string) ([]*model.Channel, error) {
	defer rows.Close()

	channels := []*model.Channel{}
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, handlePostgreSQLError(err, "failed to scan channel row")
		}
		channels = append(channels, channel)
	}

	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, operation)
	}

	return channels, nil
}

// GetByCommunity retrieves all live channels in a community
func (r *channelRepository) GetByCommunity(ctx context.Context, communityID string) ([]*model.Channel, error) {
	sql := "SELECT " + channelColumns + " FROM channels c WHERE c.community_id = $1 AND c.deleted_at IS NULL ORDER BY c.created_at"
	rows, err := r.pool.Query(ctx, sql, communityID)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to get channels by community")
	}
	return collectChannels(rows, "failed to iterate channel rows")
}

// GetPublicIDsByCommunity retrieves the ids of a community's public live channels
func (r *channelRepository) GetPublicIDsByCommunity(ctx context.Context, communityID string) ([]string, error) {
	sql := "SELECT c.id FROM channels c WHERE c.community_id = $1 AND c.is_private = false AND c.deleted_at IS NULL ORDER BY c.created_at"
	rows, err := r.pool.Query(ctx, sql, communityID)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to get public channels by community")
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, handlePostgreSQLError(err, "failed to scan channel id")
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, "failed to iterate channel ids")
	}

	return ids, nil
}

// GetIDsByUserAndCommunity retrieves the union of public channel ids and
// the user's active-membership channel ids within the community. The union
// is deduplicated preserving first-seen order, public ids first.
func (r *channelRepository) GetIDsByUserAndCommunity(ctx context.Context, communityID, userID string) ([]string, error) {
	channels, err := r.GetByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}

	allIDs := make([]string, 0, len(channels))
	publicIDs := []string{}
	for _, channel := range channels {
		allIDs = append(allIDs, channel.ID)
		if !channel.IsPrivate {
			publicIDs = append(publicIDs, channel.ID)
		}
	}

	sql := "SELECT uc.channel_id FROM users_channels uc WHERE uc.user_id = $1 AND uc.channel_id = ANY($2) AND " + activeMemberFilter
	rows, err := r.pool.Query(ctx, sql, userID, allIDs)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to get channel memberships by user")
	}
	defer rows.Close()

	memberIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, handlePostgreSQLError(err, "failed to scan membership channel id")
		}
		memberIDs = append(memberIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, "failed to iterate membership rows")
	}

	seen := make(map[string]bool, len(publicIDs)+len(memberIDs))
	ids := []string{}
	for _, id := range append(publicIDs, memberIDs...) {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	return ids, nil
}

// GetByUser retrieves the channels the user is an active member of
func (r *channelRepository) GetByUser(ctx context.Context, userID string) ([]*model.Channel, error) {
	sql := "SELECT " + channelColumns + " FROM channels c JOIN users_channels uc ON uc.channel_id = c.id WHERE uc.user_id = $1 AND " + activeMemberFilter + " AND c.deleted_at IS NULL ORDER BY c.created_at"
	rows, err := r.pool.Query(ctx, sql, userID)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to get channels by user")
	}
	return collectChannels(rows, "failed to iterate channel rows")
}

// GetBySlug retrieves a single channel by its slug within a community slug
func (r *channelRepository) GetBySlug(ctx context.Context, slug, communitySlug string) (*model.Channel, error) {
	sql := "SELECT " + channelColumns + " FROM channels c JOIN communities co ON co.id = c.community_id WHERE c.slug = $1 AND co.slug = $2 AND c.deleted_at IS NULL"
	channel, err := scanChannel(r.pool.QueryRow(ctx, sql, slug, communitySlug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, handlePostgreSQLError(err, "failed to get channel by slug")
	}
	return channel, nil
}

// GetByID retrieves a single channel by its ID
func (r *channelRepository) GetByID(ctx context.Context, id string) (*model.Channel, error) {
	sql := "SELECT " + channelColumns + " FROM channels c WHERE c.id = $1 AND c.deleted_at IS NULL"
	channel, err := scanChannel(r.pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, handlePostgreSQLError(err, "failed to get channel")
	}
	return channel, nil
}

// GetMany retrieves a batch of channels by id list
func (r *channelRepository) GetMany(ctx context.Context, ids []string) ([]*model.Channel, error) {
	sql := "SELECT " + channelColumns + " FROM channels c WHERE c.id = ANY($1) AND c.deleted_at IS NULL ORDER BY c.created_at"
	rows, err := r.pool.Query(ctx, sql, ids)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to get channels")
	}
	return collectChannels(rows, "failed to iterate channel rows")
}

// GetMetaData retrieves a channel's thread and member counts concurrently
func (r *channelRepository) GetMetaData(ctx context.Context, id string) (*model.ChannelMetaData, error) {
	var (
		wg        sync.WaitGroup
		meta      model.ChannelMetaData
		threadErr error
		memberErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		sql := "SELECT COUNT(*) FROM threads t WHERE t.channel_id = $1 AND t.deleted_at IS NULL"
		threadErr = r.pool.QueryRow(ctx, sql, id).Scan(&meta.ThreadCount)
	}()
	go func() {
		defer wg.Done()
		sql := "SELECT COUNT(*) FROM users_channels uc WHERE uc.channel_id = $1 AND " + activeMemberFilter
		memberErr = r.pool.QueryRow(ctx, sql, id).Scan(&meta.MemberCount)
	}()
	wg.Wait()

	if threadErr != nil {
		return nil, handlePostgreSQLError(threadErr, "failed to count channel threads")
	}
	if memberErr != nil {
		return nil, handlePostgreSQLError(memberErr, "failed to count channel members")
	}

	return &meta, nil
}

// GetThreadCounts retrieves live thread counts grouped per channel id
func (r *channelRepository) GetThreadCounts(ctx context.Context, ids []string) (map[string]int, error) {
	sql := "SELECT t.channel_id, COUNT(*) FROM threads t WHERE t.channel_id = ANY($1) AND t.deleted_at IS NULL GROUP BY t.channel_id"
	return r.groupedCounts(ctx, sql, ids, "failed to get channel thread counts")
}

// GetMemberCounts retrieves active member counts grouped per channel id
func (r *channelRepository) GetMemberCounts(ctx context.Context, ids []string) (map[string]int, error) {
	sql := "SELECT uc.channel_id, COUNT(*) FROM users_channels uc WHERE uc.channel_id = ANY($1) AND " + activeMemberFilter + " GROUP BY uc.channel_id"
	return r.groupedCounts(ctx, sql, ids, "failed to get channel member counts")
}

// groupedCounts runs a GROUP BY count query keyed by channel id
func (r *channelRepository) groupedCounts(ctx context.Context, sql string, ids []string, operation string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, sql, ids)
	if err != nil {
		return nil, handlePostgreSQLError(err, operation)
	}
	defer rows.Close()

	counts := make(map[string]int, len(ids))
	for rows.Next() {
		var (
			id    string
			count int
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, handlePostgreSQLError(err, "failed to scan count row")
		}
		counts[id] = count
	}

	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, operation)
	}

	return counts, nil
}

// GetMemberCount reads the size of the channel's embedded member list
func (r *channelRepository) GetMemberCount(ctx context.Context, id string) (int, error) {
	sql := "SELECT COALESCE(cardinality(c.members), 0) FROM channels c WHERE c.id = $1 AND c.deleted_at IS NULL"
	var count int
	err := r.pool.QueryRow(ctx, sql, id).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, handlePostgreSQLError(err, "failed to get channel member count")
	}
	return count, nil
}

// Create inserts a new channel and returns the inserted record
func (r *channelRepository) Create(ctx context.Context, input CreateChannelInput) (*model.Channel, error) {
	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}

	sql := "INSERT INTO channels (id, community_id, name, description, slug, is_private, is_default, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, now()) RETURNING " + returningColumns
	channel, err := scanChannel(r.pool.QueryRow(ctx, sql,
		id, input.CommunityID, input.Name, input.Description, input.Slug, input.IsPrivate, input.IsDefault))
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to create channel")
	}

	return channel, nil
}

// Edit merges the patch into the stored channel and writes it back
func (r *channelRepository) Edit(ctx context.Context, input EditChannelInput) (*model.Channel, error) {
	current, err := r.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	name := current.Name
	if input.Name != nil {
		name = *input.Name
	}
	description := current.Description
	if input.Description != nil {
		description = *input.Description
	}
	slug := current.Slug
	if input.Slug != nil {
		slug = *input.Slug
	}
	isPrivate := current.IsPrivate
	if input.IsPrivate != nil {
		isPrivate = *input.IsPrivate
	}

	// No-op patch: skip the write and hand back the stored record.
	if name == current.Name && description == current.Description && slug == current.Slug && isPrivate == current.IsPrivate {
		return current, nil
	}

	sql := "UPDATE channels SET name = $2, description = $3, slug = $4, is_private = $5 WHERE id = $1 AND deleted_at IS NULL RETURNING " + returningColumns
	channel, err := scanChannel(r.pool.QueryRow(ctx, sql, input.ID, name, description, slug, isPrivate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, handlePostgreSQLError(err, "failed to edit channel")
	}

	return channel, nil
}

// Delete soft-deletes a channel. The slug is replaced with a fresh random
// value so the original becomes available for reuse; deleted_at is never
// cleared by this layer.
func (r *channelRepository) Delete(ctx context.Context, id string) (*model.Channel, error) {
	sql := "UPDATE channels SET deleted_at = now(), slug = $2 WHERE id = $1 AND deleted_at IS NULL RETURNING " + returningColumns
	channel, err := scanChannel(r.pool.QueryRow(ctx, sql, id, uuid.NewString()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, handlePostgreSQLError(err, "failed to delete channel")
	}
	return channel, nil
}

// Archive sets archived_at on a channel
func (r *channelRepository) Archive(ctx context.Context, id string) (*model.Channel, error) {
	sql := "UPDATE channels SET archived_at = now() WHERE id = $1 AND deleted_at IS NULL RETURNING " + returningColumns
	channel, err := scanChannel(r.pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, handlePostgreSQLError(err, "failed to archive channel")
	}
	return channel, nil
}

// Restore clears archived_at on a channel
func (r *channelRepository) Restore(ctx context.Context, id string) (*model.Channel, error) {
	sql := "UPDATE channels SET archived_at = NULL WHERE id = $1 AND deleted_at IS NULL RETURNING " + returningColumns
	channel, err := scanChannel(r.pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, handlePostgreSQLError(err, "failed to restore channel")
	}
	return channel, nil
}

// ArchiveAllPrivate archives every private live channel in a community
func (r *channelRepository) ArchiveAllPrivate(ctx context.Context, communityID string) ([]*model.Channel, error) {
	sql := "UPDATE channels SET archived_at = now() WHERE community_id = $1 AND is_private = true AND deleted_at IS NULL RETURNING " + returningColumns
	rows, err := r.pool.Query(ctx, sql, communityID)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to archive private channels")
	}
	return collectChannels(rows, "failed to iterate archived channel rows")
}
