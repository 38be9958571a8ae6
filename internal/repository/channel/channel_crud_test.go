package channel

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probablyup/spectrum/internal/model"
)

var channelTestColumns = []string{"id", "community_id", "name", "description", "slug", "is_private", "is_default", "members", "created_at", "deleted_at", "archived_at"}

// newChannelRows builds a pgxmock result set from channel models
func newChannelRows(channels ...*model.Channel) *pgxmock.Rows {
	rows := pgxmock.NewRows(channelTestColumns)
	for _, ch := range channels {
		rows.AddRow(ch.ID, ch.CommunityID, ch.Name, ch.Description, ch.Slug, ch.IsPrivate, ch.IsDefault, ch.Members, ch.CreatedAt, ch.DeletedAt, ch.ArchivedAt)
	}
	return rows
}

func TestChannelRepository_Create(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	created := &model.Channel{
		ID:          "channel-1",
		CommunityID: "community-1",
		Name:        "Random",
		Description: "Anything goes",
		Slug:        "random",
		IsPrivate:   false,
		IsDefault:   false,
		Members:     []string{},
		CreatedAt:   now,
	}

	tests := []struct {
		name    string
		input   CreateChannelInput
		setup   func(mock pgxmock.PgxPoolIface)
		want    *model.Channel
		wantErr bool
	}{
		{
			name: "successful creation",
			input: CreateChannelInput{
				ID:          "channel-1",
				CommunityID: "community-1",
				Name:        "Random",
				Description: "Anything goes",
				Slug:        "random",
			},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("INSERT INTO channels").
					WithArgs("channel-1", "community-1", "Random", "Anything goes", "random", false, false).
					WillReturnRows(newChannelRows(created))
			},
			want:    created,
			wantErr: false,
		},
		{
			name: "id generated when absent",
			input: CreateChannelInput{
				CommunityID: "community-1",
				Name:        "Random",
				Description: "Anything goes",
				Slug:        "random",
			},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("INSERT INTO channels").
					WithArgs(pgxmock.AnyArg(), "community-1", "Random", "Anything goes", "random", false, false).
					WillReturnRows(newChannelRows(created))
			},
			want:    created,
			wantErr: false,
		},
		{
			name: "database error",
			input: CreateChannelInput{
				ID:          "channel-1",
				CommunityID: "community-1",
				Name:        "Random",
				Description: "Anything goes",
				Slug:        "random",
			},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("INSERT INTO channels").
					WithArgs("channel-1", "community-1", "Random", "Anything goes", "random", false, false).
					WillReturnError(assert.AnError)
			},
			want:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup pgxmock
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			// Setup expectations
			tt.setup(mock)

			// Create repository
			repo := NewRepository(mock)

			// Execute test
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			got, err := repo.Create(ctx, tt.input)

			// Verify result
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			// Verify all expectations were met
			err = mock.ExpectationsWereMet()
			assert.NoError(t, err, "pgxmock expectations were not met")
		})
	}
}

func TestChannelRepository_Edit(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	stored := &model.Channel{
		ID:          "channel-1",
		CommunityID: "community-1",
		Name:        "Random",
		Description: "Anything goes",
		Slug:        "random",
		Members:     []string{},
		CreatedAt:   now,
	}
	renamed := &model.Channel{
		ID:          "channel-1",
		CommunityID: "community-1",
		Name:        "Water Cooler",
		Description: "Anything goes",
		Slug:        "random",
		Members:     []string{},
		CreatedAt:   now,
	}

	newName := "Water Cooler"
	sameName := "Random"

	tests := []struct {
		name    string
		input   EditChannelInput
		setup   func(mock pgxmock.PgxPoolIface)
		want    *model.Channel
		wantErr bool
	}{
		{
			name:  "edit applies changes",
			input: EditChannelInput{ID: "channel-1", Name: &newName},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT .* FROM channels c WHERE c.id = \\$1 AND c.deleted_at IS NULL").
					WithArgs("channel-1").
					WillReturnRows(newChannelRows(stored))
				mock.ExpectQuery("UPDATE channels SET name = \\$2, description = \\$3, slug = \\$4, is_private = \\$5 WHERE id = \\$1 AND deleted_at IS NULL RETURNING").
					WithArgs("channel-1", "Water Cooler", "Anything goes", "random", false).
					WillReturnRows(newChannelRows(renamed))
			},
			want:    renamed,
			wantErr: false,
		},
		{
			name:  "no-op patch returns stored record without update",
			input: EditChannelInput{ID: "channel-1", Name: &sameName},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT .* FROM channels c WHERE c.id = \\$1 AND c.deleted_at IS NULL").
					WithArgs("channel-1").
					WillReturnRows(newChannelRows(stored))
			},
			want:    stored,
			wantErr: false,
		},
		{
			name:  "missing channel returns nil",
			input: EditChannelInput{ID: "channel-gone", Name: &newName},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT .* FROM channels c WHERE c.id = \\$1 AND c.deleted_at IS NULL").
					WithArgs("channel-gone").
					WillReturnRows(newChannelRows())
			},
			want:    nil,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup pgxmock
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			// Setup expectations
			tt.setup(mock)

			// Create repository
			repo := NewRepository(mock)

			// Execute test
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			got, err := repo.Edit(ctx, tt.input)

			// Verify result
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			// Verify all expectations were met
			err = mock.ExpectationsWereMet()
			assert.NoError(t, err, "pgxmock expectations were not met")
		})
	}
}

func TestChannelRepository_Delete(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	deletedAt := now.Add(time.Hour)
	deleted := &model.Channel{
		ID:          "channel-1",
		CommunityID: "community-1",
		Name:        "Random",
		Description: "Anything goes",
		Slug:        "b3c7a9d2-0000-0000-0000-000000000000",
		Members:     []string{},
		CreatedAt:   now,
		DeletedAt:   &deletedAt,
	}

	tests := []struct {
		name    string
		id      string
		setup   func(mock pgxmock.PgxPoolIface)
		want    *model.Channel
		wantErr bool
	}{
		{
			name: "soft delete replaces slug",
			id:   "channel-1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("UPDATE channels SET deleted_at = now\\(\\), slug = \\$2 WHERE id = \\$1 AND deleted_at IS NULL RETURNING").
					WithArgs("channel-1", pgxmock.AnyArg()).
					WillReturnRows(newChannelRows(deleted))
			},
			want:    deleted,
			wantErr: false,
		},
		{
			name: "missing channel returns nil",
			id:   "channel-gone",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("UPDATE channels SET deleted_at = now\\(\\), slug = \\$2 WHERE id = \\$1 AND deleted_at IS NULL RETURNING").
					WithArgs("channel-gone", pgxmock.AnyArg()).
					WillReturnRows(newChannelRows())
			},
			want:    nil,
			wantErr: false,
		},
		{
			name: "database error",
			id:   "channel-1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("UPDATE channels SET deleted_at = now\\(\\), slug = \\$2 WHERE id = \\$1 AND deleted_at IS NULL RETURNING").
					WithArgs("channel-1", pgxmock.AnyArg()).
					WillReturnError(assert.AnError)
			},
			want:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup pgxmock
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			// Setup expectations
			tt.setup(mock)

			// Create repository
			repo := NewRepository(mock)

			// Execute test
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			got, err := repo.Delete(ctx, tt.id)

			// Verify result
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			// Verify all expectations were met
			err = mock.ExpectationsWereMet()
			assert.NoError(t, err, "pgxmock expectations were not met")
		})
	}
}

func TestChannelRepository_ArchiveAndRestore(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	archivedAt := now.Add(time.Hour)
	archived := &model.Channel{
		ID:          "channel-1",
		CommunityID: "community-1",
		Name:        "Random",
		Slug:        "random",
		Members:     []string{},
		CreatedAt:   now,
		ArchivedAt:  &archivedAt,
	}
	restored := &model.Channel{
		ID:          "channel-1",
		CommunityID: "community-1",
		Name:        "Random",
		Slug:        "random",
		Members:     []string{},
		CreatedAt:   now,
	}

	t.Run("archive sets archived_at", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("UPDATE channels SET archived_at = now\\(\\) WHERE id = \\$1 AND deleted_at IS NULL RETURNING").
			WithArgs("channel-1").
			WillReturnRows(newChannelRows(archived))

		repo := NewRepository(mock)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		got, err := repo.Archive(ctx, "channel-1")
		assert.NoError(t, err)
		assert.Equal(t, archived, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("restore clears archived_at", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("UPDATE channels SET archived_at = NULL WHERE id = \\$1 AND deleted_at IS NULL RETURNING").
			WithArgs("channel-1").
			WillReturnRows(newChannelRows(restored))

		repo := NewRepository(mock)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		got, err := repo.Restore(ctx, "channel-1")
		assert.NoError(t, err)
		require.NotNil(t, got)
		assert.Nil(t, got.ArchivedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("archive of missing channel returns nil", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("UPDATE channels SET archived_at = now\\(\\) WHERE id = \\$1 AND deleted_at IS NULL RETURNING").
			WithArgs("channel-gone").
			WillReturnRows(newChannelRows())

		repo := NewRepository(mock)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		got, err := repo.Archive(ctx, "channel-gone")
		assert.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestChannelRepository_ArchiveAllPrivate(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	archivedAt := now.Add(time.Hour)
	private1 := &model.Channel{
		ID:          "channel-1",
		CommunityID: "community-1",
		Name:        "Staff",
		Slug:        "staff",
		IsPrivate:   true,
		Members:     []string{},
		CreatedAt:   now,
		ArchivedAt:  &archivedAt,
	}
	private2 := &model.Channel{
		ID:          "channel-2",
		CommunityID: "community-1",
		Name:        "Founders",
		Slug:        "founders",
		IsPrivate:   true,
		Members:     []string{},
		CreatedAt:   now,
		ArchivedAt:  &archivedAt,
	}

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("UPDATE channels SET archived_at = now\\(\\) WHERE community_id = \\$1 AND is_private = true AND deleted_at IS NULL RETURNING").
		WithArgs("community-1").
		WillReturnRows(newChannelRows(private1, private2))

	repo := NewRepository(mock)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := repo.ArchiveAllPrivate(ctx, "community-1")
	require.NoError(t, err)
	assert.Equal(t, []*model.Channel{private1, private2}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
