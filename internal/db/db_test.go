package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/torfstack/revsync/internal/db/sqlc"
)

func TestSyncState(t *testing.T) {
	tests := []struct {
		name string
		do   func(t *testing.T, q *sqlc.Queries)
	}{
		{
			name: "missing state",
			do: func(t *testing.T, q *sqlc.Queries) {
				_, err := q.GetSyncState(t.Context(), "/app.json")
				require.ErrorIs(t, err, sql.ErrNoRows)
			},
		},
		{
			name: "upsert inserts then updates",
			do: func(t *testing.T, q *sqlc.Queries) {
				params := sqlc.UpsertSyncStateParams{
					SyncPath:       "/app.json",
					Revision:       "rev-1",
					ClientUpdateMs: 1700000000000,
					ContentHash:    "hash-1",
				}
				require.NoError(t, q.UpsertSyncState(t.Context(), params))

				got, err := q.GetSyncState(t.Context(), "/app.json")
				require.NoError(t, err)
				require.Equal(t, "rev-1", got.Revision)
				require.Equal(t, int64(1700000000000), got.ClientUpdateMs)
				require.Equal(t, "hash-1", got.ContentHash)
				require.False(t, got.SyncedAt.IsZero())

				params.Revision = "rev-2"
				params.ContentHash = "hash-2"
				require.NoError(t, q.UpsertSyncState(t.Context(), params))

				got, err = q.GetSyncState(t.Context(), "/app.json")
				require.NoError(t, err)
				require.Equal(t, "rev-2", got.Revision)
				require.Equal(t, "hash-2", got.ContentHash)
			},
		},
		{
			name: "delete",
			do: func(t *testing.T, q *sqlc.Queries) {
				require.NoError(t, q.UpsertSyncState(t.Context(), sqlc.UpsertSyncStateParams{SyncPath: "/a", Revision: "r"}))
				require.NoError(t, q.DeleteSyncState(t.Context(), "/a"))
				_, err := q.GetSyncState(t.Context(), "/a")
				require.ErrorIs(t, err, sql.ErrNoRows)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Open(t.Context(), filepath.Join(t.TempDir(), "nested", dbName))
			require.NoError(t, err)
			t.Cleanup(func() { _ = d.Close() })
			tt.do(t, d.Queries())
		})
	}
}

func TestOpenTwiceKeepsData(t *testing.T) {
	fp := filepath.Join(t.TempDir(), dbName)
	d, err := Open(t.Context(), fp)
	require.NoError(t, err)
	require.NoError(t, d.Queries().UpsertSyncState(t.Context(), sqlc.UpsertSyncStateParams{SyncPath: "/a", Revision: "r"}))
	require.NoError(t, d.Close())

	d, err = Open(t.Context(), fp)
	require.NoError(t, err)
	defer d.Close()
	got, err := d.Queries().GetSyncState(t.Context(), "/a")
	require.NoError(t, err)
	require.Equal(t, "r", got.Revision)
}
