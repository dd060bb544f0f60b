package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/torfstack/revsync/internal/config"
	"github.com/torfstack/revsync/internal/db"
	"github.com/torfstack/revsync/internal/local"
	"github.com/torfstack/revsync/internal/provider"
	"github.com/torfstack/revsync/internal/remote/davtest"
)

type device struct {
	svc      *Service
	dataFile string
}

func newDevice(t *testing.T, srv *davtest.Server) *device {
	dir := t.TempDir()
	d, err := db.Open(t.Context(), filepath.Join(dir, "state.sqlite"))
	require.NoError(t, err)

	dataFile := filepath.Join(dir, "app-data.json")
	src := config.NewSource(config.Config{
		DataFile:     dataFile,
		SyncInterval: time.Minute,
		Remote:       srv.Remote("/app.json"),
	})
	svc, err := NewService(t.Context(), src, WithDatabase(d))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return &device{svc: svc, dataFile: dataFile}
}

func (d *device) write(t *testing.T, content string) {
	_, err := local.WriteAppData(d.dataFile, content)
	require.NoError(t, err)
}

func (d *device) read(t *testing.T) string {
	b, err := os.ReadFile(d.dataFile)
	require.NoError(t, err)
	return string(b)
}

func (d *device) sync(t *testing.T, force bool) (Action, error) {
	return d.svc.Sync(t.Context(), force)
}

func TestSync(t *testing.T) {
	tests := []struct {
		name string
		do   func(t *testing.T, srv *davtest.Server, a, b *device)
	}{
		{
			name: "nothing anywhere",
			do: func(t *testing.T, _ *davtest.Server, a, _ *device) {
				action, err := a.sync(t, false)
				require.NoError(t, err)
				require.Equal(t, ActionNone, action)
			},
		},
		{
			name: "first sync pushes local data",
			do: func(t *testing.T, srv *davtest.Server, a, _ *device) {
				a.write(t, `{"a":1}`)
				action, err := a.sync(t, false)
				require.NoError(t, err)
				require.Equal(t, ActionPush, action)

				content, err := srv.ReadFile("/app.json")
				require.NoError(t, err)
				require.Equal(t, `"{\"a\":1}"`, content)

				action, err = a.sync(t, false)
				require.NoError(t, err)
				require.Equal(t, ActionNone, action)
			},
		},
		{
			name: "local change is pushed",
			do: func(t *testing.T, _ *davtest.Server, a, _ *device) {
				a.write(t, `{"a":1}`)
				_, err := a.sync(t, false)
				require.NoError(t, err)

				a.write(t, `{"a":2}`)
				action, err := a.sync(t, false)
				require.NoError(t, err)
				require.Equal(t, ActionPush, action)

				status, err := a.svc.Status(t.Context())
				require.NoError(t, err)
				require.True(t, status.InSync())
			},
		},
		{
			name: "remote change is pulled",
			do: func(t *testing.T, _ *davtest.Server, a, b *device) {
				a.write(t, `{"a":1}`)
				_, err := a.sync(t, false)
				require.NoError(t, err)

				action, err := b.sync(t, false)
				require.NoError(t, err)
				require.Equal(t, ActionPull, action)
				require.Equal(t, `{"a":1}`, b.read(t))

				b.write(t, `{"a":1,"b":2}`)
				action, err = b.sync(t, false)
				require.NoError(t, err)
				require.Equal(t, ActionPush, action)

				action, err = a.sync(t, false)
				require.NoError(t, err)
				require.Equal(t, ActionPull, action)
				require.Equal(t, `{"a":1,"b":2}`, a.read(t))
			},
		},
		{
			name: "both changed is a conflict unless forced",
			do: func(t *testing.T, _ *davtest.Server, a, b *device) {
				a.write(t, "base")
				_, err := a.sync(t, false)
				require.NoError(t, err)
				_, err = b.sync(t, false)
				require.NoError(t, err)

				b.write(t, "from b")
				_, err = b.sync(t, false)
				require.NoError(t, err)
				a.write(t, "from a")

				action, err := a.sync(t, false)
				require.ErrorIs(t, err, ErrConflict)
				require.Equal(t, ActionConflict, action)
				require.Equal(t, "from a", a.read(t))

				action, err = a.sync(t, true)
				require.NoError(t, err)
				require.Equal(t, ActionPush, action)

				action, err = b.sync(t, false)
				require.NoError(t, err)
				require.Equal(t, ActionPull, action)
				require.Equal(t, "from a", b.read(t))
			},
		},
		{
			name: "pull without remote data",
			do: func(t *testing.T, _ *davtest.Server, a, _ *device) {
				_, err := a.svc.Pull(t.Context())
				require.ErrorIs(t, err, provider.ErrNoRemoteData)
			},
		},
		{
			name: "push without local data",
			do: func(t *testing.T, _ *davtest.Server, a, _ *device) {
				_, err := a.svc.Push(t.Context(), false)
				require.ErrorIs(t, err, local.ErrNoLocalData)
			},
		},
		{
			name: "push and pull",
			do: func(t *testing.T, _ *davtest.Server, a, b *device) {
				a.write(t, `{"x":true}`)
				rev, err := a.svc.Push(t.Context(), false)
				require.NoError(t, err)
				require.NotEmpty(t, rev)

				file, err := b.svc.Pull(t.Context())
				require.NoError(t, err)
				require.Equal(t, `{"x":true}`, file.Content)

				status, err := b.svc.Status(t.Context())
				require.NoError(t, err)
				require.Equal(t, rev, status.Remote.Rev)
				require.Equal(t, rev, status.Stored.Revision)
				require.True(t, status.InSync())
			},
		},
		{
			name: "status before first sync",
			do: func(t *testing.T, _ *davtest.Server, a, _ *device) {
				status, err := a.svc.Status(t.Context())
				require.NoError(t, err)
				require.Equal(t, "/app.json", status.SyncPath)
				require.True(t, status.Remote.NoRemoteData)
				require.Nil(t, status.Stored)
				require.Nil(t, status.Local)
				require.False(t, status.InSync())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := davtest.NewServer(t)
			tt.do(t, srv, newDevice(t, srv), newDevice(t, srv))
		})
	}
}

func TestActionString(t *testing.T) {
	require.Equal(t, "none", ActionNone.String())
	require.Equal(t, "push", ActionPush.String())
	require.Equal(t, "pull", ActionPull.String())
	require.Equal(t, "conflict", ActionConflict.String())
}
