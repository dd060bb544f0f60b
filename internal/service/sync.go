package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/torfstack/revsync/internal/db/sqlc"
	"github.com/torfstack/revsync/internal/local"
	"github.com/torfstack/revsync/internal/logging"
	"github.com/torfstack/revsync/internal/provider"
)

var ErrConflict = errors.New("local and remote data both changed since the last sync")

type Action int

const (
	ActionNone Action = iota
	ActionPush
	ActionPull
	ActionConflict
)

func (a Action) String() string {
	switch a {
	case ActionPush:
		return "push"
	case ActionPull:
		return "pull"
	case ActionConflict:
		return "conflict"
	default:
		return "none"
	}
}

type Status struct {
	SyncPath string
	Remote   provider.RevResult
	// nil when never synced
	Stored *sqlc.SyncState
	// nil when there is no local file
	Local *local.AppFile
}

// InSync reports whether local and remote data both match the last sync.
func (s *Status) InSync() bool {
	return s.Stored != nil && s.Local != nil && !s.Remote.NoRemoteData &&
		s.Remote.Rev == s.Stored.Revision && s.Local.ContentHash == s.Stored.ContentHash
}

func (s *Service) Status(ctx context.Context) (*Status, error) {
	cfg := s.src.Snapshot()
	file, err := s.loadLocal(cfg.DataFile)
	if err != nil {
		return nil, err
	}
	stored, err := s.storedState(ctx, cfg.Remote.SyncFilePath)
	if err != nil {
		return nil, err
	}
	res, err := s.provider.GetRevAndLastClientUpdate(ctx, stored.revision())
	if err != nil {
		return nil, err
	}
	return &Status{SyncPath: cfg.Remote.SyncFilePath, Remote: res, Stored: stored.SyncState, Local: file}, nil
}

// Sync compares remote, local and last synced state and pushes, pulls or
// reports a conflict. With force a conflict is resolved by pushing.
func (s *Service) Sync(ctx context.Context, force bool) (Action, error) {
	cfg := s.src.Snapshot()
	file, err := s.loadLocal(cfg.DataFile)
	if err != nil {
		return ActionNone, err
	}
	stored, err := s.storedState(ctx, cfg.Remote.SyncFilePath)
	if err != nil {
		return ActionNone, err
	}
	res, err := s.provider.GetRevAndLastClientUpdate(ctx, stored.revision())
	if err != nil {
		return ActionNone, fmt.Errorf("could not get remote revision: %w", err)
	}

	localChanged := file != nil && (stored.SyncState == nil || stored.ContentHash != file.ContentHash)
	switch {
	case res.NoRemoteData && file == nil:
		logging.Info("Nothing to sync, neither local nor remote data exists")
		return ActionNone, nil
	case res.NoRemoteData:
		return ActionPush, s.push(ctx, file, stored, force)
	case stored.SyncState != nil && res.Rev == stored.Revision:
		if !localChanged {
			logging.Debugf("Up to date at revision %s", res.Rev)
			return ActionNone, nil
		}
		return ActionPush, s.push(ctx, file, stored, force)
	case !localChanged:
		return ActionPull, s.pull(ctx, res)
	case force:
		logging.Warnf("Overwriting remote revision %s with local data", res.Rev)
		return ActionPush, s.push(ctx, file, stored, force)
	default:
		return ActionConflict, fmt.Errorf("%w: remote revision %s, last synced %s", ErrConflict, res.Rev, stored.revision())
	}
}

// Push uploads the local data file regardless of the remote state.
func (s *Service) Push(ctx context.Context, force bool) (string, error) {
	cfg := s.src.Snapshot()
	file, err := s.loadLocal(cfg.DataFile)
	if err != nil {
		return "", err
	}
	if file == nil {
		return "", fmt.Errorf("%w at '%s'", local.ErrNoLocalData, cfg.DataFile)
	}
	stored, err := s.storedState(ctx, cfg.Remote.SyncFilePath)
	if err != nil {
		return "", err
	}
	if err = s.push(ctx, file, stored, force); err != nil {
		return "", err
	}
	state, err := s.storedState(ctx, cfg.Remote.SyncFilePath)
	if err != nil {
		return "", err
	}
	return state.revision(), nil
}

// Pull replaces the local data file with the remote data.
func (s *Service) Pull(ctx context.Context) (*local.AppFile, error) {
	cfg := s.src.Snapshot()
	if _, err := s.loadLocal(cfg.DataFile); err != nil {
		return nil, err
	}
	res, err := s.provider.GetRevAndLastClientUpdate(ctx, "")
	if err != nil {
		return nil, err
	}
	if res.NoRemoteData {
		return nil, fmt.Errorf("%w at '%s'", provider.ErrNoRemoteData, cfg.Remote.SyncFilePath)
	}
	if err = s.pull(ctx, res); err != nil {
		return nil, err
	}
	return local.ReadAppData(cfg.DataFile)
}

func (s *Service) push(ctx context.Context, file *local.AppFile, stored storedState, force bool) error {
	cfg := s.src.Snapshot()
	clientModified := file.ModTime.UnixMilli()
	rev, err := s.provider.UploadAppData(ctx, file.Content, clientModified, stored.revision(), force)
	if err != nil {
		return fmt.Errorf("could not push app data: %w", err)
	}
	logging.Infof("Pushed '%s' as revision %s", file.Path, rev)
	return s.saveState(ctx, cfg.Remote.SyncFilePath, rev, clientModified, file.ContentHash)
}

func (s *Service) pull(ctx context.Context, res provider.RevResult) error {
	cfg := s.src.Snapshot()
	data, err := s.provider.DownloadAppData(ctx, res.Rev)
	if err != nil {
		return fmt.Errorf("could not pull app data: %w", err)
	}
	file, err := local.WriteAppData(cfg.DataFile, provider.DecodeAppData(data.DataStr))
	if err != nil {
		return err
	}
	logging.Infof("Pulled revision %s into '%s'", data.Rev, file.Path)
	return s.saveState(ctx, cfg.Remote.SyncFilePath, data.Rev, res.ClientUpdateMs, file.ContentHash)
}

// loadLocal reads the local data file and signals that local data has been
// loaded. A missing file is not an error.
func (s *Service) loadLocal(path string) (*local.AppFile, error) {
	file, err := local.ReadAppData(path)
	if err != nil && !errors.Is(err, local.ErrNoLocalData) {
		return nil, err
	}
	s.provider.Readiness().DataLoaded()
	return file, nil
}

type storedState struct {
	*sqlc.SyncState
}

func (s storedState) revision() string {
	if s.SyncState == nil {
		return ""
	}
	return s.Revision
}

func (s *Service) storedState(ctx context.Context, syncPath string) (storedState, error) {
	state, err := s.db.Queries().GetSyncState(ctx, syncPath)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return storedState{}, nil
	case err != nil:
		return storedState{}, fmt.Errorf("could not read sync state of '%s': %w", syncPath, err)
	}
	return storedState{&state}, nil
}

func (s *Service) saveState(ctx context.Context, syncPath, rev string, clientUpdateMs int64, contentHash string) error {
	err := s.db.Queries().UpsertSyncState(ctx, sqlc.UpsertSyncStateParams{
		SyncPath:       syncPath,
		Revision:       rev,
		ClientUpdateMs: clientUpdateMs,
		ContentHash:    contentHash,
	})
	if err != nil {
		return fmt.Errorf("could not save sync state of '%s': %w", syncPath, err)
	}
	return nil
}
