package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/torfstack/revsync/internal/local"
	"github.com/torfstack/revsync/internal/logging"
	"golang.org/x/sync/errgroup"
)

// RunDaemon syncs every sync interval and whenever the local data file
// changes. Changes to the config file at configPath are picked up live.
func (s *Service) RunDaemon(ctx context.Context, configPath string) error {
	cfg := s.src.Snapshot()
	configPath, err := filepath.Abs(configPath)
	if err != nil {
		return fmt.Errorf("run-daemon: could not resolve config path: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(cfg.DataFile), 0755); err != nil {
		return fmt.Errorf("run-daemon: could not create data directory: %w", err)
	}
	w, err := local.NewWatcher(cfg.DataFile, configPath)
	if err != nil {
		return fmt.Errorf("run-daemon: could not create watcher: %w", err)
	}
	defer w.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := w.Run(ctx); err != nil {
			return fmt.Errorf("run-daemon: error while running watcher: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.consumeEvents(ctx, w.Events, configPath)
		return nil
	})
	return g.Wait()
}

func (s *Service) consumeEvents(ctx context.Context, events <-chan local.WatchEvent, configPath string) {
	interval := s.src.Snapshot().SyncInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.syncOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncOnce(ctx)
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Path != configPath {
				logging.Debugf("Received %s event for %s", event.Op, event.Path)
				s.syncOnce(ctx)
				continue
			}
			if err := s.src.Reload(configPath); err != nil {
				logging.Error("Could not reload config", err)
				continue
			}
			logging.Info("Reloaded config")
			if next := s.src.Snapshot().SyncInterval; next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

func (s *Service) syncOnce(ctx context.Context) {
	if !s.src.Snapshot().Remote.Complete() {
		logging.Info("Remote is not configured completely, skipping sync")
		return
	}
	action, err := s.Sync(ctx, false)
	switch {
	case errors.Is(err, ErrConflict):
		logging.Warnf("Not syncing: %s", err)
	case ctx.Err() != nil:
	case err != nil:
		logging.Error("Sync failed", err)
	case action != ActionNone:
		logging.Infof("Sync finished: %s", action)
	}
}
