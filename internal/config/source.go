package config

import (
	"fmt"
	"sync"

	"github.com/torfstack/revsync/internal/util"
)

// Source is the live configuration. Readers take a Snapshot per operation
// instead of holding on to a Config, so edits apply to the next call.
type Source struct {
	mu        sync.RWMutex
	cfg       Config
	listeners *util.SyncSlice[func(Config)]
}

func NewSource(cfg Config) *Source {
	return &Source{cfg: cfg, listeners: util.NewSyncSlice[func(Config)]()}
}

func (s *Source) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Source) Set(cfg Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	for _, fn := range s.listeners.Items() {
		fn(cfg)
	}
}

// OnChange registers fn for every future Set and calls it once right away
// with the current value.
func (s *Source) OnChange(fn func(Config)) {
	s.listeners.Add(fn)
	fn(s.Snapshot())
}

// Reload re-reads the config file at path and publishes it.
func (s *Source) Reload(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return fmt.Errorf("could not reload config: %w", err)
	}
	s.Set(cfg)
	return nil
}
