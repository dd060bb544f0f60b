package service

import (
	"context"
	"fmt"

	"github.com/torfstack/revsync/internal/config"
	"github.com/torfstack/revsync/internal/db"
	"github.com/torfstack/revsync/internal/logging"
	"github.com/torfstack/revsync/internal/provider"
	"github.com/torfstack/revsync/internal/remote"
)

type Service struct {
	src      *config.Source
	provider *provider.Provider
	db       *db.Database
	progress *provider.LogProgress
}

type options struct {
	database  *db.Database
	client    *remote.Client
	userAgent string
}

type Option func(*options)

func WithDatabase(d *db.Database) Option {
	return func(o *options) {
		o.database = d
	}
}

func WithClient(c *remote.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithUserAgent sets the user agent of the default remote client.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

func NewService(ctx context.Context, src *config.Source, opts ...Option) (*Service, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.database == nil {
		d, err := db.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not open sync state database: %w", err)
		}
		o.database = d
	}
	if o.client == nil {
		o.client = remote.NewClient(
			remote.WithTimeout(src.Snapshot().RequestTimeout),
			remote.WithUserAgent(o.userAgent),
		)
	}

	readiness := provider.NewReadiness()
	readiness.Subscribe(func(ready bool) {
		logging.Debugf("Remote ready: %t", ready)
	})
	src.OnChange(func(c config.Config) {
		readiness.ConfigChanged(c.Remote.Complete())
	})

	progress := &provider.LogProgress{}
	return &Service{
		src:      src,
		provider: provider.New(o.client, src, readiness, provider.WithProgress(progress)),
		db:       o.database,
		progress: progress,
	}, nil
}

func (s *Service) Provider() *provider.Provider {
	return s.provider
}

func (s *Service) Close() error {
	if n := s.progress.Active(); n > 0 {
		logging.Warnf("Closing with %d remote operations still running", n)
	}
	return s.db.Close()
}
