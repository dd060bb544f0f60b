package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/torfstack/revsync/internal/config"
	"github.com/torfstack/revsync/internal/logging"
	"github.com/torfstack/revsync/internal/remote"
)

const ID = "WebDAV"

var ErrNoRemoteData = errors.New("provider: no remote data")

// SyncProvider is what a sync engine needs from a remote backend.
type SyncProvider interface {
	ID() string
	IsReady() bool
	GetRevAndLastClientUpdate(ctx context.Context, localRev string) (RevResult, error)
	DownloadAppData(ctx context.Context, localRev string) (AppData, error)
	UploadAppData(ctx context.Context, dataStr string, clientModifiedMs int64, localRev string, force bool) (string, error)
}

// RemoteStore is the file level access the provider builds on.
type RemoteStore interface {
	Upload(ctx context.Context, cfg config.Remote, path, data string) error
	FetchMetadata(ctx context.Context, cfg config.Remote, path string) (remote.Metadata, error)
	Download(ctx context.Context, cfg config.Remote, path string) (string, error)
}

// ConfigSource hands out the current configuration.
type ConfigSource interface {
	Snapshot() config.Config
}

// RevResult is either a revision with its client update time or, when
// NoRemoteData is set, the statement that nothing has been uploaded yet.
type RevResult struct {
	Rev            string
	ClientUpdateMs int64
	NoRemoteData   bool
}

type AppData struct {
	Rev     string
	DataStr string
}

type Provider struct {
	store     RemoteStore
	cfg       ConfigSource
	readiness *Readiness
	progress  Progress
}

var _ SyncProvider = (*Provider)(nil)

type Option func(*Provider)

func WithProgress(p Progress) Option {
	return func(pr *Provider) {
		pr.progress = p
	}
}

func New(store RemoteStore, cfg ConfigSource, readiness *Readiness, opts ...Option) *Provider {
	p := &Provider{
		store:     store,
		cfg:       cfg,
		readiness: readiness,
		progress:  NopProgress{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) ID() string {
	return ID
}

func (p *Provider) IsReady() bool {
	return p.readiness.IsReady()
}

func (p *Provider) Readiness() *Readiness {
	return p.readiness
}

func (p *Provider) GetRevAndLastClientUpdate(ctx context.Context, localRev string) (RevResult, error) {
	cfg, err := p.remoteConfig(ctx)
	if err != nil {
		return RevResult{}, err
	}

	meta, err := p.store.FetchMetadata(ctx, cfg, cfg.SyncFilePath)
	if err != nil {
		if remote.IsNotFound(err) {
			logging.Debugf("No remote data at '%s'", cfg.SyncFilePath)
			return RevResult{NoRemoteData: true}, nil
		}
		logging.Error("Could not get remote revision", err, "path", cfg.SyncFilePath)
		return RevResult{}, fmt.Errorf("could not get remote revision: %w", err)
	}

	var clientUpdateMs int64
	if lastModified, err := meta.LastModified(); err != nil {
		logging.Warnf("Could not read client update time of '%s': %s", cfg.SyncFilePath, err)
	} else {
		clientUpdateMs = lastModified.UnixMilli()
	}
	rev, err := remote.ResolveRevision(meta)
	if err != nil {
		return RevResult{}, err
	}
	logging.Debugf("Remote revision %s (local %s)", rev, localRev)
	return RevResult{Rev: rev, ClientUpdateMs: clientUpdateMs}, nil
}

func (p *Provider) DownloadAppData(ctx context.Context, localRev string) (AppData, error) {
	p.progress.CountUp(LabelDownload)
	defer p.progress.CountDown()

	cfg, err := p.remoteConfig(ctx)
	if err != nil {
		return AppData{}, err
	}

	dataStr, err := p.store.Download(ctx, cfg, cfg.SyncFilePath)
	if err != nil {
		return AppData{}, p.readError("download app data", cfg, err)
	}
	rev, err := p.revision(ctx, cfg)
	if err != nil {
		return AppData{}, err
	}
	logging.Debugf("Downloaded revision %s (local %s)", rev, localRev)
	return AppData{Rev: rev, DataStr: dataStr}, nil
}

// UploadAppData writes dataStr unconditionally. localRev and force are only
// logged; detecting conflicts is up to the caller.
func (p *Provider) UploadAppData(
	ctx context.Context,
	dataStr string,
	clientModifiedMs int64,
	localRev string,
	force bool,
) (string, error) {
	p.progress.CountUp(LabelUpload)
	defer p.progress.CountDown()

	cfg, err := p.remoteConfig(ctx)
	if err != nil {
		return "", err
	}

	logging.Debugf(
		"Uploading app data modified at %d (local revision %s, force %t)", clientModifiedMs, localRev, force,
	)
	if err = p.store.Upload(ctx, cfg, cfg.SyncFilePath, dataStr); err != nil {
		return "", p.remoteError("upload app data", cfg, err)
	}
	return p.revision(ctx, cfg)
}

func (p *Provider) remoteConfig(ctx context.Context) (config.Remote, error) {
	if err := p.readiness.Wait(ctx); err != nil {
		return config.Remote{}, fmt.Errorf("provider not ready: %w", err)
	}
	return p.cfg.Snapshot().Remote, nil
}

func (p *Provider) revision(ctx context.Context, cfg config.Remote) (string, error) {
	meta, err := p.store.FetchMetadata(ctx, cfg, cfg.SyncFilePath)
	if err != nil {
		return "", p.readError("get remote metadata", cfg, err)
	}
	return remote.ResolveRevision(meta)
}

// readError classifies a missing file as ErrNoRemoteData. Writes never do: a
// 404 on PUT means the parent collection is missing, not that there is no data.
func (p *Provider) readError(op string, cfg config.Remote, err error) error {
	if remote.IsNotFound(err) {
		return fmt.Errorf("%w at '%s': %w", ErrNoRemoteData, cfg.SyncFilePath, err)
	}
	return p.remoteError(op, cfg, err)
}

func (p *Provider) remoteError(op string, cfg config.Remote, err error) error {
	logging.Error("Could not "+op, err, "path", cfg.SyncFilePath)
	return fmt.Errorf("could not %s: %w", op, err)
}
