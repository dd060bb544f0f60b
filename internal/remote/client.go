package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/imroc/req/v3"
	"github.com/torfstack/revsync/internal/config"
	"github.com/torfstack/revsync/internal/logging"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "revsync"
)

// Client talks to a WebDAV style file store: PUT and GET of whole files.
// It keeps no session; every call authenticates with the snapshot it is given.
type Client struct {
	timeout   time.Duration
	userAgent string
}

type Option func(*Client)

// WithTimeout bounds each request. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{timeout: defaultTimeout, userAgent: defaultUserAgent}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload stores data as JSON text at path and its revision record at
// path + ".rev". Both writes run concurrently; the upload only succeeds if
// both do.
func (c *Client) Upload(ctx context.Context, cfg config.Remote, path, data string) error {
	content, err := encodeContent(data)
	if err != nil {
		return fmt.Errorf("could not encode content for '%s': %w", path, err)
	}
	record := NewRevisionRecord(content, time.Now())
	sidecar, err := encodeRecord(record)
	if err != nil {
		return fmt.Errorf("could not encode revision record for '%s': %w", path, err)
	}

	session := c.session(cfg)
	var g errgroup.Group
	g.Go(func() error {
		return put(ctx, session, cfg, path, content)
	})
	g.Go(func() error {
		return put(ctx, session, cfg, SidecarPath(path), sidecar)
	})
	if err = g.Wait(); err != nil {
		return err
	}

	logging.Debugf("Uploaded '%s' with revision %s", path, record.ContentHash)
	return nil
}

// FetchMetadata reads the revision record of path. Entity tag and
// last-modified headers of the response are used where the record has no value.
func (c *Client) FetchMetadata(ctx context.Context, cfg config.Remote, path string) (Metadata, error) {
	sidecarPath := SidecarPath(path)
	resp, err := get(ctx, c.session(cfg), cfg, sidecarPath)
	if err != nil {
		return nil, err
	}

	meta := Metadata{}
	for _, key := range []string{KeyETag, KeyOCETag, KeyLastModified} {
		if v := resp.Header.Get(key); v != "" {
			meta[key] = v
		}
	}
	record, err := decodeRecord(resp.Bytes())
	if err != nil {
		logging.Debugf("Content of '%s' is not a revision record: %s", sidecarPath, err)
		return meta, nil
	}
	meta.merge(record)
	return meta, nil
}

// Download returns the raw text stored at path.
func (c *Client) Download(ctx context.Context, cfg config.Remote, path string) (string, error) {
	resp, err := get(ctx, c.session(cfg), cfg, path)
	if err != nil {
		return "", err
	}
	return resp.String(), nil
}

func (c *Client) session(cfg config.Remote) *req.Client {
	return req.C().
		SetTimeout(c.timeout).
		SetUserAgent(c.userAgent).
		SetCommonBasicAuth(cfg.UserName, cfg.Password)
}

func put(ctx context.Context, session *req.Client, cfg config.Remote, path string, body []byte) error {
	u, err := resourceURL(cfg, path)
	if err != nil {
		return err
	}
	resp, err := session.R().
		SetContext(ctx).
		SetBody(streamBody(body)).
		Put(u)
	return checkResponse(resp, err, "put", path)
}

func get(ctx context.Context, session *req.Client, cfg config.Remote, path string) (*req.Response, error) {
	u, err := resourceURL(cfg, path)
	if err != nil {
		return nil, err
	}
	resp, err := session.R().
		SetContext(ctx).
		Get(u)
	if err = checkResponse(resp, err, "get", path); err != nil {
		return nil, err
	}
	return resp, nil
}

func checkResponse(resp *req.Response, err error, op, path string) error {
	if err != nil {
		return fmt.Errorf("could not %s '%s': %w", op, path, err)
	}
	if !resp.IsSuccessState() {
		return &StatusError{Op: op, Path: path, StatusCode: resp.StatusCode}
	}
	return nil
}

func resourceURL(cfg config.Remote, path string) (string, error) {
	u, err := url.JoinPath(cfg.BaseURL, path)
	if err != nil {
		return "", fmt.Errorf("could not build url from '%s' and '%s': %w", cfg.BaseURL, path, err)
	}
	return u, nil
}

// streamBody hides the length of b, so the request goes out without a
// precomputed Content-Length.
func streamBody(b []byte) io.Reader {
	return struct{ io.Reader }{bytes.NewReader(b)}
}
