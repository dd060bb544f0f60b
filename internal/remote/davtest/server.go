// Package davtest runs an in-memory WebDAV server for tests.
package davtest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/torfstack/revsync/internal/config"
	"golang.org/x/net/webdav"
)

const (
	User     = "u"
	Password = "p"
)

// Request is what the server saw of a single request.
type Request struct {
	Method           string
	Path             string
	ContentLength    int64
	TransferEncoding []string
	UserAgent        string
}

type Server struct {
	*httptest.Server
	FS webdav.FileSystem

	mu       sync.Mutex
	failures map[string]int
	requests []Request
}

func NewServer(t testing.TB) *Server {
	s := &Server{
		FS:       webdav.NewMemFS(),
		failures: make(map[string]int),
	}
	dav := &webdav.Handler{
		FileSystem: s.FS,
		LockSystem: webdav.NewMemLS(),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != User || pass != Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="davtest"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:           r.Method,
			Path:             r.URL.Path,
			ContentLength:    r.ContentLength,
			TransferEncoding: r.TransferEncoding,
			UserAgent:        r.UserAgent(),
		})
		status, fail := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if fail {
			_, _ = io.Copy(io.Discard, r.Body)
			http.Error(w, http.StatusText(status), status)
			return
		}
		dav.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// Remote returns a complete remote config pointing at the server.
func (s *Server) Remote(syncFilePath string) config.Remote {
	return config.Remote{
		BaseURL:      s.URL,
		UserName:     User,
		Password:     Password,
		SyncFilePath: syncFilePath,
	}
}

// Fail makes every request with method to path answer with status.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

// Requests lists the authenticated requests as "METHOD /path".
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]string, 0, len(s.requests))
	for _, r := range s.requests {
		lines = append(lines, r.Method+" "+r.Path)
	}
	return lines
}

// Recorded returns the authenticated requests with method to path.
func (s *Server) Recorded(method, path string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []Request
	for _, r := range s.requests {
		if r.Method == method && r.Path == path {
			matched = append(matched, r)
		}
	}
	return matched
}

func (s *Server) ReadFile(path string) (string, error) {
	f, err := s.FS.OpenFile(context.Background(), path, os.O_RDONLY, 0)
	if err != nil {
		return "", err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	return string(b), err
}

func (s *Server) WriteFile(path, content string) error {
	f, err := s.FS.OpenFile(context.Background(), path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err = io.WriteString(f, content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
