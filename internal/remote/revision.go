package remote

import (
	"fmt"
	"net/http"
	"time"

	"github.com/torfstack/revsync/internal/logging"
	"github.com/torfstack/revsync/internal/util"
)

const (
	KeyETag         = "etag"
	KeyOCETag       = "oc-etag"
	KeyLastModified = "last-modified"

	SidecarSuffix = ".rev"

	// same shape as JavaScript's Date.toISOString
	isoTimestamp = "2006-01-02T15:04:05.000Z"
)

// Metadata is the header-like view of a remote path. Keys are lower case.
type Metadata map[string]string

// RevisionRecord is the side-car stored next to the content. Its hash is the
// revision and its timestamp the last client update.
type RevisionRecord struct {
	ContentHash  string `json:"rev"`
	LastModified string `json:"last-modified"`
}

func NewRevisionRecord(content []byte, now time.Time) RevisionRecord {
	return RevisionRecord{
		ContentHash:  util.SHA256Hex(content),
		LastModified: now.UTC().Format(isoTimestamp),
	}
}

func SidecarPath(path string) string {
	return path + SidecarSuffix
}

// ResolveRevision picks the revision from meta: etag, then oc-etag, then
// last-modified.
func ResolveRevision(meta Metadata) (string, error) {
	if meta[KeyETag] == "" {
		logging.Warnf("No %s in remote metadata", KeyETag)
	}
	for _, key := range []string{KeyETag, KeyOCETag, KeyLastModified} {
		if rev := meta[key]; rev != "" {
			return rev, nil
		}
	}
	return "", ErrRevisionUnavailable
}

func (m Metadata) LastModified() (time.Time, error) {
	v, ok := m[KeyLastModified]
	if !ok || v == "" {
		return time.Time{}, fmt.Errorf("no %s in remote metadata", KeyLastModified)
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	t, err := http.ParseTime(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse %s '%s': %w", KeyLastModified, v, err)
	}
	return t, nil
}

func (m Metadata) merge(record RevisionRecord) {
	if record.ContentHash != "" {
		m[KeyETag] = record.ContentHash
	}
	if record.LastModified != "" {
		m[KeyLastModified] = record.LastModified
	}
}
