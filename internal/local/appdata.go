package local

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/torfstack/revsync/internal/util"
)

var ErrNoLocalData = errors.New("local: no app data file")

// AppFile is the local copy of the synced application data.
type AppFile struct {
	Path        string
	Content     string
	ContentHash string
	ModTime     time.Time
}

func ReadAppData(path string) (*AppFile, error) {
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w at '%s'", ErrNoLocalData, path)
	case err != nil:
		return nil, fmt.Errorf("could not read app data file '%s': %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("could not stat app data file '%s': %w", path, err)
	}
	return &AppFile{
		Path:        path,
		Content:     string(b),
		ContentHash: util.SHA256Hex(b),
		ModTime:     info.ModTime(),
	}, nil
}

func WriteAppData(path, content string) (*AppFile, error) {
	if err := util.WriteFile(path, []byte(content)); err != nil {
		return nil, fmt.Errorf("could not write app data file '%s': %w", path, err)
	}
	return ReadAppData(path)
}
