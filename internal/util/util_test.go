package util

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSHA256Hex(t *testing.T) {
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", SHA256Hex(nil))
	require.Len(t, SHA256Hex([]byte(`"{\"a\":1}"`)), 64)
}

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "file.txt")
	require.NoError(t, WriteFile(path, []byte("first")))
	require.NoError(t, WriteFile(path, []byte("2nd")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "2nd", string(b))
}

func TestSyncSlice(t *testing.T) {
	s := NewSyncSlice[int]()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Go(func() { s.Add(i) })
	}
	wg.Wait()

	items := s.Items()
	require.Len(t, items, 10)
	items[0] = 100
	require.NotContains(t, s.Items(), 100)
}
