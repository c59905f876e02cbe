package fsutil

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "site-config.json")

	require.NoError(t, WriteFile(path, strings.NewReader("first"), 0o644))
	require.NoError(t, WriteFile(path, strings.NewReader("second"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestLockSerializes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter.lock")
	counter := filepath.Join(t.TempDir(), "counter")
	require.NoError(t, os.WriteFile(counter, []byte{}, 0o644))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := Lock(path)
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()
			b, _ := os.ReadFile(counter)
			assert.NoError(t, WriteFile(counter, strings.NewReader(string(b)+"x"), 0o644))
		}()
	}
	wg.Wait()

	got, err := os.ReadFile(counter)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 8), string(got))
}
