package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, base string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(base, filepath.FromSlash(r))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	}
}

func relAll(t *testing.T, base string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(base, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestFind(t *testing.T) {
	base := t.TempDir()
	writeFiles(t, base,
		"plugin_cookies.txt",
		"settings.xml",
		"browser_profile/cookies",
		"browser_profile/cache/a/b/blob",
		"alice/plugin_cookies.txt",
		"alice/browser_profile/cookies-journal",
		"alice/cache/img.png",
		"alice/deep/nested/plugin_cookies.txt",
	)
	s := NewSweeper(base, nil)

	cookies, err := s.Find(context.Background(), Cookies)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"alice/browser_profile/cookies-journal",
		"alice/plugin_cookies.txt",
		"browser_profile/cookies",
		"plugin_cookies.txt",
	}, relAll(t, base, cookies))

	cache, err := s.Find(context.Background(), Cache)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"alice/cache/img.png",
		"browser_profile/cache/a/b/blob",
	}, relAll(t, base, cache))
}

func TestPurge(t *testing.T) {
	base := t.TempDir()
	writeFiles(t, base, "plugin_cookies.txt", "bob/browser_profile/cookies", "bob/notes.txt")
	s := NewSweeper(base, nil)

	res, err := s.Purge(context.Background(), Cookies)
	require.NoError(t, err)
	assert.Len(t, res.Removed, 2)
	assert.Empty(t, res.Failed)

	assert.NoFileExists(t, filepath.Join(base, "plugin_cookies.txt"))
	assert.FileExists(t, filepath.Join(base, "bob", "notes.txt"))
}

func TestMissingBase(t *testing.T) {
	s := NewSweeper(filepath.Join(t.TempDir(), "absent"), nil)
	files, err := s.Find(context.Background(), Cookies)
	require.NoError(t, err)
	assert.Empty(t, files)

	files, err = NewSweeper("", nil).Find(context.Background(), Cache)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCancelledScan(t *testing.T) {
	base := t.TempDir()
	writeFiles(t, base, "plugin_cookies.txt")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSweeper(base, nil).Find(ctx, Cookies)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "cookies", Cookies.String())
	assert.Equal(t, "cache", Cache.String())
}
