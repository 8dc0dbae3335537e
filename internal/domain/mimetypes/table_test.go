package mimetypes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	table := Default()

	tests := []struct {
		mime    string
		backend string
		found   bool
	}{
		{"text/html", "media_plugin_cef", true},
		{"TEXT/HTML; charset=utf-8", "media_plugin_cef", true},
		{"image/png", "media_plugin_cef", true},
		{"video/mp4", "media_plugin_libvlc", true},
		{"audio/mpeg", "media_plugin_libvlc", true},
		{"rtsp", "media_plugin_libvlc", true},
		{"application/json", "media_plugin_cef", true},
		{"application/x-unknown-thing", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			backend, ok := table.Backend(tt.mime)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.backend, backend)
		})
	}
}

func TestDefaultType(t *testing.T) {
	assert.Equal(t, "text/html", Default().DefaultType())
	assert.Equal(t, "Streaming media", Default().Label("media_plugin_libvlc"))
}

func TestParseRejectsUnnamedBackend(t *testing.T) {
	_, err := Parse([]byte("backends:\n  - label: x\n    types: [text/html]\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mime.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_type: text/plain\nbackends:\n  - name: b\n    types: [text/plain]\n"), 0o600))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", table.DefaultType())
	backend, ok := table.Backend("text/plain")
	assert.True(t, ok)
	assert.Equal(t, "b", backend)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "video/mp4", Normalize(" Video/MP4 ; codecs=avc1"))
}
