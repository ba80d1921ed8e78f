package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"", log.InfoLevel},
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warning", log.WarnLevel},
		{" error ", log.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestNewSessionID(t *testing.T) {
	id := NewSessionID()
	_, err := ulid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, NewSessionID())
}

func TestNew_TagsSessionAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, log.WarnLevel)

	logger.Info("hidden")
	logger.Warn("status poll failed", "err", "boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "status poll failed")
	assert.Contains(t, out, "session=")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ltvdash.log")

	logger, closer, err := OpenFile(path, "info")
	require.NoError(t, err)
	logger.Info("dashboard started")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dashboard started")
}
