package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	log, err := New(path, "info")
	require.NoError(t, err)

	log.Info("CreateBooking: booking id=%d created", 7)
	log.Debug("skipped at info level")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CreateBooking: booking id=7 created")
	assert.NotContains(t, string(data), "skipped at info level")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("", "verbose")
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	log := NewNop()
	log.Warn("nothing %s", "happens")
	assert.NotNil(t, log.Zap())
	assert.NoError(t, log.Close())
}
