package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("no level means no file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "x.log")
		logger, closeFn, err := New(path, "")
		require.NoError(t, err)
		logger.Info("dropped")
		require.NoError(t, closeFn())
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("writes at or above level", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "x.log")
		logger, closeFn, err := New(path, "info")
		require.NoError(t, err)
		logger.Debug("too quiet")
		logger.Warn("located files")
		require.NoError(t, closeFn())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "located files")
		assert.NotContains(t, string(data), "too quiet")
	})

	t.Run("bad level", func(t *testing.T) {
		_, _, err := New(filepath.Join(t.TempDir(), "x.log"), "loud")
		assert.ErrorContains(t, err, "invalid log level")
	})

	t.Run("unwritable path", func(t *testing.T) {
		_, _, err := New(filepath.Join(t.TempDir(), "missing", "x.log"), "debug")
		assert.Error(t, err)
	})
}
