package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(Config{Level: "warn"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	verbose, err := newLogger(Config{Level: "warn", Verbose: true}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, verbose.GetLevel())

	def, err := newLogger(Config{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, def.GetLevel())

	_, err = newLogger(Config{Level: "loud"}, &buf)
	assert.Error(t, err)
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(Config{JSONFormat: true}, &buf)
	require.NoError(t, err)

	logger.WithField("files", 3).Info("matrix built")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "matrix built", entry["msg"])
	assert.Equal(t, 3.0, entry["files"])
}

func TestNewLogger_File(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "defacto.log")

	logger, err := newLogger(Config{OutputFile: path}, &buf)
	require.NoError(t, err)
	assert.Equal(t, path, logger.FilePath())

	logger.Info("to both")
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}

func TestRotate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "defacto.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0644))
	require.NoError(t, os.WriteFile(path+".1", []byte("old"), 0644))

	logger, err := newLogger(Config{OutputFile: path, MaxSize: 32, MaxBackups: 3}, &bytes.Buffer{})
	require.NoError(t, err)
	defer logger.Close()

	for i, want := range []string{strings.Repeat("x", 64), "old"} {
		data, err := os.ReadFile(fmt.Sprintf("%s.%d", path, i+1))
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}
