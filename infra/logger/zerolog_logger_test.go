package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestNewWithWriterJSON(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "simulation")
	l.Debugw("run finished", map[string]any{"run": 2, "stations": 20})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "simulation", entry["component"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "run finished", entry["message"])
	assert.EqualValues(t, 2, entry["run"])
	assert.EqualValues(t, 20, entry["stations"])
}

func TestConfigureLevel(t *testing.T) {
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		setOutput(os.Stdout)
	})

	c, err := Configure(Options{Level: "WARN"})
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "lot")
	l.Infof("hidden")
	assert.Zero(t, buf.Len())
	l.Warnf("shown")
	assert.Contains(t, buf.String(), "shown")

	_, err = Configure(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestConfigureFile(t *testing.T) {
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		setOutput(os.Stdout)
	})
	path := filepath.Join(t.TempDir(), "chargesim.log")
	c, err := Configure(Options{File: path, MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(t, err)

	New("cmd").Errorf("to file %d", 7)
	require.NoError(t, c.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file 7")
}
