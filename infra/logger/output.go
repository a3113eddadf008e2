package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the level and destination of log output.
type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	outMu  sync.RWMutex
	output io.Writer = os.Stdout
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Configure sets the global level and routes output to stdout and, when
// File is set, to a size-rotated file. The returned closer releases the
// file.
func Configure(o Options) (io.Closer, error) {
	lvl := zerolog.InfoLevel
	if o.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(o.Level))
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", o.Level, err)
		}
		lvl = parsed
	}
	zerolog.SetGlobalLevel(lvl)

	if o.File == "" {
		setOutput(os.Stdout)
		return nopCloser{}, nil
	}
	file := &lumberjack.Logger{
		Filename:   o.File,
		MaxSize:    o.MaxSizeMB,
		MaxBackups: o.MaxBackups,
		MaxAge:     o.MaxAgeDays,
	}
	setOutput(io.MultiWriter(os.Stdout, file))
	return file, nil
}

func setOutput(w io.Writer) {
	outMu.Lock()
	output = w
	outMu.Unlock()
}

func currentOutput() io.Writer {
	outMu.RLock()
	defer outMu.RUnlock()
	return output
}
