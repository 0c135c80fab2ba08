package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"kilometers.ai/loader/internal/core/ports"
)

// Options configures the root logger
type Options struct {
	Name   string
	Level  string
	JSON   bool
	Output io.Writer
}

// Logger adapts hclog to the ports.Logger interface
type Logger struct {
	hc hclog.Logger
}

// New creates the root logger of the process
func New(opts Options) *Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	name := opts.Name
	if name == "" {
		name = "km-loader"
	}

	level := hclog.LevelFromString(strings.TrimSpace(opts.Level))
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	return &Logger{hc: hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		Output:     output,
		JSONFormat: opts.JSON,
	})}
}

// Wrap adapts an existing hclog logger
func Wrap(hc hclog.Logger) *Logger {
	return &Logger{hc: hc}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return &Logger{hc: hclog.NewNullLogger()}
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.hc.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...interface{})  { l.hc.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.hc.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...interface{}) { l.hc.Error(msg, args...) }

// Named returns a child logger, e.g. one per extension
func (l *Logger) Named(name string) ports.Logger {
	return &Logger{hc: l.hc.Named(name)}
}

// HCLog exposes the underlying hclog logger
func (l *Logger) HCLog() hclog.Logger {
	return l.hc
}

var _ ports.Logger = (*Logger)(nil)
