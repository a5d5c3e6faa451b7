// Package logging builds the zerolog loggers handed to every component.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const permission = 0o664

// Build collects the options of a logger.
type Build struct {
	writer  io.Writer
	path    string
	level   zerolog.Level
	console bool
}

// Log is a built logger and the file it writes to, if any.
type Log struct {
	Logger zerolog.Logger
	file   *os.File
}

// New starts a build that writes info-level JSON lines to stderr.
func New() *Build {
	return &Build{writer: os.Stderr, level: zerolog.InfoLevel}
}

// ToWriter sends log lines to w.
func (b *Build) ToWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

// ToPath appends log lines to the file at path.
func (b *Build) ToPath(path string) *Build {
	b.path = path
	return b
}

// Console renders human-readable lines instead of JSON.
func (b *Build) Console() *Build {
	b.console = true
	return b
}

// WithLevel sets the minimum level by name. Unknown names keep the
// current level.
func (b *Build) WithLevel(name string) *Build {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name))); err == nil && lvl != zerolog.NoLevel {
		b.level = lvl
	}
	return b
}

// Make opens the destination and builds the logger.
func (b *Build) Make() (*Log, error) {
	l := &Log{}
	w := b.writer
	if b.path != "" {
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		l.file = f
		w = zerolog.SyncWriter(f)
	}
	if b.console {
		w = zerolog.ConsoleWriter{Out: w, NoColor: b.path != ""}
	}
	l.Logger = zerolog.New(w).Level(b.level).With().Timestamp().Logger()
	return l, nil
}

// Close closes the log file, if one was opened.
func (l *Log) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
