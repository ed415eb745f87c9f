package logging

import (
	"fmt"
	"io"
	"os"
)

// Options describes where a service logger writes.
type Options struct {
	Service   string
	Level     string
	Dir       string
	MaxSizeMB int
	MaxFiles  int
	// Console receives a copy of every entry. Defaults to os.Stderr.
	Console io.Writer
}

// Open builds a Logger from opts. The returned closer releases the log file
// when Dir is set and is a no-op otherwise.
func Open(opts Options) (*Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	writers := []io.Writer{console}
	var closer io.Closer = nopCloser{}
	if opts.Dir != "" {
		fw, err := NewFileWriter(opts.Dir, opts.Service+".log", opts.MaxSizeMB, opts.MaxFiles)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, fw)
		closer = fw
	}
	return New(opts.Service, level, writers...), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
