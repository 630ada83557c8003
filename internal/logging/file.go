package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	writerMu  sync.Mutex
	logWriter *lumberjack.Logger
)

// ConfigureFileOutput switches logging to a size-rotated file at path, or
// back to stderr when path is empty. Rotation keeps files at 10 MB.
func ConfigureFileOutput(path string) error {
	writerMu.Lock()
	defer writerMu.Unlock()

	if path == "" {
		if logWriter != nil {
			_ = logWriter.Close()
			logWriter = nil
		}
		SetOutput(os.Stderr)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("logging: failed to create log directory: %w", err)
	}
	if logWriter != nil {
		_ = logWriter.Close()
	}
	logWriter = &lumberjack.Logger{
		Filename: path,
		MaxSize:  10,
	}
	SetOutput(logWriter)
	return nil
}

// CloseFileOutput releases the rotated file handle, if any.
func CloseFileOutput() {
	writerMu.Lock()
	defer writerMu.Unlock()

	if logWriter != nil {
		_ = logWriter.Close()
		logWriter = nil
	}
}
