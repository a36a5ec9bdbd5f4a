package trigger

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileSource requests an export when a file is written or replaced.
// Bursts of events within the debounce window cause one request.
type FileSource struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
}

// NewFileSource watches the directory containing path
func NewFileSource(path string, debounce time.Duration, logger *zap.Logger) (*FileSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &FileSource{
		path:     abs,
		debounce: debounce,
		watcher:  watcher,
		logger:   logger,
	}, nil
}

func (s *FileSource) Name() string {
	return SourceFile
}

// Start forwards debounced changes until ctx is done, then closes the watcher
func (s *FileSource) Start(ctx context.Context, out chan<- Request) error {
	defer s.watcher.Close()

	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-s.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			s.logger.Debug("Watched file changed",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()),
			)
			timer.Reset(s.debounce)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("File watcher error", zap.Error(err))

		case <-timer.C:
			if !send(ctx, out, Request{Source: SourceFile, Ref: s.path}) {
				return nil
			}
		}
	}
}
