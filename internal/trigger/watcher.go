// Package trigger re-runs the export on schedules and change notifications.
package trigger

import (
	"context"
	"sync"

	"egov-event-export/internal/models"

	"go.uber.org/zap"
)

// Trigger sources
const (
	SourceStartup = "startup"
	SourceCron    = "cron"
	SourceStream  = "stream"
	SourceFile    = "file"
)

// Request asks for one full export
type Request struct {
	Source string
	// Ref identifies what caused the request, e.g. a stream message id
	Ref string
	// Done is called once the run finished, with its error
	Done func(err error)
}

// Runner performs one full export
type Runner interface {
	Run(ctx context.Context, trigger string) (*models.RunSummary, error)
}

// Source emits requests until ctx is done
type Source interface {
	Name() string
	Start(ctx context.Context, out chan<- Request) error
}

// Watcher executes requests from every source one at a time
type Watcher struct {
	runner     Runner
	sources    []Source
	runOnStart bool
	logger     *zap.Logger
}

// NewWatcher creates a new watcher; runOnStart performs one export before waiting
func NewWatcher(runner Runner, sources []Source, runOnStart bool, logger *zap.Logger) *Watcher {
	return &Watcher{
		runner:     runner,
		sources:    sources,
		runOnStart: runOnStart,
		logger:     logger,
	}
}

// Run blocks until ctx is done. Runs never overlap; a run in progress is
// finished before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	requests := make(chan Request)

	var wg sync.WaitGroup
	for _, s := range w.sources {
		wg.Add(1)
		go func(s Source) {
			defer wg.Done()
			w.logger.Info("Trigger source started", zap.String("source", s.Name()))
			if err := s.Start(ctx, requests); err != nil && ctx.Err() == nil {
				w.logger.Error("Trigger source stopped",
					zap.String("source", s.Name()),
					zap.Error(err),
				)
			}
		}(s)
	}

	if w.runOnStart {
		w.execute(ctx, Request{Source: SourceStartup})
	}

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil
		case req := <-requests:
			w.execute(ctx, req)
		}
	}
}

func (w *Watcher) execute(ctx context.Context, req Request) {
	w.logger.Info("Export triggered",
		zap.String("source", req.Source),
		zap.String("ref", req.Ref),
	)

	summary, err := w.runner.Run(ctx, req.Source)
	if err != nil {
		w.logger.Error("Triggered export failed",
			zap.String("source", req.Source),
			zap.Error(err),
		)
	} else if summary != nil {
		w.logger.Info("Triggered export finished",
			zap.String("source", req.Source),
			zap.String("run_id", summary.RunID),
			zap.String("status", summary.Status),
		)
	}

	if req.Done != nil {
		req.Done(err)
	}
}

// send delivers req unless ctx ends first
func send(ctx context.Context, out chan<- Request, req Request) bool {
	select {
	case out <- req:
		return true
	case <-ctx.Done():
		return false
	}
}
