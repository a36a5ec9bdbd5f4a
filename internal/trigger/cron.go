package trigger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronSource requests an export on a 5-field cron schedule.
// Ticks that arrive while a run is in progress are dropped.
type CronSource struct {
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
}

// NewCronSource parses schedule (minute hour day-of-month month day-of-week) in loc
func NewCronSource(schedule string, loc *time.Location, logger *zap.Logger) (*CronSource, error) {
	schedule = strings.TrimSpace(schedule)
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid watch schedule %q: %w", schedule, err)
	}
	if loc == nil {
		loc = time.Local
	}

	return &CronSource{
		schedule: schedule,
		cron:     cron.New(cron.WithParser(parser), cron.WithLocation(loc)),
		logger:   logger,
	}, nil
}

func (s *CronSource) Name() string {
	return SourceCron
}

// Start runs the scheduler until ctx is done
func (s *CronSource) Start(ctx context.Context, out chan<- Request) error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.fire(out) }); err != nil {
		return fmt.Errorf("failed to schedule export: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Export scheduled",
		zap.String("schedule", s.schedule),
		zap.Time("next", s.Next()),
	)

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

// Next returns the next scheduled time, zero before Start
func (s *CronSource) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *CronSource) fire(out chan<- Request) {
	select {
	case out <- Request{Source: SourceCron, Ref: time.Now().Format(time.RFC3339)}:
	default:
		s.logger.Warn("Skipped scheduled export, previous run still in progress")
	}
}
