package service

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"egov-event-export/internal/common/database"
	"egov-event-export/internal/config"
	"egov-event-export/internal/repository"

	"go.uber.org/zap"
)

// Inspector prints the columns of the field tables and a few sample events
type Inspector struct {
	config *config.Config
	logger *zap.Logger
}

// NewInspector creates a new inspector
func NewInspector(cfg *config.Config, logger *zap.Logger) *Inspector {
	return &Inspector{
		config: cfg,
		logger: logger,
	}
}

// Inspect writes the report to out. A table that cannot be probed is reported
// and skipped; a failing sample query fails the inspection.
func (i *Inspector) Inspect(ctx context.Context, out io.Writer) error {
	builder, err := repository.NewEventQueryBuilder(i.config.Database.Driver, i.config.Export.Schema)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, &i.config.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	inspector := repository.NewSchemaInspector(db, builder, i.logger)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	for _, table := range i.config.Inspect.Tables {
		fmt.Fprintf(w, "== %s\n", builder.Table(table))
		columns, err := inspector.DescribeTable(ctx, table)
		if err != nil {
			i.logger.Warn("Failed to describe table", zap.String("table", table), zap.Error(err))
			fmt.Fprintf(w, "  error: %v\n\n", err)
			continue
		}
		for _, c := range columns {
			fmt.Fprintf(w, "  %s\t%s\n", c.Name, c.DatabaseType)
		}
		fmt.Fprintln(w)
	}

	samples, err := inspector.SampleEvents(ctx, i.config.Export.EntityType, i.config.Inspect.SampleLimit)
	if err != nil {
		w.Flush()
		return err
	}

	fmt.Fprintf(w, "== sample %s (%d)\n", i.config.Export.EntityType, len(samples))
	fmt.Fprintln(w, "  nid\tuuid\ttitle\tstart\tend")
	for _, s := range samples {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", s.ID, s.UUID, s.Title, s.StartDate, s.EndDate)
	}

	return w.Flush()
}
