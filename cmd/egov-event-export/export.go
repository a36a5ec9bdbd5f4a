package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"egov-event-export/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runExport performs a single run; a failed run exits non-zero
func runExport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := service.NewExportService(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create export service: %w", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Error("Error closing export service", zap.Error(err))
		}
	}()

	summary, err := svc.Run(ctx, service.TriggerManual)
	if err != nil {
		return fmt.Errorf("export %s failed: %w", summary.RunID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d events, %d categories, %d offices, %d systems, %d suggestions -> %s\n",
		summary.Status,
		summary.Events,
		summary.Categories,
		summary.Offices,
		summary.Subsystems,
		summary.Suggestions,
		summary.DataDir,
	)
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return service.NewInspector(cfg, log).Inspect(ctx, cmd.OutOrStdout())
}
