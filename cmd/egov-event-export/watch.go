package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"egov-event-export/internal/metrics"
	"egov-event-export/internal/service"
	"egov-event-export/internal/trigger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const fileDebounce = 2 * time.Second

// runWatch keeps exporting until SIGINT/SIGTERM
func runWatch(cmd *cobra.Command, args []string) error {
	skipStartup, _ := cmd.Flags().GetBool("skip-startup")

	svc, err := service.NewExportService(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create export service: %w", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Error("Error closing export service", zap.Error(err))
		}
	}()

	sources, err := buildSources(svc)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		log.Warn("No trigger configured, only the startup export will run")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 2)

	var metricsServer *metrics.Server
	if addr := cfg.Metrics.ListenAddr; addr != "" {
		metricsServer = svc.Metrics().NewServer(addr)
		go func() {
			log.Info("Serving metrics", zap.String("addr", addr))
			if err := metricsServer.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	watcher := trigger.NewWatcher(svc, sources, !skipStartup, log)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := watcher.Run(ctx); err != nil {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errChan:
		log.Error("Watch error", zap.Error(err))
	}
	cancel()
	<-done

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("Error stopping metrics server", zap.Error(err))
		}
	}

	log.Info("Watch stopped")
	return nil
}

func buildSources(svc *service.ExportService) ([]trigger.Source, error) {
	var sources []trigger.Source

	if cfg.Watch.Schedule != "" {
		cron, err := trigger.NewCronSource(cfg.Watch.Schedule, cfg.Export.Location, log)
		if err != nil {
			return nil, err
		}
		sources = append(sources, cron)
	}

	if cfg.Watch.TriggerStream != "" {
		if svc.RedisClient() == nil {
			return nil, fmt.Errorf("trigger stream %s requires redis", cfg.Watch.TriggerStream)
		}
		sources = append(sources, trigger.NewStreamSource(
			svc.RedisClient(),
			log,
			cfg.Watch.TriggerStream,
			cfg.Watch.ConsumerGroup,
			cfg.Watch.ConsumerName,
			cfg.Watch.BatchSize,
			cfg.Export.EntityType,
		))
	}

	if cfg.Watch.File != "" {
		file, err := trigger.NewFileSource(cfg.Watch.File, fileDebounce, log)
		if err != nil {
			return nil, err
		}
		sources = append(sources, file)
	}

	return sources, nil
}
