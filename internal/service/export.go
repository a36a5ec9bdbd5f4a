package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"egov-event-export/internal/aggregator"
	"egov-event-export/internal/common/database"
	"egov-event-export/internal/common/mqtt"
	rediscommon "egov-event-export/internal/common/redis"
	"egov-event-export/internal/config"
	"egov-event-export/internal/metrics"
	"egov-event-export/internal/models"
	"egov-event-export/internal/normalizer"
	"egov-event-export/internal/notify"
	"egov-event-export/internal/repository"
	"egov-event-export/internal/sink"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Trigger names of runs started outside watch mode
const TriggerManual = "manual"

// ExportService runs the extraction pipeline: load, derive, write, announce
type ExportService struct {
	config      *config.Config
	logger      *zap.Logger
	builder     *repository.QueryBuilder
	normalizer  *normalizer.Normalizer
	files       *sink.FileWriter
	mirror      *sink.RedisMirror
	workbook    *sink.WorkbookWriter
	dispatcher  *notify.Dispatcher
	metrics     *metrics.Recorder
	redisClient *redis.Client
	mqttClient  *mqtt.Client
}

// NewExportService creates the service and connects the optional Redis and MQTT
// clients. The database is opened per run.
func NewExportService(cfg *config.Config, logger *zap.Logger) (*ExportService, error) {
	builder, err := repository.NewEventQueryBuilder(cfg.Database.Driver, cfg.Export.Schema)
	if err != nil {
		return nil, err
	}

	s := &ExportService{
		config:  cfg,
		logger:  logger,
		builder: builder,
		normalizer: normalizer.New(normalizer.Options{
			Location:  cfg.Export.Location,
			Templates: cfg.Defaults.Templates,
		}),
		files:      sink.NewFileWriter(cfg.Export.DataDir, logger),
		dispatcher: notify.NewDispatcher(logger),
		metrics:    metrics.NewRecorder(),
	}

	if cfg.Redis.Enabled() {
		s.redisClient = rediscommon.NewRedisClient(&cfg.Redis)
		if err := rediscommon.Ping(context.Background(), s.redisClient); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		if cfg.Export.RedisKeyPrefix != "" {
			s.mirror = sink.NewRedisMirror(cfg.Export.RedisKeyPrefix, sink.NewRedisKVStore(s.redisClient), logger)
		}
		if cfg.Notify.Stream != "" {
			s.dispatcher.Add(notify.NewStreamNotifier(s.redisClient, cfg.Notify.Stream))
		}
	}

	if cfg.MQTT.Enabled() && cfg.Notify.MQTTTopic != "" {
		s.mqttClient, err = mqtt.NewClient(&cfg.MQTT)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to connect to mqtt: %w", err)
		}
		s.dispatcher.Add(notify.NewMQTTNotifier(s.mqttClient, cfg.Notify.MQTTTopic))
	}

	if cfg.Notify.WebhookURL != "" {
		s.dispatcher.Add(notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.WebhookTimeout, logger))
	}

	if cfg.Export.WorkbookPath != "" {
		s.workbook = sink.NewWorkbookWriter(cfg.Export.WorkbookPath, logger)
	}

	return s, nil
}

// Metrics returns the run metrics recorder
func (s *ExportService) Metrics() *metrics.Recorder {
	return s.metrics
}

// RedisClient returns the shared Redis client, nil when Redis is not configured
func (s *ExportService) RedisClient() *redis.Client {
	return s.redisClient
}

// Run performs one full export. The summary is returned on every path; the
// error is non-nil when the corpus could not be loaded or an artifact file
// could not be written.
func (s *ExportService) Run(ctx context.Context, trigger string) (*models.RunSummary, error) {
	summary := &models.RunSummary{
		RunID:     uuid.New().String(),
		Trigger:   trigger,
		StartedAt: time.Now(),
		DataDir:   s.config.Export.DataDir,
	}
	log := s.logger.With(zap.String("run_id", summary.RunID), zap.String("trigger", trigger))

	err := s.run(ctx, log, summary)
	switch {
	case err != nil:
		summary.Status = models.RunFailed
		summary.Error = err.Error()
		log.Error("Export failed", zap.Error(err))
	case summary.Status == "":
		summary.Status = models.RunSucceeded
	}
	summary.FinishedAt = time.Now()

	s.finish(ctx, log, summary)
	return summary, err
}

func (s *ExportService) run(ctx context.Context, log *zap.Logger, summary *models.RunSummary) error {
	db, err := database.Open(ctx, &s.config.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("Error closing database connection", zap.Error(err))
		}
	}()

	repo := repository.NewEventRepository(db, s.builder, s.config.Export.QueryTimeout, log)
	events, err := repo.LoadCorpus(ctx, s.config.Export.EntityType, s.normalizer)
	if err != nil {
		return err
	}
	log.Info("Loaded events", zap.Int("count", len(events)))

	if len(events) == 0 && !s.config.Export.WriteEmpty {
		summary.Status = models.RunSkipped
		log.Warn("No events loaded, keeping existing artifacts",
			zap.String("entity_type", s.config.Export.EntityType),
		)
		return nil
	}

	artifacts := s.derive(events)
	summary.Events = len(artifacts.Events)
	summary.Categories = len(artifacts.Categories)
	summary.Offices = len(artifacts.Offices)
	summary.Subsystems = len(artifacts.Subsystems)
	summary.Suggestions = len(artifacts.Suggestions)
	log.Info("Derived indexes",
		zap.Int("categories", summary.Categories),
		zap.Int("offices", summary.Offices),
		zap.Int("subsystems", summary.Subsystems),
		zap.Int("suggestions", summary.Suggestions),
	)

	if err := s.files.WriteAll(artifacts); err != nil {
		return fmt.Errorf("failed to write artifacts: %w", err)
	}

	if s.mirror != nil {
		if err := s.mirror.MirrorAll(ctx, artifacts); err != nil {
			log.Warn("Failed to mirror artifacts to redis", zap.Error(err))
		}
	}
	if s.workbook != nil {
		if err := s.workbook.Write(artifacts); err != nil {
			log.Warn("Failed to write workbook", zap.Error(err))
		}
	}

	return nil
}

func (s *ExportService) derive(events []models.Event) *sink.Artifacts {
	d := s.config.Defaults
	return &sink.Artifacts{
		Events:      events,
		Categories:  aggregator.CategoryTally(events, d.Categories),
		Offices:     aggregator.OfficeDirectory(events, d.Offices, d.Templates),
		Subsystems:  aggregator.SubsystemDirectory(events, d.Subsystems, d.SubsystemNameMap(), d.Templates),
		Suggestions: aggregator.SearchSuggestions(events, aggregator.MaxSuggestions),
	}
}

// finish records metrics and notifies; neither can fail the run
func (s *ExportService) finish(ctx context.Context, log *zap.Logger, summary *models.RunSummary) {
	s.metrics.ObserveRun(summary)

	if s.dispatcher.Len() > 0 {
		s.metrics.ObserveNotifyFailures(s.dispatcher.Dispatch(ctx, summary))
	}

	if url := s.config.Metrics.PushgatewayURL; url != "" {
		if err := s.metrics.Push(ctx, url, s.config.Metrics.Job); err != nil {
			log.Warn("Failed to push metrics", zap.Error(err))
		}
	}

	log.Info("Export finished",
		zap.String("status", summary.Status),
		zap.Int("events", summary.Events),
		zap.Duration("duration", summary.Duration()),
	)
}

// Close releases the Redis and MQTT clients
func (s *ExportService) Close() error {
	var errs []error
	if s.redisClient != nil {
		if err := rediscommon.Close(s.redisClient); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}
	return errors.Join(errs...)
}
