package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"egov-event-export/internal/common/config"

	"gopkg.in/yaml.v3"
)

// Config export service configuration
type Config struct {
	Database config.DatabaseConfig `yaml:"database"`
	Redis    config.RedisConfig    `yaml:"redis"`
	MQTT     config.MQTTConfig     `yaml:"mqtt"`

	Export struct {
		// EntityType is the node type discriminator of calendar events
		EntityType string `yaml:"entity_type"`
		// Schema qualifies every table name when non-empty, e.g. "db"
		Schema       string        `yaml:"schema"`
		DataDir      string        `yaml:"data_dir"`
		QueryTimeout time.Duration `yaml:"query_timeout"`
		Timezone     string        `yaml:"timezone"`
		// WriteEmpty overwrites the artifacts even when the source returned no rows
		WriteEmpty bool `yaml:"write_empty"`
		// WorkbookPath enables the XLSX export when non-empty
		WorkbookPath string `yaml:"workbook_path"`
		// RedisKeyPrefix enables the Redis mirror of every artifact when Redis is configured
		RedisKeyPrefix string `yaml:"redis_key_prefix"`

		Location *time.Location `yaml:"-"`
	} `yaml:"export"`

	Notify struct {
		Stream         string        `yaml:"stream"`
		MQTTTopic      string        `yaml:"mqtt_topic"`
		WebhookURL     string        `yaml:"webhook_url"`
		WebhookTimeout time.Duration `yaml:"webhook_timeout"`
	} `yaml:"notify"`

	Metrics struct {
		PushgatewayURL string `yaml:"pushgateway_url"`
		Job            string `yaml:"job"`
		// ListenAddr serves /metrics in watch mode when non-empty
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`

	Watch struct {
		// Schedule is a 5-field cron expression
		Schedule      string `yaml:"schedule"`
		TriggerStream string `yaml:"trigger_stream"`
		ConsumerGroup string `yaml:"consumer_group"`
		ConsumerName  string `yaml:"consumer_name"`
		BatchSize     int64  `yaml:"batch_size"`
		// File re-runs the export when this file changes, e.g. a SQLite snapshot
		File string `yaml:"file"`
	} `yaml:"watch"`

	Inspect struct {
		Tables      []string `yaml:"tables"`
		SampleLimit int      `yaml:"sample_limit"`
	} `yaml:"inspect"`

	Defaults Defaults `yaml:"defaults"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Defaults fixed lists and name templates used by the derivations
type Defaults struct {
	// Categories are always present in the category tally
	Categories []string `yaml:"categories"`
	// Offices replace the office directory when no office was discovered
	Offices []NamedEntry `yaml:"offices"`
	// Subsystems are merged into the subsystem directory when missing
	Subsystems []NamedEntry `yaml:"subsystems"`
	// SubsystemNames maps known abbreviations to full names
	SubsystemNames []NamedEntry `yaml:"subsystem_names"`
	Templates      Templates    `yaml:"templates"`
}

// NamedEntry id/name pair
type NamedEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Templates synthesized names; {id}, {category}, {segment} and {abbreviation} are replaced
type Templates struct {
	EventTitle           string `yaml:"event_title"`
	EventTitleNoCategory string `yaml:"event_title_no_category"`
	OfficeWithSegment    string `yaml:"office_with_segment"`
	Office               string `yaml:"office"`
	Subsystem            string `yaml:"subsystem"`
}

// DefaultDefaults returns the built-in lists
func DefaultDefaults() Defaults {
	return Defaults{
		Categories: []string{
			"Akce eGovernmentu",
			"veřejná událost",
			"legislativní událost",
			"událost ISVS",
		},
		Offices: []NamedEntry{
			{ID: "orgán-veřejné-moci/17651921", Name: "Digitální a informační agentura"},
			{ID: "orgán-veřejné-moci/66003369", Name: "Ministerstvo vnitra"},
			{ID: "orgán-veřejné-moci/00025593", Name: "Úřad vlády ČR"},
		},
		Subsystems: []NamedEntry{
			{ID: "ISDS", Name: "Informační systém datových schránek"},
			{ID: "ISSS", Name: "Informační systém statistiky a reportingu"},
			{ID: "Portál občana", Name: "Portál občana České republiky"},
			{ID: "eDoklady", Name: "Elektronické doklady"},
			{ID: "e-Legislativa", Name: "Systém elektronické legislativy"},
		},
		SubsystemNames: []NamedEntry{
			{ID: "ISDS", Name: "Informační systém datových schránek"},
			{ID: "ISSS", Name: "Informační systém statistiky a reportingu"},
			{ID: "Portál občana", Name: "Portál občana České republiky"},
			{ID: "eDoklady", Name: "Elektronické doklady"},
			{ID: "e-Legislativa", Name: "Systém elektronické legislativy"},
			{ID: "CzP", Name: "Czech POINT"},
			{ID: "eMatrika", Name: "Elektronická matrika"},
			{ID: "eSSL", Name: "Elektronický systém správy dokumentů"},
			{ID: "RÚIAN", Name: "Registr územní identifikace, adres a nemovitostí"},
			{ID: "ROB", Name: "Registr osob a bytů"},
		},
		Templates: Templates{
			EventTitle:           "Event {category} #{id}",
			EventTitleNoCategory: "Event #{id}",
			OfficeWithSegment:    "Office ({segment})",
			Office:               "Office {id}",
			Subsystem:            "Information system {abbreviation}",
		},
	}
}

// Default returns the configuration before any file or environment override
func Default() *Config {
	cfg := &Config{}

	cfg.Database.Driver = config.DriverMySQL
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 3306
	cfg.Database.User = "reader"
	cfg.Database.Database = "db"
	cfg.Database.Charset = "utf8mb4"
	cfg.Database.Timeout = 10 * time.Second

	cfg.Export.EntityType = "udalost_kalendar"
	cfg.Export.DataDir = "src/data"
	cfg.Export.QueryTimeout = 60 * time.Second
	cfg.Export.Timezone = "Europe/Prague"

	cfg.MQTT.ClientID = "egov-event-export"
	cfg.MQTT.QoS = 1

	cfg.Notify.WebhookTimeout = 30 * time.Second

	cfg.Metrics.Job = "egov_event_export"

	cfg.Watch.TriggerStream = ""
	cfg.Watch.ConsumerGroup = "egov-event-export"
	cfg.Watch.ConsumerName = "exporter-1"
	cfg.Watch.BatchSize = 10

	cfg.Inspect.Tables = []string{
		"node__field_nazev_udalosti",
		"node__field_datumudalosti",
		"node__field_egov_url",
		"node__field_kategorie_text",
		"node__field_id_ovm",
		"node__field_zkratka_isvs",
	}
	cfg.Inspect.SampleLimit = 5

	cfg.Defaults = DefaultDefaults()

	cfg.Log.Level = "info"
	cfg.Log.Format = "json"

	return cfg
}

// Load builds the configuration: built-in defaults, then the YAML file at path
// (skipped when path is empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("EXPORT_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.Database.LoadFromEnv("DB")
	cfg.Redis.LoadFromEnv("REDIS")
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Export.EntityType = getEnv("EXPORT_ENTITY_TYPE", cfg.Export.EntityType)
	cfg.Export.Schema = getEnv("EXPORT_SCHEMA", cfg.Export.Schema)
	cfg.Export.DataDir = getEnv("EXPORT_DATA_DIR", cfg.Export.DataDir)
	cfg.Export.QueryTimeout = getEnvDuration("EXPORT_QUERY_TIMEOUT", cfg.Export.QueryTimeout)
	cfg.Export.Timezone = getEnv("EXPORT_TIMEZONE", cfg.Export.Timezone)
	cfg.Export.WriteEmpty = getEnvBool("EXPORT_WRITE_EMPTY", cfg.Export.WriteEmpty)
	cfg.Export.WorkbookPath = getEnv("EXPORT_WORKBOOK_PATH", cfg.Export.WorkbookPath)
	cfg.Export.RedisKeyPrefix = getEnv("EXPORT_REDIS_KEY_PREFIX", cfg.Export.RedisKeyPrefix)

	cfg.Notify.Stream = getEnv("NOTIFY_STREAM", cfg.Notify.Stream)
	cfg.Notify.MQTTTopic = getEnv("NOTIFY_MQTT_TOPIC", cfg.Notify.MQTTTopic)
	cfg.Notify.WebhookURL = getEnv("NOTIFY_WEBHOOK_URL", cfg.Notify.WebhookURL)
	cfg.Notify.WebhookTimeout = getEnvDuration("NOTIFY_WEBHOOK_TIMEOUT", cfg.Notify.WebhookTimeout)

	cfg.Metrics.PushgatewayURL = getEnv("METRICS_PUSHGATEWAY_URL", cfg.Metrics.PushgatewayURL)
	cfg.Metrics.Job = getEnv("METRICS_JOB", cfg.Metrics.Job)
	cfg.Metrics.ListenAddr = getEnv("METRICS_LISTEN_ADDR", cfg.Metrics.ListenAddr)

	cfg.Watch.Schedule = getEnv("WATCH_SCHEDULE", cfg.Watch.Schedule)
	cfg.Watch.TriggerStream = getEnv("WATCH_TRIGGER_STREAM", cfg.Watch.TriggerStream)
	cfg.Watch.ConsumerGroup = getEnv("WATCH_CONSUMER_GROUP", cfg.Watch.ConsumerGroup)
	cfg.Watch.ConsumerName = getEnv("WATCH_CONSUMER_NAME", cfg.Watch.ConsumerName)
	cfg.Watch.File = getEnv("WATCH_FILE", cfg.Watch.File)

	if tables := os.Getenv("INSPECT_TABLES"); tables != "" {
		cfg.Inspect.Tables = splitList(tables)
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Export.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Export.Timezone, err)
	}
	cfg.Export.Location = loc

	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Export.EntityType) == "" {
		return fmt.Errorf("export entity type must not be empty")
	}
	if strings.TrimSpace(c.Export.DataDir) == "" {
		return fmt.Errorf("export data dir must not be empty")
	}
	if c.Export.QueryTimeout <= 0 {
		return fmt.Errorf("export query timeout must be positive, got %s", c.Export.QueryTimeout)
	}
	t := c.Defaults.Templates
	if !strings.Contains(t.EventTitle, "{id}") || !strings.Contains(t.EventTitleNoCategory, "{id}") {
		return fmt.Errorf("event title templates must contain {id}")
	}
	return nil
}

// SubsystemNameMap returns the abbreviation → full name lookup
func (d Defaults) SubsystemNameMap() map[string]string {
	m := make(map[string]string, len(d.SubsystemNames))
	for _, e := range d.SubsystemNames {
		m[e.ID] = e.Name
	}
	return m
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
