package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig database connection settings
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Charset  string `yaml:"charset"`
	SSLMode  string `yaml:"sslmode"`
	// Path is the database file for the sqlite driver.
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"`
}

// RedisConfig Redis settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MQTTConfig MQTT settings
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      byte   `yaml:"qos"`
}

// GetDSN returns the driver specific connection string
func (c *DatabaseConfig) GetDSN() (string, error) {
	switch c.Driver {
	case DriverMySQL, "":
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
		mc.DBName = c.Database
		if c.Timeout > 0 {
			mc.Timeout = c.Timeout
		}
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		mc.Params = map[string]string{"charset": charset}
		return mc.FormatDSN(), nil
	case DriverPostgres:
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.User, c.Password),
			Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
			Path:   "/" + c.Database,
		}
		q := u.Query()
		q.Set("sslmode", sslMode)
		if c.Timeout > 0 {
			q.Set("connect_timeout", strconv.Itoa(int(c.Timeout/time.Second)))
		}
		u.RawQuery = q.Encode()
		return u.String(), nil
	case DriverSQLite:
		if c.Path == "" {
			return "", fmt.Errorf("sqlite driver requires a database path")
		}
		return c.Path, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", c.Driver)
	}
}

// LoadFromEnv overrides fields from <prefix>_* environment variables
func (c *DatabaseConfig) LoadFromEnv(prefix string) {
	if driver := os.Getenv(prefix + "_DRIVER"); driver != "" {
		c.Driver = driver
	}
	if host := os.Getenv(prefix + "_HOST"); host != "" {
		c.Host = host
	}
	if port := os.Getenv(prefix + "_PORT"); port != "" {
		if v, err := strconv.Atoi(port); err == nil && v > 0 {
			c.Port = v
		}
	}
	if user := os.Getenv(prefix + "_USER"); user != "" {
		c.User = user
	}
	if password := os.Getenv(prefix + "_PASSWORD"); password != "" {
		c.Password = password
	}
	if database := os.Getenv(prefix + "_NAME"); database != "" {
		c.Database = database
	}
	if charset := os.Getenv(prefix + "_CHARSET"); charset != "" {
		c.Charset = charset
	}
	if sslMode := os.Getenv(prefix + "_SSLMODE"); sslMode != "" {
		c.SSLMode = sslMode
	}
	if path := os.Getenv(prefix + "_PATH"); path != "" {
		c.Path = path
	}
	if timeout := os.Getenv(prefix + "_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Timeout = d
		}
	}
}

// LoadFromEnv overrides Redis fields from <prefix>_* environment variables
func (c *RedisConfig) LoadFromEnv(prefix string) {
	if addr := os.Getenv(prefix + "_ADDR"); addr != "" {
		c.Addr = addr
	}
	if password := os.Getenv(prefix + "_PASSWORD"); password != "" {
		c.Password = password
	}
	if db := os.Getenv(prefix + "_DB"); db != "" {
		if v, err := strconv.Atoi(db); err == nil {
			c.DB = v
		}
	}
}

// Enabled reports whether a Redis address is configured
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// LoadFromEnv overrides MQTT fields from <prefix>_* environment variables
func (c *MQTTConfig) LoadFromEnv(prefix string) {
	if broker := os.Getenv(prefix + "_BROKER"); broker != "" {
		c.Broker = broker
	}
	if clientID := os.Getenv(prefix + "_CLIENT_ID"); clientID != "" {
		c.ClientID = clientID
	}
	if username := os.Getenv(prefix + "_USERNAME"); username != "" {
		c.Username = username
	}
	if password := os.Getenv(prefix + "_PASSWORD"); password != "" {
		c.Password = password
	}
	if qos := os.Getenv(prefix + "_QOS"); qos != "" {
		if v, err := strconv.Atoi(qos); err == nil && v >= 0 && v <= 2 {
			c.QoS = byte(v)
		}
	}
}

// Enabled reports whether an MQTT broker is configured
func (c *MQTTConfig) Enabled() bool {
	return c.Broker != ""
}
