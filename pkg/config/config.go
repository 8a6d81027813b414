// Package config loads indexer configuration from an optional YAML file with
// environment-variable overrides. It provides typed structs for the indexing
// pipeline and for every optional sink (metrics, Kafka, PostgreSQL).
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "TI_CONFIG"

// Config is the top-level application configuration.
type Config struct {
	Indexer  IndexerConfig  `yaml:"indexer"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Postgres PostgresConfig `yaml:"postgres"`
	Retry    RetryConfig    `yaml:"retry"`
}

// IndexerConfig controls document extraction, normalization parallelism and
// the names of the two output artifacts.
type IndexerConfig struct {
	StopwordsPath  string `yaml:"stopwordsPath"`
	Extractor      string `yaml:"extractor"`
	Workers        int    `yaml:"workers"`
	DictionaryFile string `yaml:"dictionaryFile"`
	PostingsFile   string `yaml:"postingsFile"`
	Verify         bool   `yaml:"verify"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server and the textfile dump
// written when a run ends.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Port     int    `yaml:"port"`
	Textfile string `yaml:"textfile"`
}

// TracingConfig controls whether per-stage spans are logged after a run.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// KafkaConfig holds broker and topic settings for the completion event.
type KafkaConfig struct {
	Enabled bool        `yaml:"enabled"`
	Brokers []string    `yaml:"brokers"`
	Topics  KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	IndexComplete string `yaml:"indexComplete"`
}

// PostgresConfig holds PostgreSQL connection parameters for the run ledger.
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RetryConfig bounds how hard reporters try before giving up.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"maxAttempts"`
	InitialDelay   time.Duration `yaml:"initialDelay"`
	MaxDelay       time.Duration `yaml:"maxDelay"`
	AttemptTimeout time.Duration `yaml:"attemptTimeout"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. Missing values keep their defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Indexer.Extractor {
	case "html", "text":
	default:
		return fmt.Errorf("unknown extractor %q (want html or text)", c.Indexer.Extractor)
	}
	if c.Indexer.Workers <= 0 {
		return fmt.Errorf("indexer.workers must be positive, got %d", c.Indexer.Workers)
	}
	if c.Indexer.DictionaryFile == "" || c.Indexer.PostingsFile == "" {
		return fmt.Errorf("indexer.dictionaryFile and indexer.postingsFile are required")
	}
	if c.Indexer.DictionaryFile == c.Indexer.PostingsFile {
		return fmt.Errorf("dictionary and postings files must differ, both are %q", c.Indexer.DictionaryFile)
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topics.IndexComplete == "") {
		return fmt.Errorf("kafka enabled without brokers or indexComplete topic")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Indexer: IndexerConfig{
			StopwordsPath:  "stopwords.txt",
			Extractor:      "html",
			Workers:        runtime.GOMAXPROCS(0),
			DictionaryFile: "DictionaryFile.txt",
			PostingsFile:   "PostingFile.txt",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Port: 9090,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topics: KafkaTopics{
				IndexComplete: "index.complete",
			},
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "termindexer",
			User:            "termindexer",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    2,
			MaxIdleConns:    1,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			InitialDelay:   200 * time.Millisecond,
			MaxDelay:       5 * time.Second,
			AttemptTimeout: 10 * time.Second,
		},
	}
}

// applyEnvOverrides reads TI_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TI_STOPWORDS_PATH"); v != "" {
		cfg.Indexer.StopwordsPath = v
	}
	if v := os.Getenv("TI_EXTRACTOR"); v != "" {
		cfg.Indexer.Extractor = v
	}
	if v := os.Getenv("TI_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.Workers = n
		}
	}
	if v := os.Getenv("TI_VERIFY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Indexer.Verify = b
		}
	}
	if v := os.Getenv("TI_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TI_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("TI_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("TI_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
	if v := os.Getenv("TI_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.Textfile = v
	}
	if v := os.Getenv("TI_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
		cfg.Kafka.Enabled = true
	}
	if v := os.Getenv("TI_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
		cfg.Postgres.Enabled = true
	}
	if v := os.Getenv("TI_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("TI_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("TI_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("TI_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("TI_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
}
