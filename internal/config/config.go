package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config fields read from prefixed variables only, e.g. DB_USER or
// LOG_LEVEL; bare names such as USER or PORT are ignored.
type Config struct {
	HTTP      HTTPConfig
	GRPC      GRPCConfig
	Kafka     KafkaConfig
	DB        DBConfig
	Redis     RedisConfig
	Telemetry TelemetryConfig
	Workers   WorkersConfig
	Log       LogConfig
	Media     MediaConfig
}

type HTTPConfig struct {
	Port            string        `split_words:"true" default:"8080"`
	ShutdownTimeout time.Duration `split_words:"true" default:"5s"`
	AllowedOrigins  []string      `split_words:"true" default:"*"`
}

type GRPCConfig struct {
	Addr    string `split_words:"true" default:":50051"`
	Enabled bool   `split_words:"true" default:"true"`
}

type KafkaConfig struct {
	Enabled      bool     `split_words:"true" default:"false"`
	Brokers      []string `split_words:"true" default:"localhost:9092"`
	Topic        string   `split_words:"true" default:"guest-messages"`
	ReplyTopic   string   `split_words:"true" default:"concierge-replies"`
	HandoffTopic string   `split_words:"true" default:"concierge-handoffs"`
	GroupID      string   `split_words:"true" default:"concierge-group"`
}

type DBConfig struct {
	Enabled  bool   `split_words:"true" default:"false"`
	User     string `split_words:"true" default:"concierge"`
	Password string `split_words:"true"`
	Host     string `split_words:"true" default:"localhost"`
	Port     string `split_words:"true" default:"3306"`
	Name     string `split_words:"true" default:"concierge_db"`
}

// DSN renders the MySQL data source name.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Name,
	)
}

// RedisConfig leaves URL empty to keep telemetry in memory.
type RedisConfig struct {
	URL string `split_words:"true"`
}

type TelemetryConfig struct {
	Enabled   bool   `split_words:"true" default:"true"`
	MaxEvents int    `split_words:"true" default:"1000"`
	KeyPrefix string `split_words:"true" default:"concierge:telemetry"`
}

type WorkersConfig struct {
	Count     int `split_words:"true" default:"8"`
	QueueSize int `split_words:"true" default:"100"`
}

type LogConfig struct {
	Level      string `split_words:"true" default:"info"`
	Format     string `split_words:"true" default:"json"`
	Output     string `split_words:"true" default:"stdout"`
	FilePath   string `split_words:"true" default:"logs/concierge.log"`
	TimeFormat string `split_words:"true" default:"rfc3339"`
}

// MediaConfig seeds the stand-in audio and vision emotion sources.
type MediaConfig struct {
	Seed int64 `split_words:"true" default:"0"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Workers.Count <= 0 {
		return fmt.Errorf("invalid WORKERS_COUNT %d: must be positive", c.Workers.Count)
	}
	if c.Workers.QueueSize <= 0 {
		return fmt.Errorf("invalid WORKERS_QUEUE_SIZE %d: must be positive", c.Workers.QueueSize)
	}
	if c.Telemetry.MaxEvents <= 0 {
		return fmt.Errorf("invalid TELEMETRY_MAX_EVENTS %d: must be positive", c.Telemetry.MaxEvents)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	return nil
}
