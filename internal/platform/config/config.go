package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "syndicate"

// ConfigFileEnv names the variable holding an optional YAML config path.
const ConfigFileEnv = "SYNDICATE_CONFIG_FILE"

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is centralized process configuration. Values come from defaults,
// then the YAML file, then the environment.
type Config struct {
	ServiceName   string `yaml:"serviceName"   split_words:"true"`
	HTTPPort      string `yaml:"httpPort"      envconfig:"HTTP_PORT"`
	StorageDriver string `yaml:"storageDriver" split_words:"true"`
	PostgresDSN   string `yaml:"postgresDsn"   envconfig:"POSTGRES_DSN"`
	SQLitePath    string `yaml:"sqlitePath"    envconfig:"SQLITE_PATH"`
	AutoMigrate   bool   `yaml:"autoMigrate"   split_words:"true"`

	NATSURL         string        `yaml:"natsUrl"         envconfig:"NATS_URL"`
	TopicPrefix     string        `yaml:"topicPrefix"     split_words:"true"`
	PollInterval    time.Duration `yaml:"pollInterval"    split_words:"true"`
	OutboxBatchSize int           `yaml:"outboxBatchSize" split_words:"true"`

	VotingDelay  time.Duration `yaml:"votingDelay"  split_words:"true"`
	VotingPeriod time.Duration `yaml:"votingPeriod" split_words:"true"`
	Quorum       uint64        `yaml:"quorum"`
	TallyMode    string        `yaml:"tallyMode"    split_words:"true"`
	RoyaltyMode  string        `yaml:"royaltyMode"  split_words:"true"`
	Admins       []string      `yaml:"admins"`

	MetricsEnabled bool `yaml:"metricsEnabled" split_words:"true"`
	Debug          bool `yaml:"debug"`
}

func Defaults() Config {
	return Config{
		ServiceName:     "syndicate",
		HTTPPort:        "8080",
		StorageDriver:   DriverMemory,
		SQLitePath:      ".syndicate",
		AutoMigrate:     true,
		TopicPrefix:     "syndicate.",
		PollInterval:    2 * time.Second,
		OutboxBatchSize: 100,
		VotingDelay:     time.Minute,
		VotingPeriod:    72 * time.Hour,
		Quorum:          1,
		TallyMode:       "aggregate",
		RoyaltyMode:     "checkpoint",
		MetricsEnabled:  true,
	}
}

// Load reads the YAML file named by SYNDICATE_CONFIG_FILE, if any, and then
// applies SYNDICATE_* environment variables on top.
func Load() (Config, error) {
	return LoadFile(os.Getenv(ConfigFileEnv))
}

func LoadFile(configFile string) (Config, error) {
	cfg := Defaults()
	if configFile = strings.TrimSpace(configFile); configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	c.TallyMode = strings.ToLower(strings.TrimSpace(c.TallyMode))
	c.RoyaltyMode = strings.ToLower(strings.TrimSpace(c.RoyaltyMode))
	admins := make([]string, 0, len(c.Admins))
	for _, admin := range c.Admins {
		if admin = strings.TrimSpace(admin); admin != "" {
			admins = append(admins, admin)
		}
	}
	c.Admins = admins
}

func (c Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, errors.New("SYNDICATE_POSTGRES_DSN is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.StorageDriver))
	}
	switch c.TallyMode {
	case "", "aggregate", "asset":
	default:
		errs = append(errs, fmt.Errorf("unknown tally mode %q", c.TallyMode))
	}
	switch c.RoyaltyMode {
	case "", "checkpoint", "pool":
	default:
		errs = append(errs, fmt.Errorf("unknown royalty mode %q", c.RoyaltyMode))
	}
	if c.VotingDelay < 0 {
		errs = append(errs, errors.New("voting delay must not be negative"))
	}
	if c.VotingPeriod <= 0 {
		errs = append(errs, errors.New("voting period must be positive"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("poll interval must be positive"))
	}
	return errors.Join(errs...)
}

// Addr returns the HTTP listen address for HTTPPort.
func (c Config) Addr() string {
	value := strings.TrimSpace(c.HTTPPort)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
