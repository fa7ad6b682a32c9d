package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/detectors/ingestion"
	"github.com/NeuralTrust/ImageGuard/pkg/detectors/nudity"
	"github.com/NeuralTrust/ImageGuard/pkg/detectors/vision"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/telemetry"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/cache"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/database"
	"github.com/spf13/viper"
)

type MetricsConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	EnableStepLatency bool `mapstructure:"enable_step_latency"`
	EnableViolations  bool `mapstructure:"enable_violations"`
}

type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Metrics   MetricsConfig    `mapstructure:"metrics"`
	Database  DatabaseConfig   `mapstructure:"database"`
	Redis     RedisConfig      `mapstructure:"redis"`
	Telemetry TelemetryConfig  `mapstructure:"telemetry"`
	Ingestion ingestion.Config `mapstructure:"ingestion"`
	Pipeline  PipelineConfig   `mapstructure:"pipeline"`
	Detectors DetectorsConfig  `mapstructure:"detectors"`
	Providers ProvidersConfig  `mapstructure:"providers"`
}

type ServerConfig struct {
	Port          int           `mapstructure:"port"`
	MetricsPort   int           `mapstructure:"metrics_port"`
	Host          string        `mapstructure:"host"`
	// SecretKey signs API tokens. Authentication is off when empty.
	SecretKey     string        `mapstructure:"secret_key"`
	UploadDir     string        `mapstructure:"upload_dir"`
	// LocalRoot confines JSON image_path values on the HTTP API. Empty rejects them.
	LocalRoot     string        `mapstructure:"local_root"`
	BodyLimitMB   int           `mapstructure:"body_limit_mb"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
}

type DatabaseConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	database.Config `mapstructure:",squash"`
}

type RedisConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	cache.Config `mapstructure:",squash"`
}

type TelemetryConfig struct {
	Workers   int                        `mapstructure:"workers"`
	QueueSize int                        `mapstructure:"queue_size"`
	Exporters []telemetry.ExporterConfig `mapstructure:"exporters"`
}

type PipelineConfig struct {
	StepTimeout      time.Duration `mapstructure:"step_timeout"`
	BatchConcurrency int           `mapstructure:"batch_concurrency"`
	// RetractNudityOnException lets a YES from the exception check drop the
	// nudity label.
	RetractNudityOnException bool          `mapstructure:"retract_nudity_on_exception"`
	CacheTTL                 time.Duration `mapstructure:"cache_ttl"`
}

type BreakerConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxFailures uint32        `mapstructure:"max_failures"`
}

type DetectorsConfig struct {
	// Provider and Model apply to every vision detector without an override.
	Provider    string                   `mapstructure:"provider"`
	Model       string                   `mapstructure:"model"`
	MaxTokens   int                      `mapstructure:"max_tokens"`
	Temperature float64                  `mapstructure:"temperature"`
	Vision      map[string]vision.Config `mapstructure:"vision"`
	Nudity      nudity.Config            `mapstructure:"nudity"`
	Breaker     BreakerConfig            `mapstructure:"breaker"`
}

var globalConfig Config
var providerConfig ProvidersConfig

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}

	if err := loadConfigFile(configPath, "providers", &providerConfig); err != nil {
		return fmt.Errorf("could not load providers config file: %w", err)
	}

	globalConfig.Providers = providerConfig
	setDefaultValues(&globalConfig)

	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	v := viper.New()
	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = 9090
	}
	if cfg.Server.UploadDir == "" {
		cfg.Server.UploadDir = "uploads"
	}
	if cfg.Server.BodyLimitMB == 0 {
		cfg.Server.BodyLimitMB = 20
	}
	if cfg.Ingestion.MaxBytes <= 0 {
		cfg.Ingestion.MaxBytes = ingestion.DefaultMaxBytes
	}
	if cfg.Server.ShutdownGrace == 0 {
		cfg.Server.ShutdownGrace = 10 * time.Second
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Telemetry.Workers == 0 {
		cfg.Telemetry.Workers = 2
	}
	if cfg.Pipeline.StepTimeout == 0 {
		cfg.Pipeline.StepTimeout = 60 * time.Second
	}
	if cfg.Pipeline.CacheTTL == 0 {
		cfg.Pipeline.CacheTTL = 24 * time.Hour
	}
	if cfg.Detectors.Provider == "" {
		cfg.Detectors.Provider = "gemini"
	}
	if cfg.Detectors.Breaker.Timeout == 0 {
		cfg.Detectors.Breaker.Timeout = 30 * time.Second
	}
	if cfg.Detectors.Breaker.MaxFailures == 0 {
		cfg.Detectors.Breaker.MaxFailures = 5
	}
}

// Default returns a configuration with only defaults applied, used when no
// config file is present.
func Default() *Config {
	cfg := &Config{}
	setDefaultValues(cfg)
	return cfg
}

func GetConfig() *Config {
	return &globalConfig
}
