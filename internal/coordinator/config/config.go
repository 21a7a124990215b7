package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/domain"
	"github.com/anthanhphan/gosdk/conflux"
	"github.com/anthanhphan/gosdk/logger"
)

// Config holds Coordinator configuration
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Gossip   GossipConfig   `json:"gossip" yaml:"gossip"`
	Redis    RedisConfig    `json:"redis" yaml:"redis"`
	Recovery RecoveryConfig `json:"recovery" yaml:"recovery"`
	Backup   BackupConfig   `json:"backup" yaml:"backup"`
	Logger   logger.Config  `json:"logger" yaml:"logger"`
}

type ServerConfig struct {
	Addr          string `json:"addr" yaml:"addr"`
	// CoordinatorID seeds recovery ids; must be unique per coordinator.
	CoordinatorID int64  `json:"coordinator_id" yaml:"coordinator_id"`
}

type GossipConfig struct {
	BindAddr string   `json:"bind_addr" yaml:"bind_addr"`
	Port     int      `json:"port" yaml:"port"`
	Seeds    []string `json:"seeds" yaml:"seeds"`
}

// RedisConfig configures the tablet catalog. An empty Addr keeps the catalog in memory.
type RedisConfig struct {
	Addr      string `json:"addr" yaml:"addr"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
}

type RecoveryConfig struct {
	LocateTimeoutMS        int    `json:"locate_timeout_ms" yaml:"locate_timeout_ms"`
	RPCTimeoutMS           int    `json:"rpc_timeout_ms" yaml:"rpc_timeout_ms"`
	RetrievalTimeoutMS     int    `json:"retrieval_timeout_ms" yaml:"retrieval_timeout_ms"`
	RetryInitialIntervalMS int    `json:"retry_initial_interval_ms" yaml:"retry_initial_interval_ms"`
	RetryMaxIntervalMS     int    `json:"retry_max_interval_ms" yaml:"retry_max_interval_ms"`
	// MaxConcurrency of 0 runs one retrieval worker per backup.
	MaxConcurrency         int    `json:"max_concurrency" yaml:"max_concurrency"`
	// ShuffleSeed of 0 seeds replica ordering from the clock.
	ShuffleSeed            int64  `json:"shuffle_seed" yaml:"shuffle_seed"`
	// MissingSegmentPolicy is "advisory" or "fatal".
	MissingSegmentPolicy   string `json:"missing_segment_policy" yaml:"missing_segment_policy"`
	AutoRecover            bool   `json:"auto_recover" yaml:"auto_recover"`
}

type BackupConfig struct {
	BreakerFailureThreshold int `json:"breaker_failure_threshold" yaml:"breaker_failure_threshold"`
	BreakerOpenTimeoutMS    int `json:"breaker_open_timeout_ms" yaml:"breaker_open_timeout_ms"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          ":8090",
			CoordinatorID: 1,
		},
		Gossip: GossipConfig{
			BindAddr: "0.0.0.0",
			Port:     7946,
		},
		Redis: RedisConfig{
			KeyPrefix: "ramstore:tablets:",
		},
		Recovery: RecoveryConfig{
			LocateTimeoutMS:        2000,
			RPCTimeoutMS:           5000,
			RetrievalTimeoutMS:     30000,
			RetryInitialIntervalMS: 50,
			RetryMaxIntervalMS:     1000,
			MissingSegmentPolicy:   string(domain.MissingSegmentAdvisory),
			AutoRecover:            true,
		},
		Backup: BackupConfig{
			BreakerFailureThreshold: 5,
			BreakerOpenTimeoutMS:    5000,
		},
		Logger: logger.Config{
			LogLevel:    logger.LevelInfo,
			LogEncoding: logger.EncodingJSON,
		},
	}
}

func (r RecoveryConfig) LocateTimeout() time.Duration {
	return time.Duration(r.LocateTimeoutMS) * time.Millisecond
}

func (r RecoveryConfig) RPCTimeout() time.Duration {
	return time.Duration(r.RPCTimeoutMS) * time.Millisecond
}

func (r RecoveryConfig) RetrievalTimeout() time.Duration {
	return time.Duration(r.RetrievalTimeoutMS) * time.Millisecond
}

// Policy returns the configured missing segment policy, defaulting to advisory.
func (r RecoveryConfig) Policy() domain.MissingSegmentPolicy {
	if domain.MissingSegmentPolicy(r.MissingSegmentPolicy) == domain.MissingSegmentFatal {
		return domain.MissingSegmentFatal
	}
	return domain.MissingSegmentAdvisory
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		env := os.Getenv("ENV")
		if env == "" {
			env = "local"
		}
		configPath = filepath.Join("internal", "coordinator", "config", env+".yaml")
	}

	cfg := DefaultConfig()

	parsedCfg, err := conflux.ParseConfig(configPath, cfg)
	if err != nil {
		log.Printf("Config file not found or failed to parse, using defaults if file not specified. Path: %s, Error: %v", configPath, err)
		if path != "" {
			return nil, err
		}
		return cfg, nil
	}

	return parsedCfg, nil
}

// MustLoad loads configuration or exits on error
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
