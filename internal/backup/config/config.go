package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/anthanhphan/gosdk/conflux"
	"github.com/anthanhphan/gosdk/logger"
)

// Config holds Backup node configuration
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Gossip    GossipConfig    `json:"gossip" yaml:"gossip"`
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
	Partition PartitionConfig `json:"partition" yaml:"partition"`
	Logger    logger.Config   `json:"logger" yaml:"logger"`
}

type ServerConfig struct {
	ServerID     uint64   `json:"server_id" yaml:"server_id"`
	Generation   uint32   `json:"generation" yaml:"generation"`
	Hostname     string   `json:"hostname" yaml:"hostname"`
	Port         int      `json:"port" yaml:"port"`
	Capabilities []string `json:"capabilities" yaml:"capabilities"`
}

type GossipConfig struct {
	BindAddr string   `json:"bind_addr" yaml:"bind_addr"`
	Port     int      `json:"port" yaml:"port"`
	Seeds    []string `json:"seeds" yaml:"seeds"`
}

// StorageConfig configures the replica log. An empty DataDir keeps replicas in memory only.
type StorageConfig struct {
	DataDir string `json:"data_dir" yaml:"data_dir"`
	FSync   bool   `json:"fsync" yaml:"fsync"`
}

type PartitionConfig struct {
	Workers   int `json:"workers" yaml:"workers"`
	QueueSize int `json:"queue_size" yaml:"queue_size"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Hostname:     "127.0.0.1",
			Port:         9100,
			Capabilities: []string{"backup"},
		},
		Gossip: GossipConfig{
			BindAddr: "0.0.0.0",
			Port:     7947,
		},
		Partition: PartitionConfig{
			Workers:   4,
			QueueSize: 256,
		},
		Logger: logger.Config{
			LogLevel:    logger.LevelInfo,
			LogEncoding: logger.EncodingJSON,
		},
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		env := os.Getenv("ENV")
		if env == "" {
			env = "local"
		}
		configPath = filepath.Join("internal", "backup", "config", env+".yaml")
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
