package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Yard     YardConfig     `yaml:"yard"`
	Storage  StorageConfig  `yaml:"storage"`
	Print    PrintConfig    `yaml:"print"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// YardConfig describes the fixed yard grid seeded at startup.
type YardConfig struct {
	Seed                bool     `yaml:"seed"`
	Blocks              []string `yaml:"blocks"`
	BaysPerBlock        int      `yaml:"bays_per_block"`
	DefaultMaxDepthRows int      `yaml:"default_max_depth_rows"`
	DefaultMaxTiers     int      `yaml:"default_max_tiers"`
}

// StorageConfig selects and configures the photo storage backend.
type StorageConfig struct {
	Provider string `yaml:"provider"` // "local" or "s3"

	LocalDir     string `yaml:"local_dir"`
	LocalBaseURL string `yaml:"local_base_url"`

	S3Endpoint      string `yaml:"s3_endpoint"`
	S3Bucket        string `yaml:"s3_bucket"`
	S3AccessKey     string `yaml:"s3_access_key"`
	S3SecretKey     string `yaml:"s3_secret_key"`
	S3UseSSL        bool   `yaml:"s3_use_ssl"`
	S3PublicBaseURL string `yaml:"s3_public_base_url"`
}

// PrintConfig holds the print-queue settings shared with the agent.
type PrintConfig struct {
	AgentKey          string        `yaml:"agent_key"`
	ClaimLeaseMinutes int           `yaml:"claim_lease_minutes"`
	ClaimLease        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if len(cfg.Yard.Blocks) == 0 {
		cfg.Yard.Blocks = []string{"A", "B", "C", "D"}
	}
	if cfg.Yard.BaysPerBlock <= 0 {
		cfg.Yard.BaysPerBlock = 15
	}
	if cfg.Yard.DefaultMaxDepthRows <= 0 {
		cfg.Yard.DefaultMaxDepthRows = 20
	}
	if cfg.Yard.DefaultMaxTiers <= 0 {
		cfg.Yard.DefaultMaxTiers = 4
	}

	if cfg.Storage.Provider == "" {
		cfg.Storage.Provider = "local"
	}
	if cfg.Storage.Provider != "local" && cfg.Storage.Provider != "s3" {
		return nil, fmt.Errorf("storage.provider must be \"local\" or \"s3\", got %q", cfg.Storage.Provider)
	}
	if cfg.Storage.Provider == "local" && cfg.Storage.LocalDir == "" {
		cfg.Storage.LocalDir = "./uploads"
	}

	if cfg.Print.ClaimLeaseMinutes <= 0 {
		log.Printf("print.claim_lease_minutes is not set or invalid; defaulting to 10")
		cfg.Print.ClaimLeaseMinutes = 10
	}
	cfg.Print.ClaimLease = time.Duration(cfg.Print.ClaimLeaseMinutes) * time.Minute

	return &cfg, nil
}
