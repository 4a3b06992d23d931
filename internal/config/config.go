package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rpggio/cannonplot/internal/trajectory"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Chart     ChartConfig     `yaml:"chart"`
	Seed      SeedConfig      `yaml:"seed"`
	Remote    RemoteConfig    `yaml:"remote"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig selects how MCP is served. In http mode MCP is mounted at
// /mcp next to the REST API; in stdio mode only MCP runs.
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type DBConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// AuthConfig guards mutating routes. An empty token disables the check.
type AuthConfig struct {
	Token string `yaml:"token"`
}

type ChartConfig struct {
	Axis trajectory.AxisConfig `yaml:"axis"`
}

type SeedConfig struct {
	Samples bool `yaml:"samples"`
}

// RemoteConfig points at an optional cannon catalog. Sync is disabled when
// BaseURL is empty.
type RemoteConfig struct {
	BaseURL  string        `yaml:"base_url"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	Timeout  time.Duration `yaml:"timeout"`
	// SyncInterval and SyncBurst rate-limit POST /api/v1/sync per client.
	SyncInterval time.Duration `yaml:"sync_interval"`
	SyncBurst    int           `yaml:"sync_burst"`
}

const (
	ModeHTTP  = "http"
	ModeStdio = "stdio"

	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: ModeHTTP,
		},
		DB: DBConfig{
			Driver: DriverSQLite,
			Path:   "cannonplot.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Chart: ChartConfig{
			Axis: trajectory.DefaultAxisConfig(),
		},
		Seed: SeedConfig{
			Samples: true,
		},
		Remote: RemoteConfig{
			CacheTTL: 5 * time.Minute,
			Timeout:  10 * time.Second,

			SyncInterval: 10 * time.Second,
			SyncBurst:    3,
		},
	}
}

// Load reads configuration from an optional YAML file and environment
// variables. A .env file (or CANNONPLOT_ENV_FILE) fills variables that are
// not already set.
func Load() (Config, error) {
	cfg := Default()

	envFile := os.Getenv("CANNONPLOT_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading env file: %w", err)
	}

	if path := os.Getenv("CANNONPLOT_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("CANNONPLOT_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("CANNONPLOT_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CANNONPLOT_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("CANNONPLOT_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if driver := os.Getenv("CANNONPLOT_DB_DRIVER"); driver != "" {
		cfg.DB.Driver = driver
	}
	if dbPath := os.Getenv("CANNONPLOT_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("CANNONPLOT_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("CANNONPLOT_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if token := os.Getenv("CANNONPLOT_AUTH_TOKEN"); token != "" {
		cfg.Auth.Token = token
	}
	if baseURL := os.Getenv("CANNONPLOT_REMOTE_BASE_URL"); baseURL != "" {
		cfg.Remote.BaseURL = baseURL
	}
	if seed := os.Getenv("CANNONPLOT_SEED_SAMPLES"); seed != "" {
		enabled, err := strconv.ParseBool(seed)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CANNONPLOT_SEED_SAMPLES: %w", err)
		}
		cfg.Seed.Samples = enabled
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be served.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case ModeHTTP, ModeStdio:
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	switch c.DB.Driver {
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("invalid db driver %q", c.DB.Driver)
	}
	if c.Transport.Mode == ModeHTTP && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	axis := c.Chart.Axis
	for name, v := range map[string]int{
		"range_floor":      axis.RangeFloor,
		"range_step_floor": axis.RangeStepFloor,
		"count_floor":      axis.CountFloor,
		"count_step_floor": axis.CountStepFloor,
	} {
		if v <= 0 {
			return fmt.Errorf("chart axis %s must be positive, got %d", name, v)
		}
	}
	if axis.RangeHeadroom < 0 || axis.CountHeadroom < 0 {
		return fmt.Errorf("chart axis headroom must not be negative")
	}
	if c.Remote.CacheTTL < 0 || c.Remote.Timeout < 0 || c.Remote.SyncInterval < 0 {
		return fmt.Errorf("remote durations must not be negative")
	}
	if c.Remote.SyncBurst < 0 {
		return fmt.Errorf("remote sync_burst must not be negative, got %d", c.Remote.SyncBurst)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
