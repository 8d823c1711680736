package config

import (
	"context"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime settings for the seowatch CLI.
//
// Durations are time.Duration values. An empty RemoteDSN means the remote
// store is never contacted.
type Config struct {
	DatabasePath       string        `env:"SEOWATCH_DATABASE_PATH"`
	RemoteDSN          string        `env:"SEOWATCH_REMOTE_DSN"`
	RemoteProbeTimeout time.Duration `env:"SEOWATCH_REMOTE_PROBE_TIMEOUT"`

	AuditEndpoint   string        `env:"SEOWATCH_AUDIT_ENDPOINT"`
	ContentEndpoint string        `env:"SEOWATCH_CONTENT_ENDPOINT"`
	HTTPTimeout     time.Duration `env:"SEOWATCH_HTTP_TIMEOUT"`

	ScanCheckInterval time.Duration `env:"SEOWATCH_SCAN_CHECK_INTERVAL"`

	// Bus is memory, redis or file.
	Bus       string `env:"SEOWATCH_BUS"`
	RedisAddr string `env:"SEOWATCH_REDIS_ADDR"`

	LogLevel    string `env:"SEOWATCH_LOG_LEVEL"`
	LogFormat   string `env:"SEOWATCH_LOG_FORMAT"`
	LogBackend  string `env:"SEOWATCH_LOG_BACKEND"`
	MetricsAddr string `env:"SEOWATCH_METRICS_ADDR"`
}

const (
	BusMemory = "memory"
	BusRedis  = "redis"
	BusFile   = "file"
)

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "seowatch.db"
	c.RemoteDSN = ""
	c.RemoteProbeTimeout = 3 * time.Second
	c.AuditEndpoint = "http://127.0.0.1:8080/audit"
	c.ContentEndpoint = "http://127.0.0.1:8080/content"
	c.HTTPTimeout = 30 * time.Second
	c.ScanCheckInterval = time.Hour
	c.Bus = BusFile
	c.RedisAddr = "127.0.0.1:6379"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.LogBackend = "slog"
	c.MetricsAddr = ""
}

// parseEnv overlays c with SEOWATCH_* variables. Unset variables leave the
// current value alone.
func parseEnv(ctx context.Context, cfg *Config, lookuper envconfig.Lookuper) {
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:           cfg,
		Lookuper:         lookuper,
		DefaultOverwrite: true,
	}); err != nil {
		panic(err)
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	return load(os.Args[1:], envconfig.OsLookuper())
}

func load(args []string, lookuper envconfig.Lookuper) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(context.Background(), cfg, lookuper)
	parseFlags(cfg, args)
	return cfg
}
