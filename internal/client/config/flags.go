package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/flagx"
)

var knownFlags = []string{
	"-d", "-r", "-audit", "-content", "-i", "-bus", "-redis",
	"-log-level", "-log-format", "-log-backend", "-metrics",
}

// parseFlags populates Config fields from command-line flags.
//
//	-d string         device database path
//	-r string         remote store DSN
//	-audit string     audit collaborator URL
//	-content string   content collaborator base URL
//	-i int            scan check interval in seconds
//	-bus string       change bus: memory, redis or file
//	-redis string     redis address for the redis bus
//	-log-level string
//	-log-format string
//	-log-backend string
//	-metrics string   address to serve /metrics on
//
// Unknown arguments are filtered out with flagx.FilterArgs so other
// components can share the command line.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "device database path")
	fs.StringVar(&cfg.RemoteDSN, "r", cfg.RemoteDSN, "remote store DSN")
	fs.StringVar(&cfg.AuditEndpoint, "audit", cfg.AuditEndpoint, "audit collaborator URL")
	fs.StringVar(&cfg.ContentEndpoint, "content", cfg.ContentEndpoint, "content collaborator base URL")
	checkInterval := fs.Int("i", int(cfg.ScanCheckInterval.Seconds()), "scan check interval (in seconds)")
	fs.StringVar(&cfg.Bus, "bus", cfg.Bus, "change bus: memory, redis or file")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	fs.StringVar(&cfg.LogBackend, "log-backend", cfg.LogBackend, "log backend: slog, zerolog or zap")
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "metrics listen address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only an explicit -i replaces the interval; whole seconds would truncate
	// a finer value coming from JSON or the environment.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.ScanCheckInterval = time.Duration(*checkInterval) * time.Second
		}
	})
}
