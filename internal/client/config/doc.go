// Package config loads runtime configuration for the seowatch CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. SEOWATCH_* environment variables.
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "database_path": "seowatch.db",
//	  "remote_dsn": "postgres://seowatch@localhost/seowatch",
//	  "remote_probe_timeout": "3s",
//	  "audit_endpoint": "http://127.0.0.1:8080/audit",
//	  "content_endpoint": "http://127.0.0.1:8080/content",
//	  "http_timeout": "30s",
//	  "scan_check_interval": "1h",
//	  "bus": "file",
//	  "redis_addr": "127.0.0.1:6379",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "log_backend": "slog",
//	  "metrics_addr": ":9100"
//	}
package config
