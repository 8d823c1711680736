package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/seowatch/internal/flagx"
	"github.com/dmitrijs2005/seowatch/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell "absent" apart from "set to zero".
type JsonConfig struct {
	DatabasePath       *string         `json:"database_path"`
	RemoteDSN          *string         `json:"remote_dsn"`
	RemoteProbeTimeout *timex.Duration `json:"remote_probe_timeout"`
	AuditEndpoint      *string         `json:"audit_endpoint"`
	ContentEndpoint    *string         `json:"content_endpoint"`
	HTTPTimeout        *timex.Duration `json:"http_timeout"`
	ScanCheckInterval  *timex.Duration `json:"scan_check_interval"`
	Bus                *string         `json:"bus"`
	RedisAddr          *string         `json:"redis_addr"`
	LogLevel           *string         `json:"log_level"`
	LogFormat          *string         `json:"log_format"`
	LogBackend         *string         `json:"log_backend"`
	MetricsAddr        *string         `json:"metrics_addr"`
}

// parseJson overlays Config with values loaded from the file named by -c or
// -config. Without either flag nothing happens. Read and decode errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.RemoteDSN, jc.RemoteDSN)
	setString(&cfg.AuditEndpoint, jc.AuditEndpoint)
	setString(&cfg.ContentEndpoint, jc.ContentEndpoint)
	setString(&cfg.Bus, jc.Bus)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.LogBackend, jc.LogBackend)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)

	if jc.RemoteProbeTimeout != nil {
		cfg.RemoteProbeTimeout = jc.RemoteProbeTimeout.Duration
	}
	if jc.HTTPTimeout != nil {
		cfg.HTTPTimeout = jc.HTTPTimeout.Duration
	}
	if jc.ScanCheckInterval != nil {
		cfg.ScanCheckInterval = jc.ScanCheckInterval.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
