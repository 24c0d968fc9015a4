package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/sketchup"
)

// bridgeConfig collects everything the binary needs: the SketchUp
// connection, relay behavior, logging, and the optional observability
// listeners.
type bridgeConfig struct {
	Session sketchup.SessionConfig
	Engine  sketchup.EngineConfig

	LogLevel  string
	LogFormat string

	MetricsAddr string
	MetricsPath string

	TraceExporter   string
	TraceEndpoint   string
	TraceInsecure   bool
	TraceSampleRate float64

	Environment string
}

func defaultBridgeConfig() bridgeConfig {
	return bridgeConfig{
		Session:         sketchup.DefaultSessionConfig(),
		Engine:          sketchup.DefaultEngineConfig(),
		LogLevel:        "info",
		LogFormat:       "text",
		MetricsPath:     "/metrics",
		TraceExporter:   "noop",
		TraceSampleRate: 1.0,
	}
}

// duration lets TOML carry values like "500ms" or "2m".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// fileConfig is the config.toml key mapping.
type fileConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	ConnectTimeout duration `toml:"connect_timeout"`
	IOTimeout      duration `toml:"io_timeout"`
	ProbeTimeout   duration `toml:"probe_timeout"`
	ReceiveWall    duration `toml:"receive_wall"`
	ReadBufferSize int      `toml:"read_buffer_size"`

	MaxRetries         int      `toml:"max_retries"`
	RetryBackoffStep   duration `toml:"retry_backoff_step"`
	MaxRetryBackoff    duration `toml:"max_retry_backoff"`
	DefaultCallTimeout duration `toml:"default_call_timeout"`
	ComponentPatience  duration `toml:"component_patience"`
	RateLimit          float64  `toml:"rate_limit"`
	RateBurst          int      `toml:"rate_burst"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	MetricsAddr string `toml:"metrics_addr"`
	MetricsPath string `toml:"metrics_path"`

	TraceExporter   string  `toml:"trace_exporter"`
	TraceEndpoint   string  `toml:"trace_endpoint"`
	TraceInsecure   bool    `toml:"trace_insecure"`
	TraceSampleRate float64 `toml:"trace_sample_rate"`

	Environment string `toml:"environment"`
}

// loadConfig overlays a TOML file onto the defaults. Only keys present in
// the file override, so max_retries = 0 (single attempt) survives.
func loadConfig(path string) (bridgeConfig, error) {
	cfg := defaultBridgeConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return bridgeConfig{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return bridgeConfig{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("host") {
		cfg.Session.Host = raw.Host
	}
	if meta.IsDefined("port") {
		cfg.Session.Port = raw.Port
	}
	if meta.IsDefined("connect_timeout") {
		cfg.Session.ConnectTimeout = time.Duration(raw.ConnectTimeout)
	}
	if meta.IsDefined("io_timeout") {
		cfg.Session.IOTimeout = time.Duration(raw.IOTimeout)
	}
	if meta.IsDefined("probe_timeout") {
		cfg.Session.ProbeTimeout = time.Duration(raw.ProbeTimeout)
	}
	if meta.IsDefined("receive_wall") {
		cfg.Session.ReceiveWall = time.Duration(raw.ReceiveWall)
	}
	if meta.IsDefined("read_buffer_size") {
		cfg.Session.ReadBufferSize = raw.ReadBufferSize
	}

	if meta.IsDefined("max_retries") {
		cfg.Engine.MaxRetries = raw.MaxRetries
	}
	if meta.IsDefined("retry_backoff_step") {
		cfg.Engine.RetryBackoffStep = time.Duration(raw.RetryBackoffStep)
	}
	if meta.IsDefined("max_retry_backoff") {
		cfg.Engine.MaxRetryBackoff = time.Duration(raw.MaxRetryBackoff)
	}
	if meta.IsDefined("default_call_timeout") {
		cfg.Engine.DefaultCallTimeout = time.Duration(raw.DefaultCallTimeout)
	}
	if meta.IsDefined("component_patience") {
		cfg.Engine.ComponentPatience = time.Duration(raw.ComponentPatience)
	}
	if meta.IsDefined("rate_limit") {
		cfg.Engine.RateLimit = raw.RateLimit
	}
	if meta.IsDefined("rate_burst") {
		cfg.Engine.RateBurst = raw.RateBurst
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = raw.LogLevel
	}
	if meta.IsDefined("log_format") {
		cfg.LogFormat = raw.LogFormat
	}

	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = raw.MetricsAddr
	}
	if meta.IsDefined("metrics_path") {
		cfg.MetricsPath = raw.MetricsPath
	}

	if meta.IsDefined("trace_exporter") {
		cfg.TraceExporter = raw.TraceExporter
	}
	if meta.IsDefined("trace_endpoint") {
		cfg.TraceEndpoint = raw.TraceEndpoint
	}
	if meta.IsDefined("trace_insecure") {
		cfg.TraceInsecure = raw.TraceInsecure
	}
	if meta.IsDefined("trace_sample_rate") {
		cfg.TraceSampleRate = raw.TraceSampleRate
	}

	if meta.IsDefined("environment") {
		cfg.Environment = raw.Environment
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return bridgeConfig{}, fmt.Errorf("load config: unknown log format %q (expected text or json)", cfg.LogFormat)
	}

	return cfg, nil
}
