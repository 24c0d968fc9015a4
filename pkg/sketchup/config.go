package sketchup

import (
	"net"
	"strconv"
	"time"
)

// SessionConfig configures the TCP session to the SketchUp extension.
type SessionConfig struct {
	// Host is the address the extension listens on.
	Host string `json:"host"`
	// Port is the extension's listen port.
	Port int `json:"port"`
	// ConnectTimeout bounds the TCP dial.
	ConnectTimeout time.Duration `json:"connect_timeout"`
	// IOTimeout is the per-read and per-write socket deadline.
	IOTimeout time.Duration `json:"io_timeout"`
	// ProbeTimeout bounds the liveness probe on an existing connection.
	ProbeTimeout time.Duration `json:"probe_timeout"`
	// ReceiveWall caps how long one message may take to arrive in full.
	ReceiveWall time.Duration `json:"receive_wall"`
	// ReadBufferSize is the chunk size for receives.
	ReadBufferSize int `json:"read_buffer_size"`
}

// DefaultSessionConfig returns a session configuration matching the
// extension's defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Host:           "localhost",
		Port:           9876,
		ConnectTimeout: 10 * time.Second,
		IOTimeout:      30 * time.Second,
		ProbeTimeout:   100 * time.Millisecond,
		ReceiveWall:    120 * time.Second,
		ReadBufferSize: 8192,
	}
}

// Endpoint returns the host:port string used for dialing and error context.
func (c SessionConfig) Endpoint() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// withDefaults fills zero fields so a partially specified config is usable.
func (c SessionConfig) withDefaults() SessionConfig {
	def := DefaultSessionConfig()
	if c.Host == "" {
		c.Host = def.Host
	}
	if c.Port == 0 {
		c.Port = def.Port
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.IOTimeout <= 0 {
		c.IOTimeout = def.IOTimeout
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = def.ProbeTimeout
	}
	if c.ReceiveWall <= 0 {
		c.ReceiveWall = def.ReceiveWall
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = def.ReadBufferSize
	}
	return c
}

// EngineConfig configures the request/response engine.
type EngineConfig struct {
	// MaxRetries is how many reconnect-and-resend attempts may follow the
	// first attempt when a transport fault interrupts an exchange.
	MaxRetries int `json:"max_retries"`
	// RetryBackoffStep scales the progressive backoff: retry n sleeps
	// n*step, capped at MaxRetryBackoff.
	RetryBackoffStep time.Duration `json:"retry_backoff_step"`
	// MaxRetryBackoff caps the backoff between retries.
	MaxRetryBackoff time.Duration `json:"max_retry_backoff"`
	// DefaultCallTimeout bounds operations without an entry in the
	// per-operation timeout table.
	DefaultCallTimeout time.Duration `json:"default_call_timeout"`
	// ComponentPatience cuts the wait for create_component: creation is
	// expected to be fast, so a peer that produced no terminal response
	// within this window is treated as stalled rather than slow.
	ComponentPatience time.Duration `json:"component_patience"`
	// RateLimit throttles outbound calls per second when positive. The
	// extension executes tool requests on SketchUp's Ruby thread, so pacing
	// keeps a burst of MCP calls from freezing the UI. Zero disables it.
	RateLimit float64 `json:"rate_limit"`
	// RateBurst is the limiter burst size when RateLimit is set.
	RateBurst int `json:"rate_burst"`
}

// DefaultEngineConfig returns the engine defaults: four total attempts with
// progressive backoff, two-minute default deadline, limiter off.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxRetries:         3,
		RetryBackoffStep:   500 * time.Millisecond,
		MaxRetryBackoff:    2 * time.Second,
		DefaultCallTimeout: 120 * time.Second,
		ComponentPatience:  30 * time.Second,
	}
}

// withDefaults fills zero fields so a partially specified config is usable.
// MaxRetries zero is kept: it means a single attempt.
func (c EngineConfig) withDefaults() EngineConfig {
	def := DefaultEngineConfig()
	if c.RetryBackoffStep <= 0 {
		c.RetryBackoffStep = def.RetryBackoffStep
	}
	if c.MaxRetryBackoff <= 0 {
		c.MaxRetryBackoff = def.MaxRetryBackoff
	}
	if c.DefaultCallTimeout <= 0 {
		c.DefaultCallTimeout = def.DefaultCallTimeout
	}
	if c.ComponentPatience <= 0 {
		c.ComponentPatience = def.ComponentPatience
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	return c
}
