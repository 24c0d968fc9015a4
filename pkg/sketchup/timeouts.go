package sketchup

import "time"

// Per-operation response deadlines. Most tools finish in well under the
// two-minute default; solid-geometry joinery and arbitrary Ruby evaluation
// are allowed longer.
const (
	componentTimeout = 60 * time.Second
	joineryTimeout   = 180 * time.Second
	rubyTimeout      = 300 * time.Second

	toolCreateComponent = "create_component"
)

var operationTimeouts = map[string]time.Duration{
	toolCreateComponent:    componentTimeout,
	"boolean_operation":    joineryTimeout,
	"create_dovetail":      joineryTimeout,
	"create_mortise_tenon": joineryTimeout,
	"create_finger_joint":  joineryTimeout,
	"eval_ruby":            rubyTimeout,
}

// CallTimeout returns the response deadline for one attempt at the named
// tool.
func (c EngineConfig) CallTimeout(tool string) time.Duration {
	if d, ok := operationTimeouts[tool]; ok {
		return d
	}
	if c.DefaultCallTimeout > 0 {
		return c.DefaultCallTimeout
	}
	return DefaultEngineConfig().DefaultCallTimeout
}
