package sketchup

// Stats receives transport lifecycle signals from the session and engine.
// Implementations must be safe for concurrent use; pkg/observability provides
// a Prometheus-backed one.
type Stats interface {
	// ConnectionOpened fires after a successful dial.
	ConnectionOpened()
	// ConnectionClosed fires when the session drops its connection.
	ConnectionClosed()
	// RetryScheduled fires before each reconnect-and-resend attempt.
	RetryScheduled(operation string)
	// ReceiveChunks reports how many reads one framed message took.
	ReceiveChunks(n int)
}

// NopStats discards every signal.
type NopStats struct{}

func (NopStats) ConnectionOpened()     {}
func (NopStats) ConnectionClosed()     {}
func (NopStats) RetryScheduled(string) {}
func (NopStats) ReceiveChunks(int)     {}
