package metrics

import "time"

// Timer measures wall-clock duration of a crawl-and-query request.
type Timer struct {
	started time.Time
	stopped time.Time
	now     func() time.Time
}

// NewTimer creates an unstarted timer.
func NewTimer() *Timer {
	return &Timer{now: time.Now}
}

// Start records the start instant. Restarting resets the stop instant.
func (t *Timer) Start() {
	t.started = t.now()
	t.stopped = time.Time{}
}

// Stop records the stop instant. Stopping an unstarted timer is a no-op.
func (t *Timer) Stop() {
	if t.started.IsZero() {
		return
	}
	t.stopped = t.now()
}

// Duration returns the elapsed time between Start and Stop. A running
// timer reports the elapsed time so far.
func (t *Timer) Duration() time.Duration {
	if t.started.IsZero() {
		return 0
	}
	if t.stopped.IsZero() {
		return t.now().Sub(t.started)
	}
	return t.stopped.Sub(t.started)
}

// Report assembles the time metrics block of the response.
func (t *Timer) Report() map[string]any {
	out := map[string]any{
		"duration_seconds": t.Duration().Seconds(),
	}
	if !t.started.IsZero() {
		out["started_at"] = t.started.UTC().Format(time.RFC3339Nano)
	}
	if !t.stopped.IsZero() {
		out["finished_at"] = t.stopped.UTC().Format(time.RFC3339Nano)
	}
	return out
}
