// Package search provides the quiescence-window debounce used for user
// lookup: only the most recent query after a quiet period is ever sent.
package search

import (
	"sync"
	"time"
)

// Debouncer delays delivery of a query until no new query has arrived
// for the configured interval. Each Trigger restarts the timer, so an
// in-flight pending query is implicitly cancelled by the next keystroke.
type Debouncer struct {
	interval time.Duration
	fn       func(query string)

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a Debouncer that invokes fn with the latest query
// once the interval elapses without another Trigger.
func NewDebouncer(interval time.Duration, fn func(query string)) *Debouncer {
	return &Debouncer{
		interval: interval,
		fn:       fn,
	}
}

// Trigger schedules query for delivery, replacing any pending one.
func (d *Debouncer) Trigger(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		d.fn(query)
	})
}

// Stop cancels any pending delivery.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
