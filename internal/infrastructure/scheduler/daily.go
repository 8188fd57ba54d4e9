package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"DailyDigest/internal/ports"
)

// DailyScheduler fires a job once a day at a fixed wall-clock time.
type DailyScheduler struct {
	hour   int
	minute int
	loc    *time.Location

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*DailyScheduler)(nil)

// NewDailyScheduler parses an HH:MM trigger in loc (nil means local time).
func NewDailyScheduler(at string, loc *time.Location) (*DailyScheduler, error) {
	hour, minute, err := ParseClock(at)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	return &DailyScheduler{
		hour:   hour,
		minute: minute,
		loc:    loc,
		now:    time.Now,
		after:  time.After,
	}, nil
}

// ParseClock splits an HH:MM string into hour and minute.
func ParseClock(at string) (int, int, error) {
	parsed, err := time.Parse("15:04", at)
	if err != nil {
		return 0, 0, fmt.Errorf("parse trigger time %q: %w", at, err)
	}
	return parsed.Hour(), parsed.Minute(), nil
}

// NextRun returns the first trigger strictly after now.
func (d *DailyScheduler) NextRun(now time.Time) time.Time {
	local := now.In(d.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.hour, d.minute, 0, 0, d.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, d.hour, d.minute, 0, 0, d.loc)
	}
	return next
}

// Start runs job at every trigger until ctx is cancelled or Stop is called.
// A second Start while running is a no-op.
func (d *DailyScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	d.stop, d.done = stop, done

	go func() {
		defer close(done)
		var last time.Time
		for {
			// A wall clock lagging behind the timer must not yield the same trigger twice.
			from := d.now()
			if from.Before(last) {
				from = last
			}
			next := d.NextRun(from)
			select {
			case <-d.after(next.Sub(d.now())):
				last = next
				job(next)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the loop and waits for an in-flight job to finish.
func (d *DailyScheduler) Stop(ctx context.Context) error {
	d.mu.Lock()
	stop, done := d.stop, d.done
	d.stop, d.done = nil, nil
	d.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
