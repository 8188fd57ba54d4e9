package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestNextRun(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("CST", 8*3600)
	d, err := NewDailyScheduler("08:00", loc)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2024, 5, 1, 7, 59, 0, 0, loc), time.Date(2024, 5, 1, 8, 0, 0, 0, loc)},
		{time.Date(2024, 5, 1, 8, 0, 0, 0, loc), time.Date(2024, 5, 2, 8, 0, 0, 0, loc)},
		{time.Date(2024, 5, 31, 23, 0, 0, 0, loc), time.Date(2024, 6, 1, 8, 0, 0, 0, loc)},
		{time.Date(2024, 5, 1, 0, 30, 0, 0, time.UTC), time.Date(2024, 5, 2, 8, 0, 0, 0, loc)},
	}
	for _, tc := range cases {
		if got := d.NextRun(tc.now); !got.Equal(tc.want) {
			t.Fatalf("next run after %s: expected %s, got %s", tc.now, tc.want, got)
		}
	}
}

func TestParseClockRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "8", "25:00", "08:61", "eight"} {
		if _, err := NewDailyScheduler(in, time.UTC); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
	if h, m, err := ParseClock("07:05"); err != nil || h != 7 || m != 5 {
		t.Fatalf("unexpected parse: %d %d %v", h, m, err)
	}
}

func TestStartFiresJobUntilStopped(t *testing.T) {
	t.Parallel()

	d, err := NewDailyScheduler("08:00", time.UTC)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	d.now = func() time.Time { return time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC) }

	var waits []time.Duration
	d.after = func(wait time.Duration) <-chan time.Time {
		waits = append(waits, wait)
		if len(waits) > 1 {
			return nil
		}
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}

	fired := make(chan time.Time, 8)
	if err := d.Start(context.Background(), func(at time.Time) { fired <- at }); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case at := <-fired:
		if !at.Equal(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected trigger %s", at)
		}
	case <-time.After(time.Second):
		t.Fatalf("job never fired")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(waits) != 2 || waits[0] != time.Hour {
		t.Fatalf("expected one fired wait of one hour then an idle wait, got %v", waits)
	}
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("second stop should be a no-op: %v", err)
	}
}

func TestLaggingClockDoesNotRepeatTrigger(t *testing.T) {
	t.Parallel()

	d, err := NewDailyScheduler("08:00", time.UTC)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	// The wall clock still reads just before the trigger after the timer fired.
	d.now = func() time.Time { return time.Date(2024, 5, 1, 7, 59, 59, 0, time.UTC) }

	calls := 0
	d.after = func(time.Duration) <-chan time.Time {
		calls++
		if calls > 2 {
			return nil
		}
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}

	fired := make(chan time.Time, 4)
	if err := d.Start(context.Background(), func(at time.Time) { fired <- at }); err != nil {
		t.Fatalf("start: %v", err)
	}

	want := []time.Time{
		time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC),
	}
	for i, w := range want {
		select {
		case at := <-fired:
			if !at.Equal(w) {
				t.Fatalf("trigger %d: expected %s, got %s", i, w, at)
			}
		case <-time.After(time.Second):
			t.Fatalf("trigger %d never fired", i)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestStartHonorsContext(t *testing.T) {
	t.Parallel()

	d, err := NewDailyScheduler("08:00", time.UTC)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx, func(time.Time) { t.Errorf("job should not fire") }); err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := d.Stop(stopCtx); err != nil {
		t.Fatalf("stop after cancel: %v", err)
	}
}
