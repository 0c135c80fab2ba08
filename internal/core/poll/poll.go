// Package poll provides a cancellable timed-retry helper used wherever the
// loader has to wait for an external condition to become true.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrDeadlineExceeded is returned when Options.Deadline elapses before the
// condition holds.
var ErrDeadlineExceeded = errors.New("poll: deadline exceeded")

// Options configures a poll loop
type Options struct {
	// Interval is the wait between two checks. Default: 100ms if zero.
	Interval time.Duration

	// Multiplier grows the interval after every failed check.
	// Values <= 1 keep the interval fixed.
	Multiplier float64

	// MaxInterval caps the grown interval. Ignored when zero.
	MaxInterval time.Duration

	// Deadline bounds the whole loop. Zero means wait forever.
	Deadline time.Duration
}

// Every returns Options polling at a fixed interval with no deadline
func Every(interval time.Duration) Options {
	return Options{Interval: interval}
}

// Result describes a finished poll loop
type Result struct {
	Attempts int
	Elapsed  time.Duration
}

// Until checks cond immediately and then after every interval until it
// returns true, the context is done, or the deadline elapses.
func Until(ctx context.Context, opts Options, cond func() bool) (Result, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	if opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Deadline)
		defer cancel()
	}

	start := time.Now()
	res := Result{}

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		res.Attempts++
		if cond() {
			res.Elapsed = time.Since(start)
			return res, nil
		}

		timer.Reset(interval)
		select {
		case <-ctx.Done():
			res.Elapsed = time.Since(start)
			if opts.Deadline > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return res, ErrDeadlineExceeded
			}
			return res, ctx.Err()
		case <-timer.C:
		}

		interval = next(interval, opts)
	}
}

// next applies the backoff multiplier and cap
func next(current time.Duration, opts Options) time.Duration {
	if opts.Multiplier <= 1 {
		return current
	}
	grown := time.Duration(float64(current) * opts.Multiplier)
	if opts.MaxInterval > 0 && grown > opts.MaxInterval {
		return opts.MaxInterval
	}
	return grown
}
