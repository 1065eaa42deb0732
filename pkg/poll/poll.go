// Package poll waits for a condition to become true within a bounded time.
//
// Every wait in dirtycheck goes through Until so that "not there yet" and
// "something broke" never get confused: a probe that keeps answering false
// until the policy's bound expires yields NotFound, while a probe error or a
// cancelled parent context yields Failed together with the error.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Result is the outcome of a bounded poll.
type Result int

const (
	// Found means the probe reported true before the bound expired.
	Found Result = iota

	// NotFound means the bound expired without the probe reporting true.
	NotFound

	// Failed means the probe errored or the caller's context ended.
	Failed
)

// String returns a lower-case name for the result.
func (r Result) String() string {
	switch r {
	case Found:
		return "found"
	case NotFound:
		return "not-found"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Default values for polling
const (
	DefaultInterval = 25 * time.Millisecond
	DefaultTimeout  = 500 * time.Millisecond
)

// Policy bounds a poll.
type Policy struct {
	// Interval is the delay between probes
	Interval time.Duration

	// Timeout is the upper bound on the whole poll
	Timeout time.Duration
}

// Within returns a policy with the given timeout and the default interval.
func Within(timeout time.Duration) Policy {
	return Policy{Interval: DefaultInterval, Timeout: timeout}
}

// normalized fills in zero fields and keeps the interval within the timeout.
func (p Policy) normalized() Policy {
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.Interval <= 0 {
		p.Interval = DefaultInterval
	}
	if p.Interval > p.Timeout {
		p.Interval = p.Timeout
	}
	return p
}

// Probe reports whether the awaited condition currently holds.
type Probe func(ctx context.Context) (bool, error)

// Until probes immediately and then every policy interval until the probe
// reports true, the probe fails, the policy timeout passes, or ctx ends.
func Until(ctx context.Context, policy Policy, probe Probe) (Result, error) {
	policy = policy.normalized()

	var probeErr error
	err := wait.PollUntilContextTimeout(ctx, policy.Interval, policy.Timeout, true,
		func(ctx context.Context) (bool, error) {
			ok, err := probe(ctx)
			if err != nil {
				probeErr = err
				return false, err
			}
			return ok, nil
		})

	switch {
	case err == nil:
		return Found, nil
	case probeErr != nil:
		return Failed, fmt.Errorf("probe failed: %w", probeErr)
	case ctx.Err() != nil:
		return Failed, fmt.Errorf("poll cancelled: %w", ctx.Err())
	case wait.Interrupted(err) || errors.Is(err, context.DeadlineExceeded):
		return NotFound, nil
	default:
		return Failed, err
	}
}
