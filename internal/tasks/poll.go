// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/clinicctl/internal/apierr"
	"github.com/staranto/clinicctl/internal/obs"
	"github.com/staranto/clinicctl/internal/transport"
)

// MsgStatusFailed is the fallback for a failed status query.
const MsgStatusFailed = "Failed to get task status"

// Poll defaults.
const (
	DefaultInterval    = 2 * time.Second
	DefaultMaxAttempts = 30
)

// PollOptions bounds a poll session. Zero fields take the defaults.
type PollOptions struct {
	Interval    time.Duration
	MaxAttempts int
}

func (o PollOptions) normalize() PollOptions {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	return o
}

// Outcome is how a poll session ended.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	// OutcomeTimeout means MaxAttempts answers were all non-terminal.
	OutcomeTimeout
	// OutcomeCanceled means the context ended the session.
	OutcomeCanceled
	// OutcomeError means a status query failed.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeError:
		return "error"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// MarshalText renders the outcome name in JSON and YAML output.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// PollResult is the end state of a session.
type PollResult struct {
	TaskID   string     `json:"task_id"`
	Outcome  Outcome    `json:"outcome"`
	Attempts int        `json:"attempts"`
	Last     TaskStatus `json:"last"`
}

// Poller queries task status.
type Poller struct {
	tr       transport.Transport
	recorder obs.Recorder
}

// PollerOption customizes a Poller.
type PollerOption func(*Poller)

// WithRecorder sends attempt and outcome events to r.
func WithRecorder(r obs.Recorder) PollerOption {
	return func(p *Poller) {
		if r != nil {
			p.recorder = r
		}
	}
}

// NewPoller returns a Poller using tr.
func NewPoller(tr transport.Transport, opts ...PollerOption) *Poller {
	p := &Poller{tr: tr, recorder: obs.Noop{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Status performs a single status query.
func (p *Poller) Status(ctx context.Context, taskID string) (TaskStatus, error) {
	if taskID == "" {
		return TaskStatus{}, apierr.Validation("task status", "task id is required")
	}

	resp, err := p.tr.Get(ctx, "/tasks/status/"+url.PathEscape(taskID), transport.Request{})
	if err != nil {
		return TaskStatus{}, apierr.Wrapf(err, "task %s status", taskID)
	}

	var st TaskStatus
	if err := json.Unmarshal(resp.Data, &st); err != nil {
		return TaskStatus{}, &apierr.Error{Kind: apierr.KindTransport, Op: "task status", Message: "malformed response", Err: err}
	}
	st.Raw = resp.Data
	return st, nil
}

// Poll queries taskID until it reaches SUCCESS or FAILURE, a query fails,
// ctx ends, or MaxAttempts queries have been made. Exactly one request is in
// flight at a time and the delay between attempts is opts.Interval.
//
// A failed query ends the session at once with OutcomeError. Exhaustion
// returns OutcomeTimeout with the last observed status and an error that
// matches apierr.ErrPollExhausted. Cancellation returns OutcomeCanceled with
// an error that matches both apierr.ErrCanceled and ctx.Err().
func (p *Poller) Poll(ctx context.Context, taskID string, opts PollOptions) (PollResult, error) {
	opts = opts.normalize()
	res := PollResult{TaskID: taskID}

	finish := func(o Outcome, err error) (PollResult, error) {
		res.Outcome = o
		p.recorder.PollOutcome(o.String())
		log.WithFields(log.Fields{
			"task_id":  taskID,
			"outcome":  o,
			"attempts": res.Attempts,
		}).Debug("poll finished")
		return res, err
	}
	canceled := func() (PollResult, error) {
		return finish(OutcomeCanceled, &apierr.Error{Kind: apierr.KindCanceled, Op: "poll task " + taskID, Err: ctx.Err()})
	}

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if attempt > 1 && !sleep(ctx, opts.Interval) {
			return canceled()
		}
		if ctx.Err() != nil {
			return canceled()
		}

		st, err := p.Status(ctx, taskID)
		res.Attempts = attempt
		if err != nil {
			p.recorder.PollAttempt("")
			if ctx.Err() != nil {
				return canceled()
			}
			return finish(OutcomeError, err)
		}

		res.Last = st
		p.recorder.PollAttempt(string(st.Status))
		log.WithFields(log.Fields{"task_id": taskID, "attempt": attempt, "status": st.Status}).Debug("poll")

		switch st.Status {
		case Success:
			return finish(OutcomeSuccess, nil)
		case Failure:
			return finish(OutcomeFailure, nil)
		}
	}

	return finish(OutcomeTimeout, apierr.New(apierr.KindPollExhausted, "poll task "+taskID,
		fmt.Sprintf("task still %s after %d attempts", res.Last.Status, res.Attempts)))
}

// PollMany runs an independent session per id, at most limit at a time
// (unbounded when limit <= 0). Results are in the order of ids. A failing
// session does not stop the others; their errors are joined.
func (p *Poller) PollMany(ctx context.Context, ids []string, opts PollOptions, limit int) ([]PollResult, error) {
	results := make([]PollResult, len(ids))
	errs := make([]error, len(ids))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, id := range ids {
		g.Go(func() error {
			results[i], errs[i] = p.Poll(ctx, id, opts)
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

// sleep waits for d or until ctx is done, reporting whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
