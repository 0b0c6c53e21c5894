// Package runner drives the tick loop: sleep until the schedule fires, run
// one attempt through the retry policy, log the record, go back to sleep.
// A bad tick is logged and forgotten; only ctx cancellation stops the loop.
package runner

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tastythames/router-keepalive/internal/retry"
	"github.com/tastythames/router-keepalive/internal/routerclient"
	"github.com/tastythames/router-keepalive/internal/status"
)

// Schedule yields the next due instant strictly after now; zero time means
// the schedule never fires again.
type Schedule interface {
	Next(now time.Time) time.Time
}

// Attempter is the session-client surface the runner needs.
type Attempter interface {
	Attempt(ctx context.Context, creds routerclient.Credentials) routerclient.Outcome
	FollowUp(ctx context.Context, creds routerclient.Credentials) (bool, error)
}

type Runner struct {
	creds    routerclient.Credentials
	sched    Schedule
	client   Attempter
	retry    retry.Policy
	store    *status.Store
	runNow   bool
	followUp bool
}

type Options struct {
	Credentials routerclient.Credentials
	Schedule    Schedule
	Client      Attempter
	Retry       retry.Policy
	Store       *status.Store
	RunNow      bool // one immediate tick before the first scheduled one
	FollowUp    bool // dispatch the profile's post-login action on success
}

func New(opts Options) *Runner {
	return &Runner{
		creds:    opts.Credentials,
		sched:    opts.Schedule,
		client:   opts.Client,
		retry:    opts.Retry,
		store:    opts.Store,
		runNow:   opts.RunNow,
		followUp: opts.FollowUp,
	}
}

// Run blocks until ctx is cancelled. The wait for the next tick is the only
// suspension point; cancellation during the wait exits without starting a
// partial attempt.
func (r *Runner) Run(ctx context.Context) {
	if r.runNow {
		log.Info("running immediately on start")
		r.runOnce(ctx, time.Now())
	}

	for {
		now := time.Now()
		next := r.sched.Next(now)
		if next.IsZero() {
			log.Error("schedule yields no future run time, stopping")
			return
		}
		log.Info("next run scheduled",
			"at", next.Format(time.RFC3339),
			"in", next.Sub(now).Round(time.Second),
		)

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info("shutdown requested, stopping")
			return
		case <-timer.C:
		}

		r.runOnce(ctx, next)
	}
}

// runOnce executes one full tick: Idle -> Attempting -> outcome -> Idle.
func (r *Runner) runOnce(ctx context.Context, scheduledAt time.Time) {
	if ctx.Err() != nil {
		return
	}

	started := time.Now()
	// retries must not bleed into the next tick's window
	deadline := r.sched.Next(started)

	out, retries := r.retry.Run(ctx, deadline, func(ctx context.Context) routerclient.Outcome {
		return r.client.Attempt(ctx, r.creds)
	})

	rec := status.Record{
		ID:          uuid.NewString(),
		ScheduledAt: scheduledAt,
		StartedAt:   started,
		Duration:    time.Since(started),
		Outcome:     out,
		Retries:     retries,
	}
	r.store.Observe(rec)
	logRecord(rec)

	if out.Kind == routerclient.KindSuccess && r.followUp {
		r.dispatchFollowUp(ctx, rec.ID)
	}
}

func (r *Runner) dispatchFollowUp(ctx context.Context, runID string) {
	did, err := r.client.FollowUp(ctx, r.creds)
	switch {
	case err != nil:
		r.store.FollowUpFailed()
		log.Warn("follow-up action failed", "run_id", runID, "err", err)
	case did:
		log.Info("follow-up action dispatched", "run_id", runID)
	}
}

// logRecord emits exactly one log event per tick, severity by outcome.
func logRecord(rec status.Record) {
	fields := []any{
		"run_id", rec.ID,
		"outcome", rec.Outcome.Kind.String(),
		"retries", rec.Retries,
		"duration", rec.Duration.Round(time.Millisecond),
		"scheduled_at", rec.ScheduledAt.Format(time.RFC3339),
	}

	switch rec.Outcome.Kind {
	case routerclient.KindSuccess:
		log.Info("login succeeded", fields...)
	case routerclient.KindAuthRejected:
		log.Warn("login rejected", append(fields, "reason", rec.Outcome.Reason)...)
	case routerclient.KindUnexpected:
		log.Warn("unexpected response", append(fields, "detail", rec.Outcome.Reason)...)
	case routerclient.KindTransient:
		log.Error("retries exhausted", append(fields, "cause", rec.Outcome.Err)...)
	}
}
