package minimax

import (
	"context"
	"log/slog"
	"time"
)

// Default polling parameters.
const (
	DefaultPollInterval = 30 * time.Second
	DefaultMaxWait      = 30 * time.Minute
)

// Clock abstracts time for the poller so tests can run without sleeping.
type Clock interface {
	Now() time.Time

	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the
	// latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// PollState is the state of a poll loop.
type PollState int

const (
	PollPending PollState = iota
	PollSuccess
	PollFailed
	PollTimedOut
)

func (s PollState) String() string {
	switch s {
	case PollPending:
		return "Pending"
	case PollSuccess:
		return "Success"
	case PollFailed:
		return "Failed"
	case PollTimedOut:
		return "TimedOut"
	default:
		return "Invalid"
	}
}

// StepFunc performs one status query and reports the observed status.
type StepFunc func(ctx context.Context) (TaskStatus, error)

// Poller repeatedly runs a status query at a fixed interval until the task
// reaches a terminal status or MaxWait has elapsed.
//
// Errors returned by the query end the loop immediately; they are not
// retried. There is no backoff and no jitter.
type Poller struct {
	Interval time.Duration
	MaxWait  time.Duration
	Clock    Clock
	Logger   *slog.Logger
}

// Run drives the loop for taskID and returns the final state. The error is
// nil only for PollSuccess.
func (p Poller) Run(ctx context.Context, taskID string, step StepFunc) (PollState, error) {
	clock := p.Clock
	if clock == nil {
		clock = SystemClock
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxWait := p.MaxWait
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	start := clock.Now()
	attempt := 0
	for {
		attempt++
		status, err := step(ctx)
		if err != nil {
			logger.Error("task status query failed", "task_id", taskID, "attempt", attempt, "err", err)
			return PollPending, err
		}

		elapsed := clock.Now().Sub(start)
		switch phase := status.Phase(); phase {
		case PhaseSuccess:
			logger.Info("task finished", "task_id", taskID, "attempts", attempt, "elapsed", elapsed)
			return PollSuccess, nil
		case PhaseFailed:
			logger.Error("task failed", "task_id", taskID, "status", status)
			return PollFailed, &TaskFailedError{TaskID: taskID, Status: status}
		case PhaseUnknown:
			logger.Warn("task reported unrecognized status, still waiting", "task_id", taskID, "status", status)
		default:
			logger.Debug("task still running", "task_id", taskID, "status", status, "elapsed", elapsed)
		}

		if elapsed >= maxWait {
			err := &TimeoutError{TaskID: taskID, LastStatus: status, Waited: maxWait.String()}
			logger.Error("task poll timed out", "task_id", taskID, "attempts", attempt, "err", err)
			return PollTimedOut, err
		}

		if err := clock.Sleep(ctx, interval); err != nil {
			return PollPending, err
		}
	}
}
