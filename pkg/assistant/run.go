package assistant

import (
	"context"
	"time"

	"github.com/odvcencio/buddy/pkg/errors"
	"github.com/odvcencio/buddy/pkg/openai"
)

// State is the local view of a run's lifecycle.
type State int

const (
	StateQueued State = iota
	StateInProgress
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	default:
		return "failed"
	}
}

// advance maps a remote-reported status onto the local state. Every status
// outside the happy path collapses to StateFailed; requires_action,
// cancelled, and expired runs are unrecoverable for this engine.
func advance(status openai.RunStatus) State {
	switch status {
	case openai.RunStatusQueued:
		return StateQueued
	case openai.RunStatusInProgress:
		return StateInProgress
	case openai.RunStatusCompleted:
		return StateCompleted
	default:
		return StateFailed
	}
}

// terminal reports whether no further polling can change the state.
func (s State) terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Clock abstracts poll sleeping so executor tests run without real delays.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Executor sends one user turn through a thread and polls the resulting run
// to completion.
type Executor struct {
	svc      Service
	interval time.Duration
	maxWait  time.Duration
	clock    Clock
}

// NewExecutor builds an executor polling at the given interval. maxWait
// bounds total polling time; zero means poll until the run reaches a
// terminal state.
func NewExecutor(svc Service, interval, maxWait time.Duration) *Executor {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Executor{svc: svc, interval: interval, maxWait: maxWait, clock: realClock{}}
}

// SetClock replaces the poll clock. Test hook.
func (e *Executor) SetClock(clock Clock) {
	e.clock = clock
}

// RunTurn appends msg as a user message, starts a run, polls it until it
// terminates, and returns the assistant's reply text.
func (e *Executor) RunTurn(ctx context.Context, assistantID, threadID, msg string) (string, error) {
	_, err := e.svc.CreateMessage(ctx, threadID, openai.CreateMessageRequest{
		Role:    RoleUser,
		Content: msg,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeRemoteAPI, "sending message").
			WithContext("thread_id", threadID)
	}

	run, err := e.svc.CreateRun(ctx, threadID, assistantID)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeRemoteAPI, "starting run").
			WithContext("thread_id", threadID)
	}

	var waited time.Duration
	for {
		current, err := e.svc.GetRun(ctx, threadID, run.ID)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeRemoteAPI, "polling run").
				WithContext("run_id", run.ID)
		}

		switch state := advance(current.Status); state {
		case StateCompleted:
			return e.latestReply(ctx, threadID)
		case StateFailed:
			return "", errors.New(errors.ErrCodeRunFailed, "run did not complete").
				WithContext("run_id", run.ID).
				WithContext("status", string(current.Status))
		}

		if e.maxWait > 0 && waited >= e.maxWait {
			return "", errors.New(errors.ErrCodeRunFailed, "run exceeded max wait").
				WithContext("run_id", run.ID).
				WithContext("max_wait", e.maxWait.String())
		}
		if err := e.clock.Sleep(ctx, e.interval); err != nil {
			return "", errors.Wrap(err, errors.ErrCodeRunFailed, "run polling interrupted").
				WithContext("run_id", run.ID)
		}
		waited += e.interval
	}
}

// latestReply fetches the most recent thread message and extracts its text.
func (e *Executor) latestReply(ctx context.Context, threadID string) (string, error) {
	msgs, err := e.svc.ListMessages(ctx, threadID, 1)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeRemoteAPI, "listing messages").
			WithContext("thread_id", threadID)
	}
	if len(msgs) == 0 {
		return "", errors.New(errors.ErrCodeReplyUnreadable, "thread has no messages").
			WithContext("thread_id", threadID)
	}
	return ExtractText(msgs[0])
}
