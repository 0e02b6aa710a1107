package session

import (
	"context"
	"sync"

	"github.com/lshigami/examroom/internal/dto"
)

// SubmitFunc sends the answer batch to the server.
type SubmitFunc func(ctx context.Context, answers []dto.AnswerInput) (*dto.SubmissionResponse, error)

// Attempt ties an answer store and a countdown to a submit call that runs
// at most once, whether the student submits or time runs out.
type Attempt struct {
	Answers   *AnswerStore
	Countdown *Countdown

	submit SubmitFunc
	once   sync.Once
	done   chan struct{}

	result *dto.SubmissionResponse
	err    error
	forced bool
}

func NewAttempt(answers *AnswerStore, countdown *Countdown, submit SubmitFunc) *Attempt {
	return &Attempt{
		Answers:   answers,
		Countdown: countdown,
		submit:    submit,
		done:      make(chan struct{}),
	}
}

// Submit sends the answers chosen so far. Later calls, including a forced
// submit on expiry, return the outcome of the first one.
func (a *Attempt) Submit(ctx context.Context) (*dto.SubmissionResponse, error) {
	return a.submitOnce(ctx, false)
}

func (a *Attempt) submitOnce(ctx context.Context, forced bool) (*dto.SubmissionResponse, error) {
	a.once.Do(func() {
		defer close(a.done)
		batch := a.Answers.Answers()
		if len(batch) == 0 {
			// nothing picked: send the blank sheet so the attempt still completes
			batch = a.Answers.Sheet()
		}
		a.forced = forced
		a.result, a.err = a.submit(ctx, batch)
	})
	<-a.done
	return a.result, a.err
}

// Done is closed once the submission has been sent.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Forced reports whether the submission was triggered by the countdown.
func (a *Attempt) Forced() bool {
	<-a.done
	return a.forced
}

// Run drives the countdown and submits automatically when it expires. It
// returns after a submission, manual or forced, or when ctx is cancelled.
func (a *Attempt) Run(ctx context.Context, onTick func(remaining int64)) (*dto.SubmissionResponse, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.Countdown.Run(ctx, onTick)

	select {
	case <-a.Countdown.Expired():
		return a.submitOnce(ctx, true)
	case <-a.done:
		return a.result, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
