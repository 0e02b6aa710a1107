package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lshigami/examroom/internal/dto"
)

var sessionNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestCountdownReachesZeroAfterEveryTick(t *testing.T) {
	c := NewCountdown(sessionNow.Add(65*time.Second), sessionNow)
	require.Equal(t, int64(65), c.Remaining())

	for i := 0; i < 64; i++ {
		c.Tick()
		assert.False(t, isClosed(c.Expired()), "expired early after %d ticks", i+1)
	}
	assert.Equal(t, int64(0), c.Tick())
	assert.Equal(t, int64(0), c.Remaining())
	assert.True(t, isClosed(c.Expired()))

	// further ticks neither go negative nor close the channel twice
	assert.NotPanics(t, func() {
		assert.Equal(t, int64(0), c.Tick())
		assert.Equal(t, int64(0), c.Tick())
	})
	assert.Equal(t, int64(0), c.Remaining())
}

func TestCountdownOpenedAfterEndIsExpired(t *testing.T) {
	c := NewCountdown(sessionNow.Add(-10*time.Minute), sessionNow)
	assert.Equal(t, int64(0), c.Remaining())
	assert.True(t, isClosed(c.Expired()))
	assert.Equal(t, int64(0), c.Tick())
}

func TestCountdownTruncatesPartialSeconds(t *testing.T) {
	c := NewCountdown(sessionNow.Add(1500*time.Millisecond), sessionNow)
	assert.Equal(t, int64(1), c.Remaining())

	c = NewCountdown(sessionNow.Add(999*time.Millisecond), sessionNow)
	assert.Equal(t, int64(0), c.Remaining())
	assert.True(t, isClosed(c.Expired()))
}

func TestCountdownRunStopsAtExpiry(t *testing.T) {
	c := NewCountdown(sessionNow.Add(3*time.Second), sessionNow)
	ticks := make(chan time.Time)

	var seen []int64
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		c.run(context.Background(), ticks, func(left int64) { seen = append(seen, left) })
	}()

	for i := 0; i < 3; i++ {
		ticks <- sessionNow
	}
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("run did not return after expiry")
	}
	assert.Equal(t, []int64{2, 1, 0}, seen)
	assert.True(t, isClosed(c.Expired()))
}

func TestCountdownRunStopsOnCancel(t *testing.T) {
	c := NewCountdown(sessionNow.Add(time.Hour), sessionNow)
	ctx, cancel := context.WithCancel(context.Background())

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		c.run(ctx, make(chan time.Time), nil)
	}()
	cancel()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("run did not return after cancel")
	}
	assert.Equal(t, int64(3600), c.Remaining())
	assert.False(t, isClosed(c.Expired()))
}

func TestAnswerStore(t *testing.T) {
	s := NewAnswerStore([]uint{11, 12, 13})

	require.NoError(t, s.Select(12, "B"))
	require.NoError(t, s.Select(11, "A"))
	require.NoError(t, s.Select(12, "C"))

	assert.True(t, s.IsAnswered(11))
	assert.False(t, s.IsAnswered(13))
	label, ok := s.Choice(12)
	assert.True(t, ok)
	assert.Equal(t, "C", label)

	assert.ErrorIs(t, s.Select(99, "A"), ErrUnknownQuestion)
	assert.ErrorIs(t, s.Select(13, "E"), ErrInvalidLabel)
	assert.ErrorIs(t, s.Select(13, "a"), ErrInvalidLabel)
	assert.False(t, s.IsAnswered(13))

	answers := s.Answers()
	require.Len(t, answers, 2)
	assert.Equal(t, uint(11), answers[0].QuestionID)
	assert.Equal(t, "A", *answers[0].Answer)
	assert.Equal(t, uint(12), answers[1].QuestionID)
	assert.Equal(t, "C", *answers[1].Answer)

	sheet := s.Sheet()
	require.Len(t, sheet, 3)
	assert.Nil(t, sheet[2].Answer)
}

func TestAnswerStoreFlags(t *testing.T) {
	s := NewAnswerStore([]uint{11, 12})

	on, err := s.ToggleFlag(1)
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, s.IsFlagged(1))
	assert.False(t, s.IsFlagged(0))

	on, err = s.ToggleFlag(1)
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, s.IsFlagged(1))

	_, err = s.ToggleFlag(2)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	_, err = s.QuestionAt(-1)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestAnswerStoreLoadDropsForeignEntries(t *testing.T) {
	s := NewAnswerStore([]uint{11, 12})
	a, bad := "A", "Z"

	kept := s.Load([]dto.AnswerInput{
		{QuestionID: 11, Answer: &a},
		{QuestionID: 12, Answer: nil},
		{QuestionID: 12, Answer: &bad},
		{QuestionID: 77, Answer: &a},
	})

	assert.Equal(t, 1, kept)
	assert.True(t, s.IsAnswered(11))
	assert.False(t, s.IsAnswered(12))
}

func TestAnswerStoreConcurrentUse(t *testing.T) {
	s := NewAnswerStore([]uint{1, 2, 3, 4})
	labels := []string{"A", "B", "C", "D"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Select(uint(i%4)+1, labels[i%4])
			_, _ = s.ToggleFlag(i % 4)
			_ = s.Answers()
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Answers(), 4)
}

func countingSubmit(calls *int32, delay time.Duration) SubmitFunc {
	return func(ctx context.Context, answers []dto.AnswerInput) (*dto.SubmissionResponse, error) {
		atomic.AddInt32(calls, 1)
		time.Sleep(delay)
		score := len(answers)
		return &dto.SubmissionResponse{ID: 1, Score: &score, Status: "completed"}, nil
	}
}

func TestAttemptSubmitsOnceWhenManualAndForcedRace(t *testing.T) {
	var calls int32
	answers := NewAnswerStore([]uint{1, 2})
	require.NoError(t, answers.Select(1, "A"))
	countdown := NewCountdown(sessionNow.Add(time.Minute), sessionNow)
	attempt := NewAttempt(answers, countdown, countingSubmit(&calls, 20*time.Millisecond))

	var wg sync.WaitGroup
	results := make([]*dto.SubmissionResponse, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0], _ = attempt.Submit(context.Background())
	}()
	go func() {
		defer wg.Done()
		results[1], _ = attempt.submitOnce(context.Background(), true)
	}()
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.NotNil(t, results[0])
	assert.Same(t, results[0], results[1])
	assert.True(t, isClosed(attempt.Done()))
}

func TestAttemptRunSubmitsOnExpiry(t *testing.T) {
	var calls int32
	answers := NewAnswerStore([]uint{1, 2})
	countdown := NewCountdown(sessionNow.Add(-time.Second), sessionNow)
	attempt := NewAttempt(answers, countdown, countingSubmit(&calls, 0))

	res, err := attempt.Run(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, attempt.Forced())
	// nothing was answered, so the blank sheet goes out
	assert.Equal(t, 2, *res.Score)

	_, err = attempt.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAttemptRunReturnsAfterManualSubmit(t *testing.T) {
	var calls int32
	answers := NewAnswerStore([]uint{1})
	require.NoError(t, answers.Select(1, "D"))
	countdown := NewCountdown(sessionNow.Add(time.Hour), sessionNow)
	attempt := NewAttempt(answers, countdown, countingSubmit(&calls, 0))

	type outcome struct {
		res *dto.SubmissionResponse
		err error
	}
	ran := make(chan outcome, 1)
	go func() {
		res, err := attempt.Run(context.Background(), nil)
		ran <- outcome{res, err}
	}()

	_, err := attempt.Submit(context.Background())
	require.NoError(t, err)

	select {
	case got := <-ran:
		require.NoError(t, got.err)
		require.NotNil(t, got.res)
	case <-time.After(time.Second):
		t.Fatal("run did not return after manual submit")
	}
	assert.False(t, attempt.Forced())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAttemptSubmitErrorIsSticky(t *testing.T) {
	boom := errors.New("network down")
	var calls int32
	attempt := NewAttempt(NewAnswerStore([]uint{1}), NewCountdown(sessionNow.Add(time.Minute), sessionNow),
		func(ctx context.Context, answers []dto.AnswerInput) (*dto.SubmissionResponse, error) {
			atomic.AddInt32(&calls, 1)
			return nil, boom
		})

	_, err := attempt.Submit(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = attempt.Submit(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
