package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStartedService(t *testing.T) *Service {
	t.Helper()
	svc := NewService()
	svc.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		svc.Stop(ctx)
	})
	return svc
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job run")
	}
}

func TestScheduleIsIdempotentPerTag(t *testing.T) {
	svc := newStartedService(t)

	task := func(ctx context.Context) error { return nil }
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Schedule("recommendation-update", time.Hour, task))
	}

	jobs := svc.Jobs()
	require.Len(t, jobs, 1, "repeated schedules must not accumulate jobs")
	assert.Equal(t, "recommendation-update", jobs[0].Tag)
	assert.Equal(t, time.Hour, jobs[0].Interval)
}

func TestScheduleReplacesPreviousTask(t *testing.T) {
	svc := newStartedService(t)

	oldRan := make(chan struct{}, 8)
	newRan := make(chan struct{}, 8)

	require.NoError(t, svc.Schedule("job", time.Hour, func(ctx context.Context) error {
		oldRan <- struct{}{}
		return nil
	}))
	require.NoError(t, svc.Schedule("job", time.Hour, func(ctx context.Context) error {
		newRan <- struct{}{}
		return nil
	}))

	require.NoError(t, svc.RunNow("job"))
	waitFor(t, newRan)

	select {
	case <-oldRan:
		t.Fatal("replaced task must never run")
	default:
	}
}

func TestPeriodicTicks(t *testing.T) {
	svc := newStartedService(t)

	ran := make(chan struct{}, 8)
	require.NoError(t, svc.Schedule("tick", 20*time.Millisecond, func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	}))

	waitFor(t, ran)
	waitFor(t, ran)
}

func TestFailureIsRecordedAndRetriedNextTick(t *testing.T) {
	svc := newStartedService(t)

	ran := make(chan struct{}, 8)
	require.NoError(t, svc.Schedule("flaky", time.Hour, func(ctx context.Context) error {
		ran <- struct{}{}
		return errors.New("upstream down")
	}))

	require.NoError(t, svc.RunNow("flaky"))
	waitFor(t, ran)

	var status JobStatus
	require.Eventually(t, func() bool {
		jobs := svc.Jobs()
		if len(jobs) != 1 {
			return false
		}
		status = jobs[0]
		return status.LastStatus == StatusError
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "upstream down", status.LastError)
	require.NotNil(t, status.LastRunAt)

	// The job stays scheduled; the next tick is the retry.
	assert.Len(t, svc.Jobs(), 1)
}

func TestCancel(t *testing.T) {
	svc := newStartedService(t)

	require.NoError(t, svc.Schedule("job", time.Hour, func(ctx context.Context) error { return nil }))
	assert.True(t, svc.Cancel("job"))
	assert.False(t, svc.Cancel("job"))
	assert.Empty(t, svc.Jobs())
	assert.ErrorIs(t, svc.RunNow("job"), ErrUnknownTag)
}

func TestScheduleRequiresStart(t *testing.T) {
	svc := NewService()
	err := svc.Schedule("job", time.Hour, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestStopClearsJobs(t *testing.T) {
	svc := NewService()
	svc.Start(context.Background())
	require.NoError(t, svc.Schedule("job", time.Hour, func(ctx context.Context) error { return nil }))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	svc.Stop(ctx)

	assert.Empty(t, svc.Jobs())
}
