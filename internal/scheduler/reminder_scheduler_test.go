package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/dto"
)

type sweeperStub struct {
	calls    int32
	failures int32
}

func (s *sweeperStub) Sweep(ctx context.Context) (string, *dto.SweepResult, error) {
	n := atomic.AddInt32(&s.calls, 1)
	if n <= atomic.LoadInt32(&s.failures) {
		return "", nil, errors.New("db unavailable")
	}
	return "Successfully sent 1 notifications.", &dto.SweepResult{Notifications: 1}, nil
}

func TestReminderSchedulerRejectsBadSchedule(t *testing.T) {
	_, err := NewReminderScheduler(&sweeperStub{}, Config{Schedule: "every five minutes"}, nil)
	require.Error(t, err)
}

func TestReminderSchedulerRunsSweepOnTrigger(t *testing.T) {
	stub := &sweeperStub{}
	s, err := NewReminderScheduler(stub, Config{}, nil)
	require.NoError(t, err)

	s.Start(context.Background())
	defer s.Stop()

	s.trigger()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&stub.calls) == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestReminderSchedulerRetriesFailedSweep(t *testing.T) {
	stub := &sweeperStub{failures: 1}
	s, err := NewReminderScheduler(stub, Config{MaxRetries: 2, RetryDelay: 5 * time.Millisecond}, nil)
	require.NoError(t, err)

	s.Start(context.Background())
	defer s.Stop()

	s.trigger()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&stub.calls) == 2 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&stub.calls))
}

func TestReminderSchedulerTriggerBeforeStartIsDropped(t *testing.T) {
	stub := &sweeperStub{}
	s, err := NewReminderScheduler(stub, Config{}, nil)
	require.NoError(t, err)

	s.trigger()
	assert.Equal(t, int32(0), atomic.LoadInt32(&stub.calls))
}
