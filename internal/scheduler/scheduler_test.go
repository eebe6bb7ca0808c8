package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"uptime-report-backend/internal/report"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingStarter struct {
	calls atomic.Int32
	res   report.StartResult
	err   error
	fired chan struct{}
}

func (c *countingStarter) Start(context.Context) (report.StartResult, error) {
	c.calls.Add(1)
	if c.fired != nil {
		select {
		case c.fired <- struct{}{}:
		default:
		}
	}
	return c.res, c.err
}

func TestService_RunTriggersUntilCancelled(t *testing.T) {
	starter := &countingStarter{res: report.StartResult{ReportID: "r"}, fired: make(chan struct{}, 1)}
	svc := NewService(starter, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-starter.fired:
		case <-time.After(time.Second):
			t.Fatal("scheduler did not fire")
		}
	}
	cancel()
	<-done
	assert.GreaterOrEqual(t, starter.calls.Load(), int32(2))
}

func TestService_DisabledReturnsImmediately(t *testing.T) {
	starter := &countingStarter{}
	NewService(starter, 0).Run(context.Background())
	assert.Zero(t, starter.calls.Load())
}

func TestService_TriggerOnce(t *testing.T) {
	testCases := []struct {
		name string
		res  report.StartResult
		err  error
	}{
		{"complete", report.StartResult{ReportID: "r1", Rows: 2}, nil},
		{"already running", report.StartResult{ReportID: "r0", AlreadyRunning: true}, nil},
		{"failed", report.StartResult{}, errors.New("db down")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			starter := &countingStarter{res: tc.res, err: tc.err}
			assert.NotPanics(t, func() { NewService(starter, time.Hour).TriggerOnce(context.Background()) })
			assert.Equal(t, int32(1), starter.calls.Load())
		})
	}
}
