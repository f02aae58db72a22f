package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/ski-day-tracker/internal/weather"
)

type fakeChecker struct {
	checks atomic.Int32
	purges atomic.Int32
	err    error
}

func (f *fakeChecker) CheckAlerts(context.Context) (weather.Report, error) {
	f.checks.Add(1)
	return weather.Report{ID: "r"}, f.err
}

func (f *fakeChecker) PurgeCache() int {
	f.purges.Add(1)
	return 0
}

func TestStartRunsCheckImmediately(t *testing.T) {
	f := &fakeChecker{}
	s := New(f, time.Hour, nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return f.checks.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestRunCheckToleratesExpectedErrors(t *testing.T) {
	f := &fakeChecker{err: weather.ErrAlertsDisabled}
	s := New(f, time.Minute, nil)
	s.RunCheck()
	s.RunPurge()
	assert.Equal(t, int32(1), f.checks.Load())
	assert.Equal(t, int32(1), f.purges.Load())
}
