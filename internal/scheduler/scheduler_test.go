package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebyz/screener/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	failures int // fail this many runs before succeeding
	runs     int
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }

func (j *stubJob) Run(ctx context.Context) error {
	j.runs++
	if j.runs <= j.failures {
		return errors.New("transient failure")
	}
	return nil
}

func newTestScheduler() *Scheduler {
	s := New(logger.NewNop())
	s.retryDelay = 0
	return s
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "screen", schedule: "0 30 17 * * MON-FRI"}

	require.NoError(t, s.AddJob(job))
	assert.Error(t, s.AddJob(job))
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.AddJob(&stubJob{name: "broken", schedule: "not a cron line"}))
}

func TestRunNowUnknownJob(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.RunNow("ghost"))
}

func TestRunJobRetriesUntilSuccess(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "screen", schedule: "@daily", failures: 2}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	assert.Equal(t, 3, job.runs)
	stats := s.JobStats()["screen"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1.0, stats.SuccessRate)
	assert.Empty(t, stats.LastError)
}

func TestRunJobRecordsExhaustedRetries(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "screen", schedule: "@daily", failures: 100}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	assert.Equal(t, 4, job.runs) // initial attempt plus three retries
	stats := s.JobStats()["screen"]
	assert.Equal(t, 0.0, stats.SuccessRate)
	assert.Equal(t, "transient failure", stats.LastError)
	require.NotNil(t, stats.LastRun)
	assert.WithinDuration(t, time.Now(), *stats.LastRun, time.Minute)
}

func TestHistoryRingLimit(t *testing.T) {
	h := &History{}
	for i := 0; i < historyLimit+20; i++ {
		h.add(Result{JobName: "screen", Success: i%2 == 0})
	}
	assert.Len(t, h.Results, historyLimit)
}
