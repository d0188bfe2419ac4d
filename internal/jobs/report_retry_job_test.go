package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRetrier struct {
	calls     int
	lastLimit int
	rendered  int
	err       error
	deadline  bool
}

func (f *fakeRetrier) RetryPendingReports(ctx context.Context, limit int) (int, error) {
	f.calls++
	f.lastLimit = limit
	_, f.deadline = ctx.Deadline()
	return f.rendered, f.err
}

func TestReportRetryJob_Run(t *testing.T) {
	retrier := &fakeRetrier{rendered: 2}
	job := NewReportRetryJob(retrier, 5, time.Minute, zap.NewNop())

	job.Run()
	assert.Equal(t, 1, retrier.calls)
	assert.Equal(t, 5, retrier.lastLimit)
	assert.True(t, retrier.deadline)

	retrier.err = errors.New("database unavailable")
	job.Run()
	assert.Equal(t, 2, retrier.calls)
}

func TestRegisterReportRetryJob(t *testing.T) {
	scheduler := NewScheduler(zap.NewNop())
	retrier := &fakeRetrier{}

	require.NoError(t, RegisterReportRetryJob(scheduler, retrier, zap.NewNop(), "0 */15 * * * *", 10, time.Minute))
	assert.Equal(t, []string{ReportRetryJobName}, scheduler.GetJobNames())

	err := RegisterReportRetryJob(scheduler, retrier, zap.NewNop(), "0 */15 * * * *", 10, time.Minute)
	assert.Error(t, err)

	require.NoError(t, scheduler.RemoveJob(ReportRetryJobName))
	assert.Empty(t, scheduler.GetJobNames())
}

func TestScheduler_RejectsInvalidExpression(t *testing.T) {
	scheduler := NewScheduler(zap.NewNop())
	err := scheduler.AddJob("broken", "not a cron expression", func() {})
	assert.Error(t, err)
}
