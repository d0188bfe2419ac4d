package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ReportRetryJobName is the name of the report rendering retry job
const ReportRetryJobName = "report_retry"

// ReportRetrier re-renders reports of approved proposals whose last render failed
type ReportRetrier interface {
	RetryPendingReports(ctx context.Context, limit int) (int, error)
}

// ReportRetryJob retries failed report renders in bounded batches
type ReportRetryJob struct {
	retrier   ReportRetrier
	batchSize int
	timeout   time.Duration
	logger    *zap.Logger
}

func NewReportRetryJob(retrier ReportRetrier, batchSize int, timeout time.Duration, logger *zap.Logger) *ReportRetryJob {
	return &ReportRetryJob{
		retrier:   retrier,
		batchSize: batchSize,
		timeout:   timeout,
		logger:    logger,
	}
}

// Run is called by the scheduler according to the cron expression
func (j *ReportRetryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	rendered, err := j.retrier.RetryPendingReports(ctx, j.batchSize)
	if err != nil {
		j.logger.Error("report retry job failed",
			zap.Int("rendered", rendered),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if rendered > 0 {
		j.logger.Info("report retry job completed",
			zap.Int("rendered", rendered),
			zap.Duration("duration", time.Since(start)))
	}
}

// RegisterReportRetryJob adds the retry job to the scheduler
func RegisterReportRetryJob(scheduler *Scheduler, retrier ReportRetrier, logger *zap.Logger, cronExpr string, batchSize int, timeout time.Duration) error {
	job := NewReportRetryJob(retrier, batchSize, timeout, logger)
	return scheduler.AddJob(ReportRetryJobName, cronExpr, job.Run)
}
