// File: internal/jobs/search_reindex.go
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus_desk_backend/internal/config"
	"campus_desk_backend/internal/lostfound"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reindexer pushes every lost and found item into the search index.
type Reindexer interface {
	SyncIndex(ctx context.Context, batchSize int, refresh string) (lostfound.SyncReport, error)
}

const reindexBatchSize = 200

// SearchReindexJob periodically rebuilds the lost and found search index so documents
// missed by best-effort writes converge.
type SearchReindexJob struct {
	reindexer     Reindexer
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewSearchReindexJob creates a new SearchReindexJob.
func NewSearchReindexJob(reindexer Reindexer, logger *zap.Logger, cfg *config.Config) *SearchReindexJob {
	scheduler := cron.New(
		cron.WithLogger(NewCronLogger(logger.Named("cron"))),
		cron.WithChain(cron.SkipIfStillRunning(NewCronLogger(logger.Named("cron")))),
	)
	return &SearchReindexJob{
		reindexer:     reindexer,
		logger:        logger.Named("SearchReindexJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *SearchReindexJob) SetupAndStart() error {
	jobSpec := j.cfg.SearchReindexJobSchedule
	if jobSpec == "" {
		j.logger.Warn("Search reindex job schedule not defined (SEARCH_REINDEX_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule search reindex job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Search reindex job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *SearchReindexJob) runJob() {
	j.logger.Info("Starting search reindex job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	report, err := j.reindexer.SyncIndex(ctx, reindexBatchSize, "false")
	switch {
	case errors.Is(err, lostfound.ErrSearchDisabled):
		j.logger.Debug("Search is disabled; skipping reindex")
	case err != nil:
		j.logger.Error("Search reindex job run failed", zap.Error(err))
	default:
		j.logger.Info("Search reindex job run completed",
			zap.Int("batches", report.Batches), zap.Int("indexed", report.Indexed), zap.Int("failed", report.Failed))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *SearchReindexJob) Stop() {
	if j.cronScheduler == nil {
		return
	}
	j.logger.Info("Stopping search reindex job scheduler...")
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Search reindex job scheduler stopped gracefully.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Search reindex job scheduler stop timed out.")
	}
}

// cronLogger adapts zap.Logger to cron.Logger.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron at debug level; every tick would otherwise be logged.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Debug(msg, fields(keysAndValues)...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	cl.zl.Error(msg, append(fields(keysAndValues), zap.Error(err))...)
}

func fields(keysAndValues []interface{}) []zap.Field {
	out := make([]zap.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprintf("%v", keysAndValues[i])
		if i+1 < len(keysAndValues) {
			out = append(out, zap.Any(key, keysAndValues[i+1]))
		} else {
			out = append(out, zap.Any(key, "MISSING_VALUE"))
		}
	}
	return out
}
