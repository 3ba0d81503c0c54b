package schedule

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Job is a named maintenance task. The indexing drain and the embedding
// cache cleanup both implement it.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type Scheduler interface {
	AddJob(job Job, spec string) error
	Start(ctx context.Context)
	Stop()
}

// CronScheduler runs maintenance jobs on standard 5-field cron specs.
// Each job is guarded against overlap with itself: an indexing drain that
// outlives its minute slot skips the next tick instead of stacking.
type CronScheduler struct {
	cron    *cron.Cron
	entries map[string]cron.EntryID
	ctx     context.Context
}

func NewCronScheduler() *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &CronScheduler{
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
	}
}

func (c *CronScheduler) AddJob(job Job, spec string) error {
	name := job.Name()
	logger := c.jobLogger(context.Background(), name, spec)
	entryID, err := c.cron.AddFunc(spec, c.wrap(job, spec))
	if err != nil {
		logger.Error("schedule maintenance job failed", zap.Error(err))
		return err
	}
	c.entries[name] = entryID
	logger.Info("maintenance job scheduled")
	return nil
}

func (c *CronScheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx = ctx
	c.cron.Start()
}

// Stop blocks until in-flight jobs finish; a half-indexed document would
// otherwise sit in "processing" until the next drain picks it up.
func (c *CronScheduler) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("scheduler stopped",
		zap.String("component", "scheduler"), zap.Int("jobs", len(c.entries)))
}

func (c *CronScheduler) wrap(job Job, spec string) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			c.jobLogger(context.Background(), job.Name(), spec).Info("previous run still active, skipping tick")
			return
		}
		defer running.Store(false)

		ctx := c.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		logger := c.jobLogger(ctx, job.Name(), spec)
		start := time.Now()
		logger.Info("maintenance job started")
		err := job.Run(ctx)
		elapsed := time.Since(start)
		if err != nil {
			logger.Error("maintenance job finished", zap.Error(err), zap.Duration("duration", elapsed))
			return
		}
		logger.Info("maintenance job finished", zap.Duration("duration", elapsed))
	}
}

func (c *CronScheduler) jobLogger(ctx context.Context, name, spec string) *zap.Logger {
	return logutil.GetLogger(ctx).With(
		zap.String("component", "scheduler"),
		zap.String("job", name),
		zap.String("cron", spec),
	)
}
