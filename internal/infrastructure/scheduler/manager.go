// Package scheduler runs the background matchmaking jobs using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	mmApp "github.com/harbinger-games/harbinger/internal/application/matchmaking"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

// SchedulerManager owns the gocron scheduler and every job registered on it.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// ========================================
// Matchmaking Jobs
// ========================================

// RegisterOrphanRepairJob schedules the repair of matched tickets whose match was never stored.
func (m *SchedulerManager) RegisterOrphanRepairJob(job mmApp.RepairOrphansExecutor, interval time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			m.repairOrphans(ctx, job)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("matchmaking", "repair"),
		gocron.WithName("orphan-repair"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered orphan repair job", "interval", interval)
	return nil
}

// RegisterBucketSweepJob schedules formation passes for buckets that already hold a full party.
func (m *SchedulerManager) RegisterBucketSweepJob(job mmApp.SweepBucketsExecutor, interval time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			m.sweepBuckets(ctx, job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("matchmaking", "sweep"),
		gocron.WithName("bucket-sweep"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered bucket sweep job", "interval", interval)
	return nil
}

func (m *SchedulerManager) repairOrphans(ctx context.Context, job mmApp.RepairOrphansExecutor) {
	startTime := time.Now()

	result, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("orphan repair failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if result.Scanned > 0 {
		m.logger.Infow("orphan repair completed",
			"scanned", result.Scanned,
			"requeued", result.Requeued,
			"canceled", result.Canceled,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("no orphaned tickets", "duration", time.Since(startTime))
	}
}

func (m *SchedulerManager) sweepBuckets(ctx context.Context, job mmApp.SweepBucketsExecutor) {
	startTime := time.Now()

	result, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("bucket sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Debugw("bucket sweep completed",
		"buckets", result.Buckets,
		"formed", result.Formed,
		"failed", result.Failed,
		"duration", time.Since(startTime),
	)
}

// ========================================
// Scheduler Lifecycle Methods
// ========================================

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop waits for running jobs to complete, then stops the scheduler.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
