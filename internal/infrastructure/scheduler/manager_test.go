package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mmApp "github.com/harbinger-games/harbinger/internal/application/matchmaking"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
)

type countingRepair struct{ calls atomic.Int32 }

func (c *countingRepair) Execute(context.Context) (*mmApp.RepairResult, error) {
	c.calls.Add(1)
	return &mmApp.RepairResult{}, nil
}

type countingSweep struct{ calls atomic.Int32 }

func (c *countingSweep) Execute(context.Context) (*mmApp.SweepResult, error) {
	c.calls.Add(1)
	return &mmApp.SweepResult{}, nil
}

func TestSchedulerManager_RunsMatchmakingJobs(t *testing.T) {
	m, err := NewSchedulerManager(logger.NewDiscard())
	require.NoError(t, err)

	repair := &countingRepair{}
	sweep := &countingSweep{}
	require.NoError(t, m.RegisterOrphanRepairJob(repair, 50*time.Millisecond))
	require.NoError(t, m.RegisterBucketSweepJob(sweep, 50*time.Millisecond))
	assert.Len(t, m.Jobs(), 2)

	m.Start()
	m.Start()
	assert.True(t, m.IsStarted())

	assert.Eventually(t, func() bool {
		return repair.calls.Load() >= 1 && sweep.calls.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Stop())
	assert.False(t, m.IsStarted())
	require.NoError(t, m.Stop())
}
