package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTask struct {
	name     string
	interval time.Duration
	runs     atomic.Int32
	err      error
}

func (t *countingTask) Run(ctx context.Context) error {
	t.runs.Add(1)
	return t.err
}

func (t *countingTask) Interval() time.Duration { return t.interval }
func (t *countingTask) Name() string            { return t.name }

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	s := New(context.Background())
	task := &countingTask{name: "sweep", interval: 20 * time.Millisecond}
	s.AddTask(task)

	s.Start()
	assert.Eventually(t, func() bool { return task.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := task.runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, task.runs.Load(), "no runs after Stop")
}

func TestScheduler_Status(t *testing.T) {
	s := New(context.Background())
	ok := &countingTask{name: "ok", interval: time.Hour}
	failing := &countingTask{name: "failing", interval: time.Hour, err: errors.New("database is locked")}
	s.AddTask(ok)
	s.AddTask(failing)

	s.Start()
	assert.Eventually(t, func() bool {
		st := s.Status()
		return st[0].Runs == 1 && st[1].Runs == 1
	}, time.Second, 5*time.Millisecond)
	s.Stop()

	status := s.Status()
	require.Len(t, status, 2)
	assert.Equal(t, "ok", status[0].Name)
	assert.Zero(t, status[0].Failures)
	assert.Empty(t, status[0].LastError)
	assert.Equal(t, "failing", status[1].Name)
	assert.Equal(t, 1, status[1].Failures)
	assert.Equal(t, "database is locked", status[1].LastError)
	assert.False(t, status[1].LastRun.IsZero())
}

func TestScheduler_StopsWithParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx)
	task := &countingTask{name: "sweep", interval: 10 * time.Millisecond}
	s.AddTask(task)
	s.Start()

	cancel()
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
