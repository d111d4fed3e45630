package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-sim-backend/internal/task"
)

func funcTask(id string, fn func(context.Context) error) task.Task {
	return task.Func{TaskID: id, TaskKind: task.KindMove, Fn: fn}
}

func TestPool_RunsBatchAndCollectsResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewPool(3)
	pool.Start(ctx)

	boom := errors.New("boom")
	tasks := []task.Task{
		funcTask("a", func(context.Context) error { return nil }),
		funcTask("b", func(context.Context) error { return boom }),
		funcTask("c", func(context.Context) error { return nil }),
	}
	batch := pool.Submit("batch-1", tasks...)

	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	require.NoError(t, batch.Wait(waitCtx))

	results := batch.Results()
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].TaskID)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, "c", results[2].TaskID)
	assert.Equal(t, 0, batch.Pending())
}

func TestPool_HooksFire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen atomic.Int32
	var doneCalls atomic.Int32
	pool := NewPool(4)
	pool.OnResult = func(b *Batch, res task.Result) { seen.Add(1) }
	pool.OnBatchDone = func(b *Batch) {
		assert.Equal(t, 0, b.Pending())
		doneCalls.Add(1)
	}
	pool.Start(ctx)

	tasks := make([]task.Task, 20)
	for i := range tasks {
		tasks[i] = funcTask(fmt.Sprintf("t%d", i), func(context.Context) error {
			time.Sleep(time.Millisecond)
			return nil
		})
	}
	batch := pool.Submit("batch-2", tasks...)

	select {
	case <-batch.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("batch did not complete")
	}
	assert.EqualValues(t, 20, seen.Load())
	assert.EqualValues(t, 1, doneCalls.Load())
}

func TestPool_BoundedConcurrency(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewPool(2)
	pool.Start(ctx)

	var mu sync.Mutex
	running, peak := 0, 0
	tasks := make([]task.Task, 8)
	for i := range tasks {
		tasks[i] = funcTask(fmt.Sprintf("t%d", i), func(context.Context) error {
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			running--
			mu.Unlock()
			return nil
		})
	}
	batch := pool.Submit("batch-3", tasks...)
	require.NoError(t, batch.Wait(context.Background()))
	assert.LessOrEqual(t, peak, 2)
}

func TestBatch_WaitCancelled(t *testing.T) {
	pool := NewPool(1) // never started
	batch := pool.Submit("stuck", funcTask("a", func(context.Context) error { return nil }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, batch.Wait(ctx), context.DeadlineExceeded)
	assert.Equal(t, 1, batch.Pending())
}

func TestBatch_Empty(t *testing.T) {
	batch := NewPool(1).Submit("empty")
	select {
	case <-batch.Done():
	case <-time.After(time.Second):
		t.Fatal("empty batch should be done")
	}
	assert.Empty(t, batch.Results())
}

func TestBatch_Summary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool := NewPool(2)
	pool.Start(ctx)

	boom := errors.New("boom")
	batch := pool.Submit("b",
		funcTask("a", func(context.Context) error { return boom }),
		funcTask("b", func(context.Context) error { return nil }),
	)
	require.NoError(t, batch.Wait(context.Background()))

	assert.Equal(t, Summary{ID: "b", Total: 2, Pending: 0, Failed: 1}, batch.Summary())
}
