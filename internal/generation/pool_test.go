package generation

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool_RunWaitsForAllTasks(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Stop()

	var counter atomic.Int64
	tasks := make([]func(), 100)
	for i := range tasks {
		tasks[i] = func() { counter.Add(1) }
	}

	pool.Run(tasks)
	assert.Equal(t, int64(100), counter.Load(), "Run возвращается только после всех задач")
	assert.Equal(t, int64(100), pool.TasksTotal())
	assert.Equal(t, 4, pool.Workers())
	assert.Contains(t, pool.GetStats(), "4 workers")
}

func TestWorkerPool_RunAfterStop(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Stop()
	pool.Stop()

	var counter atomic.Int64
	pool.Run([]func(){
		func() { counter.Add(1) },
		func() { counter.Add(2) },
	})
	assert.Equal(t, int64(3), counter.Load(), "После остановки задачи выполняются в вызывающей горутине")
}
