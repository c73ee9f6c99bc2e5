package generation

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/worldgen/internal/logging"
)

// WorkerPool выполняет заполнение колонок параллельно на фиксированном наборе воркеров
type WorkerPool struct {
	workerCount  int
	taskChan     chan poolTask  // Канал задач для воркеров
	shutdownChan chan struct{}  // Канал для остановки
	wg           sync.WaitGroup // WaitGroup для воркеров
	mu           sync.RWMutex // Защищает stopped от гонки с Run
	stopped      bool
	stats        WorkerPoolStats
	logger       *logging.Logger
}

// WorkerPoolStats содержит статистику пула
type WorkerPoolStats struct {
	tasksTotal     atomic.Int64
	tasksPerSecond atomic.Int64
	taskDuration   atomic.Int64 // в наносекундах
}

type poolTask struct {
	fn   func()
	done *sync.WaitGroup
}

// NewWorkerPool создаёт пул и запускает воркеров (workerCount <= 0 - по числу CPU)
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	p := &WorkerPool{
		workerCount:  workerCount,
		taskChan:     make(chan poolTask, workerCount*2),
		shutdownChan: make(chan struct{}),
		logger:       logging.GetGenerationLogger(),
	}

	// Запускаем воркеров
	for i := 0; i < workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	// Запускаем сборщик статистики
	p.wg.Add(1)
	go p.statsCollector()

	return p
}

// Run выполняет все задачи и ждёт их завершения. После Stop задачи выполняются в вызывающей горутине.
func (p *WorkerPool) Run(tasks []func()) {
	var done sync.WaitGroup
	done.Add(len(tasks))

	p.mu.RLock()
	if p.stopped {
		p.mu.RUnlock()
		for _, fn := range tasks {
			p.execute(poolTask{fn: fn, done: &done})
		}
		return
	}
	for _, fn := range tasks {
		p.taskChan <- poolTask{fn: fn, done: &done}
	}
	p.mu.RUnlock()

	done.Wait()
}

// Workers возвращает количество воркеров
func (p *WorkerPool) Workers() int {
	return p.workerCount
}

// Stop останавливает воркеров; повторный вызов безопасен
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.shutdownChan)
	p.mu.Unlock()

	p.wg.Wait()
}

// worker обрабатывает задачи из канала
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.shutdownChan:
			// Дорабатываем задачи, уже попавшие в канал
			for {
				select {
				case task := <-p.taskChan:
					p.execute(task)
				default:
					return
				}
			}
		case task := <-p.taskChan:
			p.execute(task)
		}
	}
}

func (p *WorkerPool) execute(task poolTask) {
	start := time.Now()
	defer func() {
		p.stats.taskDuration.Add(time.Since(start).Nanoseconds())
		p.stats.tasksPerSecond.Add(1)
		p.stats.tasksTotal.Add(1)
		task.done.Done()
	}()
	task.fn()
}

// GetStats возвращает строку со статистикой пула
func (p *WorkerPool) GetStats() string {
	tasksPerSecond := p.stats.tasksPerSecond.Load()
	avgTaskMs := float64(p.stats.taskDuration.Load()) / 1e6 / float64(tasksPerSecond+1)

	return fmt.Sprintf("WorkerPool: %d workers, %d tasks total, %d tasks/s, %.2fms avg task",
		p.workerCount, p.stats.tasksTotal.Load(), tasksPerSecond, avgTaskMs)
}

// TasksTotal возвращает количество выполненных задач
func (p *WorkerPool) TasksTotal() int64 {
	return p.stats.tasksTotal.Load()
}

// statsCollector раз в секунду сбрасывает оконные счётчики и логирует статистику
func (p *WorkerPool) statsCollector() {
	defer p.wg.Done()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.shutdownChan:
			return
		case <-ticker.C:
			if p.stats.tasksPerSecond.Load() > 0 {
				p.logger.Debug("📊 %s", p.GetStats())
			}
			p.stats.tasksPerSecond.Store(0)
			p.stats.taskDuration.Store(0)
		}
	}
}
