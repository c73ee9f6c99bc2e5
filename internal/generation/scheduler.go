package generation

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/annel0/worldgen/internal/logging"
)

// SchedulerObserver получает события планировщика (метрики, тесты)
type SchedulerObserver interface {
	RequestAdmitted(req LoadRequest)
	UnitExecuted(unit WorkUnit, elapsed time.Duration)
	RequestCompleted(req LoadRequest)
	QueueDepth(depth int)
}

// SchedulerStats - снимок счётчиков планировщика
type SchedulerStats struct {
	Admitted  int64 `json:"admitted"`
	Executed  int64 `json:"executed"`
	Completed int64 `json:"completed"`
	Rounds    int64 `json:"rounds"`
	Pending   int   `json:"pending"`
}

type schedulerCounters struct {
	admitted  atomic.Int64
	executed  atomic.Int64
	completed atomic.Int64
	rounds    atomic.Int64
	pending   atomic.Int64
}

// Scheduler по кругу чередует единицы работы активных запросов.
// В начале каждого раунда он забирает все ожидающие запросы из канала и фиксирует длину раунда;
// за раунд каждая задача, стоявшая в очереди на его начало, обслуживается ровно один раз.
// Запросы, пришедшие посреди раунда, ждут следующего раунда.
type Scheduler struct {
	generator WorldGenerator
	requests  <-chan LoadRequest
	ready     readyList
	countdown int
	observer  SchedulerObserver
	logger    *logging.Logger
	stats     schedulerCounters
}

// SchedulerOption настраивает планировщик
type SchedulerOption func(*Scheduler)

// WithObserver подключает наблюдателя событий
func WithObserver(o SchedulerObserver) SchedulerOption {
	return func(s *Scheduler) { s.observer = o }
}

// WithSchedulerLogger задаёт логгер планировщика
func WithSchedulerLogger(l *logging.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

// NewScheduler создаёт планировщик; requests читает только он
func NewScheduler(gen WorldGenerator, requests <-chan LoadRequest, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		generator: gen,
		requests:  requests,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.GetSchedulerLogger()
	}
	return s
}

// Run крутит цикл планировщика в вызывающей горутине до закрытия канала запросов.
// Канал проверяется на закрытие только в простое, поэтому принятые запросы всегда выполняются до конца.
// ctx передаётся генератору для трассировки; отмена принятой работы не поддерживается.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("🚀 Планировщик генерации запущен")
	for s.step(ctx) {
	}
	s.logger.Info("🛑 Канал запросов закрыт, планировщик остановлен (выполнено единиц: %d)", s.stats.executed.Load())
}

// step выполняет один шаг цикла; false означает остановку
func (s *Scheduler) step(ctx context.Context) bool {
	if s.countdown == 0 {
		s.admit()
	}

	if task, ok := s.ready.popBack(); ok {
		s.service(ctx, task)
		s.countdown--
		return true
	}

	// Очередь пуста - ждём следующий запрос
	s.logger.Trace("💤 Очередь пуста, ожидание запроса")
	req, ok := <-s.requests
	if !ok {
		return false
	}
	s.enqueue(req)
	s.admit()
	return true
}

// admit без блокировки забирает все ожидающие запросы и начинает новый раунд
func (s *Scheduler) admit() {
drain:
	for {
		select {
		case req, ok := <-s.requests:
			if !ok {
				break drain
			}
			s.enqueue(req)
		default:
			break drain
		}
	}
	s.countdown = s.ready.len()
	s.stats.rounds.Add(1)
	s.reportDepth()
}

func (s *Scheduler) enqueue(req LoadRequest) {
	s.ready.pushFront(req.Expand())
	s.stats.admitted.Add(1)
	s.stats.pending.Add(1)
	s.logger.Debug("📥 Принят запрос %s: центр %s, радиус %d", req.ID, req.Origin, req.Radius)
	if s.observer != nil {
		s.observer.RequestAdmitted(req)
	}
}

// service выполняет одну единицу работы задачи и возвращает задачу в начало очереди
func (s *Scheduler) service(ctx context.Context, task *Expansion) {
	unit, ok := task.Next()
	if !ok {
		return
	}

	start := time.Now()
	s.generator.Execute(ctx, unit)
	elapsed := time.Since(start)

	s.stats.executed.Add(1)
	if s.observer != nil {
		s.observer.UnitExecuted(unit, elapsed)
	}

	if task.HasNext() {
		s.ready.pushFront(task)
	} else {
		s.complete(task.Request())
	}
	s.reportDepth()
}

func (s *Scheduler) complete(req LoadRequest) {
	s.stats.completed.Add(1)
	s.stats.pending.Add(-1)
	s.logger.Debug("✅ Запрос %s выполнен", req.ID)
	if s.observer != nil {
		s.observer.RequestCompleted(req)
	}
}

func (s *Scheduler) reportDepth() {
	if s.observer != nil {
		s.observer.QueueDepth(s.ready.len())
	}
}

// Stats возвращает снимок счётчиков; безопасен для вызова из других горутин
func (s *Scheduler) Stats() SchedulerStats {
	return SchedulerStats{
		Admitted:  s.stats.admitted.Load(),
		Executed:  s.stats.executed.Load(),
		Completed: s.stats.completed.Load(),
		Rounds:    s.stats.rounds.Load(),
		Pending:   int(s.stats.pending.Load()),
	}
}

// ObserverGroup рассылает события нескольким наблюдателям
type ObserverGroup []SchedulerObserver

func (g ObserverGroup) RequestAdmitted(req LoadRequest) {
	for _, o := range g {
		o.RequestAdmitted(req)
	}
}

func (g ObserverGroup) UnitExecuted(unit WorkUnit, elapsed time.Duration) {
	for _, o := range g {
		o.UnitExecuted(unit, elapsed)
	}
}

func (g ObserverGroup) RequestCompleted(req LoadRequest) {
	for _, o := range g {
		o.RequestCompleted(req)
	}
}

func (g ObserverGroup) QueueDepth(depth int) {
	for _, o := range g {
		o.QueueDepth(depth)
	}
}
