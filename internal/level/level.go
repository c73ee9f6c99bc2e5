package level

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"

	"github.com/annel0/worldgen/internal/chunk"
	"github.com/annel0/worldgen/internal/generation"
	"github.com/annel0/worldgen/internal/logging"
	"github.com/annel0/worldgen/internal/vec"
)

// ErrClosed возвращается при отправке запроса в закрытый уровень
var ErrClosed = errors.New("уровень закрыт")

// ErrOutOfBounds возвращается, если зависимости запроса выходят за границу мира
var ErrOutOfBounds = errors.New("запрос выходит за границу мира")

// ChunkStore - постоянное хранилище готовых колонок
type ChunkStore interface {
	SaveChunk(data *chunk.ChunkData) error
	LoadChunk(pos vec.Vec2) (*chunk.ChunkData, bool, error)
	HasChunk(pos vec.Vec2) (bool, error)
}

// Options настраивает уровень
type Options struct {
	QueueSize   int // Ёмкость канала запросов
	CacheChunks int // Сколько готовых колонок держать в памяти
	// Сколько завершённых запросов помнить для опроса статуса
	StatusHistory int
}

// Level - слой мира вокруг генератора: принимает запросы, хранит и кэширует готовые колонки.
// Реализует generation.ChunkSink и generation.SchedulerObserver.
type Level struct {
	requests chan generation.LoadRequest
	closeMu  sync.RWMutex
	closed   bool

	cache *ristretto.Cache
	store ChunkStore

	statusMu  sync.RWMutex
	statuses  map[uuid.UUID]*RequestStatus
	finished  []uuid.UUID
	maxStatus int

	stats  levelCounters
	logger *logging.Logger
}

type levelCounters struct {
	accepted    atomic.Int64
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
	saveErrors  atomic.Int64
	queueDepth  atomic.Int64
}

// LevelStats - снимок счётчиков уровня
type LevelStats struct {
	Accepted    int64 `json:"accepted"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	SaveErrors  int64 `json:"save_errors"`
	QueueDepth  int64 `json:"queue_depth"`
	Pending     int   `json:"pending_requests"`
}

// New создаёт уровень поверх хранилища store
func New(store ChunkStore, opts Options) (*Level, error) {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.CacheChunks <= 0 {
		opts.CacheChunks = 1024
	}
	if opts.StatusHistory <= 0 {
		opts.StatusHistory = 4096
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(opts.CacheChunks) * 10,
		MaxCost:     int64(opts.CacheChunks),
		BufferItems: 64,
		// Стоимость колонки - 1, ёмкость считается в колонках
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать кэш колонок: %w", err)
	}

	return &Level{
		requests:  make(chan generation.LoadRequest, opts.QueueSize),
		cache:     cache,
		store:     store,
		statuses:  make(map[uuid.UUID]*RequestStatus),
		maxStatus: opts.StatusHistory,
		logger:    logging.GetLevelLogger(),
	}, nil
}

// Requests возвращает канал запросов для планировщика
func (l *Level) Requests() <-chan generation.LoadRequest {
	return l.requests
}

// Submit ставит запрос генерации в очередь. Блокируется, пока очередь полна, или до отмены ctx.
func (l *Level) Submit(ctx context.Context, origin vec.Vec2, radius int) (generation.LoadRequest, error) {
	if radius < 0 {
		return generation.LoadRequest{}, fmt.Errorf("отрицательный радиус: %d", radius)
	}
	if !InBounds(origin, radius) {
		return generation.LoadRequest{}, fmt.Errorf("%w: центр %s, радиус %d", ErrOutOfBounds, origin, radius)
	}
	req := generation.NewLoadRequest(origin, radius)

	l.closeMu.RLock()
	defer l.closeMu.RUnlock()
	if l.closed {
		return generation.LoadRequest{}, ErrClosed
	}

	l.trackSubmitted(req)
	select {
	case l.requests <- req:
		logging.LogChunkRequest("level", origin.X, origin.Z, radius)
		return req, nil
	case <-ctx.Done():
		l.forget(req.ID)
		return generation.LoadRequest{}, ctx.Err()
	}
}

// Close закрывает канал запросов; планировщик доработает принятые запросы и остановится
func (l *Level) Close() {
	l.closeMu.Lock()
	defer l.closeMu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.requests)
	l.logger.Info("🔒 Очередь запросов закрыта")
}

// Shutdown освобождает кэш
func (l *Level) Shutdown() {
	l.cache.Close()
}

// InBounds сообщает, что все колонки, которые затронет запрос, лежат внутри границы мира
func InBounds(origin vec.Vec2, radius int) bool {
	if radius < 0 || radius > vec.WorldBorder {
		return false
	}
	return origin.WithinBorder(radius + generation.StageStructureStarts.Padding())
}

// Ключ кэша строится из полных координат колонки без усечения
func cacheKey(pos vec.Vec2) string {
	return fmt.Sprintf("%d:%d", pos.X, pos.Z)
}

// Accept сохраняет готовую колонку в кэш и хранилище
func (l *Level) Accept(data *chunk.ChunkData) {
	l.cache.Set(cacheKey(data.Position), data, 1)
	l.stats.accepted.Add(1)

	if l.store == nil {
		return
	}
	if err := l.store.SaveChunk(data); err != nil {
		l.stats.saveErrors.Add(1)
		l.logger.Error("❌ Не удалось сохранить колонку %s: %v", data.Position, err)
	}
}

// Contains сообщает, что колонка уже сгенерирована
func (l *Level) Contains(pos vec.Vec2) bool {
	if _, ok := l.cache.Get(cacheKey(pos)); ok {
		return true
	}
	if l.store == nil {
		return false
	}
	ok, err := l.store.HasChunk(pos)
	if err != nil {
		l.logger.Warn("⚠️ Ошибка проверки колонки %s: %v", pos, err)
		return false
	}
	return ok
}

// Chunk возвращает готовую колонку из кэша или хранилища
func (l *Level) Chunk(pos vec.Vec2) (*chunk.ChunkData, bool, error) {
	if v, ok := l.cache.Get(cacheKey(pos)); ok {
		l.stats.cacheHits.Add(1)
		return v.(*chunk.ChunkData), true, nil
	}
	l.stats.cacheMisses.Add(1)

	if l.store == nil {
		return nil, false, nil
	}
	data, ok, err := l.store.LoadChunk(pos)
	if err != nil || !ok {
		return nil, ok, err
	}
	l.cache.Set(cacheKey(pos), data, 1)
	return data, true, nil
}

// WaitCache дожидается применения отложенных записей кэша
func (l *Level) WaitCache() {
	l.cache.Wait()
}

// Stats возвращает снимок счётчиков
func (l *Level) Stats() LevelStats {
	l.statusMu.RLock()
	pending := 0
	for _, s := range l.statuses {
		if s.State != StateCompleted {
			pending++
		}
	}
	l.statusMu.RUnlock()

	return LevelStats{
		Accepted:    l.stats.accepted.Load(),
		CacheHits:   l.stats.cacheHits.Load(),
		CacheMisses: l.stats.cacheMisses.Load(),
		SaveErrors:  l.stats.saveErrors.Load(),
		QueueDepth:  l.stats.queueDepth.Load(),
		Pending:     pending,
	}
}

// RequestState - этап жизни запроса
type RequestState string

const (
	StateQueued    RequestState = "queued"
	StateRunning   RequestState = "running"
	StateCompleted RequestState = "completed"
)

// RequestStatus - прогресс запроса генерации
type RequestStatus struct {
	ID          uuid.UUID    `json:"id"`
	Origin      vec.Vec2     `json:"origin"`
	Radius      int          `json:"radius"`
	State       RequestState `json:"state"`
	UnitsDone   int          `json:"units_done"`
	UnitsTotal  int          `json:"units_total"`
	SubmittedAt time.Time    `json:"submitted_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// Status возвращает копию статуса запроса
func (l *Level) Status(id uuid.UUID) (RequestStatus, bool) {
	l.statusMu.RLock()
	defer l.statusMu.RUnlock()
	s, ok := l.statuses[id]
	if !ok {
		return RequestStatus{}, false
	}
	return *s, true
}

func (l *Level) trackSubmitted(req generation.LoadRequest) {
	l.statusMu.Lock()
	defer l.statusMu.Unlock()
	l.statuses[req.ID] = &RequestStatus{
		ID:          req.ID,
		Origin:      req.Origin,
		Radius:      req.Radius,
		State:       StateQueued,
		UnitsTotal:  req.UnitCount(),
		SubmittedAt: time.Now(),
	}
}

func (l *Level) forget(id uuid.UUID) {
	l.statusMu.Lock()
	defer l.statusMu.Unlock()
	delete(l.statuses, id)
}

// RequestAdmitted отмечает запрос, принятый планировщиком
func (l *Level) RequestAdmitted(req generation.LoadRequest) {
	l.statusMu.Lock()
	defer l.statusMu.Unlock()
	if s, ok := l.statuses[req.ID]; ok {
		s.State = StateRunning
	}
}

// UnitExecuted обновляет прогресс запроса
func (l *Level) UnitExecuted(unit generation.WorkUnit, _ time.Duration) {
	l.statusMu.Lock()
	defer l.statusMu.Unlock()
	if s, ok := l.statuses[unit.Request.ID]; ok {
		s.UnitsDone = unit.Distance + 1
	}
}

// RequestCompleted отмечает завершение запроса и ограничивает историю
func (l *Level) RequestCompleted(req generation.LoadRequest) {
	l.statusMu.Lock()
	defer l.statusMu.Unlock()

	s, ok := l.statuses[req.ID]
	if !ok {
		return
	}
	now := time.Now()
	s.State = StateCompleted
	s.CompletedAt = &now

	l.finished = append(l.finished, req.ID)
	for len(l.finished) > l.maxStatus {
		delete(l.statuses, l.finished[0])
		l.finished = l.finished[1:]
	}
	l.logger.Info("✅ Запрос %s выполнен: центр %s, радиус %d", req.ID, req.Origin, req.Radius)
}

// QueueDepth запоминает глубину очереди планировщика
func (l *Level) QueueDepth(depth int) {
	l.stats.queueDepth.Store(int64(depth))
}
