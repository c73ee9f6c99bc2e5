package generation

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/worldgen/internal/chunk"
	"github.com/annel0/worldgen/internal/generation/noise"
	"github.com/annel0/worldgen/internal/logging"
	"github.com/annel0/worldgen/internal/vec"
)

const tracerName = "github.com/annel0/worldgen/internal/generation"

// WorldGenerator выполняет единицы работы, выданные планировщиком
type WorldGenerator interface {
	Execute(ctx context.Context, unit WorkUnit)
}

// NopGenerator ничего не генерирует; нужен для проверки порядка планирования
type NopGenerator struct{}

// Execute ничего не делает
func (NopGenerator) Execute(context.Context, WorkUnit) {}

// ChunkSink принимает готовые колонки. Методы вызываются из воркеров параллельно.
type ChunkSink interface {
	// Accept передаёт готовую колонку во владение приёмника
	Accept(data *chunk.ChunkData)
	// Contains сообщает, что колонка уже готова и стадии её пропускают
	Contains(pos vec.Vec2) bool
}

type discardSink struct{}

func (discardSink) Accept(*chunk.ChunkData)  {}
func (discardSink) Contains(vec.Vec2) bool { return false }

// GeneratorObserver получает события генератора (метрики)
type GeneratorObserver interface {
	StageCompleted(stage Stage, columns int, elapsed time.Duration)
	ChunkGenerated(pos vec.Vec2)
}

// VanillaGenerator - производственный генератор: шум, рельеф, пещеры, биомы, свет и старты структур.
// Роутер шума и кэш рельефа создаются один раз и только читаются всеми заполнениями.
type VanillaGenerator struct {
	random    noise.RandomConfig
	router    *noise.Router
	terrain   *noise.TerrainCache
	dimension Dimension
	settings  GenerationSettings

	protos        *ProtoStore
	protoCapacity int
	structures    *StructureIndex
	light         LightEngine
	pool          *WorkerPool
	sink          ChunkSink

	tracer   trace.Tracer
	observer GeneratorObserver
	logger   *logging.Logger
	stageLog [StageCount]*logging.Logger

	generated atomic.Int64
}

// GeneratorOption настраивает генератор
type GeneratorOption func(*VanillaGenerator)

// WithWorkerPool распределяет колонки кольца по пулу; без пула колонки считаются последовательно
func WithWorkerPool(p *WorkerPool) GeneratorOption {
	return func(g *VanillaGenerator) { g.pool = p }
}

// WithLightEngine заменяет движок освещения
func WithLightEngine(e LightEngine) GeneratorOption {
	return func(g *VanillaGenerator) { g.light = e }
}

// WithProtoCapacity ограничивает количество рабочих буферов
func WithProtoCapacity(n int) GeneratorOption {
	return func(g *VanillaGenerator) { g.protoCapacity = n }
}

// WithGeneratorObserver подключает наблюдателя событий
func WithGeneratorObserver(o GeneratorObserver) GeneratorOption {
	return func(g *VanillaGenerator) { g.observer = o }
}

// WithTracer задаёт трассировщик; по умолчанию берётся глобальный провайдер
func WithTracer(t trace.Tracer) GeneratorOption {
	return func(g *VanillaGenerator) { g.tracer = t }
}

// WithGeneratorLogger задаёт логгер генератора
func WithGeneratorLogger(l *logging.Logger) GeneratorOption {
	return func(g *VanillaGenerator) { g.logger = l }
}

// NewVanillaGenerator создаёт генератор для сида и измерения. sink == nil отбрасывает результат.
func NewVanillaGenerator(seed int64, dim Dimension, sink ChunkSink, opts ...GeneratorOption) *VanillaGenerator {
	random := noise.NewRandomConfig(seed)
	g := &VanillaGenerator{
		random:     random,
		router:     noise.NewRouter(random),
		terrain:    noise.NewTerrainCache(random),
		dimension:  dim,
		settings:   SettingsForDimension(dim),
		structures: NewStructureIndex(),
		light:      SkyLightEngine{},
		sink:       sink,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.sink == nil {
		g.sink = discardSink{}
	}
	if g.tracer == nil {
		g.tracer = otel.Tracer(tracerName)
	}
	for _, stage := range Stages() {
		if g.logger != nil {
			g.stageLog[stage] = g.logger
		} else {
			g.stageLog[stage] = logging.GetStageLogger(stage)
		}
	}
	if g.logger == nil {
		g.logger = logging.GetGenerationLogger()
	}
	g.protos = NewProtoStore(g.settings, g.protoCapacity)

	g.logger.Info("🌍 Генератор создан: измерение %s, сид %d, высота %d..%d",
		dim, seed, g.settings.Shape.MinY, g.settings.Shape.MaxY())
	return g
}

// Execute выполняет все стадии единицы работы, от самой широкой к самой узкой.
// Когда стадия Terrain доходит до колонки, остальные стадии уже покрыли её окрестность.
func (g *VanillaGenerator) Execute(ctx context.Context, unit WorkUnit) {
	ctx, span := g.tracer.Start(ctx, "generation.execute", trace.WithAttributes(
		attribute.String("request.id", unit.Request.ID.String()),
		attribute.Int("request.radius", unit.Request.Radius),
		attribute.Int("unit.distance", unit.Distance),
	))
	defer span.End()

	for _, stage := range executionOrder {
		g.runStage(ctx, stage, unit.Columns(stage))
	}
	g.logger.Trace("🧱 Единица %s выполнена", unit)
}

// runStage выполняет стадию над колонками одного кольца и ждёт завершения
func (g *VanillaGenerator) runStage(ctx context.Context, stage Stage, columns []vec.Vec2) {
	_, span := g.tracer.Start(ctx, "generation.stage."+stage.String(), trace.WithAttributes(
		attribute.Int("stage.columns", len(columns)),
	))
	defer span.End()

	start := time.Now()
	if g.pool == nil {
		for _, pos := range columns {
			g.ensure(stage, pos)
		}
	} else {
		tasks := make([]func(), 0, len(columns))
		for _, pos := range columns {
			pos := pos
			tasks = append(tasks, func() { g.ensure(stage, pos) })
		}
		g.pool.Run(tasks)
	}

	elapsed := time.Since(start)
	g.stageLog[stage].Trace("🔁 %s: колонок %d за %s", stage, len(columns), elapsed)
	if g.observer != nil {
		g.observer.StageCompleted(stage, len(columns), elapsed)
	}
}

// Dimension возвращает измерение генератора
func (g *VanillaGenerator) Dimension() Dimension { return g.dimension }

// Settings возвращает настройки генерации
func (g *VanillaGenerator) Settings() GenerationSettings { return g.settings }

// Structures возвращает индекс стартов структур
func (g *VanillaGenerator) Structures() *StructureIndex { return g.structures }

// Protos возвращает хранилище рабочих буферов
func (g *VanillaGenerator) Protos() *ProtoStore { return g.protos }

// Generated возвращает количество готовых колонок
func (g *VanillaGenerator) Generated() int64 { return g.generated.Load() }
