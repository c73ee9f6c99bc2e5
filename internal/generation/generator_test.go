package generation

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/worldgen/internal/chunk"
	"github.com/annel0/worldgen/internal/logging"
	"github.com/annel0/worldgen/internal/vec"
)

// memorySink собирает готовые колонки в памяти
type memorySink struct {
	mu       sync.Mutex
	chunks   map[vec.Vec2]*chunk.ChunkData
	accepted map[vec.Vec2]int
	existing map[vec.Vec2]bool
}

func newMemorySink() *memorySink {
	return &memorySink{
		chunks:   make(map[vec.Vec2]*chunk.ChunkData),
		accepted: make(map[vec.Vec2]int),
		existing: make(map[vec.Vec2]bool),
	}
}

func (s *memorySink) Accept(data *chunk.ChunkData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[data.Position] = data
	s.accepted[data.Position]++
}

func (s *memorySink) Contains(pos vec.Vec2) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existing[pos]
}

type stageRecorder struct {
	mu     sync.Mutex
	stages []Stage
	chunks int
}

func (r *stageRecorder) StageCompleted(stage Stage, _ int, _ time.Duration) {
	r.mu.Lock()
	r.stages = append(r.stages, stage)
	r.mu.Unlock()
}

func (r *stageRecorder) ChunkGenerated(vec.Vec2) {
	r.mu.Lock()
	r.chunks++
	r.mu.Unlock()
}

func executeAll(gen WorldGenerator, req LoadRequest) {
	exp := req.Expand()
	for unit, ok := exp.Next(); ok; unit, ok = exp.Next() {
		gen.Execute(context.Background(), unit)
	}
}

func TestVanillaGenerator_EndOrigin(t *testing.T) {
	sink := newMemorySink()
	rec := &stageRecorder{}
	gen := NewVanillaGenerator(42, End, sink, WithGeneratorObserver(rec))

	executeAll(gen, NewLoadRequest(vec.Vec2{}, 0))

	require.Len(t, sink.chunks, 1, "Запрос радиуса 0 даёт одну готовую колонку")
	data := sink.chunks[vec.Vec2{}]
	require.NotNil(t, data)

	assert.Equal(t, 16, data.Sections.Len())
	assert.Equal(t, chunk.EndStone, data.GetBlock(0, 70, 0))
	assert.Equal(t, chunk.Air, data.GetBlock(0, 100, 0))
	assert.Equal(t, chunk.Air, data.GetBlock(0, 10, 0))
	assert.Equal(t, 80, data.Height(0, 0), "Вершина центрального острова")
	assert.Equal(t, uint8(chunk.MaxLight), data.SkyLight(0, 100, 0))
	assert.Equal(t, uint8(0), data.SkyLight(0, 50, 0))
	assert.Equal(t, chunk.BiomeTheEnd, data.GetBiome(7, 64, 7))

	assert.Equal(t, int64(1), gen.Generated())
	assert.Equal(t, 48, gen.Protos().Len(), "Буфер готовой колонки освобождается, соседние остаются")

	assert.Equal(t, []Stage{StageStructureStarts, StageBiome, StageCarver, StageLight, StageTerrain}, rec.stages)
	assert.Equal(t, 1, rec.chunks)
}

func TestVanillaGenerator_StructureReferences(t *testing.T) {
	sink := newMemorySink()
	gen := NewVanillaGenerator(7, End, sink)

	origin := vec.Vec2{X: 3, Z: -2}
	executeAll(gen, NewLoadRequest(origin, 0))

	data := sink.chunks[origin]
	require.NotNil(t, data)
	for _, ref := range data.Structures {
		assert.LessOrEqual(t, origin.ChebyshevTo(ref.Origin), structureReferenceRadius)
		start, ok := gen.Structures().Get(ref.Origin)
		assert.True(t, ok)
		assert.Equal(t, "end_city", start.Kind)
	}

	// Индекс содержит ровно те колонки квадрата старта структур, где хэш даёт старт
	expected := 0
	cursor := NewRingCursor(origin, 0, StageStructureStarts.Padding())
	for pos, ok := cursor.Next(); ok; pos, ok = cursor.Next() {
		if _, ok := structureStartAt(gen.random, End, pos); ok {
			expected++
		}
	}
	assert.Equal(t, expected, gen.Structures().Len())
}

func TestVanillaGenerator_EveryColumnOnce(t *testing.T) {
	sink := newMemorySink()
	pool := NewWorkerPool(4)
	defer pool.Stop()
	gen := NewVanillaGenerator(1, End, sink, WithWorkerPool(pool))

	origin := vec.Vec2{X: -1, Z: 1}
	executeAll(gen, NewLoadRequest(origin, 1))

	assert.Len(t, sink.accepted, 9)
	for pos, n := range sink.accepted {
		assert.Equal(t, 1, n, "Колонка %s принята %d раз", pos, n)
		assert.LessOrEqual(t, origin.ChebyshevTo(pos), 1)
	}
}

func TestVanillaGenerator_SkipsCompletedColumns(t *testing.T) {
	sink := newMemorySink()
	sink.existing[vec.Vec2{}] = true
	gen := NewVanillaGenerator(42, End, sink)

	executeAll(gen, NewLoadRequest(vec.Vec2{}, 0))

	assert.Empty(t, sink.accepted, "Готовая колонка не генерируется повторно")
	assert.Equal(t, int64(0), gen.Generated())
	assert.Equal(t, 48, gen.Protos().Len())
}

func TestVanillaGenerator_DeterministicWithPool(t *testing.T) {
	pos := vec.Vec2{X: 2, Z: 5}

	plainSink := newMemorySink()
	executeAll(NewVanillaGenerator(99, Nether, plainSink), NewLoadRequest(pos, 0))

	pool := NewWorkerPool(3)
	defer pool.Stop()
	pooledSink := newMemorySink()
	executeAll(NewVanillaGenerator(99, Nether, pooledSink, WithWorkerPool(pool)), NewLoadRequest(pos, 0))

	a, b := plainSink.chunks[pos], pooledSink.chunks[pos]
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, a.Sections, b.Sections, "Одинаковый сид даёт одинаковую колонку")
	assert.Equal(t, a.Heightmap, b.Heightmap)
	assert.Equal(t, a.Structures, b.Structures)
}

func TestVanillaGenerator_NetherShape(t *testing.T) {
	sink := newMemorySink()
	gen := NewVanillaGenerator(5, Nether, sink)
	executeAll(gen, NewLoadRequest(vec.Vec2{}, 0))

	data := sink.chunks[vec.Vec2{}]
	require.NotNil(t, data)
	for z := 0; z < chunk.BlockSize; z++ {
		for x := 0; x < chunk.BlockSize; x++ {
			assert.Equal(t, chunk.Bedrock, data.GetBlock(x, 0, z))
			assert.Equal(t, chunk.Bedrock, data.GetBlock(x, netherRoof-1, z))
			assert.Equal(t, chunk.Air, data.GetBlock(x, netherRoof+10, z))
			assert.Equal(t, netherRoof, data.Height(x, z), "Свод Незера - самый высокий блок")
		}
	}
	biome := data.GetBiome(0, 40, 0)
	assert.True(t, biome == chunk.BiomeNetherWastes || biome == chunk.BiomeSoulSandValley)
}

func TestVanillaGenerator_OverworldColumn(t *testing.T) {
	sink := newMemorySink()
	gen := NewVanillaGenerator(2024, Overworld, sink)
	executeAll(gen, NewLoadRequest(vec.Vec2{X: 4, Z: 4}, 0))

	data := sink.chunks[vec.Vec2{X: 4, Z: 4}]
	require.NotNil(t, data)
	assert.Equal(t, 24, data.Sections.Len())

	shape := gen.Settings().Shape
	for z := 0; z < chunk.BlockSize; z++ {
		for x := 0; x < chunk.BlockSize; x++ {
			assert.Equal(t, chunk.Bedrock, data.GetBlock(x, shape.MinY, z))

			h := data.Height(x, z)
			require.Greater(t, h, shape.MinY)
			require.LessOrEqual(t, h, shape.MaxY())
			assert.Equal(t, chunk.Air, data.GetBlock(x, h, z), "Над картой высот воздух")
			assert.False(t, data.GetBlock(x, h-1, z).IsAir(), "Под картой высот твёрдый блок или жидкость")
			assert.Equal(t, uint8(chunk.MaxLight), data.SkyLight(x, h, z))
		}
	}
}

func TestVanillaGenerator_EvictedBuffersRederived(t *testing.T) {
	sink := newMemorySink()
	gen := NewVanillaGenerator(42, End, sink, WithProtoCapacity(10))
	executeAll(gen, NewLoadRequest(vec.Vec2{}, 0))

	data := sink.chunks[vec.Vec2{}]
	require.NotNil(t, data)
	assert.Equal(t, chunk.EndStone, data.GetBlock(0, 70, 0))
	assert.Equal(t, 80, data.Height(0, 0))
	assert.Greater(t, gen.Protos().Evicted(), uint64(0))
	assert.LessOrEqual(t, gen.Protos().Len(), 10)
}

func TestScheduler_DrivesVanillaGenerator(t *testing.T) {
	sink := newMemorySink()
	gen := NewVanillaGenerator(3, End, sink)

	ch := make(chan LoadRequest, 2)
	ch <- NewLoadRequest(vec.Vec2{}, 1)
	ch <- NewLoadRequest(vec.Vec2{X: 20}, 0)
	close(ch)

	NewScheduler(gen, ch).Run(context.Background())
	assert.Len(t, sink.accepted, 10)
}

func TestVanillaGenerator_StageLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewConsoleLogger("generation", &buf)
	logger.SetLevels(logging.TRACE, logging.TRACE)

	gen := NewVanillaGenerator(11, End, newMemorySink(), WithGeneratorLogger(logger))
	gen.Execute(context.Background(), newWorkUnit(NewLoadRequest(vec.Vec2{}, 0), 0))

	out := buf.String()
	for _, stage := range Stages() {
		assert.Contains(t, out, stage.String()+": колонок", "Стадия %s пишет строку в лог", stage)
	}
	assert.Equal(t, 1, strings.Count(out, StageTerrain.String()+": колонок 1 "))
}
