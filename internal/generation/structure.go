package generation

import (
	"sync"

	"github.com/annel0/worldgen/internal/generation/noise"
	"github.com/annel0/worldgen/internal/vec"
)

const (
	structureStartSalt = "structure_start"
	structureChance    = 64 // Старт структуры в среднем в одной колонке из 64
	// Радиус, в котором колонка хранит ссылки на старты структур
	structureReferenceRadius = structureStartsPadding - biomePadding + 1
)

var structureKinds = map[Dimension][]string{
	Overworld: {"village", "pillager_outpost", "mineshaft", "ruined_portal", "desert_pyramid"},
	Nether:    {"fortress", "bastion_remnant", "ruined_portal"},
	End:       {"end_city"},
}

// StructureStart - старт структуры в колонке
type StructureStart struct {
	Kind   string
	Origin vec.Vec2
}

// structureStartAt решает по позиционному хэшу, начинается ли в колонке структура
func structureStartAt(random noise.RandomConfig, dim Dimension, pos vec.Vec2) (StructureStart, bool) {
	h := random.PositionalHash(structureStartSalt, pos.X, pos.Z)
	if h%structureChance != 0 {
		return StructureStart{}, false
	}
	kinds := structureKinds[dim]
	return StructureStart{Kind: kinds[(h>>8)%uint64(len(kinds))], Origin: pos}, true
}

// StructureIndex хранит найденные старты структур. Колонки без старта не хранятся.
type StructureIndex struct {
	mu     sync.RWMutex
	starts map[vec.Vec2]StructureStart
}

// NewStructureIndex создаёт пустой индекс
func NewStructureIndex() *StructureIndex {
	return &StructureIndex{starts: make(map[vec.Vec2]StructureStart)}
}

// Record сохраняет старт; повторная запись той же колонки ничего не меняет
func (i *StructureIndex) Record(start StructureStart) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.starts[start.Origin] = start
}

// Get возвращает старт в колонке
func (i *StructureIndex) Get(pos vec.Vec2) (StructureStart, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	s, ok := i.starts[pos]
	return s, ok
}

// Near возвращает старты в радиусе radius от pos, ближние первыми
func (i *StructureIndex) Near(pos vec.Vec2, radius int) []StructureStart {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var out []StructureStart
	cursor := NewRingCursor(pos, 0, radius)
	for p, ok := cursor.Next(); ok; p, ok = cursor.Next() {
		if s, found := i.starts[p]; found {
			out = append(out, s)
		}
	}
	return out
}

// Len возвращает количество стартов
func (i *StructureIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.starts)
}
