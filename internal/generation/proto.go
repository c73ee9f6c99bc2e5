package generation

import (
	"fmt"
	"sync"

	"github.com/annel0/worldgen/internal/chunk"
	"github.com/annel0/worldgen/internal/vec"
)

// ProtoChunk - рабочий буфер колонки между стадиями.
// Biome и Carver его заполняют, Light дополняет картой высот и светом, Terrain переносит в ChunkData.
type ProtoChunk struct {
	mu sync.Mutex

	Position  vec.Vec2
	settings  GenerationSettings
	completed uint8

	biomes    []chunk.BiomeID    // 4x4 ячейки на каждый биомный слой
	blocks    []chunk.BlockState // nil до стадии Carver
	surface   [chunk.ColumnArea]int
	heightmap [chunk.ColumnArea]int
	light     chunk.ChunkLight
}

func newProtoChunk(pos vec.Vec2, settings GenerationSettings) *ProtoChunk {
	layers := biomeFromBlock(settings.Shape.Height)
	return &ProtoChunk{
		Position: pos,
		settings: settings,
		biomes:   make([]chunk.BiomeID, layers*chunk.BiomeSize*chunk.BiomeSize),
	}
}

// Has сообщает, выполнена ли стадия над буфером
func (p *ProtoChunk) Has(stage Stage) bool {
	return p.completed&(1<<stage) != 0
}

func (p *ProtoChunk) mark(stage Stage) {
	p.completed |= 1 << stage
}

// GetBiome возвращает биом ячейки pos: X/Z локальные биомные, Y - абсолютная биомная высота
func (p *ProtoChunk) GetBiome(pos vec.Vec3) chunk.BiomeID {
	return p.biomes[p.biomeIndex(pos.X, pos.Y, pos.Z)]
}

func (p *ProtoChunk) setBiome(x, biomeY, z int, biome chunk.BiomeID) {
	p.biomes[p.biomeIndex(x, biomeY, z)] = biome
}

// biomeAtBlock возвращает биом ячейки, содержащей блок с локальными X/Z и абсолютной высотой
func (p *ProtoChunk) biomeAtBlock(x, absY, z int) chunk.BiomeID {
	shape := p.settings.Shape
	if absY < shape.MinY {
		absY = shape.MinY
	} else if absY >= shape.MaxY() {
		absY = shape.MaxY() - 1
	}
	return p.GetBiome(vec.Vec3{X: biomeFromBlock(x), Y: biomeFromBlock(absY), Z: biomeFromBlock(z)})
}

func (p *ProtoChunk) biomeIndex(x, biomeY, z int) int {
	y := biomeY - biomeFromBlock(p.settings.Shape.MinY)
	layers := len(p.biomes) / (chunk.BiomeSize * chunk.BiomeSize)
	if x < 0 || x >= chunk.BiomeSize || z < 0 || z >= chunk.BiomeSize || y < 0 || y >= layers {
		panic(fmt.Sprintf("generation: биомная ячейка (%d,%d,%d) вне колонки", x, biomeY, z))
	}
	return (y*chunk.BiomeSize+z)*chunk.BiomeSize + x
}

// GetBlockState возвращает блок в pos (локальные X/Z, абсолютная Y); вне колонки - воздух
func (p *ProtoChunk) GetBlockState(pos vec.Vec3) chunk.BlockState {
	if p.blocks == nil || !p.settings.Shape.Contains(pos.Y) {
		return chunk.Air
	}
	return p.blocks[p.blockIndex(pos.X, pos.Y, pos.Z)]
}

func (p *ProtoChunk) setBlockState(x, absY, z int, state chunk.BlockState) {
	p.blocks[p.blockIndex(x, absY, z)] = state
}

func (p *ProtoChunk) blockIndex(x, absY, z int) int {
	y := absY - p.settings.Shape.MinY
	if x < 0 || x >= chunk.BlockSize || z < 0 || z >= chunk.BlockSize || y < 0 || y >= p.settings.Shape.Height {
		panic(fmt.Sprintf("generation: блок (%d,%d,%d) вне колонки", x, absY, z))
	}
	return (y*chunk.BlockSize+z)*chunk.BlockSize + x
}

// Height возвращает высоту карты высот, посчитанную стадией Light
func (p *ProtoChunk) Height(x, z int) int {
	return p.heightmap[z*chunk.BlockSize+x]
}

// ProtoStore владеет рабочими буферами колонок. Ёмкость ограничена: при переполнении
// вытесняются самые старые буферы. Вытесненный буфер заново выводится при следующем запросе,
// так как все стадии детерминированы.
type ProtoStore struct {
	mu       sync.Mutex
	settings GenerationSettings
	capacity int
	entries  map[vec.Vec2]protoEntry
	order    []protoEntryKey
	head     int
	seq      uint64
	evicted  uint64
}

type protoEntry struct {
	proto *ProtoChunk
	seq   uint64
}

type protoEntryKey struct {
	pos vec.Vec2
	seq uint64
}

// NewProtoStore создаёт хранилище на capacity буферов (<= 0 - 4096)
func NewProtoStore(settings GenerationSettings, capacity int) *ProtoStore {
	if capacity <= 0 {
		capacity = 4096
	}
	return &ProtoStore{
		settings: settings,
		capacity: capacity,
		entries:  make(map[vec.Vec2]protoEntry),
	}
}

// Acquire возвращает буфер колонки, создавая его при необходимости
func (s *ProtoStore) Acquire(pos vec.Vec2) *ProtoChunk {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[pos]; ok {
		return e.proto
	}

	for len(s.entries) >= s.capacity {
		s.evictOldest()
	}

	s.seq++
	proto := newProtoChunk(pos, s.settings)
	s.entries[pos] = protoEntry{proto: proto, seq: s.seq}
	s.order = append(s.order, protoEntryKey{pos: pos, seq: s.seq})
	return proto
}

// Release удаляет буфер колонки после переноса в ChunkData
func (s *ProtoStore) Release(pos vec.Vec2) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, pos)
	s.compact()
}

// Len возвращает количество буферов
func (s *ProtoStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Evicted возвращает количество вытесненных буферов
func (s *ProtoStore) Evicted() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evicted
}

// evictOldest удаляет самый старый живой буфер; устаревшие ключи очереди пропускаются
func (s *ProtoStore) evictOldest() {
	for s.head < len(s.order) {
		key := s.order[s.head]
		s.head++
		if e, ok := s.entries[key.pos]; ok && e.seq == key.seq {
			delete(s.entries, key.pos)
			s.evicted++
			break
		}
	}
	s.compact()
}

// compact отбрасывает обработанную часть очереди и, если очередь разрослась из-за Release,
// оставляет в ней только ключи живых буферов
func (s *ProtoStore) compact() {
	if len(s.order)-s.head > 2*s.capacity {
		live := s.order[:0]
		for _, key := range s.order[s.head:] {
			if e, ok := s.entries[key.pos]; ok && e.seq == key.seq {
				live = append(live, key)
			}
		}
		s.order = live
		s.head = 0
		return
	}
	if s.head == 0 || s.head < len(s.order)/2 {
		return
	}
	n := copy(s.order, s.order[s.head:])
	s.order = s.order[:n]
	s.head = 0
}
