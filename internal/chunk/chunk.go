package chunk

import (
	"github.com/annel0/worldgen/internal/vec"
)

// ColumnArea - количество колонок блоков в чанке (16x16)
const ColumnArea = BlockSize * BlockSize

// StructureReference ссылается на старт структуры в соседней колонке
type StructureReference struct {
	Kind   string   `json:"kind"`
	Origin vec.Vec2 `json:"origin"`
}

// ChunkData - готовая колонка чанков: секции блоков и биомов, освещение, карта высот и ссылки на структуры.
// Пока колонку заполняет генератор, он владеет ею единолично; после передачи миру данные не изменяются.
type ChunkData struct {
	Position   vec.Vec2
	Sections   ChunkSections
	Light      ChunkLight
	Heightmap  [ColumnArea]int // Абсолютная высота первого воздушного блока над поверхностью
	Structures []StructureReference
}

// NewChunkData создаёт пустую колонку с sectionCount секциями, начиная с minY
func NewChunkData(pos vec.Vec2, sectionCount int, minY int) *ChunkData {
	return &ChunkData{
		Position: pos,
		Sections: NewChunkSections(sectionCount, minY),
		Light:    NewChunkLight(sectionCount),
	}
}

// GetBlock возвращает блок по локальным X/Z и абсолютной высоте
func (c *ChunkData) GetBlock(x, absY, z int) BlockState {
	return c.Sections.GetBlock(x, absY, z)
}

// GetBiome возвращает биом по локальным X/Z и абсолютной высоте в блоках
func (c *ChunkData) GetBiome(x, absY, z int) BiomeID {
	return c.Sections.GetBiome(x, absY, z)
}

// Height возвращает высоту поверхности для локальных X/Z
func (c *ChunkData) Height(x, z int) int {
	return c.Heightmap[z*BlockSize+x]
}

// SetHeight устанавливает высоту поверхности для локальных X/Z
func (c *ChunkData) SetHeight(x, z int, y int) {
	c.Heightmap[z*BlockSize+x] = y
}

// SkyLight возвращает небесный свет по локальным X/Z и абсолютной высоте
func (c *ChunkData) SkyLight(x, absY, z int) uint8 {
	idx := c.Sections.SectionIndex(absY)
	if idx < 0 || idx >= len(c.Light.SkyLight) {
		if idx >= len(c.Light.SkyLight) {
			return MaxLight
		}
		return 0
	}
	return c.Light.SkyLight[idx].Get(x, floorMod(absY-c.Sections.MinY, BlockSize), z)
}
