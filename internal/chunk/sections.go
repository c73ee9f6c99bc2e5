package chunk

// SubChunk - одна вертикальная секция 16x16x16 с сетками блоков и биомов
type SubChunk struct {
	BlockStates BlockPalette
	Biomes      BiomePalette
}

// ChunkSections хранит вертикальный стек секций колонки.
// Секция 0 начинается с высоты MinY.
type ChunkSections struct {
	Sections []SubChunk
	MinY     int
}

// NewChunkSections создаёт count пустых секций, начиная с высоты minY
func NewChunkSections(count int, minY int) ChunkSections {
	return ChunkSections{
		Sections: make([]SubChunk, count),
		MinY:     minY,
	}
}

// Get возвращает секцию по индексу или nil, если индекс вне стека
func (s *ChunkSections) Get(index int) *SubChunk {
	if index < 0 || index >= len(s.Sections) {
		return nil
	}
	return &s.Sections[index]
}

// Len возвращает количество секций
func (s *ChunkSections) Len() int {
	return len(s.Sections)
}

// Height возвращает суммарную высоту стека в блоках
func (s *ChunkSections) Height() int {
	return len(s.Sections) * BlockSize
}

// SectionIndex возвращает индекс секции для абсолютной высоты блока (может быть вне стека)
func (s *ChunkSections) SectionIndex(absY int) int {
	return floorDiv(absY-s.MinY, BlockSize)
}

// GetBlock возвращает блок по локальным X/Z и абсолютной высоте. Вне стека - воздух.
func (s *ChunkSections) GetBlock(x, absY, z int) BlockState {
	section := s.Get(s.SectionIndex(absY))
	if section == nil {
		return Air
	}
	return section.BlockStates.Get(x, floorMod(absY-s.MinY, BlockSize), z)
}

// GetBiome возвращает биом по локальным X/Z и абсолютной высоте в блоках
func (s *ChunkSections) GetBiome(x, absY, z int) BiomeID {
	section := s.Get(s.SectionIndex(absY))
	if section == nil {
		return BiomePlains
	}
	relY := floorMod(absY-s.MinY, BlockSize)
	return section.Biomes.Get(x/BiomeSize, relY/BiomeSize, z/BiomeSize)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
