package chunk

import "fmt"

const (
	// BlockSize - ребро сетки блоков одной секции
	BlockSize = 16
	// BiomeSize - ребро сетки биомов одной секции (один биом на 4x4x4 блока)
	BiomeSize = 4

	blockVolume = BlockSize * BlockSize * BlockSize
	biomeVolume = BiomeSize * BiomeSize * BiomeSize
)

// BlockPalette хранит состояния блоков секции 16x16x16.
// Индекс = y*256 + z*16 + x.
type BlockPalette struct {
	states [blockVolume]BlockState
}

// Get возвращает состояние блока по локальным координатам
func (p *BlockPalette) Get(x, y, z int) BlockState {
	return p.states[blockIndex(x, y, z)]
}

// Set устанавливает состояние блока по локальным координатам
func (p *BlockPalette) Set(x, y, z int, state BlockState) {
	p.states[blockIndex(x, y, z)] = state
}

// Fill заполняет всю секцию одним состоянием
func (p *BlockPalette) Fill(state BlockState) {
	for i := range p.states {
		p.states[i] = state
	}
}

// IsUniform возвращает true, если все блоки секции одинаковы
func (p *BlockPalette) IsUniform() bool {
	first := p.states[0]
	for _, s := range p.states[1:] {
		if s != first {
			return false
		}
	}
	return true
}

// States возвращает копию сырых данных секции (для сериализации)
func (p *BlockPalette) States() []BlockState {
	out := make([]BlockState, blockVolume)
	copy(out, p.states[:])
	return out
}

// Load загружает сырые данные секции
func (p *BlockPalette) Load(states []BlockState) error {
	if len(states) != blockVolume {
		return fmt.Errorf("неверный размер секции блоков: %d, ожидалось %d", len(states), blockVolume)
	}
	copy(p.states[:], states)
	return nil
}

// BiomePalette хранит биомы секции 4x4x4.
// Индекс = y*16 + z*4 + x.
type BiomePalette struct {
	biomes [biomeVolume]BiomeID
}

// Get возвращает биом по локальным биомным координатам
func (p *BiomePalette) Get(x, y, z int) BiomeID {
	return p.biomes[biomeIndex(x, y, z)]
}

// Set устанавливает биом по локальным биомным координатам
func (p *BiomePalette) Set(x, y, z int, biome BiomeID) {
	p.biomes[biomeIndex(x, y, z)] = biome
}

// Biomes возвращает копию сырых данных
func (p *BiomePalette) Biomes() []BiomeID {
	out := make([]BiomeID, biomeVolume)
	copy(out, p.biomes[:])
	return out
}

// Load загружает сырые данные биомов
func (p *BiomePalette) Load(biomes []BiomeID) error {
	if len(biomes) != biomeVolume {
		return fmt.Errorf("неверный размер секции биомов: %d, ожидалось %d", len(biomes), biomeVolume)
	}
	copy(p.biomes[:], biomes)
	return nil
}

func blockIndex(x, y, z int) int {
	if uint(x) >= BlockSize || uint(y) >= BlockSize || uint(z) >= BlockSize {
		panic(fmt.Sprintf("chunk: координаты блока вне секции: (%d,%d,%d)", x, y, z))
	}
	return y*BlockSize*BlockSize + z*BlockSize + x
}

func biomeIndex(x, y, z int) int {
	if uint(x) >= BiomeSize || uint(y) >= BiomeSize || uint(z) >= BiomeSize {
		panic(fmt.Sprintf("chunk: координаты биома вне секции: (%d,%d,%d)", x, y, z))
	}
	return y*BiomeSize*BiomeSize + z*BiomeSize + x
}
