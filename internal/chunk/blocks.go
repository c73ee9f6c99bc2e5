package chunk

// BlockState представляет идентификатор состояния блока в сетке секции
type BlockState uint16

// Константы состояний блоков
const (
	// Базовые типы блоков
	Air      BlockState = iota // 0
	Stone                      // 1
	Grass                      // 2
	Dirt                       // 3
	Sand                       // 4
	Gravel                     // 5
	Bedrock                    // 6
	Water                      // 7
	Lava                       // 8
	Snow                       // 9
	Sandstone                  // 10

	// Блоки других измерений (начиная с 100)
	Netherrack BlockState = 100 // Адский камень
	SoulSand   BlockState = 101 // Песок душ
	EndStone   BlockState = 102 // Эндерняк
)

var blockNames = map[BlockState]string{
	Air:        "air",
	Stone:      "stone",
	Grass:      "grass_block",
	Dirt:       "dirt",
	Sand:       "sand",
	Gravel:     "gravel",
	Bedrock:    "bedrock",
	Water:      "water",
	Lava:       "lava",
	Snow:       "snow_block",
	Sandstone:  "sandstone",
	Netherrack: "netherrack",
	SoulSand:   "soul_sand",
	EndStone:   "end_stone",
}

// String возвращает имя блока
func (b BlockState) String() string {
	if name, ok := blockNames[b]; ok {
		return name
	}
	return "unknown"
}

// IsAir возвращает true для пустого блока
func (b BlockState) IsAir() bool {
	return b == Air
}

// IsFluid возвращает true для жидкостей
func (b BlockState) IsFluid() bool {
	return b == Water || b == Lava
}

// LightEmission возвращает уровень собственного свечения блока (0-15)
func (b BlockState) LightEmission() uint8 {
	if b == Lava {
		return 15
	}
	return 0
}

// BiomeID представляет идентификатор биома в сетке биомов секции
type BiomeID uint8

const (
	BiomePlains BiomeID = iota
	BiomeDesert
	BiomeForest
	BiomeMountains
	BiomeSnowyPlains
	BiomeOcean
	BiomeDeepOcean

	// Биомы Незера и Энда
	BiomeNetherWastes   BiomeID = 100
	BiomeSoulSandValley BiomeID = 101
	BiomeTheEnd         BiomeID = 120
	BiomeEndHighlands   BiomeID = 121
)

var biomeNames = map[BiomeID]string{
	BiomePlains:         "plains",
	BiomeDesert:         "desert",
	BiomeForest:         "forest",
	BiomeMountains:      "mountains",
	BiomeSnowyPlains:    "snowy_plains",
	BiomeOcean:          "ocean",
	BiomeDeepOcean:      "deep_ocean",
	BiomeNetherWastes:   "nether_wastes",
	BiomeSoulSandValley: "soul_sand_valley",
	BiomeTheEnd:         "the_end",
	BiomeEndHighlands:   "end_highlands",
}

// String возвращает имя биома
func (b BiomeID) String() string {
	if name, ok := biomeNames[b]; ok {
		return name
	}
	return "unknown"
}
