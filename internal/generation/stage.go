package generation

// Stage - один из зависимых проходов генерации колонки
type Stage uint8

const (
	StageTerrain Stage = iota
	StageLight
	StageCarver
	StageBiome
	StageStructureStarts
)

// StageCount - количество стадий генерации
const StageCount = 5

// Дополнительный радиус каждой стадии относительно радиуса запроса
const (
	terrainPadding         = 0
	lightPadding           = terrainPadding + 1 // свет распространяется в соседние колонки
	carverPadding          = lightPadding + 1   // рельеф должен быть готов на кольцо дальше
	biomePadding           = carverPadding + 1
	structureStartsPadding = carverPadding + 8 // ссылки на структуры в радиусе 8 колонок
)

var stagePaddings = [StageCount]int{
	StageTerrain:         terrainPadding,
	StageLight:           lightPadding,
	StageCarver:          carverPadding,
	StageBiome:           biomePadding,
	StageStructureStarts: structureStartsPadding,
}

var stageNames = [StageCount]string{
	StageTerrain:         "terrain",
	StageLight:           "light",
	StageCarver:          "carver",
	StageBiome:           "biome",
	StageStructureStarts: "structure_starts",
}

// executionOrder - порядок выполнения стадий внутри единицы работы: от самой широкой к самой узкой
var executionOrder = [StageCount]Stage{
	StageStructureStarts,
	StageBiome,
	StageCarver,
	StageLight,
	StageTerrain,
}

// Padding возвращает дополнительный радиус стадии
func (s Stage) Padding() int {
	return stagePaddings[s]
}

// String возвращает имя стадии
func (s Stage) String() string {
	if int(s) >= StageCount {
		return "unknown"
	}
	return stageNames[s]
}

// Stages возвращает все стадии в порядке возрастания отступа
func Stages() []Stage {
	return []Stage{StageTerrain, StageLight, StageCarver, StageBiome, StageStructureStarts}
}
