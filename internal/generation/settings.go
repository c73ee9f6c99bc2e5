package generation

import (
	"fmt"
	"strings"

	"github.com/annel0/worldgen/internal/chunk"
)

// Dimension - измерение мира, для которого строится генератор
type Dimension uint8

const (
	Overworld Dimension = iota
	Nether
	End
)

func (d Dimension) String() string {
	switch d {
	case Overworld:
		return "overworld"
	case Nether:
		return "nether"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// ParseDimension разбирает имя измерения из конфигурации
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "overworld", "minecraft:overworld":
		return Overworld, nil
	case "nether", "the_nether", "minecraft:the_nether":
		return Nether, nil
	case "end", "the_end", "minecraft:the_end":
		return End, nil
	default:
		return Overworld, fmt.Errorf("неизвестное измерение: %q", s)
	}
}

// GenerationShape - вертикальные границы колонки
type GenerationShape struct {
	MinY   int
	Height int
}

// MaxY возвращает первую высоту над колонкой
func (s GenerationShape) MaxY() int {
	return s.MinY + s.Height
}

// SectionCount возвращает количество секций 16x16x16
func (s GenerationShape) SectionCount() int {
	return s.Height / chunk.BlockSize
}

// Contains сообщает, лежит ли абсолютная высота в границах
func (s GenerationShape) Contains(y int) bool {
	return y >= s.MinY && y < s.MaxY()
}

// GenerationSettings - константы генерации измерения
type GenerationSettings struct {
	Shape        GenerationShape
	SeaLevel     int
	DefaultBlock chunk.BlockState
	DefaultFluid chunk.BlockState
	Bedrock      bool // Коренная порода на дне колонки
	Caves        bool
}

// SettingsForDimension возвращает настройки генерации измерения
func SettingsForDimension(d Dimension) GenerationSettings {
	switch d {
	case Nether:
		return GenerationSettings{
			Shape:        GenerationShape{MinY: 0, Height: 256},
			SeaLevel:     32,
			DefaultBlock: chunk.Netherrack,
			DefaultFluid: chunk.Lava,
			Bedrock:      true,
			Caves:        true,
		}
	case End:
		return GenerationSettings{
			Shape:        GenerationShape{MinY: 0, Height: 256},
			SeaLevel:     0,
			DefaultBlock: chunk.EndStone,
			DefaultFluid: chunk.Air,
		}
	default:
		return GenerationSettings{
			Shape:        GenerationShape{MinY: -64, Height: 384},
			SeaLevel:     63,
			DefaultBlock: chunk.Stone,
			DefaultFluid: chunk.Water,
			Bedrock:      true,
			Caves:        true,
		}
	}
}

// biomeFromBlock переводит координату блока в координату биомной ячейки
func biomeFromBlock(v int) int {
	return v >> 2
}

// biomeToBlock переводит координату биомной ячейки в координату первого блока ячейки
func biomeToBlock(v int) int {
	return v << 2
}
