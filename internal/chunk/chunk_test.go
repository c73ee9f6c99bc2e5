package chunk

import (
	"testing"

	"github.com/annel0/worldgen/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkCreateAndGetBlock(t *testing.T) {
	coords := vec.Vec2{X: 5, Z: 10}
	c := NewChunkData(coords, 24, -64)

	// Проверяем координаты
	if c.Position.X != 5 || c.Position.Z != 10 {
		t.Errorf("Ожидались координаты {5,10}, получено {%d,%d}", c.Position.X, c.Position.Z)
	}

	// Новые секции заполнены воздухом
	if got := c.GetBlock(3, 0, 4); got != Air {
		t.Errorf("Ожидался воздух, получен %v", got)
	}

	// Устанавливаем блок напрямую в секцию и читаем по абсолютной высоте
	section := c.Sections.Get(c.Sections.SectionIndex(-60))
	require.NotNil(t, section)
	section.BlockStates.Set(3, 4, 4, Stone) // -64 + 4 = -60
	if got := c.GetBlock(3, -60, 4); got != Stone {
		t.Errorf("Ожидался камень, получен %v", got)
	}
}

func TestChunkSections_OutOfRange(t *testing.T) {
	sections := NewChunkSections(16, 0)

	assert.Nil(t, sections.Get(-1), "Секция ниже стека должна отсутствовать")
	assert.Nil(t, sections.Get(16), "Секция выше стека должна отсутствовать")
	assert.NotNil(t, sections.Get(15))

	assert.Equal(t, -1, sections.SectionIndex(-1))
	assert.Equal(t, 16, sections.SectionIndex(256))
	assert.Equal(t, Air, sections.GetBlock(0, 300, 0), "Вне стека должен возвращаться воздух")
	assert.Equal(t, 256, sections.Height())
}

func TestBiomePalette_Granularity(t *testing.T) {
	sections := NewChunkSections(2, 0)
	sections.Get(1).Biomes.Set(1, 2, 3, BiomeDesert)

	// Биомная ячейка (1,2,3) секции 1 покрывает блоки x 4..7, y 16+8..16+11, z 12..15
	assert.Equal(t, BiomeDesert, sections.GetBiome(5, 25, 13))
	assert.Equal(t, BiomePlains, sections.GetBiome(5, 28, 13))
}

func TestBlockPalette_PanicsOutsideSection(t *testing.T) {
	var p BlockPalette
	assert.Panics(t, func() { p.Set(16, 0, 0, Stone) })
	assert.Panics(t, func() { p.Get(0, -1, 0) })
}

func TestBlockPalette_LoadAndUniform(t *testing.T) {
	var p BlockPalette
	p.Fill(Stone)
	assert.True(t, p.IsUniform())

	states := p.States()
	states[10] = Dirt

	var loaded BlockPalette
	require.NoError(t, loaded.Load(states))
	assert.False(t, loaded.IsUniform())
	assert.Equal(t, Dirt, loaded.Get(10, 0, 0))

	assert.Error(t, loaded.Load(states[:10]))
}

func TestLightContainer(t *testing.T) {
	c := NewLightContainer(MaxLight)

	level, uniform := c.Uniform()
	assert.True(t, uniform)
	assert.Equal(t, uint8(MaxLight), level)

	// Установка того же уровня не должна выделять массив
	c.Set(1, 1, 1, MaxLight)
	_, uniform = c.Uniform()
	assert.True(t, uniform)

	c.Set(1, 1, 1, 3)
	c.Set(2, 1, 1, 7)
	_, uniform = c.Uniform()
	assert.False(t, uniform)
	assert.Equal(t, uint8(3), c.Get(1, 1, 1))
	assert.Equal(t, uint8(7), c.Get(2, 1, 1))
	assert.Equal(t, uint8(MaxLight), c.Get(0, 0, 0))

	var restored LightContainer
	restored.LoadBytes(c.Bytes())
	assert.Equal(t, uint8(7), restored.Get(2, 1, 1))
}

func TestChunkData_Heightmap(t *testing.T) {
	c := NewChunkData(vec.Vec2{}, 4, 0)
	c.SetHeight(15, 15, 42)
	assert.Equal(t, 42, c.Height(15, 15))
	assert.Equal(t, 0, c.Height(0, 0))
	assert.Equal(t, uint8(MaxLight), c.SkyLight(0, 10, 0))
	assert.Equal(t, uint8(MaxLight), c.SkyLight(0, 1000, 0), "Над стеком небо всегда освещено")
}
