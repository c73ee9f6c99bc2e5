package noise

import (
	"testing"

	"github.com/annel0/worldgen/internal/chunk"
	"github.com/stretchr/testify/assert"
)

func TestRandomConfig_Fork(t *testing.T) {
	cfg := NewRandomConfig(12345)

	assert.Equal(t, int64(12345), cfg.Seed())
	assert.Equal(t, cfg.Fork("cave_a"), cfg.Fork("cave_a"), "Форк должен быть детерминированным")
	assert.NotEqual(t, cfg.Fork("cave_a"), cfg.Fork("cave_b"), "Разные подсистемы должны получать разные сиды")
	assert.NotEqual(t, cfg.Fork("cave_a"), NewRandomConfig(54321).Fork("cave_a"), "Разные миры должны различаться")
}

func TestRandomConfig_PositionalHash(t *testing.T) {
	cfg := NewRandomConfig(7)

	assert.Equal(t, cfg.PositionalHash("s", 3, -4), cfg.PositionalHash("s", 3, -4))
	assert.NotEqual(t, cfg.PositionalHash("s", 3, -4), cfg.PositionalHash("s", -4, 3))
	assert.NotEqual(t, cfg.PositionalHash("s", 3, -4), cfg.PositionalHash("t", 3, -4))
}

func TestRouter_RangesAndDeterminism(t *testing.T) {
	cfg := NewRandomConfig(42)
	a := NewRouter(cfg)
	b := NewRouter(cfg)

	for x := -300; x <= 300; x += 37 {
		for z := -300; z <= 300; z += 41 {
			c := a.Continentalness(x, z)
			assert.GreaterOrEqual(t, c, -1.0)
			assert.LessOrEqual(t, c, 1.0)
			assert.Equal(t, c, b.Continentalness(x, z), "Одинаковый сид должен давать одинаковый шум")

			e := a.Erosion(x, z)
			assert.GreaterOrEqual(t, e, 0.0)
			assert.LessOrEqual(t, e, 1.0)

			d := a.CaveDensity(x, 20, z)
			assert.GreaterOrEqual(t, d, 0.0)
			assert.LessOrEqual(t, d, 1.0)

			assert.Equal(t, a.OverworldBiome(x, 64, z), b.OverworldBiome(x, 64, z))
		}
	}
}

func TestRouter_DimensionBiomes(t *testing.T) {
	r := NewRouter(NewRandomConfig(1))

	nether := r.NetherBiome(10, 40, 10)
	assert.Contains(t, []chunk.BiomeID{chunk.BiomeNetherWastes, chunk.BiomeSoulSandValley}, nether)

	assert.Equal(t, chunk.BiomeTheEnd, r.EndBiome(0, 60, 0))
	assert.Equal(t, chunk.BiomeEndHighlands, r.EndBiome(5000, 60, 0))
}

func TestTerrainCache(t *testing.T) {
	tc := NewTerrainCache(NewRandomConfig(99))

	assert.Equal(t, -48.0, tc.HeightOffset(-1, 0))
	assert.Less(t, tc.HeightOffset(-0.5, 0), tc.HeightOffset(0.5, 0), "Смещение должно расти с континентальностью")
	assert.Less(t, tc.HeightOffset(0.9, 1), tc.HeightOffset(0.9, 0), "Эрозия должна сглаживать возвышенности")

	for x := 0; x < 16; x++ {
		depth := tc.SurfaceDepth(x, x)
		assert.GreaterOrEqual(t, depth, 3)
		assert.LessOrEqual(t, depth, 6)
	}
	assert.Equal(t, tc.SurfaceDepth(1, 2), tc.SurfaceDepth(17, 18), "Таблица должна повторяться с периодом 16")
}
