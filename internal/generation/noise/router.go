package noise

import (
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/annel0/worldgen/internal/chunk"
)

// Параметры шума Перлина
const (
	perlinAlpha   = 2.0 // Сглаживание шума
	perlinBeta    = 2.0 // Частота шума
	perlinOctaves = 3   // Количество октав
)

// Масштабы выборки (в блоках на период)
const (
	continentalScale = 1.0 / 512.0
	erosionScale     = 1.0 / 256.0
	climateScale     = 1.0 / 384.0
	detailScale      = 1.0 / 48.0
	caveScaleXZ      = 1.0 / 64.0
	caveScaleY       = 1.0 / 32.0
)

// Router - набор генераторов шума, из которых складываются рельеф, климат и пещеры.
// Создаётся один раз на генератор и только читается, поэтому безопасен для параллельных заполнений.
type Router struct {
	continental *perlin.Perlin
	erosion     *perlin.Perlin
	temperature *perlin.Perlin
	humidity    *perlin.Perlin
	detail      *perlin.Perlin
	caveA       *perlin.Perlin
	caveB       *perlin.Perlin
}

// NewRouter создаёт роутер шума, выводя сиды всех генераторов из cfg
func NewRouter(cfg RandomConfig) *Router {
	return &Router{
		continental: newPerlin(cfg, "continentalness"),
		erosion:     newPerlin(cfg, "erosion"),
		temperature: newPerlin(cfg, "temperature"),
		humidity:    newPerlin(cfg, "humidity"),
		detail:      newPerlin(cfg, "detail"),
		caveA:       newPerlin(cfg, "cave_a"),
		caveB:       newPerlin(cfg, "cave_b"),
	}
}

func newPerlin(cfg RandomConfig, name string) *perlin.Perlin {
	return perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, cfg.Fork(name))
}

// Continentalness возвращает "континентальность" колонки блоков в диапазоне [-1, 1]
func (r *Router) Continentalness(x, z int) float64 {
	return clamp(r.continental.Noise2D(float64(x)*continentalScale, float64(z)*continentalScale)*1.6, -1, 1)
}

// Erosion возвращает эрозию колонки в диапазоне [0, 1]
func (r *Router) Erosion(x, z int) float64 {
	return to01(r.erosion.Noise2D(float64(x)*erosionScale, float64(z)*erosionScale))
}

// Temperature возвращает температуру в диапазоне [0, 1], остывающую с высотой
func (r *Router) Temperature(x, y, z int) float64 {
	t := to01(r.temperature.Noise2D(float64(x)*climateScale, float64(z)*climateScale))
	if y > 96 {
		t -= float64(y-96) / 256.0
	}
	return clamp(t, 0, 1)
}

// Humidity возвращает влажность колонки в диапазоне [0, 1]
func (r *Router) Humidity(x, z int) float64 {
	return to01(r.humidity.Noise2D(float64(x)*climateScale, float64(z)*climateScale))
}

// Detail возвращает мелкую трёхмерную составляющую рельефа в диапазоне [-1, 1]
func (r *Router) Detail(x, y, z int) float64 {
	return clamp(r.detail.Noise3D(float64(x)*detailScale, float64(y)*detailScale, float64(z)*detailScale)*1.5, -1, 1)
}

// CaveDensity возвращает плотность пещер в диапазоне [0, 1]; большие значения - пустота
func (r *Router) CaveDensity(x, y, z int) float64 {
	a := r.caveA.Noise3D(float64(x)*caveScaleXZ, float64(y)*caveScaleY, float64(z)*caveScaleXZ)
	b := r.caveB.Noise3D(float64(x)*caveScaleXZ*1.5, float64(y)*caveScaleY*1.5, float64(z)*caveScaleXZ*1.5)
	// "Спагетти"-пещеры: пустота там, где оба поля близки к нулю
	return clamp(1-(math.Abs(a)+math.Abs(b))*2, 0, 1)
}

// OverworldBiome выбирает биом верхнего мира по абсолютным координатам блока
func (r *Router) OverworldBiome(x, y, z int) chunk.BiomeID {
	c := r.Continentalness(x, z)
	switch {
	case c < -0.45:
		return chunk.BiomeDeepOcean
	case c < -0.2:
		return chunk.BiomeOcean
	case c > 0.55:
		return chunk.BiomeMountains
	}

	temperature := r.Temperature(x, y, z)
	humidity := r.Humidity(x, z)
	switch {
	case temperature < 0.3:
		return chunk.BiomeSnowyPlains
	case temperature > 0.65 && humidity < 0.45:
		return chunk.BiomeDesert
	case humidity > 0.55:
		return chunk.BiomeForest
	default:
		return chunk.BiomePlains
	}
}

// NetherBiome выбирает биом Незера
func (r *Router) NetherBiome(x, y, z int) chunk.BiomeID {
	if r.Humidity(x, z) < 0.35 {
		return chunk.BiomeSoulSandValley
	}
	return chunk.BiomeNetherWastes
}

// EndBiome выбирает биом Энда: центральный остров окружён высокогорьями
func (r *Router) EndBiome(x, y, z int) chunk.BiomeID {
	if int64(x)*int64(x)+int64(z)*int64(z) <= 1024*1024 {
		return chunk.BiomeTheEnd
	}
	return chunk.BiomeEndHighlands
}

// to01 переводит значение шума из [-1, 1] в [0, 1]
func to01(v float64) float64 {
	return clamp((v+1.0)/2.0, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
