package noise

import "math"

const splineResolution = 256

// Контрольные точки сплайна "континентальность -> смещение высоты от уровня моря"
var heightControlPoints = [...]struct{ c, offset float64 }{
	{-1.0, -48},
	{-0.45, -30},
	{-0.2, -6},
	{-0.1, 2},
	{0.2, 10},
	{0.55, 40},
	{1.0, 96},
}

// TerrainCache - заранее посчитанные таблицы рельефа.
// Строится один раз из RandomConfig и далее только читается.
type TerrainCache struct {
	heightSpline [splineResolution + 1]float64
	surfaceDepth [256]uint8
}

// NewTerrainCache строит таблицы для указанной конфигурации случайности
func NewTerrainCache(cfg RandomConfig) *TerrainCache {
	tc := &TerrainCache{}

	for i := 0; i <= splineResolution; i++ {
		c := -1.0 + 2.0*float64(i)/float64(splineResolution)
		tc.heightSpline[i] = interpolateHeight(c)
	}

	// Глубина поверхностного слоя 3..6 блоков, детерминирована сидом
	for i := range tc.surfaceDepth {
		tc.surfaceDepth[i] = uint8(3 + cfg.PositionalHash("surface_depth", i&15, i>>4)%4)
	}

	return tc
}

// HeightOffset возвращает смещение поверхности от уровня моря.
// Эрозия сглаживает положительные смещения.
func (tc *TerrainCache) HeightOffset(continentalness, erosion float64) float64 {
	pos := (continentalness + 1.0) / 2.0 * splineResolution
	if pos <= 0 {
		return tc.heightSpline[0]
	}
	if pos >= splineResolution {
		return tc.heightSpline[splineResolution] * (1 - 0.5*erosion)
	}
	i := int(math.Floor(pos))
	frac := pos - float64(i)
	offset := tc.heightSpline[i]*(1-frac) + tc.heightSpline[i+1]*frac
	if offset > 0 {
		offset *= 1 - 0.5*erosion
	}
	return offset
}

// SurfaceDepth возвращает толщину поверхностного слоя для колонки блоков
func (tc *TerrainCache) SurfaceDepth(x, z int) int {
	return int(tc.surfaceDepth[(z&15)<<4|(x&15)])
}

func interpolateHeight(c float64) float64 {
	points := heightControlPoints
	if c <= points[0].c {
		return points[0].offset
	}
	for i := 1; i < len(points); i++ {
		if c <= points[i].c {
			a, b := points[i-1], points[i]
			t := (c - a.c) / (b.c - a.c)
			return a.offset + (b.offset-a.offset)*t
		}
	}
	return points[len(points)-1].offset
}
