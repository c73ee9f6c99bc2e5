package vec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec2_ChebyshevTo(t *testing.T) {
	origin := Vec2{X: 0, Z: 0}

	assert.Equal(t, 0, origin.ChebyshevTo(origin), "Расстояние до самой себя должно быть 0")
	assert.Equal(t, 3, origin.ChebyshevTo(Vec2{X: 3, Z: -1}))
	assert.Equal(t, 5, origin.ChebyshevTo(Vec2{X: -2, Z: -5}))
	assert.Equal(t, 4, Vec2{X: -2, Z: 7}.ChebyshevTo(Vec2{X: 2, Z: 4}))
}

func TestVec2_ChunkCoords(t *testing.T) {
	assert.Equal(t, Vec2{X: 1, Z: -1}, Vec2{X: 17, Z: -1}.ToChunkCoords())
	assert.Equal(t, Vec2{X: -32, Z: 48}, Vec2{X: -2, Z: 3}.BlockOrigin())
	assert.Equal(t, Vec2{X: -1, Z: 0}, Vec2{X: -1, Z: 31}.ToRegionCoords())
}

func TestVec2_WithinBorder(t *testing.T) {
	assert.True(t, Vec2{}.WithinBorder(0))
	assert.True(t, Vec2{X: WorldBorder, Z: -WorldBorder}.WithinBorder(0))
	assert.False(t, Vec2{X: WorldBorder + 1}.WithinBorder(0))
	assert.True(t, Vec2{Z: WorldBorder - 10}.WithinBorder(10))
	assert.False(t, Vec2{Z: -(WorldBorder - 9)}.WithinBorder(10))
	assert.False(t, Vec2{}.WithinBorder(-1), "Отрицательная полоса недопустима")
	assert.False(t, Vec2{}.WithinBorder(WorldBorder+1))
	assert.False(t, Vec2{X: math.MinInt}.WithinBorder(0))
}

func TestVec_Arithmetic(t *testing.T) {
	assert.Equal(t, Vec2{X: 3, Z: -1}, Vec2{X: 1, Z: 1}.Add(Vec2{X: 2, Z: -2}))
	assert.Equal(t, Vec2{X: -1, Z: 3}, Vec2{X: 1, Z: 1}.Sub(Vec2{X: 2, Z: -2}))
	assert.Equal(t, Vec3{X: 18, Y: -60, Z: 2}, Vec3{X: 16, Y: -64}.Add(Vec3{X: 2, Y: 4, Z: 2}))
}
