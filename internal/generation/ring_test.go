package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/worldgen/internal/vec"
)

func TestRing_SizeAndDistance(t *testing.T) {
	origin := vec.Vec2{X: 3, Z: -7}

	for r := 0; r <= 12; r++ {
		cols := Ring(origin, r)
		expected := 8 * r
		if r == 0 {
			expected = 1
		}
		require.Len(t, cols, expected, "Кольцо %d должно содержать %d колонок", r, expected)

		seen := make(map[vec.Vec2]bool, len(cols))
		for _, c := range cols {
			assert.Equal(t, r, origin.ChebyshevTo(c), "Колонка %s не лежит на кольце %d", c, r)
			assert.False(t, seen[c], "Колонка %s повторяется на кольце %d", c, r)
			seen[c] = true
		}
	}
}

func TestRing_OriginOnly(t *testing.T) {
	origin := vec.Vec2{X: -5, Z: 9}
	assert.Equal(t, []vec.Vec2{origin}, Ring(origin, 0))
	assert.Nil(t, Ring(origin, -1))
}

func TestRing_Order(t *testing.T) {
	expected := []vec.Vec2{
		{X: -1, Z: -1}, {X: 0, Z: -1},
		{X: 1, Z: -1}, {X: 1, Z: 0},
		{X: 1, Z: 1}, {X: 0, Z: 1},
		{X: -1, Z: 1}, {X: -1, Z: 0},
	}
	assert.Equal(t, expected, Ring(vec.Vec2{}, 1), "Обход начинается с угла и идёт по периметру")
}

func TestRingCursor_MultipleRings(t *testing.T) {
	origin := vec.Vec2{X: 10, Z: 10}
	cursor := NewRingCursor(origin, 0, 3)
	assert.Equal(t, 1+8+16+24, cursor.Len())

	var expected []vec.Vec2
	for r := 0; r <= 3; r++ {
		expected = append(expected, Ring(origin, r)...)
	}
	assert.Equal(t, expected, cursor.Collect())

	// Collect работает с копией
	assert.Equal(t, 0, cursor.Ring())
	assert.Equal(t, 3, cursor.Radius())
	assert.False(t, cursor.Done())
}

func TestRingCursor_NextAndLen(t *testing.T) {
	cursor := NewRingCursor(vec.Vec2{}, 2, 2)
	total := cursor.Len()
	require.Equal(t, 16, total)

	for i := 0; i < total; i++ {
		_, ok := cursor.Next()
		require.True(t, ok)
		assert.Equal(t, total-i-1, cursor.Len())
	}

	_, ok := cursor.Next()
	assert.False(t, ok, "После последнего кольца колонок нет")
	assert.True(t, cursor.Done())
	_, ok = cursor.Next()
	assert.False(t, ok)
}

func TestRingCursor_SnapshotAndRestart(t *testing.T) {
	origin := vec.Vec2{X: -2, Z: 4}
	cursor := NewRingCursor(origin, 1, 2)
	cursor.Next()
	cursor.Next()

	snapshot := cursor
	assert.Equal(t, cursor.Collect(), snapshot.Collect(), "Копия курсора продолжает с того же места")

	restarted := NewRingCursor(origin, 1, 2)
	full := restarted.Collect()
	assert.Len(t, full, 8+16)
	assert.Equal(t, full[2:], cursor.Collect())
}

func TestRingCursor_EmptyRange(t *testing.T) {
	cursor := NewRingCursor(vec.Vec2{}, 5, 4)
	assert.Equal(t, 0, cursor.Len())
	_, ok := cursor.Next()
	assert.False(t, ok)
}

func TestNewRingCursor_NegativePanics(t *testing.T) {
	assert.Panics(t, func() { NewRingCursor(vec.Vec2{}, -1, 3) })
}
