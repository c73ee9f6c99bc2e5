package generation

import (
	"fmt"

	"github.com/annel0/worldgen/internal/vec"
)

// RingCursor перечисляет колонки колец вокруг origin с расстояния ring до radius включительно.
// Кольцо r > 0 содержит 8r колонок; обход начинается в углу (ox-r, oz-r) и идёт по периметру:
// +X по верхней стороне, +Z по правой, -X по нижней, -Z по левой. Каждая сторона даёт 2r колонок.
//
// Курсор - значение: копия фиксирует текущее состояние, повторное создание начинает обход заново.
type RingCursor struct {
	origin vec.Vec2
	ring   int
	radius int
	index  int
}

// NewRingCursor создаёт курсор по кольцам from..=to вокруг origin
func NewRingCursor(origin vec.Vec2, from, to int) RingCursor {
	if from < 0 {
		panic(fmt.Sprintf("generation: отрицательное кольцо %d", from))
	}
	return RingCursor{origin: origin, ring: from, radius: to}
}

// Next возвращает следующую колонку; false, когда все кольца пройдены
func (c *RingCursor) Next() (vec.Vec2, bool) {
	for c.ring <= c.radius {
		if c.index < ringSize(c.ring) {
			pos := ringColumn(c.origin, c.ring, c.index)
			c.index++
			return pos, true
		}
		c.ring++
		c.index = 0
	}
	return vec.Vec2{}, false
}

// Origin возвращает центр обхода
func (c RingCursor) Origin() vec.Vec2 { return c.origin }

// Ring возвращает текущее кольцо
func (c RingCursor) Ring() int { return c.ring }

// Radius возвращает последнее кольцо обхода
func (c RingCursor) Radius() int { return c.radius }

// Done сообщает, что колонок больше нет
func (c RingCursor) Done() bool { return c.Len() == 0 }

// Len возвращает количество оставшихся колонок
func (c RingCursor) Len() int {
	if c.ring > c.radius {
		return 0
	}
	total := ringSize(c.ring) - c.index
	for r := c.ring + 1; r <= c.radius; r++ {
		total += ringSize(r)
	}
	return total
}

// Collect вычерпывает копию курсора в срез
func (c RingCursor) Collect() []vec.Vec2 {
	out := make([]vec.Vec2, 0, c.Len())
	for pos, ok := c.Next(); ok; pos, ok = c.Next() {
		out = append(out, pos)
	}
	return out
}

// Ring возвращает все колонки кольца r вокруг origin в порядке обхода
func Ring(origin vec.Vec2, r int) []vec.Vec2 {
	if r < 0 {
		return nil
	}
	out := make([]vec.Vec2, ringSize(r))
	for k := range out {
		out[k] = ringColumn(origin, r, k)
	}
	return out
}

func ringSize(r int) int {
	if r == 0 {
		return 1
	}
	return 8 * r
}

// ringColumn возвращает k-ю колонку кольца r, 0 <= k < ringSize(r)
func ringColumn(origin vec.Vec2, r, k int) vec.Vec2 {
	if r == 0 {
		return origin
	}
	side, off := k/(2*r), k%(2*r)
	switch side {
	case 0:
		return vec.Vec2{X: origin.X - r + off, Z: origin.Z - r}
	case 1:
		return vec.Vec2{X: origin.X + r, Z: origin.Z - r + off}
	case 2:
		return vec.Vec2{X: origin.X + r - off, Z: origin.Z + r}
	case 3:
		return vec.Vec2{X: origin.X - r, Z: origin.Z + r - off}
	}
	panic(fmt.Sprintf("generation: индекс %d вне кольца %d", k, r))
}
