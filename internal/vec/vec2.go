package vec

import "fmt"

// WorldBorder - граница мира в колонках по каждой оси
const WorldBorder = 1_875_000

// Vec2 представляет координаты колонки чанков (X, Z)
type Vec2 struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// ToChunkCoords преобразует координаты блока в координаты колонки
func (v Vec2) ToChunkCoords() Vec2 {
	return Vec2{X: v.X >> 4, Z: v.Z >> 4} // Деление на 16
}

// ToRegionCoords преобразует координаты колонки в координаты региона 32x32
func (v Vec2) ToRegionCoords() Vec2 {
	return Vec2{X: v.X >> 5, Z: v.Z >> 5}
}

// BlockOrigin возвращает мировые координаты угла колонки (минимальные X и Z)
func (v Vec2) BlockOrigin() Vec2 {
	return Vec2{X: v.X << 4, Z: v.Z << 4}
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Z: v.Z + other.Z}
}

// Sub вычитает вектор
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Z: v.Z - other.Z}
}

// WithinBorder сообщает, что квадрат колонок радиуса margin вокруг v лежит внутри границы мира
func (v Vec2) WithinBorder(margin int) bool {
	if margin < 0 || margin > WorldBorder {
		return false
	}
	limit := WorldBorder - margin
	return v.X >= -limit && v.X <= limit && v.Z >= -limit && v.Z <= limit
}

// ChebyshevTo возвращает "шахматное" расстояние до другой колонки: max(|dx|, |dz|)
func (v Vec2) ChebyshevTo(other Vec2) int {
	d := v.Sub(other)
	dx, dz := abs(d.X), abs(d.Z)
	if dx > dz {
		return dx
	}
	return dz
}

// String возвращает строковое представление для логов
func (v Vec2) String() string {
	return fmt.Sprintf("(%d,%d)", v.X, v.Z)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
