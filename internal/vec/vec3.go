package vec

// Vec3 - позиция блока или биомной ячейки (X, Y, Z)
type Vec3 struct {
	X int
	Y int
	Z int
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}
