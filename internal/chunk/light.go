package chunk

const (
	// MaxLight - максимальный уровень освещения
	MaxLight = 15

	lightBytes = blockVolume / 2 // 2048 байт: 4096 полубайтов
)

// LightContainer хранит уровни освещения секции.
// Пока все уровни одинаковы, массив не выделяется.
type LightContainer struct {
	data    []byte
	uniform uint8
}

// NewLightContainer создаёт однородный контейнер с указанным уровнем
func NewLightContainer(level uint8) LightContainer {
	return LightContainer{uniform: level & 0xF}
}

// Get возвращает уровень освещения по локальным координатам
func (c *LightContainer) Get(x, y, z int) uint8 {
	if c.data == nil {
		return c.uniform
	}
	idx := blockIndex(x, y, z)
	b := c.data[idx>>1]
	if idx&1 == 0 {
		return b & 0xF
	}
	return b >> 4
}

// Set устанавливает уровень освещения по локальным координатам
func (c *LightContainer) Set(x, y, z int, level uint8) {
	level &= 0xF
	if c.data == nil {
		if level == c.uniform {
			return
		}
		c.expand()
	}
	idx := blockIndex(x, y, z)
	b := c.data[idx>>1]
	if idx&1 == 0 {
		b = (b & 0xF0) | level
	} else {
		b = (b & 0x0F) | level<<4
	}
	c.data[idx>>1] = b
}

// Uniform возвращает уровень и true, если контейнер однороден
func (c *LightContainer) Uniform() (uint8, bool) {
	if c.data == nil {
		return c.uniform, true
	}
	return 0, false
}

// Bytes возвращает полубайтовое представление (2048 байт)
func (c *LightContainer) Bytes() []byte {
	if c.data != nil {
		out := make([]byte, lightBytes)
		copy(out, c.data)
		return out
	}
	out := make([]byte, lightBytes)
	packed := c.uniform | c.uniform<<4
	for i := range out {
		out[i] = packed
	}
	return out
}

// LoadBytes загружает полубайтовое представление
func (c *LightContainer) LoadBytes(data []byte) {
	if len(data) != lightBytes {
		*c = NewLightContainer(0)
		return
	}
	c.data = make([]byte, lightBytes)
	copy(c.data, data)
}

func (c *LightContainer) expand() {
	c.data = make([]byte, lightBytes)
	packed := c.uniform | c.uniform<<4
	for i := range c.data {
		c.data[i] = packed
	}
}

// ChunkLight хранит небесный и блочный свет для каждой секции колонки
type ChunkLight struct {
	SkyLight   []LightContainer
	BlockLight []LightContainer
}

// NewChunkLight создаёт контейнеры для count секций: небо полностью освещено, блочный свет нулевой
func NewChunkLight(count int) ChunkLight {
	light := ChunkLight{
		SkyLight:   make([]LightContainer, count),
		BlockLight: make([]LightContainer, count),
	}
	for i := 0; i < count; i++ {
		light.SkyLight[i] = NewLightContainer(MaxLight)
		light.BlockLight[i] = NewLightContainer(0)
	}
	return light
}
