package generation

import (
	"github.com/annel0/worldgen/internal/chunk"
	"github.com/annel0/worldgen/internal/vec"
)

// LightEngine считает карту высот и свет рабочего буфера. Для планировщика это непрозрачная операция.
type LightEngine interface {
	Light(proto *ProtoChunk)
}

// SkyLightEngine - простой движок без распространения: всё выше карты высот освещено небом,
// блочный свет есть только в самих светящихся блоках
type SkyLightEngine struct{}

// Light заполняет карту высот и контейнеры света буфера
func (SkyLightEngine) Light(p *ProtoChunk) {
	shape := p.settings.Shape
	light := chunk.NewChunkLight(shape.SectionCount())

	highest := shape.MinY
	for z := 0; z < chunk.BlockSize; z++ {
		for x := 0; x < chunk.BlockSize; x++ {
			h := shape.MinY
			for y := shape.MaxY() - 1; y >= shape.MinY; y-- {
				if !p.GetBlockState(vec.Vec3{X: x, Y: y, Z: z}).IsAir() {
					h = y + 1
					break
				}
			}
			p.heightmap[z*chunk.BlockSize+x] = h
			if h > highest {
				highest = h
			}
		}
	}

	for i := 0; i < shape.SectionCount(); i++ {
		sectionMinY := shape.MinY + i*chunk.BlockSize

		// Секции целиком выше рельефа остаются однородно освещёнными
		if sectionMinY < highest {
			for y := 0; y < chunk.BlockSize; y++ {
				for z := 0; z < chunk.BlockSize; z++ {
					for x := 0; x < chunk.BlockSize; x++ {
						if sectionMinY+y < p.Height(x, z) {
							light.SkyLight[i].Set(x, y, z, 0)
						}
					}
				}
			}
		}

		for y := 0; y < chunk.BlockSize; y++ {
			for z := 0; z < chunk.BlockSize; z++ {
				for x := 0; x < chunk.BlockSize; x++ {
					if emission := p.GetBlockState(vec.Vec3{X: x, Y: sectionMinY + y, Z: z}).LightEmission(); emission > 0 {
						light.BlockLight[i].Set(x, y, z, emission)
					}
				}
			}
		}
	}

	p.light = light
}
