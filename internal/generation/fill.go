package generation

import (
	"github.com/annel0/worldgen/internal/chunk"
	"github.com/annel0/worldgen/internal/vec"
)

// columnSampler отдаёт готовые значения колонки для переноса в секции
type columnSampler interface {
	// GetBiome принимает локальные биомные X/Z и абсолютную биомную высоту
	GetBiome(pos vec.Vec3) chunk.BiomeID
	// GetBlockState принимает локальные X/Z и абсолютную высоту блока
	GetBlockState(pos vec.Vec3) chunk.BlockState
}

// fillBiomes переносит биомы колонки в сетки биомов секций.
// Слои вне стека секций пропускаются.
func fillBiomes(sections *chunk.ChunkSections, shape GenerationShape, src columnSampler) {
	minBiomeY := biomeFromBlock(shape.MinY)
	sectionsMinBiomeY := biomeFromBlock(sections.MinY)

	for y := 0; y < biomeFromBlock(shape.Height); y++ {
		absoluteY := minBiomeY + y
		relativeY := absoluteY - sectionsMinBiomeY
		if relativeY < 0 {
			continue
		}
		sectionIndex := relativeY / chunk.BiomeSize
		relativeY %= chunk.BiomeSize

		section := sections.Get(sectionIndex)
		if section == nil {
			continue
		}
		for z := 0; z < chunk.BiomeSize; z++ {
			for x := 0; x < chunk.BiomeSize; x++ {
				section.Biomes.Set(x, relativeY, z, src.GetBiome(vec.Vec3{X: x, Y: absoluteY, Z: z}))
			}
		}
	}
}

// fillBlocks переносит блоки колонки в сетки блоков секций.
// Слои вне стека секций пропускаются.
func fillBlocks(sections *chunk.ChunkSections, shape GenerationShape, src columnSampler) {
	for y := 0; y < shape.Height; y++ {
		absoluteY := shape.MinY + y
		relativeY := absoluteY - sections.MinY
		if relativeY < 0 {
			continue
		}
		sectionIndex := relativeY / chunk.BlockSize
		relativeY %= chunk.BlockSize

		section := sections.Get(sectionIndex)
		if section == nil {
			continue
		}
		for z := 0; z < chunk.BlockSize; z++ {
			for x := 0; x < chunk.BlockSize; x++ {
				section.BlockStates.Set(x, relativeY, z, src.GetBlockState(vec.Vec3{X: x, Y: absoluteY, Z: z}))
			}
		}
	}
}
