package generation

import (
	"math"

	"github.com/annel0/worldgen/internal/chunk"
	"github.com/annel0/worldgen/internal/vec"
)

const (
	caveThreshold     = 0.6 // Минимальная плотность пустоты, с которой ячейка вырезается
	caveCellWidth     = 4
	caveCellHeight    = 8
	caveSurfaceMargin = 4 // Пещеры не подходят к поверхности ближе
	caveLavaDepth     = 8 // Нижние 8 блоков пещер заливаются лавой

	netherRoof       = 128
	endIslandRadius  = 96.0
	endIslandTop     = 64
	endOuterIslands  = 0.45
	mountainSnowLine = 120
)

// ensure выполняет стадию над колонкой, если она ещё не выполнена.
// Старты структур пересчитываются всегда: это дешёвый хэш, и индекс нужен даже для готовых колонок.
func (g *VanillaGenerator) ensure(stage Stage, pos vec.Vec2) {
	if stage == StageStructureStarts {
		g.ensureStructureStart(pos)
		return
	}
	if g.sink.Contains(pos) {
		return
	}
	if stage == StageTerrain {
		g.buildChunk(pos)
		return
	}

	proto := g.protos.Acquire(pos)
	proto.mu.Lock()
	defer proto.mu.Unlock()
	g.ensureProto(proto, stage)
}

// ensureProto сначала обеспечивает следующую по ширине стадию той же колонки, затем выполняет свою
func (g *VanillaGenerator) ensureProto(p *ProtoChunk, stage Stage) {
	if p.Has(stage) {
		return
	}
	if stage == StageBiome {
		g.ensureStructureStart(p.Position)
	} else {
		g.ensureProto(p, stage+1)
	}

	switch stage {
	case StageBiome:
		g.populateBiomes(p)
	case StageCarver:
		g.shapeTerrain(p)
		if g.settings.Caves {
			g.carveCaves(p)
		}
	case StageLight:
		g.light.Light(p)
	}
	p.mark(stage)
}

func (g *VanillaGenerator) ensureStructureStart(pos vec.Vec2) {
	if start, ok := structureStartAt(g.random, g.dimension, pos); ok {
		g.structures.Record(start)
	}
}

// buildChunk переносит рабочий буфер в ChunkData и отдаёт колонку приёмнику
func (g *VanillaGenerator) buildChunk(pos vec.Vec2) {
	proto := g.protos.Acquire(pos)
	proto.mu.Lock()
	g.ensureProto(proto, StageLight)
	data := g.fillChunk(proto)
	proto.mu.Unlock()

	g.protos.Release(pos)
	g.sink.Accept(data)
	g.generated.Add(1)

	if g.observer != nil {
		g.observer.ChunkGenerated(pos)
	}
}

func (g *VanillaGenerator) fillChunk(p *ProtoChunk) *chunk.ChunkData {
	shape := g.settings.Shape
	data := chunk.NewChunkData(p.Position, shape.SectionCount(), shape.MinY)

	fillBiomes(&data.Sections, shape, p)
	fillBlocks(&data.Sections, shape, p)

	data.Light = p.light
	data.Heightmap = p.heightmap
	for _, s := range g.structures.Near(p.Position, structureReferenceRadius) {
		data.Structures = append(data.Structures, chunk.StructureReference{Kind: s.Kind, Origin: s.Origin})
	}
	return data
}

// populateBiomes заполняет биомную сетку буфера по центрам ячеек 4x4x4
func (g *VanillaGenerator) populateBiomes(p *ProtoChunk) {
	origin := p.Position.BlockOrigin()
	minBiomeY := biomeFromBlock(g.settings.Shape.MinY)

	for y := 0; y < biomeFromBlock(g.settings.Shape.Height); y++ {
		biomeY := minBiomeY + y
		blockY := biomeToBlock(biomeY) + 2
		for z := 0; z < chunk.BiomeSize; z++ {
			for x := 0; x < chunk.BiomeSize; x++ {
				b := origin.Add(vec.Vec2{X: biomeToBlock(x) + 2, Z: biomeToBlock(z) + 2})
				p.setBiome(x, biomeY, z, g.biomeAt(b.X, blockY, b.Z))
			}
		}
	}
}

func (g *VanillaGenerator) biomeAt(x, y, z int) chunk.BiomeID {
	switch g.dimension {
	case Nether:
		return g.router.NetherBiome(x, y, z)
	case End:
		return g.router.EndBiome(x, y, z)
	default:
		return g.router.OverworldBiome(x, y, z)
	}
}

// shapeTerrain выделяет блочный буфер и строит рельеф колонки
func (g *VanillaGenerator) shapeTerrain(p *ProtoChunk) {
	p.blocks = make([]chunk.BlockState, g.settings.Shape.Height*chunk.ColumnArea)
	origin := p.Position.BlockOrigin()

	for z := 0; z < chunk.BlockSize; z++ {
		for x := 0; x < chunk.BlockSize; x++ {
			b := origin.Add(vec.Vec2{X: x, Z: z})
			bx, bz := b.X, b.Z
			var surface int
			switch g.dimension {
			case Nether:
				surface = g.shapeNetherColumn(p, x, z, bx, bz)
			case End:
				surface = g.shapeEndColumn(p, x, z, bx, bz)
			default:
				surface = g.shapeOverworldColumn(p, x, z, bx, bz)
			}
			p.surface[z*chunk.BlockSize+x] = surface

			if g.settings.Bedrock {
				p.setBlockState(x, g.settings.Shape.MinY, z, chunk.Bedrock)
			}
		}
	}
}

// shapeOverworldColumn возвращает высоту первого блока над твёрдой поверхностью
func (g *VanillaGenerator) shapeOverworldColumn(p *ProtoChunk, x, z, bx, bz int) int {
	s := g.settings
	c := g.router.Continentalness(bx, bz)
	e := g.router.Erosion(bx, bz)
	height := s.SeaLevel + int(math.Round(g.terrain.HeightOffset(c, e)))
	height = clampInt(height, s.Shape.MinY+1, s.Shape.MaxY()-1)

	for y := s.Shape.MinY; y < height; y++ {
		p.setBlockState(x, y, z, s.DefaultBlock)
	}
	for y := height; y < s.SeaLevel; y++ {
		p.setBlockState(x, y, z, s.DefaultFluid)
	}

	top, filler := g.surfaceBlocks(p.biomeAtBlock(x, height-1, z), height)
	depth := g.terrain.SurfaceDepth(bx, bz)
	for i := 0; i < depth; i++ {
		y := height - 1 - i
		if y <= s.Shape.MinY {
			break
		}
		if i == 0 {
			p.setBlockState(x, y, z, top)
		} else {
			p.setBlockState(x, y, z, filler)
		}
	}
	return height
}

// surfaceBlocks возвращает верхний блок и наполнитель поверхности биома
func (g *VanillaGenerator) surfaceBlocks(biome chunk.BiomeID, height int) (chunk.BlockState, chunk.BlockState) {
	switch biome {
	case chunk.BiomeDesert:
		return chunk.Sand, chunk.Sandstone
	case chunk.BiomeSnowyPlains:
		return chunk.Snow, chunk.Dirt
	case chunk.BiomeOcean:
		return chunk.Sand, chunk.Sand
	case chunk.BiomeDeepOcean:
		return chunk.Gravel, chunk.Gravel
	case chunk.BiomeMountains:
		if height > mountainSnowLine {
			return chunk.Snow, g.settings.DefaultBlock
		}
		return g.settings.DefaultBlock, g.settings.DefaultBlock
	}
	if height < g.settings.SeaLevel {
		return chunk.Sand, chunk.Dirt
	}
	return chunk.Grass, chunk.Dirt
}

// shapeNetherColumn строит пол, лавовое море, потолок и свод Незера
func (g *VanillaGenerator) shapeNetherColumn(p *ProtoChunk, x, z, bx, bz int) int {
	s := g.settings
	floor := s.SeaLevel - 6 + int(math.Round(g.router.Detail(bx, s.SeaLevel, bz)*6))
	ceiling := netherRoof - 24 + int(math.Round(g.router.Detail(bx, netherRoof, bz)*8))

	for y := s.Shape.MinY; y < floor; y++ {
		p.setBlockState(x, y, z, s.DefaultBlock)
	}
	for y := floor; y < s.SeaLevel; y++ {
		p.setBlockState(x, y, z, s.DefaultFluid)
	}
	for y := ceiling; y < netherRoof; y++ {
		p.setBlockState(x, y, z, s.DefaultBlock)
	}
	p.setBlockState(x, netherRoof-1, z, chunk.Bedrock)

	if floor >= s.SeaLevel && p.biomeAtBlock(x, floor-1, z) == chunk.BiomeSoulSandValley {
		for y := floor - 2; y < floor; y++ {
			p.setBlockState(x, y, z, chunk.SoulSand)
		}
	}
	return floor
}

// shapeEndColumn строит центральный остров и редкие внешние острова Энда
func (g *VanillaGenerator) shapeEndColumn(p *ProtoChunk, x, z, bx, bz int) int {
	s := g.settings
	var top, bottom int

	d := math.Sqrt(float64(bx)*float64(bx) + float64(bz)*float64(bz))
	if d < endIslandRadius {
		k := 1 - d/endIslandRadius
		top = endIslandTop + int(k*16)
		bottom = endIslandTop - int(k*40)
	} else {
		n := g.router.Detail(bx, 0, bz)
		if n <= endOuterIslands {
			return s.Shape.MinY
		}
		top = endIslandTop - 4 + int(n*6)
		bottom = top - int((n-endOuterIslands)*40) - 1
	}

	for y := bottom; y < top; y++ {
		p.setBlockState(x, y, z, s.DefaultBlock)
	}
	return top
}

// carveCaves вырезает пещеры по ячейкам 4x8x4, плотность берётся в центре ячейки
func (g *VanillaGenerator) carveCaves(p *ProtoChunk) {
	shape := g.settings.Shape
	origin := p.Position.BlockOrigin()
	world := vec.Vec3{X: origin.X, Z: origin.Z}
	lavaLevel := shape.MinY + caveLavaDepth

	for cy := shape.MinY; cy < shape.MaxY(); cy += caveCellHeight {
		for cz := 0; cz < chunk.BlockSize; cz += caveCellWidth {
			for cx := 0; cx < chunk.BlockSize; cx += caveCellWidth {
				center := world.Add(vec.Vec3{X: cx + caveCellWidth/2, Y: cy + caveCellHeight/2, Z: cz + caveCellWidth/2})
				density := g.router.CaveDensity(center.X, center.Y, center.Z)
				if density < caveThreshold {
					continue
				}
				g.carveCell(p, cx, cy, cz, lavaLevel)
			}
		}
	}
}

func (g *VanillaGenerator) carveCell(p *ProtoChunk, cx, cy, cz, lavaLevel int) {
	shape := g.settings.Shape
	for y := cy; y < cy+caveCellHeight && y < shape.MaxY(); y++ {
		if y <= shape.MinY {
			continue
		}
		for z := cz; z < cz+caveCellWidth; z++ {
			for x := cx; x < cx+caveCellWidth; x++ {
				if y >= p.surface[z*chunk.BlockSize+x]-caveSurfaceMargin {
					continue
				}
				current := p.GetBlockState(vec.Vec3{X: x, Y: y, Z: z})
				if current.IsAir() || current.IsFluid() || current == chunk.Bedrock {
					continue
				}
				if y < lavaLevel {
					p.setBlockState(x, y, z, chunk.Lava)
				} else {
					p.setBlockState(x, y, z, chunk.Air)
				}
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
