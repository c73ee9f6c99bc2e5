package storage

import (
	"encoding/json"
	"fmt"

	"github.com/annel0/worldgen/internal/chunk"
	"github.com/annel0/worldgen/internal/vec"
)

const recordVersion = 1

// chunkRecord - сериализуемое представление колонки.
// Однородные секции и контейнеры света хранятся одним значением.
type chunkRecord struct {
	Version    int                        `json:"v"`
	Position   vec.Vec2                   `json:"pos"`
	MinY       int                        `json:"min_y"`
	Blocks     [][]chunk.BlockState       `json:"blocks"`
	Biomes     [][]chunk.BiomeID          `json:"biomes"`
	SkyLight   [][]byte                   `json:"sky_light"`
	BlockLight [][]byte                   `json:"block_light"`
	Heightmap  []int                      `json:"heightmap"`
	Structures []chunk.StructureReference `json:"structures,omitempty"`
}

// encodeChunk сериализует колонку в JSON
func encodeChunk(data *chunk.ChunkData) ([]byte, error) {
	rec := chunkRecord{
		Version:    recordVersion,
		Position:   data.Position,
		MinY:       data.Sections.MinY,
		Blocks:     make([][]chunk.BlockState, data.Sections.Len()),
		Biomes:     make([][]chunk.BiomeID, data.Sections.Len()),
		SkyLight:   encodeLight(data.Light.SkyLight),
		BlockLight: encodeLight(data.Light.BlockLight),
		Heightmap:  data.Heightmap[:],
		Structures: data.Structures,
	}

	for i := range data.Sections.Sections {
		section := &data.Sections.Sections[i]
		states := section.BlockStates.States()
		if section.BlockStates.IsUniform() {
			states = states[:1]
		}
		rec.Blocks[i] = states
		rec.Biomes[i] = section.Biomes.Biomes()
	}

	out, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации колонки %s: %w", data.Position, err)
	}
	return out, nil
}

// decodeChunk восстанавливает колонку из JSON
func decodeChunk(raw []byte) (*chunk.ChunkData, error) {
	var rec chunkRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("ошибка десериализации колонки: %w", err)
	}
	if rec.Version != recordVersion {
		return nil, fmt.Errorf("неподдерживаемая версия записи: %d", rec.Version)
	}
	if len(rec.Biomes) != len(rec.Blocks) || len(rec.Heightmap) != chunk.ColumnArea {
		return nil, fmt.Errorf("повреждённая запись колонки %s", rec.Position)
	}

	data := chunk.NewChunkData(rec.Position, len(rec.Blocks), rec.MinY)
	for i := range rec.Blocks {
		section := &data.Sections.Sections[i]
		switch len(rec.Blocks[i]) {
		case 1:
			section.BlockStates.Fill(rec.Blocks[i][0])
		default:
			if err := section.BlockStates.Load(rec.Blocks[i]); err != nil {
				return nil, fmt.Errorf("секция %d: %w", i, err)
			}
		}
		if err := section.Biomes.Load(rec.Biomes[i]); err != nil {
			return nil, fmt.Errorf("секция %d: %w", i, err)
		}
	}

	data.Light.SkyLight = decodeLight(rec.SkyLight, len(rec.Blocks), chunk.MaxLight)
	data.Light.BlockLight = decodeLight(rec.BlockLight, len(rec.Blocks), 0)
	copy(data.Heightmap[:], rec.Heightmap)
	data.Structures = rec.Structures
	return data, nil
}

func encodeLight(containers []chunk.LightContainer) [][]byte {
	out := make([][]byte, len(containers))
	for i := range containers {
		if level, ok := containers[i].Uniform(); ok {
			out[i] = []byte{level}
			continue
		}
		out[i] = containers[i].Bytes()
	}
	return out
}

func decodeLight(raw [][]byte, count int, fallback uint8) []chunk.LightContainer {
	out := make([]chunk.LightContainer, count)
	for i := range out {
		switch {
		case i >= len(raw):
			out[i] = chunk.NewLightContainer(fallback)
		case len(raw[i]) == 1:
			out[i] = chunk.NewLightContainer(raw[i][0])
		default:
			out[i].LoadBytes(raw[i])
		}
	}
	return out
}
