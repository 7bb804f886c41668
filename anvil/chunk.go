package anvil

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/samber/lo"
)

// ErrLegacyChunk is returned for chunks still stored in the pre-1.18 layout with a Level compound.
var ErrLegacyChunk = errors.New("legacy chunk layout")

// Chunk is a chunk column as stored in an Anvil region file, with its sections in the order they
// appear in the file.
type Chunk struct {
	Pos         world.ChunkPos
	DataVersion int32
	// Status is the generation status, "minecraft:full" for chunks a player can visit.
	Status        string
	Sections      []Section
	BlockEntities []map[string]any
	Heightmaps    map[string][]int64
}

// Full reports if the chunk finished generating. Chunks without a status are treated as full.
func (c *Chunk) Full() bool {
	switch c.Status {
	case "", "full", "minecraft:full":
		return true
	}
	return false
}

// Section is a 16x16x16 part of a chunk.
type Section struct {
	Y            int8
	BlockPalette []BlockState
	// BlockData holds the palette indices packed into longs, nil if the palette has one entry.
	BlockData    []int64
	BiomePalette []string
	BiomeData    []int64
	// BlockLight and SkyLight are nil when the section has no light stored.
	BlockLight []byte
	SkyLight   []byte
}

// BlockState is a block name with its state properties.
type BlockState struct {
	Name       string
	Properties map[string]string
}

// String returns the state in the form name[key=value,...] with keys in sorted order.
func (b BlockState) String() string {
	if len(b.Properties) == 0 {
		return b.Name
	}
	keys := lo.Keys(b.Properties)
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(b.Name)
	sb.WriteByte('[')
	for i, k := range keys {
		if i != 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(b.Properties[k])
	}
	sb.WriteByte(']')
	return sb.String()
}

// ParseChunk converts the decoded NBT root of a chunk into a Chunk.
func ParseChunk(root map[string]any) (*Chunk, error) {
	if _, ok := root["Level"]; ok {
		return nil, ErrLegacyChunk
	}
	x, okX := Int(root["xPos"])
	z, okZ := Int(root["zPos"])
	if !okX || !okZ {
		return nil, fmt.Errorf("chunk has no xPos/zPos")
	}
	c := &Chunk{Pos: world.ChunkPos{int32(x), int32(z)}}
	if v, ok := Int(root["DataVersion"]); ok {
		c.DataVersion = int32(v)
	}
	c.Status, _ = String(root["Status"])

	sections, _ := List(root["sections"])
	for i, raw := range sections {
		m, ok := Compound(raw)
		if !ok {
			return nil, fmt.Errorf("section %d is not a compound", i)
		}
		s, err := parseSection(m)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		c.Sections = append(c.Sections, s)
	}

	entities, _ := List(root["block_entities"])
	for _, raw := range entities {
		if m, ok := Compound(raw); ok {
			c.BlockEntities = append(c.BlockEntities, m)
		}
	}

	if heightmaps, ok := Compound(root["Heightmaps"]); ok {
		c.Heightmaps = make(map[string][]int64, len(heightmaps))
		for name, v := range heightmaps {
			if l, ok := Longs(v); ok {
				c.Heightmaps[name] = l
			}
		}
	}
	return c, nil
}

func parseSection(m map[string]any) (Section, error) {
	y, ok := Int(m["Y"])
	if !ok {
		return Section{}, fmt.Errorf("missing Y")
	}
	s := Section{Y: int8(y)}

	if states, ok := Compound(m["block_states"]); ok {
		palette, _ := List(states["palette"])
		for _, raw := range palette {
			entry, ok := Compound(raw)
			if !ok {
				return Section{}, fmt.Errorf("block palette entry is not a compound")
			}
			name, _ := String(entry["Name"])
			state := BlockState{Name: name}
			if props, ok := Compound(entry["Properties"]); ok {
				state.Properties = make(map[string]string, len(props))
				for k, v := range props {
					state.Properties[k], _ = String(v)
				}
			}
			s.BlockPalette = append(s.BlockPalette, state)
		}
		s.BlockData, _ = Longs(states["data"])
	}

	if biomes, ok := Compound(m["biomes"]); ok {
		palette, _ := List(biomes["palette"])
		for _, raw := range palette {
			name, ok := String(raw)
			if !ok {
				return Section{}, fmt.Errorf("biome palette entry is not a string")
			}
			s.BiomePalette = append(s.BiomePalette, name)
		}
		s.BiomeData, _ = Longs(biomes["data"])
	}

	s.BlockLight, _ = Bytes(m["BlockLight"])
	s.SkyLight, _ = Bytes(m["SkyLight"])
	return s, nil
}
