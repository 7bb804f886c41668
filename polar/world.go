// Package polar implements the Polar world format: a single file holding chunk columns with
// paletted sections, block entities, heightmaps and light, optionally compressed with zstd.
package polar

import (
	"github.com/df-mc/dragonfly/server/world"
)

const (
	// MagicNumber is "Polr" read as a big endian int32.
	MagicNumber int32 = 0x506F6C72
	// LatestVersion is the format version written by Write.
	LatestVersion int16 = 7
)

// Compression is the compression applied to the content of a Polar file.
type Compression byte

const (
	CompressionNone Compression = iota
	CompressionZstd
)

// LightContent describes what a light array of a section holds.
type LightContent byte

const (
	LightMissing LightContent = iota
	LightEmpty
	LightFull
	LightPresent
)

// Heightmap kinds, in the order of the bits of the heightmap mask.
const (
	HeightmapMotionBlocking = iota
	HeightmapMotionBlockingNoLeaves
	HeightmapOceanFloor
	HeightmapOceanFloorWG
	HeightmapWorldSurface
	HeightmapWorldSurfaceWG
	HeightmapCount
)

// HeightmapNames holds the Anvil names of the heightmaps, indexed by kind.
var HeightmapNames = [HeightmapCount]string{
	"MOTION_BLOCKING",
	"MOTION_BLOCKING_NO_LEAVES",
	"OCEAN_FLOOR",
	"OCEAN_FLOOR_WG",
	"WORLD_SURFACE",
	"WORLD_SURFACE_WG",
}

// LightSize is the length of a present light array: one nibble per block.
const LightSize = BlockCount / 2

// World is an in-memory Polar world.
type World struct {
	Version     int16
	DataVersion int32
	Compression Compression
	MinSection  int8
	MaxSection  int8
	UserData    []byte
	Chunks      []*Chunk
}

// NewWorld returns an empty world spanning the sections passed, inclusive.
func NewWorld(minSection, maxSection int8, dataVersion int32) *World {
	return &World{
		Version:     LatestVersion,
		DataVersion: dataVersion,
		Compression: CompressionZstd,
		MinSection:  minSection,
		MaxSection:  maxSection,
	}
}

// SectionCount returns the number of sections in every chunk of the world.
func (w *World) SectionCount() int {
	return int(w.MaxSection) - int(w.MinSection) + 1
}

// Chunk returns the chunk at pos, or nil if the world does not hold it.
func (w *World) Chunk(pos world.ChunkPos) *Chunk {
	for _, c := range w.Chunks {
		if c.Pos == pos {
			return c
		}
	}
	return nil
}

// Chunk is a column of sections.
type Chunk struct {
	Pos           world.ChunkPos
	Sections      []Section
	BlockEntities []BlockEntity
	// Heightmaps are indexed by heightmap kind, nil entries are not stored.
	Heightmaps [HeightmapCount][]int64
	UserData   []byte
}

// NewChunk returns a chunk at pos with sectionCount empty sections.
func NewChunk(pos world.ChunkPos, sectionCount int) *Chunk {
	c := &Chunk{Pos: pos, Sections: make([]Section, sectionCount)}
	for i := range c.Sections {
		c.Sections[i] = EmptySection()
	}
	return c
}

// Section is a 16x16x16 part of a chunk.
type Section struct {
	Empty        bool
	BlockPalette []string
	// BlockData holds BlockCount indices into BlockPalette in YZX order, nil if the palette has a
	// single entry.
	BlockData    []int32
	BiomePalette []string
	// BiomeData holds BiomeCount indices into BiomePalette, nil if the palette has a single entry.
	BiomeData []int32

	BlockLightContent LightContent
	BlockLight        []byte
	SkyLightContent   LightContent
	SkyLight          []byte
}

// EmptySection returns a section of air in plains.
func EmptySection() Section {
	return Section{
		Empty:        true,
		BlockPalette: []string{"minecraft:air"},
		BiomePalette: []string{"minecraft:plains"},
	}
}

// Block returns the block state at the section-local coordinates passed.
func (s Section) Block(x, y, z int) string {
	if len(s.BlockPalette) == 1 || s.BlockData == nil {
		return s.BlockPalette[0]
	}
	return s.BlockPalette[s.BlockData[(y&15)<<8|(z&15)<<4|x&15]]
}

// Biome returns the biome of the 4x4x4 cell at the section-local cell coordinates passed.
func (s Section) Biome(x, y, z int) string {
	if len(s.BiomePalette) == 1 || s.BiomeData == nil {
		return s.BiomePalette[0]
	}
	return s.BiomePalette[s.BiomeData[(y&3)<<4|(z&3)<<2|x&3]]
}

// BlockEntity is a block entity with chunk-local X and Z and an absolute Y.
type BlockEntity struct {
	X, Y, Z int32
	// ID is empty if the block entity has no id.
	ID string
	// Data is nil if the block entity carries no data beyond its id and position.
	Data map[string]any
}

// BlockIndex packs chunk-local coordinates into the int32 stored in the file.
func BlockIndex(x, y, z int32) int32 {
	index := x & 0xf
	if y > 0 {
		index |= (y << 4) & 0x07FFFFF0
	} else {
		index |= ((-y) << 4) & 0x07FFFFF0
	}
	if y < 0 {
		index |= 1 << 27
	}
	index |= (z & 0xf) << 28
	return index
}

// BlockPosition unpacks an index made by BlockIndex.
func BlockPosition(index int32) (x, y, z int32) {
	x = index & 0xf
	y = (index & 0x07FFFFF0) >> 4
	if index&(1<<27) != 0 {
		y = -y
	}
	z = int32(uint32(index) >> 28)
	return x, y, z
}
