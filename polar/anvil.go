package polar

import (
	"bytes"
	"context"
	"fmt"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"polar-converter/anvil"
)

// Options configures the conversion of an Anvil world.
type Options struct {
	// Selector picks the chunks to convert. All chunks are converted if nil.
	Selector anvil.Selector
	// Range is the block height range of the world. Sections outside it are dropped. The
	// overworld range of -64 to 319 is used if zero.
	Range cube.Range
	// DataVersion is stored in the header of the Polar world.
	DataVersion int32
	Compression Compression
	Log         logrus.FieldLogger
}

// OverworldRange is the height range of the overworld since 1.18.
var OverworldRange = cube.Range{-64, 319}

// FromAnvil reads the Anvil world in worldDir and converts the chunks picked by the options into a
// Polar world.
func FromAnvil(ctx context.Context, worldDir string, opts Options) (*World, error) {
	if opts.Range == (cube.Range{}) {
		opts.Range = OverworldRange
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Selector == nil {
		opts.Selector = anvil.All()
	}

	chunks, err := anvil.ReadWorld(ctx, worldDir, opts.Selector, opts.Log)
	if err != nil {
		return nil, fmt.Errorf("read anvil world: %w", err)
	}

	w := NewWorld(int8(opts.Range.Min()>>4), int8(opts.Range.Max()>>4), opts.DataVersion)
	w.Compression = opts.Compression
	for _, c := range chunks {
		converted, err := ConvertChunk(c, w.MinSection, w.MaxSection)
		if err != nil {
			return nil, fmt.Errorf("convert chunk %v: %w", c.Pos, err)
		}
		w.Chunks = append(w.Chunks, converted)
	}
	opts.Log.Debugf("Converted %d chunks.", len(w.Chunks))
	return w, nil
}

// ConvertChunk converts an Anvil chunk into a Polar chunk spanning minSection to maxSection.
func ConvertChunk(c *anvil.Chunk, minSection, maxSection int8) (*Chunk, error) {
	out := NewChunk(c.Pos, int(maxSection)-int(minSection)+1)
	for _, s := range c.Sections {
		if s.Y < minSection || s.Y > maxSection {
			continue
		}
		converted, err := convertSection(s)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", s.Y, err)
		}
		out.Sections[int(s.Y)-int(minSection)] = converted
	}

	for _, m := range c.BlockEntities {
		be, ok := convertBlockEntity(m)
		if ok {
			out.BlockEntities = append(out.BlockEntities, be)
		}
	}

	for i, name := range HeightmapNames {
		if h, ok := c.Heightmaps[name]; ok {
			out.Heightmaps[i] = h
		}
	}
	return out, nil
}

func convertSection(s anvil.Section) (Section, error) {
	// Sections without block states hold only light.
	if len(s.BlockPalette) == 0 {
		out := EmptySection()
		if s.BlockLight == nil && s.SkyLight == nil {
			return out, nil
		}
		out.Empty = false
		out.BlockLightContent, out.BlockLight = lightContent(s.BlockLight)
		out.SkyLightContent, out.SkyLight = lightContent(s.SkyLight)
		return out, nil
	}

	out := Section{
		BlockPalette: lo.Map(s.BlockPalette, func(b anvil.BlockState, _ int) string { return b.String() }),
		BiomePalette: s.BiomePalette,
	}
	if len(out.BlockPalette) > 1 {
		bits := BitsPerEntry(len(out.BlockPalette))
		if bits < 4 {
			bits = 4
		}
		data, err := Unpack(s.BlockData, bits, BlockCount)
		if err != nil {
			return Section{}, fmt.Errorf("block data: %w", err)
		}
		if err := checkIndices(data, len(out.BlockPalette)); err != nil {
			return Section{}, fmt.Errorf("block data: %w", err)
		}
		out.BlockData = data
	}

	if len(out.BiomePalette) == 0 {
		out.BiomePalette = []string{"minecraft:plains"}
	} else if len(out.BiomePalette) > 1 {
		data, err := Unpack(s.BiomeData, BitsPerEntry(len(out.BiomePalette)), BiomeCount)
		if err != nil {
			return Section{}, fmt.Errorf("biome data: %w", err)
		}
		if err := checkIndices(data, len(out.BiomePalette)); err != nil {
			return Section{}, fmt.Errorf("biome data: %w", err)
		}
		out.BiomeData = data
	}

	out.BlockLightContent, out.BlockLight = lightContent(s.BlockLight)
	out.SkyLightContent, out.SkyLight = lightContent(s.SkyLight)
	return out, nil
}

var (
	emptyLight = make([]byte, LightSize)
	fullLight  = bytes.Repeat([]byte{0xff}, LightSize)
)

func lightContent(light []byte) (LightContent, []byte) {
	switch {
	case len(light) != LightSize:
		return LightMissing, nil
	case bytes.Equal(light, emptyLight):
		return LightEmpty, nil
	case bytes.Equal(light, fullLight):
		return LightFull, nil
	}
	return LightPresent, light
}

// blockEntityKeys are stored outside the data of a Polar block entity, or not at all.
var blockEntityKeys = []string{"x", "y", "z", "id", "keepPacked"}

func convertBlockEntity(m map[string]any) (BlockEntity, bool) {
	x, okX := anvil.Int(m["x"])
	y, okY := anvil.Int(m["y"])
	z, okZ := anvil.Int(m["z"])
	if !okX || !okY || !okZ {
		return BlockEntity{}, false
	}
	be := BlockEntity{X: int32(x) & 0xf, Y: int32(y), Z: int32(z) & 0xf}
	be.ID, _ = anvil.String(m["id"])

	data := lo.OmitByKeys(m, blockEntityKeys)
	if len(data) != 0 {
		be.Data = data
	}
	return be, true
}
