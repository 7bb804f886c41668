package polar

import (
	"errors"
	"fmt"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/klauspost/compress/zstd"
)

var (
	// ErrInvalidMagic is returned by Read for data that does not start with MagicNumber.
	ErrInvalidMagic = errors.New("not a polar world")
	// ErrUnsupportedVersion is returned by Read for format versions other than LatestVersion.
	ErrUnsupportedVersion = errors.New("unsupported polar version")
)

// Read parses the bytes of a Polar file written with the latest format version.
func Read(data []byte) (*World, error) {
	r := newReader(data)
	magic, err := r.Int32()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if magic != MagicNumber {
		return nil, ErrInvalidMagic
	}
	version, err := r.Int16()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if version != LatestVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	w := &World{Version: version}
	if w.DataVersion, err = r.VarInt(); err != nil {
		return nil, fmt.Errorf("read data version: %w", err)
	}
	compression, err := r.Byte()
	if err != nil {
		return nil, fmt.Errorf("read compression: %w", err)
	}
	w.Compression = Compression(compression)
	length, err := r.VarInt()
	if err != nil {
		return nil, fmt.Errorf("read content length: %w", err)
	}

	var raw []byte
	switch w.Compression {
	case CompressionNone:
		if raw, err = r.Raw(int(length)); err != nil {
			return nil, fmt.Errorf("read content: %w", err)
		}
		if r.Len() != 0 {
			return nil, fmt.Errorf("%d trailing bytes after content", r.Len())
		}
	case CompressionZstd:
		compressed, _ := r.Raw(r.Len())
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		raw, err = dec.DecodeAll(compressed, make([]byte, 0, length))
		dec.Close()
		if err != nil {
			return nil, fmt.Errorf("decompress content: %w", err)
		}
		if len(raw) != int(length) {
			return nil, fmt.Errorf("content is %d bytes, header says %d", len(raw), length)
		}
	default:
		return nil, fmt.Errorf("unknown compression %d", compression)
	}

	if err := readContent(newReader(raw), w); err != nil {
		return nil, err
	}
	return w, nil
}

func readContent(r *reader, w *World) error {
	minSection, err := r.Byte()
	if err != nil {
		return fmt.Errorf("read section range: %w", err)
	}
	maxSection, err := r.Byte()
	if err != nil {
		return fmt.Errorf("read section range: %w", err)
	}
	w.MinSection, w.MaxSection = int8(minSection), int8(maxSection)
	if w.SectionCount() <= 0 {
		return fmt.Errorf("invalid section range %d..%d", w.MinSection, w.MaxSection)
	}
	if w.UserData, err = r.ByteArray(); err != nil {
		return fmt.Errorf("read user data: %w", err)
	}
	count, err := r.length(1)
	if err != nil {
		return fmt.Errorf("read chunk count: %w", err)
	}
	w.Chunks = make([]*Chunk, 0, count)
	for i := 0; i < count; i++ {
		c, err := readChunk(r, w.SectionCount())
		if err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		w.Chunks = append(w.Chunks, c)
	}
	if r.Len() != 0 {
		return fmt.Errorf("%d trailing bytes after chunks", r.Len())
	}
	return nil
}

func readChunk(r *reader, sectionCount int) (*Chunk, error) {
	x, err := r.VarInt()
	if err != nil {
		return nil, err
	}
	z, err := r.VarInt()
	if err != nil {
		return nil, err
	}
	c := &Chunk{Pos: world.ChunkPos{x, z}, Sections: make([]Section, sectionCount)}
	for i := range c.Sections {
		if c.Sections[i], err = readSection(r); err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
	}

	n, err := r.length(5)
	if err != nil {
		return nil, fmt.Errorf("block entities: %w", err)
	}
	for i := 0; i < n; i++ {
		be, err := readBlockEntity(r)
		if err != nil {
			return nil, fmt.Errorf("block entity %d: %w", i, err)
		}
		c.BlockEntities = append(c.BlockEntities, be)
	}

	mask, err := r.Int32()
	if err != nil {
		return nil, fmt.Errorf("heightmaps: %w", err)
	}
	for i := range c.Heightmaps {
		if mask&(1<<i) == 0 {
			continue
		}
		if c.Heightmaps[i], err = r.LongArray(); err != nil {
			return nil, fmt.Errorf("heightmap %s: %w", HeightmapNames[i], err)
		}
	}

	if c.UserData, err = r.ByteArray(); err != nil {
		return nil, fmt.Errorf("user data: %w", err)
	}
	return c, nil
}

func readSection(r *reader) (Section, error) {
	empty, err := r.Bool()
	if err != nil {
		return Section{}, err
	}
	if empty {
		return EmptySection(), nil
	}

	var s Section
	if s.BlockPalette, s.BlockData, err = readPalette(r, BlockCount); err != nil {
		return Section{}, fmt.Errorf("blocks: %w", err)
	}
	if s.BiomePalette, s.BiomeData, err = readPalette(r, BiomeCount); err != nil {
		return Section{}, fmt.Errorf("biomes: %w", err)
	}
	if s.BlockLightContent, s.BlockLight, err = readLight(r); err != nil {
		return Section{}, fmt.Errorf("block light: %w", err)
	}
	if s.SkyLightContent, s.SkyLight, err = readLight(r); err != nil {
		return Section{}, fmt.Errorf("sky light: %w", err)
	}
	return s, nil
}

func readPalette(r *reader, count int) ([]string, []int32, error) {
	palette, err := r.Strings()
	if err != nil {
		return nil, nil, err
	}
	if len(palette) == 0 {
		return nil, nil, fmt.Errorf("empty palette")
	}
	if len(palette) == 1 {
		return palette, nil, nil
	}
	longs, err := r.LongArray()
	if err != nil {
		return nil, nil, err
	}
	data, err := Unpack(longs, BitsPerEntry(len(palette)), count)
	if err != nil {
		return nil, nil, err
	}
	return palette, data, nil
}

func readLight(r *reader) (LightContent, []byte, error) {
	b, err := r.Byte()
	if err != nil {
		return 0, nil, err
	}
	content := LightContent(b)
	switch content {
	case LightMissing, LightEmpty, LightFull:
		return content, nil, nil
	case LightPresent:
		light, err := r.Raw(LightSize)
		return content, light, err
	}
	return 0, nil, fmt.Errorf("unknown light content %d", b)
}

func readBlockEntity(r *reader) (BlockEntity, error) {
	index, err := r.Int32()
	if err != nil {
		return BlockEntity{}, err
	}
	var be BlockEntity
	be.X, be.Y, be.Z = BlockPosition(index)

	hasID, err := r.Bool()
	if err != nil {
		return BlockEntity{}, err
	}
	if hasID {
		if be.ID, err = r.String(); err != nil {
			return BlockEntity{}, err
		}
	}
	hasData, err := r.Bool()
	if err != nil {
		return BlockEntity{}, err
	}
	if hasData {
		if be.Data, err = r.NetworkNBT(); err != nil {
			return BlockEntity{}, err
		}
	}
	return be, nil
}
