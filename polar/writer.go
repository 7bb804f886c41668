package polar

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Write serialises w into the bytes of a Polar file.
func Write(w *World) ([]byte, error) {
	sectionCount := w.SectionCount()
	if sectionCount <= 0 {
		return nil, fmt.Errorf("invalid section range %d..%d", w.MinSection, w.MaxSection)
	}

	content := newWriter()
	content.Byte(byte(w.MinSection))
	content.Byte(byte(w.MaxSection))
	content.ByteArray(w.UserData)
	content.VarInt(int32(len(w.Chunks)))
	for _, c := range w.Chunks {
		if err := writeChunk(content, c, sectionCount); err != nil {
			return nil, fmt.Errorf("chunk %v: %w", c.Pos, err)
		}
	}
	raw := content.Bytes()

	out := newWriter()
	out.Int32(MagicNumber)
	out.Int16(LatestVersion)
	out.VarInt(w.DataVersion)
	out.Byte(byte(w.Compression))
	out.VarInt(int32(len(raw)))
	switch w.Compression {
	case CompressionNone:
		out.Raw(raw)
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		out.Raw(enc.EncodeAll(raw, nil))
		_ = enc.Close()
	default:
		return nil, fmt.Errorf("unknown compression %d", w.Compression)
	}
	return out.Bytes(), nil
}

func writeChunk(w *writer, c *Chunk, sectionCount int) error {
	if len(c.Sections) != sectionCount {
		return fmt.Errorf("chunk has %d sections, world has %d", len(c.Sections), sectionCount)
	}
	w.VarInt(c.Pos.X())
	w.VarInt(c.Pos.Z())
	for i, s := range c.Sections {
		if err := writeSection(w, s); err != nil {
			return fmt.Errorf("section %d: %w", i, err)
		}
	}

	w.VarInt(int32(len(c.BlockEntities)))
	for _, be := range c.BlockEntities {
		if err := writeBlockEntity(w, be); err != nil {
			return fmt.Errorf("block entity %d,%d,%d: %w", be.X, be.Y, be.Z, err)
		}
	}

	var mask int32
	for i, h := range c.Heightmaps {
		if h != nil {
			mask |= 1 << i
		}
	}
	w.Int32(mask)
	for _, h := range c.Heightmaps {
		if h != nil {
			w.LongArray(h)
		}
	}

	w.ByteArray(c.UserData)
	return nil
}

func writeSection(w *writer, s Section) error {
	w.Bool(s.Empty)
	if s.Empty {
		return nil
	}

	if err := writePalette(w, s.BlockPalette, s.BlockData, BlockCount); err != nil {
		return fmt.Errorf("blocks: %w", err)
	}
	if err := writePalette(w, s.BiomePalette, s.BiomeData, BiomeCount); err != nil {
		return fmt.Errorf("biomes: %w", err)
	}

	if err := writeLight(w, s.BlockLightContent, s.BlockLight); err != nil {
		return fmt.Errorf("block light: %w", err)
	}
	if err := writeLight(w, s.SkyLightContent, s.SkyLight); err != nil {
		return fmt.Errorf("sky light: %w", err)
	}
	return nil
}

func writePalette(w *writer, palette []string, data []int32, count int) error {
	if len(palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	w.Strings(palette)
	if len(palette) == 1 {
		return nil
	}
	if len(data) != count {
		return fmt.Errorf("palette of %d entries with %d indices, need %d", len(palette), len(data), count)
	}
	if err := checkIndices(data, len(palette)); err != nil {
		return err
	}
	w.LongArray(Pack(data, BitsPerEntry(len(palette))))
	return nil
}

func writeLight(w *writer, content LightContent, light []byte) error {
	w.Byte(byte(content))
	if content != LightPresent {
		return nil
	}
	if len(light) != LightSize {
		return fmt.Errorf("light array of %d bytes", len(light))
	}
	w.Raw(light)
	return nil
}

func writeBlockEntity(w *writer, be BlockEntity) error {
	w.Int32(BlockIndex(be.X, be.Y, be.Z))
	w.Bool(be.ID != "")
	if be.ID != "" {
		w.String(be.ID)
	}
	w.Bool(be.Data != nil)
	if be.Data != nil {
		b, err := marshalNetworkNBT(be.Data)
		if err != nil {
			return err
		}
		w.Raw(b)
	}
	return nil
}
