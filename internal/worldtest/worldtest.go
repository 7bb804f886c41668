// Package worldtest builds Anvil world saves on disk for tests.
package worldtest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
	"github.com/stretchr/testify/require"
)

// Compression schemes of chunk payloads.
const (
	GZip     byte = 1
	Zlib     byte = 2
	None     byte = 3
	LZ4      byte = 4
	External byte = 0x80
)

// LevelDat returns a gzip compressed level.dat holding the data version and version name passed.
func LevelDat(t testing.TB, dataVersion int32, versionName string) []byte {
	t.Helper()
	data := map[string]any{
		"DataVersion": dataVersion,
		"LevelName":   "Test World",
		"SpawnX":      int32(8),
		"SpawnY":      int32(70),
		"SpawnZ":      int32(-8),
	}
	if versionName != "" {
		data["Version"] = map[string]any{"Name": versionName, "Id": dataVersion}
	}
	return GZipNBT(t, map[string]any{"Data": data})
}

// GZipNBT encodes v as a big endian NBT compound and compresses it with gzip.
func GZipNBT(t testing.TB, v any) []byte {
	t.Helper()
	b, err := nbt.MarshalEncoding(v, nbt.BigEndian)
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	w := gzip.NewWriter(buf)
	_, err = w.Write(b)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// World creates a world folder in a new temporary directory with a level.dat and an empty region
// folder, and returns its path.
func World(t testing.TB, dataVersion int32, versionName string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "world")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "region"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "level.dat"), LevelDat(t, dataVersion, versionName), 0o644))
	return dir
}

// LongArray returns a value that encodes as a TAG_Long_Array.
func LongArray(l []int64) any {
	v := reflect.New(reflect.ArrayOf(len(l), reflect.TypeOf(int64(0)))).Elem()
	reflect.Copy(v, reflect.ValueOf(l))
	return v.Interface()
}

// Light returns a 2048 byte light array with every nibble set to level.
func Light(level byte) [2048]byte {
	var a [2048]byte
	for i := range a {
		a[i] = level<<4 | level&0xf
	}
	return a
}

// Block returns a block palette entry.
func Block(name string, props map[string]any) map[string]any {
	m := map[string]any{"Name": name}
	if len(props) != 0 {
		m["Properties"] = props
	}
	return m
}

// Section returns a chunk section compound. blockData and biomeData may be nil for single entry
// palettes.
func Section(y int8, palette []map[string]any, blockData []int64, biomes []string, biomeData []int64) map[string]any {
	states := map[string]any{"palette": palette}
	if blockData != nil {
		states["data"] = LongArray(blockData)
	}
	biomeCompound := map[string]any{"palette": biomes}
	if biomeData != nil {
		biomeCompound["data"] = LongArray(biomeData)
	}
	return map[string]any{
		"Y":            uint8(y),
		"block_states": states,
		"biomes":       biomeCompound,
	}
}

// Chunk returns the root compound of a chunk at x, z with the sections passed.
func Chunk(x, z int32, dataVersion int32, sections ...map[string]any) map[string]any {
	if sections == nil {
		sections = []map[string]any{}
	}
	return map[string]any{
		"xPos":           x,
		"yPos":           int32(-4),
		"zPos":           z,
		"DataVersion":    dataVersion,
		"Status":         "minecraft:full",
		"sections":       sections,
		"block_entities": []map[string]any{},
	}
}

// Region builds an r.<x>.<z>.mca file.
type Region struct {
	X, Z   int32
	chunks map[int]regionChunk
}

type regionChunk struct {
	x, z        int32
	compression byte
	payload     []byte
}

// NewRegion returns an empty region at the region coordinates passed.
func NewRegion(x, z int32) *Region {
	return &Region{X: x, Z: z, chunks: make(map[int]regionChunk)}
}

// Add stores root as the chunk at its xPos/zPos using the compression passed. With External set in
// compression the payload is written to a .mcc file by WriteTo.
func (r *Region) Add(t testing.TB, root map[string]any, compression byte) {
	t.Helper()
	x, z := root["xPos"].(int32), root["zPos"].(int32)
	require.Equal(t, r.X, x>>5, "chunk outside region")
	require.Equal(t, r.Z, z>>5, "chunk outside region")

	raw, err := nbt.MarshalEncoding(root, nbt.BigEndian)
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	switch compression &^ External {
	case GZip:
		w := gzip.NewWriter(buf)
		_, err = w.Write(raw)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case Zlib:
		w := zlib.NewWriter(buf)
		_, err = w.Write(raw)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	default:
		buf.Write(raw)
	}
	r.chunks[int(x&31)+int(z&31)*32] = regionChunk{x: x, z: z, compression: compression, payload: buf.Bytes()}
}

// Bytes returns the content of the region file.
func (r *Region) Bytes() []byte {
	indices := make([]int, 0, len(r.chunks))
	for i := range r.chunks {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	header := make([]byte, 8192)
	body := new(bytes.Buffer)
	sector := 2
	for _, i := range indices {
		c := r.chunks[i]
		payload := c.payload
		if c.compression&External != 0 {
			payload = nil
		}
		entry := make([]byte, 5+len(payload))
		binary.BigEndian.PutUint32(entry, uint32(len(payload)+1))
		entry[4] = c.compression
		copy(entry[5:], payload)

		sectors := (len(entry) + 4095) / 4096
		binary.BigEndian.PutUint32(header[i*4:], uint32(sector)<<8|uint32(sectors))
		body.Write(entry)
		body.Write(make([]byte, sectors*4096-len(entry)))
		sector += sectors
	}
	return append(header, body.Bytes()...)
}

// WriteTo writes the region file, and any external chunk payloads, to the region folder of the
// world passed.
func (r *Region) WriteTo(t testing.TB, worldDir string) {
	t.Helper()
	dir := filepath.Join(worldDir, "region")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	name := filepath.Join(dir, fmt.Sprintf("r.%d.%d.mca", r.X, r.Z))
	require.NoError(t, os.WriteFile(name, r.Bytes(), 0o644))
	for _, c := range r.chunks {
		if c.compression&External == 0 {
			continue
		}
		ext := filepath.Join(dir, fmt.Sprintf("c.%d.%d.mcc", c.x, c.z))
		require.NoError(t, os.WriteFile(ext, c.payload, 0o644))
	}
}
