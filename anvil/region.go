package anvil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

const (
	sectorSize = 4096
	// regionSize is the number of chunks along one side of a region.
	regionSize   = 32
	regionChunks = regionSize * regionSize
	headerSize   = 2 * sectorSize
)

// Region is an open r.<x>.<z>.mca file. Only the location table is held in memory, chunk payloads
// are read on demand.
type Region struct {
	X, Z int32

	path      string
	f         *os.File
	size      int64
	locations [regionChunks]uint32
}

// ParseRegionName returns the region coordinates encoded in a file name of the form r.<x>.<z>.mca.
func ParseRegionName(name string) (x, z int32, ok bool) {
	fields := strings.Split(name, ".")
	if len(fields) != 4 || fields[0] != "r" || fields[3] != "mca" {
		return 0, 0, false
	}
	rx, errX := strconv.ParseInt(fields[1], 10, 32)
	rz, errZ := strconv.ParseInt(fields[2], 10, 32)
	if errX != nil || errZ != nil {
		return 0, 0, false
	}
	return int32(rx), int32(rz), true
}

// RegionName returns the file name of the region at the region coordinates passed.
func RegionName(x, z int32) string {
	return fmt.Sprintf("r.%d.%d.mca", x, z)
}

// RegionOf returns the coordinates of the region holding the chunk passed.
func RegionOf(pos world.ChunkPos) (x, z int32) {
	return pos.X() >> 5, pos.Z() >> 5
}

// OpenRegion opens the region file at path and reads its location table. A file shorter than the
// header is treated as a region without chunks.
func OpenRegion(path string) (*Region, error) {
	x, z, ok := ParseRegionName(filepath.Base(path))
	if !ok {
		return nil, fmt.Errorf("open region %s: not a region file name", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open region: %w", err)
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat region %s: %w", path, err)
	}

	r := &Region{X: x, Z: z, path: path, f: f, size: stat.Size()}
	if r.size < headerSize {
		return r, nil
	}
	header := make([]byte, sectorSize)
	if _, err := f.ReadAt(header, 0); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("read region header %s: %w", path, err)
	}
	for i := range r.locations {
		r.locations[i] = binary.BigEndian.Uint32(header[i*4:])
	}
	return r, nil
}

// Close closes the underlying file.
func (r *Region) Close() error {
	return r.f.Close()
}

// Positions returns the positions of all chunks present in the region, in location table order.
func (r *Region) Positions() []world.ChunkPos {
	var positions []world.ChunkPos
	for i, loc := range r.locations {
		if loc == 0 {
			continue
		}
		positions = append(positions, world.ChunkPos{
			r.X*regionSize + int32(i%regionSize),
			r.Z*regionSize + int32(i/regionSize),
		})
	}
	return positions
}

// ReadChunk reads and decodes the NBT of the chunk at pos. The bool returned is false if the
// chunk is not present in the region.
func (r *Region) ReadChunk(pos world.ChunkPos) (map[string]any, bool, error) {
	rx, rz := RegionOf(pos)
	if rx != r.X || rz != r.Z {
		return nil, false, fmt.Errorf("chunk %v is not in region %d,%d", pos, r.X, r.Z)
	}
	loc := r.locations[(pos.X()&(regionSize-1))+(pos.Z()&(regionSize-1))*regionSize]
	if loc == 0 {
		return nil, false, nil
	}
	// The last sector of a chunk may be cut short, so only the payload length bounds the read.
	offset := int64(loc>>8) * sectorSize
	if offset < headerSize || offset+5 > r.size {
		return nil, false, fmt.Errorf("chunk %v: location %d outside region file", pos, offset)
	}

	var head [5]byte
	if _, err := r.f.ReadAt(head[:], offset); err != nil {
		return nil, false, fmt.Errorf("chunk %v: read header: %w", pos, err)
	}
	length := int64(binary.BigEndian.Uint32(head[:4]))
	compression := Compression(head[4])

	var payload []byte
	if compression&externalFlag != 0 {
		compression &^= externalFlag
		b, err := os.ReadFile(filepath.Join(filepath.Dir(r.path), fmt.Sprintf("c.%d.%d.mcc", pos.X(), pos.Z())))
		if err != nil {
			return nil, false, fmt.Errorf("chunk %v: read external payload: %w", pos, err)
		}
		payload = b
	} else {
		if length < 1 || offset+4+length > r.size {
			return nil, false, fmt.Errorf("chunk %v: invalid payload length %d", pos, length)
		}
		payload = make([]byte, length-1)
		if _, err := r.f.ReadAt(payload, offset+5); err != nil && err != io.EOF {
			return nil, false, fmt.Errorf("chunk %v: read payload: %w", pos, err)
		}
	}

	raw, err := compression.decompress(payload)
	if err != nil {
		return nil, false, fmt.Errorf("chunk %v: %w", pos, err)
	}
	var m map[string]any
	if err := nbt.NewDecoderWithEncoding(bytes.NewBuffer(raw), nbt.BigEndian).Decode(&m); err != nil {
		return nil, false, fmt.Errorf("chunk %v: decode nbt: %w", pos, err)
	}
	return m, true, nil
}
