// Package level reads the level.dat of a Java Edition world.
package level

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/klauspost/compress/gzip"
	"github.com/sandertv/gophertunnel/minecraft/nbt"

	"polar-converter/anvil"
)

// FileName is the name of the level.dat file in a world folder.
const FileName = "level.dat"

// UnknownVersion is the version name reported for worlds that do not store one.
const UnknownVersion = "Unknown"

// ErrDataMissing is returned when level.dat has no Data compound.
var ErrDataMissing = errors.New("level.dat has no Data compound")

// Level holds the fields of level.dat used to check a world before converting it.
type Level struct {
	DataVersion int32
	// VersionName is the name of the game version the world was last saved with, UnknownVersion
	// if not stored.
	VersionName string
	Name        string
	Spawn       cube.Pos
}

// Path returns the path of the level.dat in worldDir.
func Path(worldDir string) string {
	return filepath.Join(worldDir, FileName)
}

// ReadFile reads the level.dat at path.
func ReadFile(path string) (*Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read reads a gzip compressed level.dat from r.
func Read(r io.Reader) (*Level, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	var root map[string]any
	if err := nbt.NewDecoderWithEncoding(gz, nbt.BigEndian).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode level.dat: %w", err)
	}
	data, ok := anvil.Compound(root["Data"])
	if !ok {
		return nil, ErrDataMissing
	}

	l := &Level{VersionName: UnknownVersion}
	if v, ok := anvil.Int(data["DataVersion"]); ok {
		l.DataVersion = int32(v)
	}
	if version, ok := anvil.Compound(data["Version"]); ok {
		if name, ok := anvil.String(version["Name"]); ok {
			l.VersionName = name
		}
	}
	l.Name, _ = anvil.String(data["LevelName"])
	x, _ := anvil.Int(data["SpawnX"])
	y, _ := anvil.Int(data["SpawnY"])
	z, _ := anvil.Int(data["SpawnZ"])
	l.Spawn = cube.Pos{int(x), int(y), int(z)}
	return l, nil
}
