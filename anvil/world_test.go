package anvil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polar-converter/anvil"
	"polar-converter/internal/worldtest"
)

func positions(chunks []*anvil.Chunk) []world.ChunkPos {
	return lo.Map(chunks, func(c *anvil.Chunk, _ int) world.ChunkPos { return c.Pos })
}

func TestReadWorld(t *testing.T) {
	dir := worldtest.World(t, 4189, "1.21.4")

	r := worldtest.NewRegion(0, 0)
	r.Add(t, worldtest.Chunk(0, 0, 4189), worldtest.Zlib)
	r.Add(t, worldtest.Chunk(3, 0, 4189), worldtest.Zlib)
	proto := worldtest.Chunk(1, 1, 4189)
	proto["Status"] = "minecraft:features"
	r.Add(t, proto, worldtest.Zlib)
	r.WriteTo(t, dir)

	r = worldtest.NewRegion(-1, -1)
	r.Add(t, worldtest.Chunk(-1, -1, 4189), worldtest.GZip)
	r.Add(t, worldtest.Chunk(-1, -2, 4189), worldtest.GZip)
	r.WriteTo(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "region", "notes.txt"), []byte("x"), 0o644))

	chunks, err := anvil.ReadWorld(context.Background(), dir, anvil.All(), logrus.New())
	require.NoError(t, err)
	assert.Equal(t, []world.ChunkPos{{-1, -2}, {-1, -1}, {0, 0}, {3, 0}}, positions(chunks))

	chunks, err = anvil.ReadWorld(context.Background(), dir, anvil.Radius(2), logrus.New())
	require.NoError(t, err)
	assert.Equal(t, []world.ChunkPos{{-1, -1}, {0, 0}}, positions(chunks))
}

func TestReadWorldLegacyChunk(t *testing.T) {
	dir := worldtest.World(t, 4189, "1.21.4")
	r := worldtest.NewRegion(0, 0)
	r.Add(t, map[string]any{
		"xPos":  int32(0),
		"zPos":  int32(0),
		"Level": map[string]any{"xPos": int32(0), "zPos": int32(0)},
	}, worldtest.Zlib)
	r.WriteTo(t, dir)

	_, err := anvil.ReadWorld(context.Background(), dir, nil, logrus.New())
	assert.ErrorIs(t, err, anvil.ErrLegacyChunk)
}

func TestReadWorldCancelled(t *testing.T) {
	dir := worldtest.World(t, 4189, "1.21.4")
	r := worldtest.NewRegion(0, 0)
	r.Add(t, worldtest.Chunk(0, 0, 4189), worldtest.Zlib)
	r.WriteTo(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := anvil.ReadWorld(ctx, dir, anvil.All(), logrus.New())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadWorldMissingRegionDir(t *testing.T) {
	_, err := anvil.ReadWorld(context.Background(), t.TempDir(), anvil.All(), logrus.New())
	assert.Error(t, err)
}

func TestRadius(t *testing.T) {
	sel := anvil.Radius(2)
	assert.True(t, sel(world.ChunkPos{0, 0}))
	assert.True(t, sel(world.ChunkPos{2, 0}))
	assert.True(t, sel(world.ChunkPos{-1, -1}))
	assert.False(t, sel(world.ChunkPos{2, 1}))
	assert.False(t, sel(world.ChunkPos{0, -3}))

	assert.True(t, anvil.Radius(0)(world.ChunkPos{0, 0}))
	assert.False(t, anvil.Radius(0)(world.ChunkPos{1, 0}))

	around := anvil.RadiusAround(world.ChunkPos{10, 10}, 1)
	assert.True(t, around(world.ChunkPos{10, 11}))
	assert.False(t, around(world.ChunkPos{0, 0}))
}

func TestBlockStateString(t *testing.T) {
	assert.Equal(t, "minecraft:stone", anvil.BlockState{Name: "minecraft:stone"}.String())
	assert.Equal(t, "minecraft:oak_stairs[facing=north,half=bottom,waterlogged=false]", anvil.BlockState{
		Name: "minecraft:oak_stairs",
		Properties: map[string]string{
			"waterlogged": "false",
			"half":        "bottom",
			"facing":      "north",
		},
	}.String())
}

func TestParseChunk(t *testing.T) {
	section := worldtest.Section(-4,
		[]map[string]any{
			worldtest.Block("minecraft:air", nil),
			worldtest.Block("minecraft:oak_log", map[string]any{"axis": "y"}),
		},
		make([]int64, 256),
		[]string{"minecraft:plains"},
		nil,
	)
	section["SkyLight"] = worldtest.Light(15)
	root := worldtest.Chunk(4, -7, 4189, section)
	root["Heightmaps"] = map[string]any{"WORLD_SURFACE": worldtest.LongArray(make([]int64, 37))}
	root["block_entities"] = []map[string]any{{"id": "minecraft:chest", "x": int32(64), "y": int32(70), "z": int32(-112)}}

	c, err := anvil.ParseChunk(root)
	require.NoError(t, err)
	assert.Equal(t, world.ChunkPos{4, -7}, c.Pos)
	assert.True(t, c.Full())
	require.Len(t, c.Sections, 1)

	s := c.Sections[0]
	assert.Equal(t, int8(-4), s.Y)
	require.Len(t, s.BlockPalette, 2)
	assert.Equal(t, "minecraft:oak_log[axis=y]", s.BlockPalette[1].String())
	assert.Len(t, s.BlockData, 256)
	assert.Equal(t, []string{"minecraft:plains"}, s.BiomePalette)
	assert.Nil(t, s.BiomeData)
	assert.Nil(t, s.BlockLight)
	assert.Len(t, s.SkyLight, 2048)

	assert.Len(t, c.Heightmaps["WORLD_SURFACE"], 37)
	require.Len(t, c.BlockEntities, 1)
	id, _ := anvil.String(c.BlockEntities[0]["id"])
	assert.Equal(t, "minecraft:chest", id)
}

func TestParseChunkMissingPosition(t *testing.T) {
	_, err := anvil.ParseChunk(map[string]any{"sections": []any{}})
	assert.Error(t, err)
}
