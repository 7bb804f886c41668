package polar_test

import (
	"context"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polar-converter/anvil"
	"polar-converter/internal/worldtest"
	"polar-converter/polar"
)

func TestFromAnvil(t *testing.T) {
	dir := worldtest.World(t, 4189, "1.21.4")

	blocks := make([]int32, polar.BlockCount)
	for i := range blocks {
		blocks[i] = int32(i % 2)
	}
	biomes := make([]int32, polar.BiomeCount)
	for i := 32; i < polar.BiomeCount; i++ {
		biomes[i] = 1
	}
	bottom := worldtest.Section(-4,
		[]map[string]any{
			worldtest.Block("minecraft:air", nil),
			worldtest.Block("minecraft:oak_stairs", map[string]any{"half": "top", "facing": "east"}),
		},
		polar.Pack(blocks, 4),
		[]string{"minecraft:plains", "minecraft:river"},
		polar.Pack(biomes, 1),
	)
	bottom["SkyLight"] = worldtest.Light(15)
	bottom["BlockLight"] = worldtest.Light(0)

	var mixed [polar.LightSize]byte
	mixed[7] = 0x31
	middle := worldtest.Section(4,
		[]map[string]any{worldtest.Block("minecraft:stone", nil)},
		nil,
		[]string{"minecraft:forest"},
		nil,
	)
	middle["BlockLight"] = mixed

	top := map[string]any{"Y": uint8(19), "SkyLight": worldtest.Light(15)}
	outside := worldtest.Section(25,
		[]map[string]any{worldtest.Block("minecraft:stone", nil)}, nil,
		[]string{"minecraft:plains"}, nil,
	)

	root := worldtest.Chunk(-3, 7, 4189, bottom, middle, top, outside)
	root["block_entities"] = []map[string]any{{
		"id":         "minecraft:chest",
		"x":          int32(-47),
		"y":          int32(-60),
		"z":          int32(127),
		"keepPacked": uint8(0),
		"CustomName": "loot",
	}, {
		"id": "minecraft:bell",
		"x":  int32(-48),
		"y":  int32(64),
		"z":  int32(112),
	}}
	surface := make([]int64, 37)
	surface[3] = 12345
	root["Heightmaps"] = map[string]any{
		"WORLD_SURFACE":   worldtest.LongArray(surface),
		"MOTION_BLOCKING": worldtest.LongArray(make([]int64, 37)),
	}

	r := worldtest.NewRegion(-1, 0)
	r.Add(t, root, worldtest.Zlib)
	r.WriteTo(t, dir)

	w, err := polar.FromAnvil(context.Background(), dir, polar.Options{DataVersion: 4189, Log: logrus.New()})
	require.NoError(t, err)
	assert.Equal(t, int8(-4), w.MinSection)
	assert.Equal(t, int8(19), w.MaxSection)
	assert.Equal(t, int32(4189), w.DataVersion)
	require.Len(t, w.Chunks, 1)

	c := w.Chunks[0]
	assert.Equal(t, world.ChunkPos{-3, 7}, c.Pos)
	require.Len(t, c.Sections, 24)

	s := c.Sections[0]
	assert.False(t, s.Empty)
	assert.Equal(t, []string{"minecraft:air", "minecraft:oak_stairs[facing=east,half=top]"}, s.BlockPalette)
	assert.Equal(t, blocks, s.BlockData)
	assert.Equal(t, "minecraft:oak_stairs[facing=east,half=top]", s.Block(1, 0, 0))
	assert.Equal(t, biomes, s.BiomeData)
	assert.Equal(t, polar.LightFull, s.SkyLightContent)
	assert.Equal(t, polar.LightEmpty, s.BlockLightContent)

	s = c.Sections[8]
	assert.Equal(t, []string{"minecraft:stone"}, s.BlockPalette)
	assert.Nil(t, s.BlockData)
	assert.Equal(t, []string{"minecraft:forest"}, s.BiomePalette)
	assert.Equal(t, polar.LightPresent, s.BlockLightContent)
	assert.Equal(t, mixed[:], s.BlockLight)
	assert.Equal(t, polar.LightMissing, s.SkyLightContent)

	s = c.Sections[23]
	assert.False(t, s.Empty)
	assert.Equal(t, []string{"minecraft:air"}, s.BlockPalette)
	assert.Equal(t, polar.LightFull, s.SkyLightContent)

	assert.True(t, c.Sections[1].Empty)

	require.Len(t, c.BlockEntities, 2)
	chest := c.BlockEntities[0]
	assert.Equal(t, polar.BlockEntity{X: 1, Y: -60, Z: 15, ID: "minecraft:chest", Data: map[string]any{"CustomName": "loot"}}, chest)
	assert.Equal(t, polar.BlockEntity{X: 0, Y: 64, Z: 0, ID: "minecraft:bell"}, c.BlockEntities[1])

	assert.Equal(t, surface, c.Heightmaps[polar.HeightmapWorldSurface])
	assert.Len(t, c.Heightmaps[polar.HeightmapMotionBlocking], 37)
	assert.Nil(t, c.Heightmaps[polar.HeightmapOceanFloor])

	b, err := polar.Write(w)
	require.NoError(t, err)
	read, err := polar.Read(b)
	require.NoError(t, err)
	require.Len(t, read.Chunks, 1)
	assert.Equal(t, c.Sections, read.Chunks[0].Sections)
	assert.Equal(t, c.BlockEntities, read.Chunks[0].BlockEntities)
}

func TestFromAnvilRadius(t *testing.T) {
	dir := worldtest.World(t, 4189, "1.21.4")
	r := worldtest.NewRegion(0, 0)
	for _, pos := range []world.ChunkPos{{0, 0}, {2, 0}, {3, 3}, {1, 1}} {
		r.Add(t, worldtest.Chunk(pos.X(), pos.Z(), 4189), worldtest.Zlib)
	}
	r.WriteTo(t, dir)

	w, err := polar.FromAnvil(context.Background(), dir, polar.Options{Selector: anvil.Radius(2), Log: logrus.New()})
	require.NoError(t, err)
	got := lo.Map(w.Chunks, func(c *polar.Chunk, _ int) world.ChunkPos { return c.Pos })
	assert.Equal(t, []world.ChunkPos{{0, 0}, {1, 1}, {2, 0}}, got)

	w, err = polar.FromAnvil(context.Background(), dir, polar.Options{Log: logrus.New()})
	require.NoError(t, err)
	assert.Len(t, w.Chunks, 4)
}

func TestFromAnvilCustomRange(t *testing.T) {
	dir := worldtest.World(t, 4189, "1.21.4")
	r := worldtest.NewRegion(0, 0)
	r.Add(t, worldtest.Chunk(0, 0, 4189, worldtest.Section(0,
		[]map[string]any{worldtest.Block("minecraft:stone", nil)}, nil,
		[]string{"minecraft:plains"}, nil,
	)), worldtest.Zlib)
	r.WriteTo(t, dir)

	w, err := polar.FromAnvil(context.Background(), dir, polar.Options{Range: cube.Range{0, 255}, Log: logrus.New()})
	require.NoError(t, err)
	assert.Equal(t, 16, w.SectionCount())
	assert.Equal(t, "minecraft:stone", w.Chunks[0].Sections[0].Block(0, 0, 0))
}

func TestFromAnvilBadBlockData(t *testing.T) {
	dir := worldtest.World(t, 4189, "1.21.4")
	r := worldtest.NewRegion(0, 0)
	r.Add(t, worldtest.Chunk(0, 0, 4189, worldtest.Section(0,
		[]map[string]any{worldtest.Block("minecraft:air", nil), worldtest.Block("minecraft:stone", nil)},
		make([]int64, 3),
		[]string{"minecraft:plains"}, nil,
	)), worldtest.Zlib)
	r.WriteTo(t, dir)

	_, err := polar.FromAnvil(context.Background(), dir, polar.Options{Log: logrus.New()})
	assert.Error(t, err)
}

func TestFromAnvilBlockIndexOutsidePalette(t *testing.T) {
	dir := worldtest.World(t, 4189, "1.21.4")
	blocks := make([]int32, polar.BlockCount)
	blocks[100] = 7
	r := worldtest.NewRegion(0, 0)
	r.Add(t, worldtest.Chunk(0, 0, 4189, worldtest.Section(0,
		[]map[string]any{worldtest.Block("minecraft:air", nil), worldtest.Block("minecraft:stone", nil)},
		polar.Pack(blocks, 4),
		[]string{"minecraft:plains"}, nil,
	)), worldtest.Zlib)
	r.WriteTo(t, dir)

	_, err := polar.FromAnvil(context.Background(), dir, polar.Options{Log: logrus.New()})
	assert.ErrorContains(t, err, "section 0: block data: index 7 outside palette of 2 entries")
}
