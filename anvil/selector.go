package anvil

import "github.com/df-mc/dragonfly/server/world"

// Selector decides which chunks of a world are read.
type Selector func(pos world.ChunkPos) bool

// All selects every chunk.
func All() Selector {
	return func(world.ChunkPos) bool { return true }
}

// Radius selects the chunks within radius chunks of the origin chunk.
func Radius(radius int32) Selector {
	return RadiusAround(world.ChunkPos{}, radius)
}

// RadiusAround selects the chunks whose distance to center, in chunks, is at most radius.
func RadiusAround(center world.ChunkPos, radius int32) Selector {
	r := int64(radius)
	return func(pos world.ChunkPos) bool {
		dx, dz := int64(pos.X())-int64(center.X()), int64(pos.Z())-int64(center.Z())
		return dx*dx+dz*dz <= r*r
	}
}
