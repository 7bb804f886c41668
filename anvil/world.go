package anvil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// RegionDir returns the directory holding the region files of the overworld of a world.
func RegionDir(worldDir string) string {
	return filepath.Join(worldDir, "region")
}

// RegionFiles returns the paths of all region files in dir, sorted by name.
func RegionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, _, ok := ParseRegionName(e.Name()); ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// ReadWorld reads all chunks of the world in worldDir that pass sel. Region files are read in
// parallel, the chunks returned are sorted by x, then z. Chunks that did not finish generating are
// left out.
func ReadWorld(ctx context.Context, worldDir string, sel Selector, log logrus.FieldLogger) ([]*Chunk, error) {
	if sel == nil {
		sel = All()
	}
	files, err := RegionFiles(RegionDir(worldDir))
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		chunks []*Chunk
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, path := range files {
		path := path
		g.Go(func() error {
			read, err := readRegion(ctx, path, sel, log)
			if err != nil {
				return err
			}
			mu.Lock()
			chunks = append(chunks, read...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(chunks, func(i, j int) bool {
		a, b := chunks[i].Pos, chunks[j].Pos
		if a.X() != b.X() {
			return a.X() < b.X()
		}
		return a.Z() < b.Z()
	})
	return chunks, nil
}

func readRegion(ctx context.Context, path string, sel Selector, log logrus.FieldLogger) ([]*Chunk, error) {
	r, err := OpenRegion(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	name := RegionName(r.X, r.Z)
	log = log.WithField("region", name)
	var chunks []*Chunk
	for _, pos := range r.Positions() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !sel(pos) {
			continue
		}
		root, ok, err := r.ReadChunk(pos)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", name, err)
		}
		if !ok {
			continue
		}
		c, err := ParseChunk(root)
		if err != nil {
			return nil, fmt.Errorf("region %s: chunk %v: %w", name, pos, err)
		}
		if !c.Full() {
			log.WithField("chunk", pos).Debugf("Skipping chunk with status %s.", c.Status)
			continue
		}
		chunks = append(chunks, c)
	}
	log.Debugf("Read %d chunks.", len(chunks))
	return chunks, nil
}
