package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"polar-converter/level"
)

// backupName is the name of the copy of level.dat made before converting.
const backupName = "level.dat_old"

// backupLevel copies the level.dat of worldDir to level.dat_old, replacing an existing backup.
func backupLevel(worldDir string) error {
	return copyFile(level.Path(worldDir), filepath.Join(worldDir, backupName))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("error copying %s to %s: %w", src, dst, err)
	}
	return out.Close()
}
