package main

import (
	"os"
	"path/filepath"
)

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// displayName is the name of path shown in messages to the user.
func displayName(path string) string {
	return filepath.Base(filepath.Clean(path))
}
