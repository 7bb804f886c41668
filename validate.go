package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"polar-converter/anvil"
	"polar-converter/level"
	"polar-converter/server"
)

var (
	errInvalidWorld    = errors.New("invalid world folder")
	errVersionMismatch = errors.New("unsupported world version")
)

// validateWorld checks that dir is a world folder that can be converted, reporting problems to
// stderr. The level.dat is backed up once it has been read.
func validateWorld(dir string, srv *server.Server, stderr io.Writer, log logrus.FieldLogger) error {
	info, err := os.Stat(dir)
	if err != nil {
		fmt.Fprintf(stderr, "World folder does not exist: %s\n", displayName(dir))
		return errInvalidWorld
	}
	if !info.IsDir() {
		fmt.Fprintf(stderr, "World folder is not a directory: %s\n", displayName(dir))
		return errInvalidWorld
	}

	levelPath := level.Path(dir)
	if !exists(levelPath) {
		fmt.Fprintf(stderr, "World folder does not contain a level.dat file: %s\n", level.FileName)
		fmt.Fprintln(stderr, "Will be assumed to be an unsupported version and cannot be converted.")
		return errInvalidWorld
	}

	if err := checkVersion(dir, stderr, log); err != nil {
		if errors.Is(err, errVersionMismatch) {
			return err
		}
		// Unreadable level data is reported and the remaining checks still run.
		srv.HandleError(err)
	}

	if !exists(anvil.RegionDir(dir)) {
		fmt.Fprintln(stderr, "World folder does not contain a region folder: region")
		return errInvalidWorld
	}
	return nil
}

func checkVersion(dir string, stderr io.Writer, log logrus.FieldLogger) error {
	l, err := level.ReadFile(level.Path(dir))
	if errors.Is(err, level.ErrDataMissing) {
		l = &level.Level{VersionName: level.UnknownVersion}
	} else if err != nil {
		return fmt.Errorf("read %s: %w", level.FileName, err)
	}
	log.WithFields(logrus.Fields{
		"name":         l.Name,
		"spawn":        l.Spawn,
		"data_version": l.DataVersion,
	}).Debug("Read level.dat.")

	if err := backupLevel(dir); err != nil {
		return err
	}
	if l.DataVersion != server.DataVersion {
		fmt.Fprintf(stderr, "World version %s is not supported. Please update the world to %s before converting.\n", l.VersionName, server.VersionName)
		return errVersionMismatch
	}
	return nil
}
