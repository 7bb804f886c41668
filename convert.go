package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"polar-converter/anvil"
	"polar-converter/polar"
	"polar-converter/server"
)

func convertWorld(ctx context.Context, opts options, stdout io.Writer, log logrus.FieldLogger) error {
	convertOpts := polar.Options{
		DataVersion: server.DataVersion,
		Compression: polar.CompressionZstd,
		Log:         log,
	}
	if opts.hasRadius {
		fmt.Fprintf(stdout, "Converting with chunk radius of %d...\n", opts.radius)
		convertOpts.Selector = anvil.Radius(opts.radius)
	} else {
		fmt.Fprintln(stdout, "Converting world...")
	}

	w, err := polar.FromAnvil(ctx, opts.world, convertOpts)
	if err != nil {
		return fmt.Errorf("convert world %s: %w", opts.world, err)
	}

	output := opts.output + outputExtension
	fmt.Fprintf(stdout, "Done! Saving to file: %s\n", output)
	if err := saveWorld(w, output); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Successfully converted world!")
	return nil
}

// saveWorld writes w to path, replacing any existing file.
func saveWorld(w *polar.World, path string) error {
	b, err := polar.Write(w)
	if err != nil {
		return fmt.Errorf("save world %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("save world %s: %w", path, err)
	}
	return nil
}
