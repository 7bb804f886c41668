package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"polar-converter/server"
)

var listenAddr = "0.0.0.0:0"
var outputExtension = ".polar"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, logrus.StandardLogger())
	stop()
	os.Exit(code)
}

// run converts the world named by args and returns the exit status of the program.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, log logrus.FieldLogger) int {
	opts, err := parseArgs(args)
	if errors.Is(err, errNoArgs) {
		printHelp(stdout)
		return 0
	}
	var usage usageError
	if errors.As(err, &usage) {
		fmt.Fprintln(stderr, usage)
		printHelp(stdout)
		return 2
	}

	srv := server.Init(server.Offline, log)
	if err := srv.Start(listenAddr); err != nil {
		log.WithError(err).Error("Could not start server.")
		return 1
	}

	log.WithField("addr", srv.Addr()).Debug("Server listening.")

	if err := validateWorld(opts.world, srv, stderr, log); err != nil {
		if errors.Is(err, errVersionMismatch) {
			// The server is left running; the process is about to exit.
			return 1
		}
		srv.Stop()
		return 1
	}

	if err := convertWorld(ctx, opts, stdout, log); err != nil {
		log.WithError(err).Error("Could not convert world.")
		srv.Stop()
		return 1
	}
	srv.Stop()
	return 0
}
