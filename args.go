package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

// errNoArgs is returned by parseArgs when no arguments are given at all.
var errNoArgs = errors.New("no arguments")

// usageError is a problem with the command line. Its message is shown to the user followed by the
// help text.
type usageError string

func (e usageError) Error() string { return string(e) }

type options struct {
	world  string
	output string
	// radius is only used when hasRadius is set.
	radius    int32
	hasRadius bool
}

func parseArgs(args []string) (options, error) {
	var opts options
	if len(args) == 0 {
		return opts, errNoArgs
	}

	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--world":
			if i+1 >= len(args) {
				return opts, usageError("Missing value for --world")
			}
			i++
			opts.world = args[i]
		case "--output":
			if i+1 >= len(args) {
				return opts, usageError("Missing value for --output")
			}
			i++
			opts.output = args[i]
		case "--radius":
			// A trailing --radius is ignored.
			if i+1 >= len(args) {
				continue
			}
			i++
			r, err := strconv.ParseInt(args[i], 10, 32)
			if err != nil || r < 0 {
				return opts, usageError(fmt.Sprintf("Invalid value for --radius: %s", args[i]))
			}
			opts.radius, opts.hasRadius = int32(r), true
		default:
			return opts, usageError(fmt.Sprintf("Unknown argument: %s", arg))
		}
	}

	if opts.world == "" || opts.output == "" {
		return opts, usageError("Both --world and --output are required.")
	}
	return opts, nil
}

const helpText = `Valid Arguments:
--world "world folder" - The world folder to convert
--output "world" - The output file name for the polar world
--radius 5 - The chunk radius to convert, from 0,0
`

func printHelp(w io.Writer) {
	fmt.Fprintln(w, helpText)
}
