package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/plvacc/vdgs/internal/nool"
)

func main() {
	ctx := context.Background()

	// Pass in the command line arguments, environment variables, and standard output
	// stream to the run function so it can be tested in isolation.
	if err := run(ctx, os.Args, os.Getenv, os.Stdout); err != nil {
		// A failed directory fetch has already been reported on stdout.
		var discoveryErr *nool.DiscoveryError
		if !errors.As(err, &discoveryErr) {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		os.Exit(1)
	}
}
