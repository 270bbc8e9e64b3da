package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/ha-middleware/mysqlz"
	"github.com/ha-middleware/mysqlz/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Run(ctx, os.Args[1:]...); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			fmt.Fprintln(os.Stderr, "interrupted")
		case errors.Is(err, mysqlz.ErrConnectionFailure):
			fmt.Fprintf(os.Stderr, "Error: could not connect to the server: %v\n", err)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		stop()
		os.Exit(1)
	}
}
