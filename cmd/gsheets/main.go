package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/uhppoted/gsheets-feed/commands"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := commands.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: %v\n\n", err)
		cancel()
		os.Exit(1)
	}
}
