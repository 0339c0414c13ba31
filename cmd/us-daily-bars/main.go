package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/google/subcommands"

	"us-daily-bars/internal/slogx"
)

// Fallback logger until the configured one is wired; config load errors
// still come out structured.
func init() {
	slog.SetDefault(slogx.Default)
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(&ingestCmd{}, "pipeline")
	subcommands.Register(&transformCmd{}, "pipeline")
	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
