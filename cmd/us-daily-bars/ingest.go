package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/subcommands"

	"us-daily-bars/internal/model"
)

// parseDateArg validates the single YYYY-MM-DD positional argument.
func parseDateArg(f *flag.FlagSet) (string, error) {
	if f.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one <YYYY-MM-DD> argument, got %d", f.NArg())
	}
	date := f.Arg(0)
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return date, nil
}

type ingestCmd struct{}

func (*ingestCmd) Name() string { return "ingest" }
func (*ingestCmd) Synopsis() string {
	return "fetch and persist one date's grouped daily bars"
}
func (*ingestCmd) Usage() string {
	return `ingest <YYYY-MM-DD>:
  Fetch the date's grouped daily bars from Polygon and upsert them into daily_bars.
`
}
func (*ingestCmd) SetFlags(*flag.FlagSet) {}

func (c *ingestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	date, err := parseDateArg(f)
	if err != nil {
		slog.Error("ingest: bad arguments", "error", err)
		return subcommands.ExitUsageError
	}

	a, cleanup, err := InitializeApp()
	if err != nil {
		slog.Error("initialization failed", "error", err)
		return subcommands.ExitFailure
	}
	defer cleanup()
	defer a.Provider.Close()

	// Deadline budget so backoff sleeps cannot stall the run indefinitely.
	runCtx, cancel := context.WithTimeout(ctx, a.Config.RunTimeout)
	defer cancel()

	if err := a.Ingest(runCtx, date); err != nil {
		slog.Error("ingest failed", "date", date, "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type transformCmd struct{}

func (*transformCmd) Name() string { return "transform" }
func (*transformCmd) Synopsis() string {
	return "compute daily returns for one date"
}
func (*transformCmd) Usage() string {
	return `transform <YYYY-MM-DD>:
  Compute daily returns for the date against the previous available trading date.
`
}
func (*transformCmd) SetFlags(*flag.FlagSet) {}

func (c *transformCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	date, err := parseDateArg(f)
	if err != nil {
		slog.Error("transform: bad arguments", "error", err)
		return subcommands.ExitUsageError
	}

	a, cleanup, err := InitializeApp()
	if err != nil {
		slog.Error("initialization failed", "error", err)
		return subcommands.ExitFailure
	}
	defer cleanup()
	defer a.Provider.Close()

	runCtx, cancel := context.WithTimeout(ctx, a.Config.RunTimeout)
	defer cancel()

	if err := a.Transform(runCtx, date); err != nil {
		slog.Error("transform failed", "date", date, "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
