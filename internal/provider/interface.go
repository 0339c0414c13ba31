package provider

import (
	"context"

	"us-daily-bars/internal/provider/polygon"
)

// GroupedSnapshot is one date's grouped bars as returned by a provider.
// HasData is false when the market had no trading activity on the date.
type GroupedSnapshot struct {
	Results []polygon.GroupedBarRaw
	HasData bool
}

// DataProvider is the abstraction used by the application when fetching market data.
// Implementations are responsible for their own retry logic and resource cleanup.
type DataProvider interface {
	GetName() string
	GroupedDaily(ctx context.Context, date string) (*GroupedSnapshot, error)
	Close() error
}
