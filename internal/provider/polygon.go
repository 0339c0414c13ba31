package provider

import (
	"context"

	"us-daily-bars/internal/provider/polygon"
)

// PolygonProvider is a DataProvider implementation backed by the Polygon API.
// It embeds *polygon.Client to expose fetch capabilities with minimal boilerplate.
type PolygonProvider struct {
	*polygon.Client
}

// NewPolygonProvider creates a new Polygon-backed DataProvider.
func NewPolygonProvider(apiKey string) *PolygonProvider {
	return &PolygonProvider{
		Client: polygon.NewClient(apiKey),
	}
}

// GetName returns provider name
func (p *PolygonProvider) GetName() string {
	return "Polygon"
}

// GroupedDaily fetches one date's grouped snapshot and reports whether the
// date had any trading activity.
func (p *PolygonProvider) GroupedDaily(ctx context.Context, date string) (*GroupedSnapshot, error) {
	resp, err := p.Client.FetchGroupedDaily(ctx, date)
	if err != nil {
		return nil, err
	}
	return &GroupedSnapshot{
		Results: resp.Results,
		HasData: resp.ResultsCount > 0,
	}, nil
}

// SetMaxAttempts overrides the retry bound for rate-limited and transient failures.
func (p *PolygonProvider) SetMaxAttempts(n int) {
	if p.Client != nil && n > 0 {
		p.Client.MaxAttempts = n
	}
}
