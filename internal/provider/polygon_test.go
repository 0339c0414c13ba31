package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupedDailyHasData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/aggs/grouped/locale/us/market/stocks/2025-01-23":
			w.Write([]byte(`{"resultsCount":1,"results":[{"T":"AAPL","o":1,"h":2,"l":0.5,"c":1.5,"v":100}],"status":"OK"}`))
		default:
			// market holiday
			w.Write([]byte(`{"resultsCount":0,"status":"OK"}`))
		}
	}))
	defer srv.Close()

	p := NewPolygonProvider("test-key")
	p.Client.BaseURL = srv.URL
	defer p.Close()

	assert.Equal(t, "Polygon", p.GetName())

	snap, err := p.GroupedDaily(context.Background(), "2025-01-23")
	require.NoError(t, err)
	assert.True(t, snap.HasData)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "AAPL", snap.Results[0].Ticker)

	snap, err = p.GroupedDaily(context.Background(), "2025-01-24")
	require.NoError(t, err)
	assert.False(t, snap.HasData)
	assert.Empty(t, snap.Results)
}
