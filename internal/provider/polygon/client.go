package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const polygonBaseURL = "https://api.polygon.io"

const (
	// DefaultMaxAttempts bounds retries of rate-limited and transient failures.
	DefaultMaxAttempts = 3

	// transientWait is the fixed pause before retrying a network failure.
	transientWait = 10 * time.Second

	// rateLimitWait is the fallback pause on 429 when Retry-After is absent or unparsable.
	rateLimitWait = 60 * time.Second

	// maxRetryAfterWait caps how long a provider-suggested Retry-After can
	// stall one attempt; the run-level deadline bounds the whole invocation.
	maxRetryAfterWait = 5 * time.Minute
)

// SleepFunc waits for d or returns early with the context error when ctx is done.
// Injectable so tests can observe backoff without real delay.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Client fetches grouped daily bar snapshots from the Polygon API.
type Client struct {
	client      *http.Client
	apiKey      string
	BaseURL     string
	MaxAttempts int
	Sleep       SleepFunc
}

// NewClient constructs a Client with a shared HTTP client and default retry policy.
func NewClient(apiKey string) *Client {
	return &Client{
		client:      newHTTPClient(),
		apiKey:      apiKey,
		BaseURL:     polygonBaseURL,
		MaxAttempts: DefaultMaxAttempts,
		Sleep:       sleepContext,
	}
}

// Close closes connections
func (c *Client) Close() error {
	return nil
}

// buildGroupedDailyRequest builds GET request for the grouped daily bars of date (adjusted, apiKey).
func (c *Client) buildGroupedDailyRequest(ctx context.Context, date string) (*http.Request, error) {
	rawURL := fmt.Sprintf("%s/v2/aggs/grouped/locale/us/market/stocks/%s", c.BaseURL, date)
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	q := u.Query()
	q.Set("adjusted", "true")
	q.Set("apiKey", c.apiKey)
	u.RawQuery = q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Connection", "close")
	return req, nil
}

// FetchGroupedDaily issues one logical request for the grouped snapshot of date
// (YYYY-MM-DD), retrying rate limits and transient network failures up to
// MaxAttempts. resultsCount == 0 in the returned response is a valid outcome
// (market holiday), not an error. Any returned error is a *FetchError.
func (c *Client) FetchGroupedDaily(ctx context.Context, date string) (*GroupedDailyResponse, error) {
	req, err := c.buildGroupedDailyRequest(ctx, date)
	if err != nil {
		return nil, &FetchError{Kind: KindFatal, Date: date, Err: err}
	}

	var lastKind ErrorKind
	var lastErr error
	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		resp, err := c.client.Do(req)
		if err != nil {
			lastKind, lastErr = KindTransient, err
			if attempt < c.MaxAttempts {
				if serr := c.Sleep(ctx, transientWait); serr != nil {
					return nil, &FetchError{Kind: KindTransient, Date: date, Err: serr}
				}
				continue
			}
			break
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests {
				lastKind = KindRateLimited
				lastErr = fmt.Errorf("rate limited (429): %s", strings.TrimSpace(string(body)))
				if attempt < c.MaxAttempts {
					if serr := c.Sleep(ctx, retryAfter(resp.Header, rateLimitWait)); serr != nil {
						return nil, &FetchError{Kind: KindRateLimited, Date: date, Err: serr}
					}
					continue
				}
				break
			}
			return nil, &FetchError{
				Kind: KindFatal,
				Date: date,
				Err:  fmt.Errorf("API status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			}
		}

		var result GroupedDailyResponse
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			lastKind, lastErr = KindTransient, fmt.Errorf("parse JSON: %w", err)
			if attempt < c.MaxAttempts {
				if serr := c.Sleep(ctx, transientWait); serr != nil {
					return nil, &FetchError{Kind: KindTransient, Date: date, Err: serr}
				}
				continue
			}
			break
		}

		// DELAYED is a successful snapshot on delayed-entitlement keys; the
		// results are still the complete end-of-day bars.
		if result.Status != "OK" && result.Status != "DELAYED" {
			return nil, &FetchError{
				Kind: KindFatal,
				Date: date,
				Err:  fmt.Errorf("API status not OK: %s", result.Status),
			}
		}
		return &result, nil
	}

	return nil, &FetchError{
		Kind: lastKind,
		Date: date,
		Err:  fmt.Errorf("after %d attempts: %w", c.MaxAttempts, lastErr),
	}
}

// retryAfter reads the Retry-After header as whole seconds, falling back to
// def. The suggested wait is clamped to maxRetryAfterWait.
func retryAfter(h http.Header, def time.Duration) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return def
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return def
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfterWait {
		return maxRetryAfterWait
	}
	return d
}
