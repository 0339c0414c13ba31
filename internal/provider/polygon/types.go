package polygon

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// GroupedBarRaw is one per-ticker entry of a grouped daily response.
// Price and volume fields are pointers so that a missing JSON key is
// distinguishable from a legitimate zero and can be rejected downstream.
type GroupedBarRaw struct {
	Ticker       string         `json:"T" validate:"required"`
	Open         *float64       `json:"o" validate:"required"`
	High         *float64       `json:"h" validate:"required"`
	Low          *float64       `json:"l" validate:"required"`
	Close        *float64       `json:"c" validate:"required"`
	Volume       *FlexibleInt64 `json:"v" validate:"required,gte=0"`
	VWAP         float64        `json:"vw,omitempty"`
	Timestamp    int64          `json:"t,omitempty"` // Unix timestamp in milliseconds
	Transactions FlexibleInt64  `json:"n,omitempty"`
}

// GroupedDailyResponse is the Polygon grouped daily bars API response.
// resultsCount == 0 with status OK means no trading activity on the date.
type GroupedDailyResponse struct {
	QueryCount   int             `json:"queryCount"`
	ResultsCount int             `json:"resultsCount"`
	Adjusted     bool            `json:"adjusted"`
	Results      []GroupedBarRaw `json:"results"`
	Status       string          `json:"status"`
	RequestID    string          `json:"request_id"`
	Count        int             `json:"count"`
}

// FlexibleInt64 parses int or float (scientific notation) to int64
type FlexibleInt64 int64

// UnmarshalJSON parses int or float
func (f *FlexibleInt64) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		val, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return err
		}
		*f = FlexibleInt64(int64(val))
		return nil
	}

	var floatVal float64
	if err := json.Unmarshal(data, &floatVal); err == nil {
		*f = FlexibleInt64(int64(floatVal))
		return nil
	}

	var intVal int64
	if err := json.Unmarshal(data, &intVal); err == nil {
		*f = FlexibleInt64(intVal)
		return nil
	}

	return fmt.Errorf("cannot parse as int64: %s", string(data))
}

// Int64 returns int64 value
func (f FlexibleInt64) Int64() int64 {
	return int64(f)
}
