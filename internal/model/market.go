package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Provider field names. Non-Alpha-Vantage fetchers map their columns onto these keys.
const (
	FieldAdjustedClose = "5. adjusted close"
	FieldClose         = "4. close"
)

// MinViableLength is the fewest observations a series needs before a game may start.
const MinViableLength = 60

// RawEntry is a single provider row before normalization.
// A missing key in Fields means the provider sent no value (or null).
type RawEntry struct {
	Date   string
	Fields map[string]string
}

// Observation is one trading day's closing price.
type Observation struct {
	Date  time.Time       // UTC midnight
	Price decimal.Decimal // > 0
}

// DateString formats the observation date as YYYY-MM-DD.
func (o Observation) DateString() string {
	return o.Date.Format(DateLayout)
}

// DateLayout is the calendar-day format used on the wire and in displays.
const DateLayout = "2006-01-02"

// Series is an ascending run of observations with unique dates.
type Series []Observation

func (s Series) Len() int { return len(s) }

// Last returns the final index, or -1 for an empty series.
func (s Series) Last() int { return len(s) - 1 }
