package normalizer

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"StockGuess/internal/model"

	"github.com/shopspring/decimal"
)

// ErrEmptySeries is returned when no row survives filtering.
var ErrEmptySeries = errors.New("no usable observations")

// MalformedDateError reports a row whose date cannot be parsed.
type MalformedDateError struct {
	Raw string
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("malformed date %q", e.Raw)
}

// Normalize turns provider rows into an ascending series with unique dates.
// Rows without a usable positive price are dropped. When two rows share a date
// the later one in entries wins.
func Normalize(entries []model.RawEntry) (model.Series, error) {
	byDate := make(map[time.Time]decimal.Decimal, len(entries))
	dropped := 0

	for _, e := range entries {
		d, err := parseDate(e.Date)
		if err != nil {
			return nil, err
		}
		p, ok := pickPrice(e.Fields)
		if !ok {
			dropped++
			continue
		}
		byDate[d] = p
	}

	if len(byDate) == 0 {
		return nil, ErrEmptySeries
	}

	series := make(model.Series, 0, len(byDate))
	for d, p := range byDate {
		series = append(series, model.Observation{Date: d, Price: p})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	if dropped > 0 {
		log.Printf("[WARN] normalizer: dropped %d rows without a usable price", dropped)
	}
	return series, nil
}

func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if len(s) > len(model.DateLayout) && (s[len(model.DateLayout)] == ' ' || s[len(model.DateLayout)] == 'T') {
		s = s[:len(model.DateLayout)]
	}
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, &MalformedDateError{Raw: raw}
	}
	return t, nil
}

// pickPrice prefers the adjusted close and falls back to the raw close only
// when the adjusted field is absent.
func pickPrice(fields map[string]string) (decimal.Decimal, bool) {
	raw, ok := fields[model.FieldAdjustedClose]
	if !ok {
		raw, ok = fields[model.FieldClose]
	}
	if !ok {
		return decimal.Decimal{}, false
	}
	p, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, false
	}
	if !p.IsPositive() {
		return decimal.Decimal{}, false
	}
	return p, true
}
