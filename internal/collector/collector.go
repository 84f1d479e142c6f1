package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"StockGuess/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Days  int
	Rows  []model.RawEntry
	Err   error
	Now   func() time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDaily(ctx context.Context, _ string) ([]model.RawEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Err: err}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Rows != nil {
		return m.Rows, nil
	}
	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}
	days := m.Days
	if days <= 0 {
		days = 250
	}
	price := m.Price
	if price <= 0 {
		price = 100
	}
	return generateMockRows(price, days, now), nil
}

// generateMockRows produces count weekday rows ending the day before now, newest first
// like the Alpha Vantage payload.
func generateMockRows(basePrice float64, count int, now time.Time) []model.RawEntry {
	rows := make([]model.RawEntry, 0, count)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for len(rows) < count {
		day = day.AddDate(0, 0, -1)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		n := float64(len(rows))
		p := basePrice * (1 + 0.02*math.Sin(n/3) - n*0.0005)
		rows = append(rows, model.RawEntry{
			Date: day.Format(model.DateLayout),
			Fields: map[string]string{
				model.FieldAdjustedClose: fmt.Sprintf("%.4f", p),
				model.FieldClose:         fmt.Sprintf("%.4f", p*1.01),
			},
		})
	}
	return rows
}
