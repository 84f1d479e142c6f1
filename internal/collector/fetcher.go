package collector

import (
	"context"

	"StockGuess/internal/model"
)

// Fetcher defines the interface for fetching a ticker's daily closes.
type Fetcher interface {
	FetchDaily(ctx context.Context, symbol string) ([]model.RawEntry, error)
	Name() string
}
