package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"StockGuess/internal/model"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// AlpacaFetcher implements Fetcher using Alpaca market data, split and dividend adjusted.
type AlpacaFetcher struct {
	Client   *marketdata.Client
	Lookback time.Duration
}

// NewAlpacaFetcher creates a fetcher. An empty baseURL uses the SDK default.
func NewAlpacaFetcher(apiKey, apiSecret, baseURL string) *AlpacaFetcher {
	return &AlpacaFetcher{
		Client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
		Lookback: 365 * 24 * time.Hour,
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func (f *AlpacaFetcher) FetchDaily(ctx context.Context, symbol string) ([]model.RawEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Err: err}
	}
	end := time.Now()
	bars, err := f.Client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.All,
		Start:      end.Add(-f.Lookback),
		End:        end,
	})
	if err != nil {
		return nil, classifyAlpacaError(err)
	}

	entries := make([]model.RawEntry, 0, len(bars))
	for _, b := range bars {
		entries = append(entries, model.RawEntry{
			Date: b.Timestamp.UTC().Format(model.DateLayout),
			Fields: map[string]string{
				model.FieldAdjustedClose: strconv.FormatFloat(b.Close, 'f', -1, 64),
			},
		})
	}
	return entries, nil
}

func classifyAlpacaError(err error) error {
	var apiErr *alpaca.APIError
	if !errors.As(err, &apiErr) {
		return &TransportError{Err: fmt.Errorf("alpaca fetch: %w", err)}
	}
	switch apiErr.StatusCode {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return fmt.Errorf("alpaca: %s: %w", apiErr.Message, ErrInvalidSymbol)
	default:
		return &TransportError{StatusCode: apiErr.StatusCode, Err: err}
	}
}
