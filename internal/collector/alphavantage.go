package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"StockGuess/internal/model"
)

const alphaVantageBaseURL = "https://www.alphavantage.co/query"

// AlphaVantageFetcher implements Fetcher using the Alpha Vantage daily adjusted series.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAlphaVantageFetcher creates a fetcher with optional proxy support.
func NewAlphaVantageFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = alphaVantageBaseURL
	}
	return &AlphaVantageFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

func (f *AlphaVantageFetcher) FetchDaily(ctx context.Context, symbol string) ([]model.RawEntry, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY_ADJUSTED")
	q.Set("symbol", symbol)
	q.Set("outputsize", "full")
	q.Set("apikey", f.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("alphavantage fetch: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("alphavantage read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{StatusCode: resp.StatusCode}
	}
	return parseAlphaVantage(body)
}

// parseAlphaVantage classifies the payload and decodes the daily series in document order.
func parseAlphaVantage(body []byte) ([]model.RawEntry, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("alphavantage decode: %w", err)}
	}
	if _, ok := top["Note"]; ok {
		return nil, ErrRateLimited
	}
	if _, ok := top["Information"]; ok {
		return nil, ErrRateLimited
	}
	if msg, ok := top["Error Message"]; ok {
		log.Printf("[WARN] alphavantage error message: %s", string(msg))
		return nil, ErrInvalidSymbol
	}
	raw, ok := top["Time Series (Daily)"]
	if !ok {
		return nil, ErrSchemaMismatch
	}
	return decodeOrderedSeries(raw)
}

func decodeOrderedSeries(raw json.RawMessage) ([]model.RawEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("alphavantage series: %w", err)}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrSchemaMismatch
	}

	var entries []model.RawEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, &TransportError{Err: fmt.Errorf("alphavantage series key: %w", err)}
		}
		date, ok := tok.(string)
		if !ok {
			return nil, ErrSchemaMismatch
		}
		var rec map[string]interface{}
		if err := dec.Decode(&rec); err != nil {
			return nil, ErrSchemaMismatch
		}
		fields := make(map[string]string, len(rec))
		for k, v := range rec {
			if s, ok := toText(v); ok {
				fields[k] = s
			}
		}
		entries = append(entries, model.RawEntry{Date: date, Fields: fields})
	}
	return entries, nil
}

// toText renders a decoded JSON scalar; null yields false.
func toText(v interface{}) (string, bool) {
	switch n := v.(type) {
	case nil:
		return "", false
	case string:
		return n, true
	case json.Number:
		return n.String(), true
	case float64:
		return fmt.Sprintf("%v", n), true
	default:
		return "", false
	}
}
