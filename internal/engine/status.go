package engine

import (
	"errors"
	"fmt"

	"StockGuess/internal/collector"
	"StockGuess/internal/normalizer"
	"StockGuess/internal/selector"
)

// ErrEmptyTicker rejects a load with a blank symbol.
var ErrEmptyTicker = errors.New("empty ticker")

// InsufficientHistoryError reports a series shorter than the minimum viable length.
type InsufficientHistoryError struct {
	Have int
	Need int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: have %d observations, need %d", e.Have, e.Need)
}

// StatusMessage maps a load error to the text shown to the player.
func StatusMessage(err error) string {
	var te *collector.TransportError
	var mde *normalizer.MalformedDateError
	var ihe *InsufficientHistoryError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyTicker):
		return "Please enter a ticker symbol."
	case errors.Is(err, collector.ErrRateLimited):
		return "Data provider rate limit reached. Please wait and try again."
	case errors.Is(err, collector.ErrInvalidSymbol):
		return "Invalid symbol or request."
	case errors.Is(err, collector.ErrSchemaMismatch), errors.As(err, &mde):
		return "Unexpected API response."
	case errors.As(err, &te):
		if te.StatusCode != 0 {
			return fmt.Sprintf("Network error: %d", te.StatusCode)
		}
		return "Failed to load data."
	case errors.Is(err, normalizer.ErrEmptySeries), errors.As(err, &ihe):
		return "Insufficient data for this symbol. Try another."
	case errors.Is(err, selector.ErrNoCandidateWindow):
		return "Not enough recent data for the requested window."
	default:
		return "Failed to load data."
	}
}

// ErrorKind is a stable short name for a load error, used by the journal.
func ErrorKind(err error) string {
	var te *collector.TransportError
	var mde *normalizer.MalformedDateError
	var ihe *InsufficientHistoryError

	switch {
	case errors.Is(err, ErrEmptyTicker):
		return "empty_ticker"
	case errors.Is(err, collector.ErrRateLimited):
		return "rate_limit"
	case errors.Is(err, collector.ErrInvalidSymbol):
		return "invalid_symbol"
	case errors.Is(err, collector.ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.As(err, &mde):
		return "malformed_date"
	case errors.As(err, &te):
		return "transport"
	case errors.Is(err, normalizer.ErrEmptySeries):
		return "empty_series"
	case errors.As(err, &ihe):
		return "insufficient_history"
	case errors.Is(err, selector.ErrNoCandidateWindow):
		return "no_candidate_window"
	default:
		return "unknown"
	}
}
