package normalizer

import (
	"errors"
	"testing"

	"StockGuess/internal/model"
)

func row(date, adj, close string) model.RawEntry {
	f := map[string]string{}
	if adj != "" {
		f[model.FieldAdjustedClose] = adj
	}
	if close != "" {
		f[model.FieldClose] = close
	}
	return model.RawEntry{Date: date, Fields: f}
}

func TestNormalize_SortsAscendingWithoutDuplicates(t *testing.T) {
	entries := []model.RawEntry{
		row("2024-03-05", "12.5", ""),
		row("2024-03-01", "10", ""),
		row("2024-03-04", "11.25", ""),
		row("2024-03-02", "10.5", ""),
	}
	s, err := Normalize(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 4 {
		t.Fatalf("expected 4 observations, got %d", len(s))
	}
	for i := 1; i < len(s); i++ {
		if !s[i-1].Date.Before(s[i].Date) {
			t.Errorf("not strictly ascending at %d: %s >= %s", i, s[i-1].DateString(), s[i].DateString())
		}
	}
	if s[0].DateString() != "2024-03-01" || s[3].DateString() != "2024-03-05" {
		t.Errorf("unexpected bounds: %s .. %s", s[0].DateString(), s[3].DateString())
	}
}

func TestNormalize_DuplicateDateKeepsLater(t *testing.T) {
	entries := []model.RawEntry{
		row("2024-03-01", "10", ""),
		row("2024-03-01 00:00:00", "99", ""),
	}
	s, err := Normalize(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(s))
	}
	if s[0].Price.String() != "99" {
		t.Errorf("expected later price 99, got %s", s[0].Price)
	}
}

func TestNormalize_PriceFallback(t *testing.T) {
	s, err := Normalize([]model.RawEntry{row("2024-03-01", "", "42.10")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s[0].Price.StringFixed(2); got != "42.10" {
		t.Errorf("expected raw close 42.10, got %s", got)
	}

	s, err = Normalize([]model.RawEntry{row("2024-03-01", "40.00", "42.10")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s[0].Price.StringFixed(2); got != "40.00" {
		t.Errorf("expected adjusted close 40.00, got %s", got)
	}
}

func TestNormalize_DropsPlaceholderPrices(t *testing.T) {
	entries := []model.RawEntry{
		row("2024-03-01", "10", ""),
		row("2024-03-02", "None", ""),
		row("2024-03-03", "NaN", ""),
		row("2024-03-04", "0", ""),
		row("2024-03-05", "-1", ""),
		{Date: "2024-03-06", Fields: map[string]string{}},
		row("2024-03-07", "11", ""),
	}
	s, err := Normalize(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 2 {
		t.Errorf("expected only the 2 valid rows to count, got %d", len(s))
	}
}

func TestNormalize_Errors(t *testing.T) {
	_, err := Normalize([]model.RawEntry{row("2024-03-01", "None", "")})
	if !errors.Is(err, ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}

	_, err = Normalize(nil)
	if !errors.Is(err, ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries for no rows, got %v", err)
	}

	_, err = Normalize([]model.RawEntry{row("03/01/2024", "10", "")})
	var mde *MalformedDateError
	if !errors.As(err, &mde) {
		t.Fatalf("expected MalformedDateError, got %v", err)
	}
	if mde.Raw != "03/01/2024" {
		t.Errorf("expected raw date in error, got %q", mde.Raw)
	}
}
