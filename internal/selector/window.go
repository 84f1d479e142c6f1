package selector

import (
	"errors"
	"math/rand/v2"
	"time"

	"StockGuess/internal/model"
)

// ErrNoCandidateWindow is returned when no trading day falls inside the recency window.
var ErrNoCandidateWindow = errors.New("no trading day inside the recency window")

const (
	DefaultMinDaysAgo = 7
	DefaultMaxDaysAgo = 100
	DefaultLeadInDays = 7
)

// Picker returns an index in [0, n). n is always > 0.
type Picker func(n int) int

// UniformPicker picks uniformly at random.
func UniformPicker(n int) int { return rand.IntN(n) }

// Selector chooses the player's historical start day.
type Selector struct {
	MinDaysAgo int
	MaxDaysAgo int
	LeadInDays int
	Location   *time.Location // civil calendar used for "now"
	Pick       Picker
}

// New returns a Selector with the default window and a uniform picker.
func New(loc *time.Location) *Selector {
	if loc == nil {
		loc = time.UTC
	}
	return &Selector{
		MinDaysAgo: DefaultMinDaysAgo,
		MaxDaysAgo: DefaultMaxDaysAgo,
		LeadInDays: DefaultLeadInDays,
		Location:   loc,
		Pick:       UniformPicker,
	}
}

// DaysAgo returns the calendar-day gap between now (in the selector's calendar)
// and an observation date.
func (s *Selector) DaysAgo(now, date time.Time) int {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	n := now.In(loc)
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(today.Sub(day).Hours() / 24)
}

// Candidates lists every index whose date is within [MinDaysAgo, MaxDaysAgo] of now.
func (s *Selector) Candidates(series model.Series, now time.Time) []int {
	var idx []int
	for i, o := range series {
		d := s.DaysAgo(now, o.Date)
		if d >= s.MinDaysAgo && d <= s.MaxDaysAgo {
			idx = append(idx, i)
		}
	}
	return idx
}

// Select picks one candidate index. The window is never widened.
func (s *Selector) Select(series model.Series, now time.Time) (int, error) {
	cands := s.Candidates(series, now)
	if len(cands) == 0 {
		return 0, ErrNoCandidateWindow
	}
	pick := s.Pick
	if pick == nil {
		pick = UniformPicker
	}
	return cands[pick(len(cands))], nil
}

// LeadIn returns the trading days shown before the first guess, ending at start.
func (s *Selector) LeadIn(series model.Series, start int) model.Series {
	from := start - s.LeadInDays
	if from < 0 {
		from = 0
	}
	out := make(model.Series, start-from+1)
	copy(out, series[from:start+1])
	return out
}
