package server

import (
	"StockGuess/internal/engine"
	"StockGuess/internal/model"
	"StockGuess/internal/presenter"
)

// Point is one chart point on the wire.
type Point struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// Outcome is a scored guess on the wire.
type Outcome struct {
	Direction model.Direction `json:"direction"`
	Actual    model.Direction `json:"actual"`
	Correct   bool            `json:"correct"`
	Date      string          `json:"date"`
	Price     float64         `json:"price"`
}

// EventPayload is the JSON shape of an engine event.
type EventPayload struct {
	Kind            engine.EventKind `json:"kind"`
	Ticker          string           `json:"ticker,omitempty"`
	LeadIn          []Point          `json:"lead_in,omitempty"`
	StartDate       string           `json:"start_date,omitempty"`
	CurrentDate     string           `json:"current_date,omitempty"`
	Score           int              `json:"score"`
	ControlsEnabled bool             `json:"controls_enabled"`
	Outcome         *Outcome         `json:"outcome,omitempty"`
	Point           *Point           `json:"point,omitempty"`
	Status          string           `json:"status"`
	Level           presenter.Level  `json:"level"`
}

// GameResponse is returned by every game endpoint.
type GameResponse struct {
	ID     string         `json:"id"`
	Events []EventPayload `json:"events"`
	View   presenter.View `json:"view"`
}

func toPoint(o model.Observation) Point {
	return Point{Date: o.DateString(), Price: o.Price.InexactFloat64()}
}

func newEventPayload(ev engine.Event) EventPayload {
	status, level := presenter.StatusFor(ev)
	p := EventPayload{
		Kind:            ev.Kind,
		Ticker:          ev.Ticker,
		StartDate:       ev.StartDate,
		CurrentDate:     ev.CurrentDate,
		Score:           ev.Score,
		ControlsEnabled: ev.ControlsEnabled,
		Status:          status,
		Level:           level,
	}
	switch ev.Kind {
	case engine.EventLoaded:
		p.LeadIn = make([]Point, 0, len(ev.LeadIn))
		for _, o := range ev.LeadIn {
			p.LeadIn = append(p.LeadIn, toPoint(o))
		}
	case engine.EventRevealed:
		if o := ev.Outcome; o != nil {
			pt := toPoint(o.Revealed)
			p.Point = &pt
			p.Outcome = &Outcome{
				Direction: o.Direction,
				Actual:    o.Actual,
				Correct:   o.Correct,
				Date:      pt.Date,
				Price:     pt.Price,
			}
		}
	case engine.EventLoadFailed:
		p.Ticker = ""
		p.StartDate = ""
		p.CurrentDate = ""
	}
	return p
}

func newGameResponse(id string, events []engine.Event, view presenter.View) GameResponse {
	resp := GameResponse{ID: id, Events: make([]EventPayload, 0, len(events)), View: view}
	for _, ev := range events {
		resp.Events = append(resp.Events, newEventPayload(ev))
	}
	return resp
}
