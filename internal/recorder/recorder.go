package recorder

// GameRecord holds the outcome of a session that stopped running.
type GameRecord struct {
	Ticker    string
	StartDate string // YYYY-MM-DD
	LastDate  string // last revealed day
	Guesses   int
	Score     int
	Reason    string // "exhausted", "ended" or "abandoned"
}

// LoadFailure records a ticker load that never produced a session.
type LoadFailure struct {
	Ticker  string
	Kind    string
	Message string
}

// Recorder persists the game journal for later analysis.
type Recorder interface {
	RecordGame(rec *GameRecord) error
	RecordLoadFailure(evt *LoadFailure) error
	BestScores(ticker string, limit int) ([]GameRecord, error)
	Close() error
}
