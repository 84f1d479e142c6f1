package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordGame(_ *GameRecord) error         { return nil }
func (n *NoopRecorder) RecordLoadFailure(_ *LoadFailure) error { return nil }
func (n *NoopRecorder) Close() error                           { return nil }

func (n *NoopRecorder) BestScores(_ string, _ int) ([]GameRecord, error) { return nil, nil }
