package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the game journal to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			ticker      TEXT NOT NULL,
			start_date  TEXT,
			last_date   TEXT,
			guesses     INTEGER,
			score       INTEGER,
			reason      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_games_ts ON games(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_games_ticker ON games(ticker)`,

		`CREATE TABLE IF NOT EXISTS load_failures (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			ticker    TEXT,
			kind      TEXT,
			message   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failures_ts ON load_failures(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordGame(rec *GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO games
		(timestamp, ticker, start_date, last_date, guesses, score, reason)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Ticker, rec.StartDate, rec.LastDate,
		rec.Guesses, rec.Score, rec.Reason,
	)
	return err
}

func (r *SQLiteRecorder) RecordLoadFailure(evt *LoadFailure) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO load_failures
		(timestamp, ticker, kind, message)
		VALUES (?,?,?,?)`,
		time.Now().Unix(), evt.Ticker, evt.Kind, evt.Message,
	)
	return err
}

// BestScores returns the highest finished scores for ticker, best first.
func (r *SQLiteRecorder) BestScores(ticker string, limit int) ([]GameRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT ticker, start_date, last_date, guesses, score, reason
		FROM games WHERE ticker = ? AND reason != 'abandoned'
		ORDER BY score DESC, timestamp ASC LIMIT ?`, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query best scores: %w", err)
	}
	defer rows.Close()

	var out []GameRecord
	for rows.Next() {
		var g GameRecord
		if err := rows.Scan(&g.Ticker, &g.StartDate, &g.LastDate, &g.Guesses, &g.Score, &g.Reason); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
