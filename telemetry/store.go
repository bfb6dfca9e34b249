package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// RunInfo describes one simulation run.
type RunInfo struct {
	ID        string
	Seed      int64
	StartedAt time.Time
	Headless  bool
}

// SQLiteStore mirrors run telemetry into a SQLite database so runs can be
// compared across invocations.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore creates a store for the database at path. Call Init before use.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens the database and creates missing tables.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// SaveRun records a run.
func (s *SQLiteStore) SaveRun(ctx context.Context, run RunInfo) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	headless := 0
	if run.Headless {
		headless = 1
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, seed, started_at, headless)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			seed = excluded.seed,
			started_at = excluded.started_at,
			headless = excluded.headless
	`, run.ID, run.Seed, run.StartedAt.UTC().Format(time.RFC3339Nano), headless)
	return err
}

// SaveWindow records one telemetry window.
func (s *SQLiteStore) SaveWindow(ctx context.Context, w WindowStats) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO windows (
			run_id, window_end, sim_time, passive, aggressive,
			apples, kiwis, fights, decisions, trainings, training_errors,
			episodes, reward_mean, apple_rate, epsilon_mean
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, window_end) DO NOTHING
	`, w.RunID, w.WindowEndTick, w.SimTimeSec, w.PassiveCount, w.AggressiveCount,
		w.ApplesEaten, w.KiwisEaten, w.Fights, w.Decisions, w.Trainings, w.TrainingErrors,
		w.Episodes, w.RewardMean, w.AppleRate, w.EpsilonMean)
	return err
}

// SaveLifetime records a closed slime lifetime.
func (s *SQLiteStore) SaveLifetime(ctx context.Context, l *LifetimeStats) error {
	if l == nil {
		return nil
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO lifetimes (
			run_id, slime_id, kind, birth_tick, death_tick, cause,
			apples, kiwis, episodes, best_episode, final_epsilon
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, slime_id) DO NOTHING
	`, l.RunID, l.SlimeID, l.Kind, l.BirthTick, l.DeathTick, l.Cause,
		l.ApplesEaten, l.KiwisEaten, l.Episodes, l.BestEpisode, l.FinalEpsilon)
	return err
}

// Windows returns the windows stored for a run in tick order.
func (s *SQLiteStore) Windows(ctx context.Context, runID string) ([]WindowStats, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT window_end, sim_time, passive, aggressive, apples, kiwis, fights,
			decisions, trainings, training_errors, episodes, reward_mean, apple_rate, epsilon_mean
		FROM windows WHERE run_id = ? ORDER BY window_end
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WindowStats
	for rows.Next() {
		w := WindowStats{RunID: runID}
		if err := rows.Scan(&w.WindowEndTick, &w.SimTimeSec, &w.PassiveCount, &w.AggressiveCount,
			&w.ApplesEaten, &w.KiwisEaten, &w.Fights, &w.Decisions, &w.Trainings, &w.TrainingErrors,
			&w.Episodes, &w.RewardMean, &w.AppleRate, &w.EpsilonMean); err != nil {
			return nil, fmt.Errorf("scan window: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			headless INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS windows (
			run_id TEXT NOT NULL,
			window_end INTEGER NOT NULL,
			sim_time REAL NOT NULL,
			passive INTEGER NOT NULL,
			aggressive INTEGER NOT NULL,
			apples INTEGER NOT NULL,
			kiwis INTEGER NOT NULL,
			fights INTEGER NOT NULL,
			decisions INTEGER NOT NULL,
			trainings INTEGER NOT NULL,
			training_errors INTEGER NOT NULL,
			episodes INTEGER NOT NULL,
			reward_mean REAL NOT NULL,
			apple_rate REAL NOT NULL,
			epsilon_mean REAL NOT NULL,
			PRIMARY KEY (run_id, window_end)
		);
		CREATE TABLE IF NOT EXISTS lifetimes (
			run_id TEXT NOT NULL,
			slime_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			birth_tick INTEGER NOT NULL,
			death_tick INTEGER NOT NULL,
			cause TEXT NOT NULL,
			apples INTEGER NOT NULL,
			kiwis INTEGER NOT NULL,
			episodes INTEGER NOT NULL,
			best_episode REAL NOT NULL,
			final_epsilon REAL NOT NULL,
			PRIMARY KEY (run_id, slime_id)
		);
	`)
	return err
}
