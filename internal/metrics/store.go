package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fitplanner/internal/shared"
)

// ExecutionMetric records metadata for a single generation stage.
type ExecutionMetric struct {
	Stage            string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// RecoveryMetric records which recovery strategy salvaged a response and how
// long the recovery took.
type RecoveryMetric struct {
	Strategy   string
	DurationMS int64
	Timestamp  time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves an execution metric to the database.
func (s *Store) Record(ctx context.Context, m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO execution_metrics (stage, model, prompt_tokens, completion_tokens, latency_ms, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.Stage, m.Model, m.PromptTokens, m.CompletionTokens, m.LatencyMS, ts)
	if err != nil {
		return fmt.Errorf("failed to insert execution metric: %w", err)
	}
	return nil
}

// RecordMeta records metrics directly from shared.StageMeta.
func (s *Store) RecordMeta(ctx context.Context, meta shared.StageMeta) error {
	if meta.Usage.PromptTokens == 0 && meta.Usage.CompletionTokens == 0 {
		return nil
	}
	return s.Record(ctx, MapUsage(meta.Stage, meta.Usage, meta.Latency))
}

// RecordRecovery saves a recovery metric to the database.
func (s *Store) RecordRecovery(ctx context.Context, m RecoveryMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recovery_metrics (strategy, duration_ms, timestamp) VALUES (?, ?, ?)`,
		m.Strategy, m.DurationMS, ts)
	if err != nil {
		return fmt.Errorf("failed to insert recovery metric: %w", err)
	}
	return nil
}

// DailyUsage represents token totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	TotalExecution  int
}

// GetDailyUsage retrieves usage for the last N days.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().AddDate(0, 0, -days).UTC()
	rows, err := s.db.QueryContext(ctx,
		`SELECT date(timestamp) AS day,
		        COALESCE(SUM(prompt_tokens), 0),
		        COALESCE(SUM(completion_tokens), 0),
		        COUNT(*)
		 FROM execution_metrics
		 WHERE timestamp >= ?
		 GROUP BY day
		 ORDER BY day DESC`,
		since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.TotalPrompt, &u.TotalCompletion, &u.TotalExecution); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage row: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// RecoveryBreakdown counts recoveries per strategy for the last N days.
func (s *Store) RecoveryBreakdown(ctx context.Context, days int) (map[string]int, error) {
	since := time.Now().AddDate(0, 0, -days).UTC()
	rows, err := s.db.QueryContext(ctx,
		`SELECT strategy, COUNT(*) FROM recovery_metrics WHERE timestamp >= ? GROUP BY strategy`,
		since)
	if err != nil {
		return nil, fmt.Errorf("failed to query recovery breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := make(map[string]int)
	for rows.Next() {
		var strategy string
		var count int
		if err := rows.Scan(&strategy, &count); err != nil {
			return nil, fmt.Errorf("failed to scan recovery row: %w", err)
		}
		breakdown[strategy] = count
	}
	return breakdown, rows.Err()
}

// Cleanup removes records older than the specified number of days and
// returns how many rows were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().AddDate(0, 0, -olderThanDays).UTC()

	var deleted int64
	for _, table := range []string{"execution_metrics", "recovery_metrics"} {
		res, err := s.db.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE timestamp < ?", table), threshold)
		if err != nil {
			return deleted, fmt.Errorf("failed to clean up %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			deleted += n
		}
	}
	return deleted, nil
}

// MapUsage helper to convert shared.TokenUsage to ExecutionMetric.
func MapUsage(stage string, usage shared.TokenUsage, latency time.Duration) ExecutionMetric {
	return ExecutionMetric{
		Stage:            stage,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
}

// MapRecovery helper to convert a recovery outcome to RecoveryMetric.
func MapRecovery(strategy string, latency time.Duration) RecoveryMetric {
	return RecoveryMetric{
		Strategy:   strategy,
		DurationMS: latency.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}
}
