// Package sqlite persists analysis runs in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"sentiboard/internal/domain"
)

type Store struct {
	db *sql.DB
}

func InitDB(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id             TEXT PRIMARY KEY,
		source         TEXT NOT NULL DEFAULT 'api',
		requested_by   TEXT DEFAULT '',
		provider       TEXT DEFAULT '',
		model          TEXT DEFAULT '',
		line_count     INTEGER NOT NULL DEFAULT 0,
		fallback_count INTEGER NOT NULL DEFAULT 0,
		accuracy       REAL,
		input_tokens   INTEGER NOT NULL DEFAULT 0,
		output_tokens  INTEGER NOT NULL DEFAULT 0,
		created_at     DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON analysis_runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_requested_by ON analysis_runs(requested_by);

	CREATE TABLE IF NOT EXISTS analysis_results (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id        TEXT NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
		position      INTEGER NOT NULL,
		original_text TEXT NOT NULL,
		sentiment     TEXT NOT NULL,
		confidence    REAL NOT NULL,
		keywords_json TEXT NOT NULL DEFAULT '[]',
		explanation   TEXT DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_results_run ON analysis_results(run_id, position);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// InsertRun stores the run and all of its results in one transaction.
func (s *Store) InsertRun(ctx context.Context, run domain.RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO analysis_runs
		 (id, source, requested_by, provider, model, line_count, fallback_count, accuracy, input_tokens, output_tokens, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.RequestedBy, run.Provider, run.Model,
		run.LineCount, run.FallbackCount, nullFloat(run.Accuracy),
		run.InputTokens, run.OutputTokens, run.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO analysis_results
		 (run_id, position, original_text, sentiment, confidence, keywords_json, explanation)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range run.Results {
		keywords := r.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		kw, err := json.Marshal(keywords)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID, i, r.OriginalText, string(r.Sentiment), r.Confidence, string(kw), r.Explanation,
		); err != nil {
			return fmt.Errorf("insert result %d: %w", i, err)
		}
	}
	return tx.Commit()
}

const runColumns = `id, source, requested_by, provider, model, line_count, fallback_count,
		accuracy, input_tokens, output_tokens, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (domain.RunRecord, error) {
	var (
		r        domain.RunRecord
		accuracy sql.NullFloat64
	)
	err := row.Scan(
		&r.ID, &r.Source, &r.RequestedBy, &r.Provider, &r.Model,
		&r.LineCount, &r.FallbackCount, &accuracy,
		&r.InputTokens, &r.OutputTokens, &r.CreatedAt,
	)
	if err != nil {
		return r, err
	}
	if accuracy.Valid {
		v := accuracy.Float64
		r.Accuracy = &v
	}
	return r, nil
}

// GetRun loads a run with its results in input order. Unknown ids return
// domain.ErrNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (domain.RunRecord, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM analysis_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return run, domain.ErrNotFound
	}
	if err != nil {
		return run, err
	}
	run.Results, err = s.results(ctx, id)
	return run, err
}

func (s *Store) results(ctx context.Context, runID string) ([]domain.AnalysisResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT original_text, sentiment, confidence, keywords_json, explanation
		 FROM analysis_results WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AnalysisResult
	for rows.Next() {
		var (
			r        domain.AnalysisResult
			keywords string
		)
		if err := rows.Scan(&r.OriginalText, &r.Sentiment, &r.Confidence, &keywords, &r.Explanation); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(keywords), &r.Keywords); err != nil {
			return nil, fmt.Errorf("decode keywords for run %s: %w", runID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListRuns returns the most recent runs without their results.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM analysis_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestRunBy returns the newest run requested by the given user, with results.
func (s *Store) LatestRunBy(ctx context.Context, requestedBy string) (domain.RunRecord, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM analysis_runs WHERE requested_by = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		requestedBy,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RunRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.RunRecord{}, err
	}
	return s.GetRun(ctx, id)
}

// --- Run Stats ---

func (s *Store) GetRunStats(ctx context.Context, since time.Time) (domain.RunStats, error) {
	st := domain.RunStats{BySentiment: make(map[domain.Sentiment]int, len(domain.Labels))}
	for _, l := range domain.Labels {
		st.BySentiment[l] = 0
	}
	since = since.UTC()

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(fallback_count), 0)
		 FROM analysis_runs WHERE created_at >= ?`,
		since,
	).Scan(&st.TotalRuns, &st.TotalFallbacks)
	if err != nil {
		return st, err
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(r.confidence), 0),
		        COALESCE(SUM(CASE WHEN r.confidence < 0.50 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN r.confidence >= 0.50 AND r.confidence < 0.70 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN r.confidence >= 0.70 AND r.confidence < 0.90 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN r.confidence >= 0.90 THEN 1 ELSE 0 END), 0)
		 FROM analysis_results r
		 JOIN analysis_runs ar ON ar.id = r.run_id
		 WHERE ar.created_at >= ?`,
		since,
	).Scan(&st.TotalResults, &st.AvgConfidence,
		&st.BucketBelow50, &st.Bucket50to70, &st.Bucket70to90, &st.Bucket90Plus)
	if err != nil {
		return st, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.sentiment, COUNT(*)
		 FROM analysis_results r
		 JOIN analysis_runs ar ON ar.id = r.run_id
		 WHERE ar.created_at >= ?
		 GROUP BY r.sentiment`,
		since,
	)
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			label string
			n     int
		)
		if err := rows.Scan(&label, &n); err != nil {
			return st, err
		}
		st.BySentiment[domain.Sentiment(label)] = n
	}
	return st, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
