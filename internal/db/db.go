package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/db/migrations"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/review"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by point lookups and updates on a missing problem.
var ErrNotFound = errors.New("db: problem not found")

// Store is the SQLite-backed problem store and review log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies migrations.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create data directory: %w", err)
		}
	}

	dsn := "file:" + filepath.Clean(path) + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const problemColumns = `id, title, slug, difficulty, topics, statement, code, language, accepted_at, last_reviewed, explanation`

// Difficulty rank, last_reviewed with NULLs first, then oldest accepted.
const priorityOrder = `
	CASE difficulty
		WHEN 'Easy' THEN 1
		WHEN 'Medium' THEN 2
		WHEN 'Hard' THEN 3
		ELSE 4
	END ASC,
	last_reviewed IS NOT NULL ASC,
	last_reviewed ASC,
	accepted_at ASC,
	id ASC`

const reviewedInRange = `SELECT problem_id FROM review_log WHERE reviewed_at >= ? AND reviewed_at < ?`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProblem(row rowScanner) (models.Problem, error) {
	var (
		p            models.Problem
		difficulty   string
		acceptedAt   int64
		lastReviewed sql.NullInt64
		explanation  sql.NullString
	)
	if err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &difficulty, &p.Topics, &p.Statement,
		&p.Code, &p.Language, &acceptedAt, &lastReviewed, &explanation,
	); err != nil {
		return models.Problem{}, err
	}
	p.Difficulty = models.ParseDifficulty(difficulty)
	p.AcceptedAt = time.UnixMilli(acceptedAt).UTC()
	if lastReviewed.Valid {
		t := time.UnixMilli(lastReviewed.Int64).UTC()
		p.LastReviewed = &t
	}
	if explanation.Valid {
		e := explanation.String
		p.Explanation = &e
	}
	return p, nil
}

func (s *Store) queryProblems(ctx context.Context, query string, args ...any) ([]models.Problem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var problems []models.Problem
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan problem: %w", err)
		}
		problems = append(problems, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate problems: %w", err)
	}
	return problems, nil
}

// UpsertProblem inserts a problem keyed by slug and returns its id.
// On conflict the metadata is refreshed while id, accepted_at, last_reviewed and
// the review log are kept. A changed non-empty code clears the explanation.
func (s *Store) UpsertProblem(ctx context.Context, p models.Problem) (int64, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Title == "" {
		return 0, errors.New("title is required")
	}
	if p.Slug == "" {
		return 0, errors.New("slug is required")
	}
	if p.Difficulty == "" {
		p.Difficulty = models.DifficultyUnknown
	}
	if p.AcceptedAt.IsZero() {
		p.AcceptedAt = time.Now()
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
INSERT INTO problems (title, slug, difficulty, topics, statement, code, language, accepted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET
	title = excluded.title,
	difficulty = CASE WHEN excluded.difficulty <> 'Unknown' THEN excluded.difficulty ELSE problems.difficulty END,
	topics = CASE WHEN excluded.topics <> '' THEN excluded.topics ELSE problems.topics END,
	statement = CASE WHEN excluded.statement <> '' THEN excluded.statement ELSE problems.statement END,
	language = CASE WHEN excluded.language <> '' THEN excluded.language ELSE problems.language END,
	code = CASE WHEN excluded.code <> '' THEN excluded.code ELSE problems.code END,
	explanation = CASE WHEN excluded.code <> '' AND excluded.code <> problems.code THEN NULL ELSE problems.explanation END
RETURNING id`,
		p.Title, p.Slug, string(p.Difficulty), p.Topics, p.Statement, p.Code, p.Language,
		p.AcceptedAt.UTC().UnixMilli(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert problem %q: %w", p.Slug, err)
	}
	return id, nil
}

func (s *Store) GetProblem(ctx context.Context, id int64) (*models.Problem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+problemColumns+` FROM problems WHERE id = ?`, id)
	p, err := scanProblem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("problem %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetProblemBySlug(ctx context.Context, slug string) (*models.Problem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+problemColumns+` FROM problems WHERE slug = ?`, strings.TrimSpace(slug))
	p, err := scanProblem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("problem %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProblems returns every problem, oldest accepted first.
func (s *Store) ListProblems(ctx context.Context) ([]models.Problem, error) {
	return s.queryProblems(ctx, `SELECT `+problemColumns+` FROM problems ORDER BY accepted_at ASC, id ASC`)
}

// UpdateProblemDetails rewrites the descriptive fields of a problem.
// Review state and accepted_at are never touched here.
func (s *Store) UpdateProblemDetails(ctx context.Context, p models.Problem) error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("title is required")
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE problems
SET title = ?, difficulty = ?, topics = ?, statement = ?, language = ?
WHERE id = ?`,
		strings.TrimSpace(p.Title), string(p.Difficulty), p.Topics, p.Statement, p.Language, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update problem %d: %w", p.ID, err)
	}
	return requireRow(res, p.ID)
}

// SetCode replaces the solution code and drops the now stale explanation.
func (s *Store) SetCode(ctx context.Context, id int64, code, language string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE problems
SET code = ?, language = CASE WHEN ? <> '' THEN ? ELSE language END, explanation = NULL
WHERE id = ?`, code, language, language, id)
	if err != nil {
		return fmt.Errorf("set code for problem %d: %w", id, err)
	}
	return requireRow(res, id)
}

func (s *Store) SetExplanation(ctx context.Context, id int64, explanation string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE problems SET explanation = ? WHERE id = ?`, explanation, id)
	if err != nil {
		return fmt.Errorf("set explanation for problem %d: %w", id, err)
	}
	return requireRow(res, id)
}

// ListUnreviewedToday is the difficulty-priority query: problems without a
// review event on today's calendar day, easiest and stalest first.
func (s *Store) ListUnreviewedToday(ctx context.Context, today time.Time, limit int) ([]models.Problem, error) {
	if today.IsZero() {
		return nil, errors.New("today is required")
	}
	start, end := models.DayBounds(today)
	return s.queryProblems(ctx, `
SELECT `+problemColumns+`
FROM problems
WHERE id NOT IN (`+reviewedInRange+`)
ORDER BY `+priorityOrder+`
LIMIT ?`, start.UTC().UnixMilli(), end.UTC().UnixMilli(), limit)
}

// ListFifoCandidates is the fallback query: oldest accepted first, still
// excluding anything already reviewed today.
func (s *Store) ListFifoCandidates(ctx context.Context, today time.Time, limit int) ([]models.Problem, error) {
	if today.IsZero() {
		return nil, errors.New("today is required")
	}
	start, end := models.DayBounds(today)
	return s.queryProblems(ctx, `
SELECT `+problemColumns+`
FROM problems
WHERE id NOT IN (`+reviewedInRange+`)
ORDER BY accepted_at ASC, id ASC
LIMIT ?`, start.UTC().UnixMilli(), end.UTC().UnixMilli(), limit)
}

func (s *Store) AppendReviewEvent(ctx context.Context, problemID int64, at time.Time) error {
	return reviewWriter{ex: s.db}.AppendReviewEvent(ctx, problemID, at)
}

func (s *Store) SetLastReviewed(ctx context.Context, problemID int64, at time.Time) error {
	return reviewWriter{ex: s.db}.SetLastReviewed(ctx, problemID, at)
}

// InTx runs fn against a writer bound to one transaction. The transaction is
// committed only if fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(review.ReviewWriter) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(reviewWriter{ex: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListReviewEvents returns the review history of one problem, newest first.
func (s *Store) ListReviewEvents(ctx context.Context, problemID int64) ([]models.ReviewEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, problem_id, reviewed_at
FROM review_log
WHERE problem_id = ?
ORDER BY reviewed_at DESC, id DESC`, problemID)
	if err != nil {
		return nil, fmt.Errorf("list review events: %w", err)
	}
	defer rows.Close()

	var events []models.ReviewEvent
	for rows.Next() {
		var ev models.ReviewEvent
		var at int64
		if err := rows.Scan(&ev.ID, &ev.ProblemID, &at); err != nil {
			return nil, fmt.Errorf("scan review event: %w", err)
		}
		ev.ReviewedAt = time.UnixMilli(at).UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *Store) ProblemCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM problems`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count problems: %w", err)
	}
	return n, nil
}

// ReviewStats summarises the review log relative to the given day.
func (s *Store) ReviewStats(ctx context.Context, today time.Time) (*models.ReviewStats, error) {
	if today.IsZero() {
		return nil, errors.New("today is required")
	}
	start, end := models.DayBounds(today)
	weekStart := start.AddDate(0, 0, -6)

	stats := &models.ReviewStats{CountByDifficulty: make(map[models.Difficulty]int)}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM review_log`).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT problem_id) FROM review_log WHERE reviewed_at >= ? AND reviewed_at < ?`,
		start.UTC().UnixMilli(), end.UTC().UnixMilli(),
	).Scan(&stats.ReviewedToday); err != nil {
		return nil, fmt.Errorf("count reviewed today: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_log WHERE reviewed_at >= ? AND reviewed_at < ?`,
		weekStart.UTC().UnixMilli(), end.UTC().UnixMilli(),
	).Scan(&stats.ReviewsLast7Days); err != nil {
		return nil, fmt.Errorf("count reviews last 7 days: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM problems WHERE last_reviewed IS NULL`,
	).Scan(&stats.NeverReviewed); err != nil {
		return nil, fmt.Errorf("count never reviewed: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT difficulty, COUNT(*) FROM problems GROUP BY difficulty`)
	if err != nil {
		return nil, fmt.Errorf("count by difficulty: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var diff string
		var count int
		if err := rows.Scan(&diff, &count); err != nil {
			return nil, fmt.Errorf("scan difficulty count: %w", err)
		}
		stats.CountByDifficulty[models.ParseDifficulty(diff)] += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// reviewWriter holds the review write path so the same statements run on the
// plain connection pool or inside a transaction.
type reviewWriter struct {
	ex execer
}

func (w reviewWriter) AppendReviewEvent(ctx context.Context, problemID int64, at time.Time) error {
	if at.IsZero() {
		return errors.New("review time is required")
	}
	if _, err := w.ex.ExecContext(ctx,
		`INSERT INTO review_log (problem_id, reviewed_at) VALUES (?, ?)`,
		problemID, at.UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("append review event for problem %d: %w", problemID, err)
	}
	return nil
}

// SetLastReviewed never moves last_reviewed backwards nor below accepted_at.
func (w reviewWriter) SetLastReviewed(ctx context.Context, problemID int64, at time.Time) error {
	if at.IsZero() {
		return errors.New("review time is required")
	}
	res, err := w.ex.ExecContext(ctx, `
UPDATE problems
SET last_reviewed = MAX(COALESCE(last_reviewed, 0), ?, accepted_at)
WHERE id = ?`, at.UTC().UnixMilli(), problemID)
	if err != nil {
		return fmt.Errorf("set last reviewed for problem %d: %w", problemID, err)
	}
	return requireRow(res, problemID)
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("problem %d: %w", id, ErrNotFound)
	}
	return nil
}

var (
	_ review.Store      = (*Store)(nil)
	_ review.Transactor = (*Store)(nil)
)
