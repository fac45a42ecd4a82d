package repository

import (
	"fmt"
	"time"

	"claim-annotator/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// timeLayout is the stored annotated_at format: wall clock, second
// resolution.
const timeLayout = "2006-01-02 15:04:05"

// AnnotationStore is the persistence surface consumed by sessions and the
// flush dispatcher. Appends are pure inserts; concurrent flushes for the
// same annotator may interleave freely.
type AnnotationStore interface {
	EnsureAnnotator(userID string) error
	ReadSentences(userID string) (map[string]struct{}, error)
	Append(userID string, records []models.AnnotationRecord) error
}

// Repository handles data storage
type Repository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// New opens the sqlite database and creates the schema if absent.
func New(dbPath string, logger *zap.Logger) (*Repository, error) {
	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{
		db:     db,
		logger: logger,
	}

	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Annotation repository initialized", zap.String("db_path", dbPath))

	return repo, nil
}

// migrate creates tables
func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS annotations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		sentence TEXT NOT NULL,
		label TEXT NOT NULL,
		annotated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_annotations_user_id ON annotations(user_id);

	CREATE TABLE IF NOT EXISTS annotators (
		user_id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS allowed_users (
		user_id TEXT PRIMARY KEY
	);
	`

	_, err := r.db.Exec(schema)
	return err
}

// EnsureAnnotator registers the per-annotator destination. Idempotent; safe
// to call from a background task at login.
func (r *Repository) EnsureAnnotator(userID string) error {
	query := `INSERT OR IGNORE INTO annotators (user_id, created_at) VALUES (?, ?)`

	if _, err := r.db.Exec(query, userID, time.Now().Format(timeLayout)); err != nil {
		return fmt.Errorf("failed to ensure annotator %q: %w", userID, err)
	}
	return nil
}

// ReadSentences returns the set of sentences this annotator has already
// labeled. An annotator with no rows yields an empty set.
func (r *Repository) ReadSentences(userID string) (map[string]struct{}, error) {
	var sentences []string
	query := `SELECT sentence FROM annotations WHERE user_id = ?`

	if err := r.db.Select(&sentences, query, userID); err != nil {
		return nil, fmt.Errorf("failed to read annotated sentences: %w", err)
	}

	completed := make(map[string]struct{}, len(sentences))
	for _, s := range sentences {
		completed[s] = struct{}{}
	}
	return completed, nil
}

// Append persists a batch of annotation records. Rows are only ever
// inserted, never updated.
func (r *Repository) Append(userID string, records []models.AnnotationRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin append: %w", err)
	}

	query := `INSERT INTO annotations (user_id, sentence, label, annotated_at) VALUES (?, ?, ?, ?)`
	for _, rec := range records {
		if _, err := tx.Exec(query, rec.UserID, rec.Sentence, string(rec.Label), rec.AnnotatedAt.Format(timeLayout)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to append annotation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit append: %w", err)
	}

	r.logger.Debug("Annotations appended",
		zap.String("user_id", userID),
		zap.Int("count", len(records)))

	return nil
}

// CountAnnotations returns the number of stored rows for an annotator.
func (r *Repository) CountAnnotations(userID string) (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM annotations WHERE user_id = ?`, userID); err != nil {
		return 0, fmt.Errorf("failed to count annotations: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
