package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/developia-II/longform-translator-backend/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	role       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS translations (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL,
	original_text    TEXT NOT NULL,
	source_language  TEXT NOT NULL,
	target_language  TEXT NOT NULL,
	profile          TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL,
	progress_current INTEGER,
	progress_total   INTEGER,
	progress_status  TEXT,
	translated_text  TEXT NOT NULL DEFAULT '',
	failure_reason   TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_translations_user ON translations (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS feedback (
	id             TEXT PRIMARY KEY,
	translation_id TEXT NOT NULL REFERENCES translations (id) ON DELETE CASCADE,
	user_id        TEXT NOT NULL,
	rating         INTEGER NOT NULL,
	suggested_text TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_feedback_translation ON feedback (translation_id);
`

// SQLiteStore keeps users and translations in a local SQLite file. It suits
// single-node deployments and development.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writes, so updates apply in issue order
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	log.Infow("opened SQLite store", "path", path)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateTranslation(ctx context.Context, t *models.Translation) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO translations (id, user_id, original_text, source_language, target_language, profile,
			status, translated_text, failure_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, t.UserID, t.OriginalText, t.SourceLanguage, t.TargetLanguage, t.Profile,
		string(t.Status), t.TranslatedText, t.FailureReason, t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) UpdateTranslation(ctx context.Context, id string, u models.TranslationUpdate) error {
	now := time.Now().UTC()

	var res sql.Result
	var err error
	switch u.Status {
	case models.StatusInProgress:
		var current, total sql.NullInt64
		var status sql.NullString
		if u.Progress != nil {
			current = sql.NullInt64{Int64: int64(u.Progress.Current), Valid: true}
			total = sql.NullInt64{Int64: int64(u.Progress.Total), Valid: true}
			status = sql.NullString{String: u.Progress.Status, Valid: true}
		}
		res, err = s.db.ExecContext(ctx, `
			UPDATE translations
			SET status = ?, progress_current = ?, progress_total = ?, progress_status = ?, updated_at = ?
			WHERE id = ? AND status NOT IN (?, ?)`,
			string(u.Status), current, total, status, now,
			id, string(models.StatusComplete), string(models.StatusFailed),
		)
	case models.StatusComplete:
		res, err = s.db.ExecContext(ctx, `
			UPDATE translations
			SET status = ?, translated_text = ?, failure_reason = '',
				progress_current = NULL, progress_total = NULL, progress_status = NULL, updated_at = ?
			WHERE id = ?`,
			string(u.Status), u.TranslatedText, now, id,
		)
	default:
		res, err = s.db.ExecContext(ctx, `
			UPDATE translations
			SET status = ?, failure_reason = ?,
				progress_current = NULL, progress_total = NULL, progress_status = NULL, updated_at = ?
			WHERE id = ?`,
			string(u.Status), u.FailureReason, now, id,
		)
	}
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// A terminal record ignores progress; only a missing record is an error
	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM translations WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return nil
}

const translationColumns = `id, user_id, original_text, source_language, target_language, profile, status,
	progress_current, progress_total, progress_status, translated_text, failure_reason, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTranslation(row rowScanner) (*models.Translation, error) {
	var t models.Translation
	var status string
	var current, total sql.NullInt64
	var progressStatus sql.NullString

	err := row.Scan(&t.ID, &t.UserID, &t.OriginalText, &t.SourceLanguage, &t.TargetLanguage, &t.Profile, &status,
		&current, &total, &progressStatus, &t.TranslatedText, &t.FailureReason, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.Status = models.TranslationStatus(status)
	if current.Valid && total.Valid {
		t.Progress = &models.ProgressEvent{
			Current: int(current.Int64),
			Total:   int(total.Int64),
			Status:  progressStatus.String,
		}
	}
	return &t, nil
}

func (s *SQLiteStore) GetTranslation(ctx context.Context, id string) (*models.Translation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+translationColumns+` FROM translations WHERE id = ?`, id)
	t, err := scanTranslation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *SQLiteStore) ListTranslations(ctx context.Context, ownerID string, limit int64) ([]models.Translation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+translationColumns+` FROM translations WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	translations := []models.Translation{}
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		translations = append(translations, *t)
	}
	return translations, rows.Err()
}

func (s *SQLiteStore) DeleteTranslation(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) TranslationStats(ctx context.Context) (models.TranslationStats, error) {
	stats := models.TranslationStats{ByStatus: map[models.TranslationStatus]int64{}}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM translations GROUP BY status`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return stats, err
		}
		stats.ByStatus[models.TranslationStatus(status)] = count
		stats.Total += count
	}
	return stats, rows.Err()
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u *models.User) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, u.Name, u.Email, u.Password, u.Role, u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return "", ErrDuplicate
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

const userColumns = `id, name, email, password, role, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *SQLiteStore) ListUsers(ctx context.Context, query string, page, limit int64) ([]models.User, int64, error) {
	where := ""
	var args []any
	if query != "" {
		where = ` WHERE email LIKE ? ESCAPE '\' OR name LIKE ? ESCAPE '\'`
		pattern := "%" + escapeLike(query) + "%"
		args = append(args, pattern, pattern)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users`+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		u.Password = ""
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) CreateFeedback(ctx context.Context, f *models.Feedback) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, translation_id, user_id, rating, suggested_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, f.TranslationID, f.UserID, f.Rating, f.SuggestedText, f.CreatedAt.UTC(),
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

const feedbackColumns = `id, translation_id, user_id, rating, suggested_text, created_at`

func (s *SQLiteStore) ListFeedback(ctx context.Context, translationID string) ([]models.Feedback, error) {
	return s.queryFeedback(ctx,
		`SELECT `+feedbackColumns+` FROM feedback WHERE translation_id = ? ORDER BY created_at DESC`,
		translationID)
}

func (s *SQLiteStore) ListAllFeedback(ctx context.Context, q models.FeedbackQuery) ([]models.Feedback, int64, error) {
	var conds []string
	var args []any
	if !q.From.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, q.From.UTC())
	}
	if !q.To.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, q.To.UTC())
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	feedback, err := s.queryFeedback(ctx,
		`SELECT `+feedbackColumns+` FROM feedback`+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, q.Limit, (q.Page-1)*q.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	return feedback, total, nil
}

func (s *SQLiteStore) queryFeedback(ctx context.Context, query string, args ...any) ([]models.Feedback, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	feedback := []models.Feedback{}
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.ID, &f.TranslationID, &f.UserID, &f.Rating, &f.SuggestedText, &f.CreatedAt); err != nil {
			return nil, err
		}
		feedback = append(feedback, f)
	}
	return feedback, rows.Err()
}

func (s *SQLiteStore) CountFeedback(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&n)
	return n, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
