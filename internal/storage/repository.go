package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spherical/mcq-extractor/internal/domain"
)

// DefaultListLimit bounds List when the caller passes no limit.
const DefaultListLimit = 50

// ExtractionRepository handles extraction persistence. It implements
// domain.ExtractionStore.
type ExtractionRepository struct {
	db DB
}

// NewExtractionRepository creates a new extraction repository.
func NewExtractionRepository(db DB) *ExtractionRepository {
	return &ExtractionRepository{db: db}
}

// Save writes the extraction and its questions in one transaction.
func (r *ExtractionRepository) Save(ctx context.Context, e *domain.Extraction) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StorageError("begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO extractions (id, filename, sha256, total_questions, rejected_blocks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.ExecContext(ctx, query,
		e.ID, e.Filename, e.SHA256, e.Total(), e.Rejected, e.CreatedAt,
	); err != nil {
		return domain.StorageError("insert extraction", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO questions (extraction_id, position, content, option_a, option_b, option_c, option_d, correct_answer)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return domain.StorageError("prepare question insert", err)
	}
	defer stmt.Close()

	for i, q := range e.Questions {
		if _, err := stmt.ExecContext(ctx,
			e.ID, i, q.Content, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectAnswer,
		); err != nil {
			return domain.StorageError(fmt.Sprintf("insert question %d", i), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.StorageError("commit extraction", err)
	}
	return nil
}

// Get retrieves an extraction with its questions in document order.
func (r *ExtractionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Extraction, error) {
	query := `
		SELECT id, filename, sha256, rejected_blocks, created_at
		FROM extractions WHERE id = $1
	`
	e := &domain.Extraction{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Filename, &e.SHA256, &e.Rejected, &e.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.StorageError(fmt.Sprintf("extraction %s", id), domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.StorageError("query extraction", err)
	}
	e.CreatedAt = e.CreatedAt.UTC()

	rows, err := r.db.QueryContext(ctx, `
		SELECT content, option_a, option_b, option_c, option_d, correct_answer
		FROM questions WHERE extraction_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, domain.StorageError("query questions", err)
	}
	defer rows.Close()

	e.Questions = []domain.QuestionRecord{}
	for rows.Next() {
		var q domain.QuestionRecord
		if err := rows.Scan(&q.Content, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectAnswer); err != nil {
			return nil, domain.StorageError("scan question", err)
		}
		e.Questions = append(e.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("iterate questions", err)
	}

	return e, nil
}

// List returns the most recent extractions, newest first.
func (r *ExtractionRepository) List(ctx context.Context, limit int) ([]domain.ExtractionSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, filename, sha256, total_questions, rejected_blocks, created_at
		FROM extractions
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, domain.StorageError("list extractions", err)
	}
	defer rows.Close()

	summaries := []domain.ExtractionSummary{}
	for rows.Next() {
		var s domain.ExtractionSummary
		if err := rows.Scan(&s.ID, &s.Filename, &s.SHA256, &s.TotalQuestions, &s.Rejected, &s.CreatedAt); err != nil {
			return nil, domain.StorageError("scan extraction", err)
		}
		s.CreatedAt = s.CreatedAt.UTC()
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("iterate extractions", err)
	}

	return summaries, nil
}

// Delete removes an extraction and its questions.
func (r *ExtractionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StorageError("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM questions WHERE extraction_id = $1", id); err != nil {
		return domain.StorageError("delete questions", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM extractions WHERE id = $1", id)
	if err != nil {
		return domain.StorageError("delete extraction", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.StorageError(fmt.Sprintf("extraction %s", id), domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return domain.StorageError("commit delete", err)
	}
	return nil
}
