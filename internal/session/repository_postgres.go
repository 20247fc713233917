package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"health-intake/internal/intake"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type postgresRepo struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	query := `SELECT id, step, record, submission, created_at, updated_at FROM intake_sessions WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	var s Session
	var step int
	var recordJSON, submissionJSON []byte

	err := row.Scan(
		&s.ID,
		&step,
		&recordJSON,
		&submissionJSON,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	s.Step = intake.Step(step)

	if err := json.Unmarshal(recordJSON, &s.Record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	if len(submissionJSON) > 0 {
		if err := json.Unmarshal(submissionJSON, &s.Submission); err != nil {
			return nil, fmt.Errorf("failed to unmarshal submission status: %w", err)
		}
	}
	return &s, nil
}

func (r *postgresRepo) Save(ctx context.Context, s *Session) error {
	recordJSON, err := json.Marshal(s.Record)
	if err != nil {
		return err
	}
	submissionJSON, err := json.Marshal(s.Submission)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO intake_sessions (id, step, record, submission, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			step = $2,
			record = $3,
			submission = $4,
			updated_at = $6
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, int(s.Step), recordJSON, submissionJSON, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM intake_sessions WHERE id = $1`, id)
	return err
}
