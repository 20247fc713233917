package session

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"health-intake/internal/intake"
	"health-intake/internal/submission"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledSession(t *testing.T) *Session {
	t.Helper()
	s := newSession()
	w := s.wizard()
	w.UpdateField(intake.FieldFullName, "田中花子")
	w.SetAnthropometrics("160", "55")
	_, err := w.AddBodyPartFromZone("r_knee", "痛い", 7)
	require.NoError(t, err)
	require.True(t, w.Advance())
	s.apply(w)
	return s
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	s := filledSession(t)

	_, err := repo.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, repo.Save(ctx, s))
	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	got.Record.BodyParts[0].Level = 1
	again, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, again.Record.BodyParts[0].Level, "stored copy is isolated")

	require.NoError(t, repo.Delete(ctx, s.ID))
	_, err = repo.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, Repository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresRepository(db)
}

func TestPostgresRepository_GetByID(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	s := filledSession(t)
	recordJSON, err := json.Marshal(s.Record)
	require.NoError(t, err)
	created := time.Date(2025, 3, 9, 5, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "step", "record", "submission", "created_at", "updated_at"}).
		AddRow(s.ID.String(), 2, recordJSON, []byte(`{"state":"error","inFlight":false,"message":"failed"}`), created, created)
	mock.ExpectQuery(`SELECT id, step, record, submission, created_at, updated_at FROM intake_sessions`).
		WithArgs(s.ID).
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, intake.StepConcerns, got.Step)
	assert.Equal(t, "田中花子", got.Record.FullName)
	assert.Equal(t, "21.5", got.Record.BMI)
	require.Len(t, got.Record.BodyParts, 1)
	assert.Equal(t, submission.StateError, got.Submission.State)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT`).WithArgs(id).WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Nil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Save(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	s := filledSession(t)
	mock.ExpectExec(`INSERT INTO intake_sessions`).
		WithArgs(s.ID, int(intake.StepConcerns), sqlmock.AnyArg(), sqlmock.AnyArg(), s.CreatedAt, s.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), s))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Delete(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM intake_sessions`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), id))
	require.NoError(t, mock.ExpectationsWereMet())
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, Repository) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisRepository(client, time.Hour)
}

func TestRedisRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, repo := setupTestRedis(t)
	s := filledSession(t)

	require.NoError(t, repo.Save(ctx, s))
	assert.True(t, mr.Exists(redisKey(s.ID)))
	assert.Equal(t, time.Hour, mr.TTL(redisKey(s.ID)))

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Record, got.Record)
	assert.Equal(t, s.Step, got.Step)
	assert.True(t, s.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, repo.Delete(ctx, s.ID))
	_, err = repo.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisRepository_Expires(t *testing.T) {
	ctx := context.Background()
	mr, repo := setupTestRedis(t)
	s := filledSession(t)
	require.NoError(t, repo.Save(ctx, s))

	mr.FastForward(2 * time.Hour)
	_, err := repo.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
