package storage

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/mcq-extractor/internal/domain"
)

func setupSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = Migrate(context.Background(), db, DriverSQLite)
	require.NoError(t, err)
	return db
}

func newExtraction(name string, created time.Time, n int) *domain.Extraction {
	e := &domain.Extraction{
		Filename:  name,
		SHA256:    fmt.Sprintf("%064d", n),
		Rejected:  1,
		CreatedAt: created,
	}
	for i := 0; i < n; i++ {
		e.Questions = append(e.Questions, domain.NewQuestionRecord(
			fmt.Sprintf("Question %d", i),
			[]string{"wrong", "right"},
			"B",
		))
	}
	return e
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()

	applied, err := Migrate(ctx, db, DriverSQLite)
	require.NoError(t, err)
	assert.Empty(t, applied)

	status, err := NewMigrator(db, DriverSQLite).Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.UpToDate)
	assert.Equal(t, []string{"0001_extractions.sql"}, status.Applied)
	assert.Equal(t, 1, status.Total)
}

func TestMigrator_FreshDatabase(t *testing.T) {
	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	m := NewMigrator(db, DriverSQLite)
	status, err := m.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.UpToDate)
	assert.Equal(t, []string{"0001_extractions.sql"}, status.Pending)

	applied, err := m.Migrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_extractions.sql"}, applied)
}

func TestExtractionRepository_SaveAndGet(t *testing.T) {
	repo := NewExtractionRepository(setupSQLite(t))
	ctx := context.Background()

	e := newExtraction("quiz.pdf", time.Now(), 3)
	e.Questions[1] = domain.NewQuestionRecord("Four options", []string{"a", "b", "c", "d"}, "D")
	require.NoError(t, repo.Save(ctx, e))
	assert.NotEqual(t, uuid.Nil, e.ID)

	got, err := repo.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, "quiz.pdf", got.Filename)
	assert.Equal(t, e.SHA256, got.SHA256)
	assert.Equal(t, 1, got.Rejected)
	assert.Equal(t, e.Questions, got.Questions)
	assert.WithinDuration(t, e.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestExtractionRepository_GetNotFound(t *testing.T) {
	repo := NewExtractionRepository(setupSQLite(t))

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, domain.IsType(err, domain.ErrorTypeStorage))
}

func TestExtractionRepository_List(t *testing.T) {
	repo := NewExtractionRepository(setupSQLite(t))
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, newExtraction(fmt.Sprintf("f%d.pdf", i), base.Add(time.Duration(i)*time.Hour), i+1)))
	}

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "f2.pdf", all[0].Filename)
	assert.Equal(t, 3, all[0].TotalQuestions)
	assert.Equal(t, "f0.pdf", all[2].Filename)

	limited, err := repo.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestExtractionRepository_ListEmpty(t *testing.T) {
	repo := NewExtractionRepository(setupSQLite(t))

	list, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestExtractionRepository_Delete(t *testing.T) {
	repo := NewExtractionRepository(setupSQLite(t))
	ctx := context.Background()

	e := newExtraction("quiz.pdf", time.Now(), 2)
	require.NoError(t, repo.Save(ctx, e))
	require.NoError(t, repo.Delete(ctx, e.ID))

	_, err := repo.Get(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, e.ID), domain.ErrNotFound)
}

func TestExtractionRepository_DuplicateIDFails(t *testing.T) {
	repo := NewExtractionRepository(setupSQLite(t))
	ctx := context.Background()

	e := newExtraction("quiz.pdf", time.Now(), 1)
	require.NoError(t, repo.Save(ctx, e))

	dup := newExtraction("other.pdf", time.Now(), 1)
	dup.ID = e.ID
	err := repo.Save(ctx, dup)
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeStorage))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	assert.Error(t, err)
}
