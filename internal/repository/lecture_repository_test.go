package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestLectureRepositoryListScheduledBetween(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLectureRepository(db)

	from := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	to := from.Add(5 * time.Minute)
	rows := sqlmock.NewRows([]string{"id", "batch_id", "title", "scheduled_at"}).
		AddRow("lec-1", "batch-1", "Goroutines", from.Add(2*time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE scheduled_at >= $1 AND scheduled_at < $2")).
		WithArgs(from, to).
		WillReturnRows(rows)

	lectures, err := repo.ListScheduledBetween(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, lectures, 1)
	require.Equal(t, "Goroutines", lectures[0].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLectureRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLectureRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM lectures WHERE id = $1")).
		WithArgs("lec-x").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "lec-x")
	require.True(t, IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
