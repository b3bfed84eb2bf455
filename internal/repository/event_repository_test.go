package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windward-labs/kiteschool-api/internal/models"
)

func TestEventRepositoryListByTeacherAndDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "teacher_id", "date", "start_time", "duration", "location", "status", "students", "created_at", "updated_at"}).
		AddRow("e1", "t1", day, "09:00", 60, "Los Lances", "planned", pq.StringArray{"Ana"}, time.Now(), time.Now()).
		AddRow("e2", "t1", day, "11:00", 120, "Los Lances", "planned", pq.StringArray{"Ben", "Cleo"}, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM kite_events WHERE teacher_id = $1 AND date = $2 ORDER BY start_time ASC")).
		WithArgs("t1", "2026-08-29").
		WillReturnRows(rows)

	events, err := repo.ListByTeacherAndDate(context.Background(), "t1", day)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "09:00", events[0].StartTime)
	assert.Equal(t, pq.StringArray{"Ben", "Cleo"}, events[1].Students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryBulkCreateTxRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO kite_events").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO kite_events").
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	events := []*models.KiteEvent{
		{TeacherID: "t1", Date: day, StartTime: "09:00", Duration: 60, Location: "Los Lances", Students: pq.StringArray{"Ana"}},
		{TeacherID: "t2", Date: day, StartTime: "09:00", Duration: 120, Location: "Los Lances", Students: pq.StringArray{"Ben", "Cleo"}},
	}
	err = repo.BulkCreateTx(context.Background(), tx, events)
	require.Error(t, err)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryUpdateScheduleTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("UPDATE kite_events SET date =").
		WillReturnResult(sqlmock.NewResult(0, 1))

	event := &models.KiteEvent{
		ID:        "e1",
		Date:      time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		StartTime: "10:30",
		Duration:  90,
		Location:  "Valdevaqueros",
	}
	require.NoError(t, repo.UpdateScheduleTx(context.Background(), nil, event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryUpdateStatusMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("UPDATE kite_events SET status =").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.EventStatusCompleted)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
