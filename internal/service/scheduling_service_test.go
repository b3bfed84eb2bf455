package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/windward-labs/kiteschool-api/internal/dto"
	"github.com/windward-labs/kiteschool-api/internal/models"
	appErrors "github.com/windward-labs/kiteschool-api/pkg/errors"
)

type stubEventStore struct {
	events    []models.KiteEvent
	created   []*models.KiteEvent
	updated   []*models.KiteEvent
	createErr error
	updateErr error
}

func (s *stubEventStore) ListByDate(ctx context.Context, date time.Time) ([]models.KiteEvent, error) {
	return s.events, nil
}

func (s *stubEventStore) BulkCreateTx(ctx context.Context, exec sqlx.ExtContext, events []*models.KiteEvent) error {
	if s.createErr != nil {
		return s.createErr
	}
	// Assign IDs the way the real repository does.
	for _, ev := range events {
		if ev.ID == "" {
			ev.ID = fmt.Sprintf("event-%d", len(s.created)+1)
		}
		s.created = append(s.created, ev)
	}
	return nil
}

func (s *stubEventStore) UpdateScheduleTx(ctx context.Context, exec sqlx.ExtContext, event *models.KiteEvent) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = append(s.updated, event)
	return nil
}

func newSchedulingFixture(t *testing.T, store *stubEventStore) (*SchedulingService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	teachers := &mockTeacherRepo{listResult: []models.Teacher{
		{ID: "t1", FullName: "Marta Reyes", Active: true},
		{ID: "t2", FullName: "Jonas Berg", Active: true},
	}}
	cache := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	svc := NewSchedulingService(teachers, store, sqlx.NewDb(db, "sqlmock"), cache, nil, validator.New(), zap.NewNop(), SchedulingConfig{
		DefaultSingle:   120,
		DefaultMultiple: 180,
	})
	return svc, mock, func() { db.Close() }
}

func TestSchedulingServiceStartAddConfirm(t *testing.T) {
	store := &stubEventStore{}
	svc, mock, cleanup := newSchedulingFixture(t, store)
	defer cleanup()

	session, err := svc.StartSession(context.Background(), dto.StartSessionRequest{
		Date:       "2026-08-29",
		SubmitTime: "11:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "idle", session.State)
	assert.Len(t, session.Teachers, 2)

	session, err = svc.AddRequest(session.SessionID, dto.AddRequestRequest{
		TeacherID: "t1",
		Students:  []string{"Ana"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ready_to_confirm", session.State)
	require.Len(t, session.Placements, 1)
	for _, p := range session.Placements {
		assert.Equal(t, "11:00", p.CalculatedTime)
		assert.Equal(t, "13:00", p.EndTime)
		assert.Equal(t, 120, p.Duration)
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	confirm, err := svc.Confirm(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.True(t, confirm.Success)
	assert.Equal(t, "idle", confirm.State)

	require.Len(t, store.created, 1)
	created := store.created[0]
	assert.Equal(t, "t1", created.TeacherID)
	assert.Equal(t, "11:00", created.StartTime)
	assert.Equal(t, models.EventStatusPlanned, created.Status)
	assert.Equal(t, "2026-08-29", created.Date.Format("2006-01-02"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchedulingServiceConfirmFailureKeepsSession(t *testing.T) {
	store := &stubEventStore{createErr: errors.New("disk full")}
	svc, mock, cleanup := newSchedulingFixture(t, store)
	defer cleanup()

	session, err := svc.StartSession(context.Background(), dto.StartSessionRequest{Date: "2026-08-29"})
	require.NoError(t, err)
	_, err = svc.AddRequest(session.SessionID, dto.AddRequestRequest{TeacherID: "t1", Students: []string{"Ana"}})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()

	confirm, err := svc.Confirm(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.False(t, confirm.Success)
	assert.Equal(t, "composing", confirm.State)

	// The batch is intact for retry.
	current, err := svc.GetSession(session.SessionID)
	require.NoError(t, err)
	assert.Len(t, current.Requests, 1)

	// Recalculate and retry once the failure clears.
	store.createErr = nil
	current, err = svc.Calculate(session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "ready_to_confirm", current.State)

	mock.ExpectBegin()
	mock.ExpectCommit()
	confirm, err = svc.Confirm(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.True(t, confirm.Success)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchedulingServiceConfirmThenPushbackKeepsEventIDs(t *testing.T) {
	store := &stubEventStore{}
	svc, mock, cleanup := newSchedulingFixture(t, store)
	defer cleanup()

	session, err := svc.StartSession(context.Background(), dto.StartSessionRequest{Date: "2026-08-29"})
	require.NoError(t, err)
	_, err = svc.AddRequest(session.SessionID, dto.AddRequestRequest{TeacherID: "t1", Students: []string{"Ana"}})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()
	confirm, err := svc.Confirm(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.True(t, confirm.Success)
	require.Len(t, store.created, 1)
	require.NotEmpty(t, store.created[0].ID)

	// Pushing back the lesson just confirmed must target its stored row.
	_, err = svc.OpenPushback(session.SessionID)
	require.NoError(t, err)
	preview, err := svc.PreviewPushback(session.SessionID, dto.PushbackPreviewRequest{
		TeacherID:     "t1",
		Anchor:        "10:00",
		KeepDurations: true,
	})
	require.NoError(t, err)
	require.Len(t, preview.Preview["t1"], 1)
	assert.Equal(t, store.created[0].ID, preview.Preview["t1"][0].EventID)

	mock.ExpectBegin()
	mock.ExpectCommit()
	confirm, err = svc.ConfirmPushback(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.True(t, confirm.Success)
	require.Len(t, store.updated, 1)
	assert.Equal(t, store.created[0].ID, store.updated[0].ID)
	assert.Equal(t, "10:00", store.updated[0].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchedulingServiceAddRequestUnknownTeacher(t *testing.T) {
	svc, _, cleanup := newSchedulingFixture(t, &stubEventStore{})
	defer cleanup()

	session, err := svc.StartSession(context.Background(), dto.StartSessionRequest{Date: "2026-08-29"})
	require.NoError(t, err)

	_, err = svc.AddRequest(session.SessionID, dto.AddRequestRequest{TeacherID: "ghost", Students: []string{"Ana"}})
	require.Error(t, err)
}

func TestSchedulingServiceSessionExpiry(t *testing.T) {
	store := &stubEventStore{}
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	teachers := &mockTeacherRepo{listResult: []models.Teacher{{ID: "t1", FullName: "Marta Reyes", Active: true}}}
	cache := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	svc := NewSchedulingService(teachers, store, sqlx.NewDb(db, "sqlmock"), cache, nil, validator.New(), zap.NewNop(), SchedulingConfig{
		SessionTTL: time.Nanosecond,
	})

	session, err := svc.StartSession(context.Background(), dto.StartSessionRequest{Date: "2026-08-29"})
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = svc.GetSession(session.SessionID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErrors.FromError(err).Code)
}

func TestSchedulingServicePushback(t *testing.T) {
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	store := &stubEventStore{events: []models.KiteEvent{
		{ID: "e1", TeacherID: "t1", Date: day, StartTime: "10:00", Duration: 60, Location: "Los Lances", Status: models.EventStatusPlanned, Students: pq.StringArray{"Ana"}},
		{ID: "e2", TeacherID: "t1", Date: day, StartTime: "11:30", Duration: 60, Location: "Los Lances", Status: models.EventStatusPlanned, Students: pq.StringArray{"Ben"}},
	}}
	svc, mock, cleanup := newSchedulingFixture(t, store)
	defer cleanup()

	session, err := svc.StartSession(context.Background(), dto.StartSessionRequest{Date: "2026-08-29"})
	require.NoError(t, err)
	_, err = svc.OpenPushback(session.SessionID)
	require.NoError(t, err)

	preview, err := svc.PreviewPushback(session.SessionID, dto.PushbackPreviewRequest{
		TeacherID:     "t1",
		Anchor:        "09:00",
		KeepDurations: true,
	})
	require.NoError(t, err)
	require.Len(t, preview.Preview["t1"], 2)
	assert.Equal(t, "09:00", preview.Preview["t1"][0].NewTime)
	assert.Equal(t, "10:00", preview.Preview["t1"][1].NewTime)
	assert.True(t, preview.Preview["t1"][0].Changed)

	mock.ExpectBegin()
	mock.ExpectCommit()

	confirm, err := svc.ConfirmPushback(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.True(t, confirm.Success)
	require.Len(t, store.updated, 2)
	assert.Equal(t, "e1", store.updated[0].ID)
	assert.Equal(t, "09:00", store.updated[0].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchedulingServiceDayBoard(t *testing.T) {
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	store := &stubEventStore{events: []models.KiteEvent{
		{ID: "e1", TeacherID: "t1", Date: day, StartTime: "09:00", Duration: 60, Location: "Los Lances", Status: models.EventStatusPlanned, Students: pq.StringArray{"Ana"}},
		{ID: "e2", TeacherID: "t1", Date: day, StartTime: "10:30", Duration: 60, Location: "Los Lances", Status: models.EventStatusPlanned, Students: pq.StringArray{"Ben"}},
	}}
	svc, _, cleanup := newSchedulingFixture(t, store)
	defer cleanup()

	board, err := svc.DayBoard(context.Background(), "2026-08-29")
	require.NoError(t, err)
	require.Len(t, board, 2)

	var marta dto.TeacherScheduleResponse
	for _, row := range board {
		if row.TeacherID == "t1" {
			marta = row
		}
	}
	require.Len(t, marta.Events, 2)
	assert.Equal(t, "10:00", marta.Events[0].End)
	assert.Equal(t, []int{30}, marta.Gaps)
}
