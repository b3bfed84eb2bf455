package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/windward-labs/kiteschool-api/internal/models"
)

// EventRepository persists scheduled lessons.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

const eventColumns = "id, teacher_id, date, start_time, duration, location, status, students, created_at, updated_at"

// List returns events matching filters along with total count.
func (r *EventRepository) List(ctx context.Context, filter models.KiteEventFilter) ([]models.KiteEvent, int, error) {
	base := "FROM kite_events WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, filter.Date.Format("2006-01-02"))
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("location = $%d", len(args)+1))
		args = append(args, filter.Location)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY date ASC, start_time ASC LIMIT %d OFFSET %d", eventColumns, base, size, offset)
	var events []models.KiteEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	return events, total, nil
}

// ListByDate returns every lesson scheduled on the given day, in board order.
func (r *EventRepository) ListByDate(ctx context.Context, date time.Time) ([]models.KiteEvent, error) {
	query := fmt.Sprintf("SELECT %s FROM kite_events WHERE date = $1 ORDER BY teacher_id ASC, start_time ASC", eventColumns)
	var events []models.KiteEvent
	if err := r.db.SelectContext(ctx, &events, query, date.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list events by date: %w", err)
	}
	return events, nil
}

// ListByTeacherAndDate returns one teacher's lessons on the given day.
func (r *EventRepository) ListByTeacherAndDate(ctx context.Context, teacherID string, date time.Time) ([]models.KiteEvent, error) {
	query := fmt.Sprintf("SELECT %s FROM kite_events WHERE teacher_id = $1 AND date = $2 ORDER BY start_time ASC", eventColumns)
	var events []models.KiteEvent
	if err := r.db.SelectContext(ctx, &events, query, teacherID, date.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list teacher events: %w", err)
	}
	return events, nil
}

// FindByID fetches an event by ID.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.KiteEvent, error) {
	query := fmt.Sprintf("SELECT %s FROM kite_events WHERE id = $1", eventColumns)
	var event models.KiteEvent
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts a single lesson.
func (r *EventRepository) Create(ctx context.Context, event *models.KiteEvent) error {
	return r.CreateTx(ctx, nil, event)
}

// CreateTx inserts a single lesson within an optional transaction.
func (r *EventRepository) CreateTx(ctx context.Context, exec sqlx.ExtContext, event *models.KiteEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Status == "" {
		event.Status = models.EventStatusPlanned
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	const query = `INSERT INTO kite_events (id, teacher_id, date, start_time, duration, location, status, students, created_at, updated_at)
		VALUES (:id, :teacher_id, :date, :start_time, :duration, :location, :status, :students, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// BulkCreateTx inserts a confirmed batch atomically within the transaction.
func (r *EventRepository) BulkCreateTx(ctx context.Context, exec sqlx.ExtContext, events []*models.KiteEvent) error {
	for _, event := range events {
		if err := r.CreateTx(ctx, exec, event); err != nil {
			return err
		}
	}
	return nil
}

// UpdateScheduleTx rewrites an event's placement after a confirmed pushback.
func (r *EventRepository) UpdateScheduleTx(ctx context.Context, exec sqlx.ExtContext, event *models.KiteEvent) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE kite_events SET date = :date, start_time = :start_time, duration = :duration, location = :location, updated_at = :updated_at WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, event)
	if err != nil {
		return fmt.Errorf("update event schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("event schedule rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus moves an event through its lifecycle.
func (r *EventRepository) UpdateStatus(ctx context.Context, id string, status models.EventStatus) error {
	const query = `UPDATE kite_events SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("event status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM kite_events WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("event rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
