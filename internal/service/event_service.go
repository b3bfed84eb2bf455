package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/windward-labs/kiteschool-api/internal/dto"
	"github.com/windward-labs/kiteschool-api/internal/models"
	"github.com/windward-labs/kiteschool-api/internal/schedule"
	appErrors "github.com/windward-labs/kiteschool-api/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context, filter models.KiteEventFilter) ([]models.KiteEvent, int, error)
	FindByID(ctx context.Context, id string) (*models.KiteEvent, error)
	Create(ctx context.Context, event *models.KiteEvent) error
	UpdateStatus(ctx context.Context, id string, status models.EventStatus) error
	Delete(ctx context.Context, id string) error
}

// EventService manages individual lessons outside the session workflow:
// direct inserts, status moves and deletions.
type EventService struct {
	repo      eventRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs an EventService.
func NewEventService(repo eventRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns events plus pagination data.
func (s *EventService) List(ctx context.Context, filter models.KiteEventFilter) ([]models.KiteEvent, *models.Pagination, error) {
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	return events, models.NewPagination(page, filter.PageSize, total), nil
}

// Get returns an event by id.
func (s *EventService) Get(ctx context.Context, id string) (*models.KiteEvent, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}

// Create schedules one lesson directly. The window is clamped to the day; a
// request that would spill past midnight is refused rather than truncated.
func (s *EventService) Create(ctx context.Context, req dto.CreateEventRequest) (*models.KiteEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	if !models.KnownLocation(req.Location) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown teaching location")
	}
	if schedule.CrossesMidnight(req.StartTime, req.Duration) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lesson would run past midnight")
	}

	event := &models.KiteEvent{
		TeacherID: req.TeacherID,
		Date:      day,
		StartTime: req.StartTime,
		Duration:  req.Duration,
		Location:  req.Location,
		Status:    models.EventStatusPlanned,
		Students:  pq.StringArray(req.Students),
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.invalidate(ctx, req.Date)
	return event, nil
}

// UpdateStatus moves an event through its lifecycle.
func (s *EventService) UpdateStatus(ctx context.Context, id string, req dto.UpdateEventStatusRequest) (*models.KiteEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	status := models.EventStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown event status")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event status")
	}
	return s.Get(ctx, id)
}

// Delete removes a lesson from the schedule.
func (s *EventService) Delete(ctx context.Context, id string) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	s.invalidate(ctx, event.Date.Format("2006-01-02"))
	return nil
}

func (s *EventService) invalidate(ctx context.Context, date string) {
	if err := s.cache.Invalidate(ctx, boardCacheKey(date)); err != nil {
		s.logger.Warn("day board invalidation failed", zap.String("date", date), zap.Error(err))
	}
}
