package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/windward-labs/kiteschool-api/internal/dto"
	"github.com/windward-labs/kiteschool-api/internal/models"
	"github.com/windward-labs/kiteschool-api/internal/schedule"
	appErrors "github.com/windward-labs/kiteschool-api/pkg/errors"
)

type schedulingTeacherLister interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type schedulingEventStore interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.KiteEvent, error)
	BulkCreateTx(ctx context.Context, exec sqlx.ExtContext, events []*models.KiteEvent) error
	UpdateScheduleTx(ctx context.Context, exec sqlx.ExtContext, event *models.KiteEvent) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// SchedulingConfig governs session lifetime and placement defaults.
type SchedulingConfig struct {
	SessionTTL      time.Duration
	SnapshotTTL     time.Duration
	DefaultSingle   int
	DefaultMultiple int
	DefaultLocation string
}

// SchedulingService owns the day-scheduling workflow: it opens sessions over a
// snapshot of the day's board, routes operator input into them, and persists
// confirmed batches and pushbacks transactionally.
type SchedulingService struct {
	teachers  schedulingTeacherLister
	events    schedulingEventStore
	tx        txProvider
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SchedulingConfig

	mu       sync.Mutex
	sessions map[string]*schedule.Session
}

// NewSchedulingService wires scheduling dependencies.
func NewSchedulingService(
	teachers schedulingTeacherLister,
	events schedulingEventStore,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg SchedulingConfig,
) *SchedulingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 4 * time.Hour
	}
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = 2 * time.Minute
	}
	if cfg.DefaultSingle <= 0 {
		cfg.DefaultSingle = 120
	}
	if cfg.DefaultMultiple <= 0 {
		cfg.DefaultMultiple = 180
	}
	if cfg.DefaultLocation == "" {
		cfg.DefaultLocation = models.LocationLosLances
	}
	return &SchedulingService{
		teachers:  teachers,
		events:    events,
		tx:        tx,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		sessions:  make(map[string]*schedule.Session),
	}
}

// StartSession opens a scheduling session over a fresh snapshot of the day.
func (s *SchedulingService) StartSession(ctx context.Context, req dto.StartSessionRequest) (*dto.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	if req.Location != "" && !models.KnownLocation(req.Location) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown teaching location")
	}

	registry, err := s.buildRegistry(ctx, day)
	if err != nil {
		return nil, err
	}

	location := req.Location
	if location == "" {
		location = s.cfg.DefaultLocation
	}
	session := schedule.NewSession(schedule.SessionConfig{
		Date:       req.Date,
		SubmitTime: req.SubmitTime,
		Settings:   schedule.DurationSettings{Single: s.cfg.DefaultSingle, Multiple: s.cfg.DefaultMultiple},
		Location:   location,
	}, registry, &sessionPersister{events: s.events, tx: s.tx}, s.logger)

	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	s.metrics.RecordSessionStarted()
	s.logger.Info("scheduling session started",
		zap.String("session_id", session.ID()),
		zap.String("date", req.Date),
		zap.Int("teachers", len(registry.TeacherIDs())))
	return s.sessionResponse(session), nil
}

func (s *SchedulingService) buildRegistry(ctx context.Context, day time.Time) (*schedule.Registry, error) {
	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	events, err := s.events.ListByDate(ctx, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day schedule")
	}

	refs := make([]schedule.TeacherRef, 0, len(teachers))
	for _, t := range teachers {
		refs = append(refs, schedule.TeacherRef{ID: t.ID, Name: t.FullName})
	}
	scheduled := make([]schedule.Event, 0, len(events))
	for _, ev := range events {
		scheduled = append(scheduled, schedule.Event{
			ID:       ev.ID,
			Teacher:  ev.TeacherID,
			Date:     ev.Date.Format("2006-01-02"),
			Start:    ev.StartTime,
			Duration: ev.Duration,
			Location: ev.Location,
			Status:   string(ev.Status),
			Students: append([]string(nil), ev.Students...),
		})
	}
	return schedule.NewRegistry(refs, scheduled), nil
}

// session resolves a live session, expiring stale ones.
func (s *SchedulingService) session(id string) (*schedule.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "scheduling session not found")
	}
	if time.Since(session.CreatedAt()) > s.cfg.SessionTTL {
		delete(s.sessions, id)
		return nil, appErrors.ErrSessionExpired
	}
	return session, nil
}

// GetSession returns a session's current observable state.
func (s *SchedulingService) GetSession(sessionID string) (*dto.SessionResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionResponse(session), nil
}

// CloseSession discards a session without confirming anything.
func (s *SchedulingService) CloseSession(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// AddRequest queues a lesson request and returns the recalculated session.
func (s *SchedulingService) AddRequest(sessionID string, req dto.AddRequestRequest) (*dto.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	name := session.Registry().TeacherName(req.TeacherID)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not on today's board")
	}
	if _, err := session.AddRequest(req.TeacherID, name, req.Students); err != nil {
		return nil, err
	}
	s.recordConflicts(session)
	return s.sessionResponse(session), nil
}

// RemoveRequest drops a pending request from the batch.
func (s *SchedulingService) RemoveRequest(sessionID, requestID string) (*dto.SessionResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.RemoveRequest(requestID); err != nil {
		return nil, err
	}
	return s.sessionResponse(session), nil
}

// UpdateSettings applies anchor time, duration or site changes. Zero-valued
// fields are left as they are.
func (s *SchedulingService) UpdateSettings(sessionID string, req dto.UpdateSettingsRequest) (*dto.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if req.SubmitTime != "" {
		if err := session.SetSubmitTime(req.SubmitTime); err != nil {
			return nil, err
		}
	}
	if req.SingleDuration > 0 || req.MultiDuration > 0 {
		_, current, _ := session.Settings()
		single, multiple := current.Single, current.Multiple
		if req.SingleDuration > 0 {
			single = req.SingleDuration
		}
		if req.MultiDuration > 0 {
			multiple = req.MultiDuration
		}
		if err := session.SetDurations(single, multiple); err != nil {
			return nil, err
		}
	}
	if req.Location != "" {
		if !models.KnownLocation(req.Location) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown teaching location")
		}
		if err := session.SetLocation(req.Location); err != nil {
			return nil, err
		}
	}
	s.recordConflicts(session)
	return s.sessionResponse(session), nil
}

// Calculate re-runs placement for the session's batch on demand, the retry
// path after a failed confirm.
func (s *SchedulingService) Calculate(sessionID string) (*dto.SessionResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Calculate(); err != nil {
		return nil, err
	}
	s.recordConflicts(session)
	return s.sessionResponse(session), nil
}

// Confirm persists the session's computed batch.
func (s *SchedulingService) Confirm(ctx context.Context, sessionID string) (*dto.ConfirmResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	lessons := len(session.Requests())
	result, err := session.Confirm(ctx)
	if err != nil {
		return nil, err
	}
	if result.Success {
		s.metrics.RecordLessonsConfirmed(lessons)
		s.invalidateBoard(ctx, session.Date())
	}
	return &dto.ConfirmResponse{Success: result.Success, Error: result.Error, State: string(session.State())}, nil
}

// OpenPushback starts the pushback workflow on the session.
func (s *SchedulingService) OpenPushback(sessionID string) (*dto.SessionResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.OpenPushback(); err != nil {
		return nil, err
	}
	return s.sessionResponse(session), nil
}

// PreviewPushback recalculates one teacher's day, or every teacher's when no
// teacher is named, against the requested anchor.
func (s *SchedulingService) PreviewPushback(sessionID string, req dto.PushbackPreviewRequest) (*dto.PushbackPreviewResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	preview := make(map[string][]dto.RecalculatedResponse)
	if req.TeacherID == "" {
		byTeacher, err := session.PreviewPushbackAll(req.Anchor, req.KeepDurations)
		if err != nil {
			return nil, err
		}
		for teacherID, recalc := range byTeacher {
			preview[teacherID] = toRecalculatedResponses(recalc)
		}
	} else {
		recalc, err := session.PreviewPushback(schedule.PushbackInput{
			TeacherID:     req.TeacherID,
			Anchor:        req.Anchor,
			Gaps:          req.Gaps,
			Swaps:         req.Swaps,
			KeepDurations: req.KeepDurations,
		})
		if err != nil {
			return nil, err
		}
		preview[req.TeacherID] = toRecalculatedResponses(recalc)
	}

	return &dto.PushbackPreviewResponse{
		PushbackState: string(session.PushbackStatus()),
		Preview:       preview,
	}, nil
}

// ConfirmPushback persists the previewed reflow.
func (s *SchedulingService) ConfirmPushback(ctx context.Context, sessionID string) (*dto.ConfirmResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	result, err := session.ConfirmPushback(ctx)
	if err != nil {
		return nil, err
	}
	if result.Success {
		s.metrics.RecordPushbackConfirmed()
		s.invalidateBoard(ctx, session.Date())
	}
	return &dto.ConfirmResponse{Success: result.Success, Error: result.Error, State: string(session.PushbackStatus())}, nil
}

// ClosePushback abandons the pushback workflow.
func (s *SchedulingService) ClosePushback(sessionID string) (*dto.SessionResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	session.ClosePushback()
	return s.sessionResponse(session), nil
}

// DayBoard renders the day's schedule per teacher, served from cache when warm.
func (s *SchedulingService) DayBoard(ctx context.Context, date string) ([]dto.TeacherScheduleResponse, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	cacheKey := boardCacheKey(date)
	var cached []dto.TeacherScheduleResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	registry, err := s.buildRegistry(ctx, day)
	if err != nil {
		return nil, err
	}
	board := boardFromRegistry(registry)
	if err := s.cache.Set(ctx, cacheKey, board, s.cfg.SnapshotTTL); err != nil {
		s.logger.Warn("day board cache write failed", zap.String("date", date), zap.Error(err))
	}
	return board, nil
}

func (s *SchedulingService) invalidateBoard(ctx context.Context, date string) {
	if err := s.cache.Invalidate(ctx, boardCacheKey(date)); err != nil {
		s.logger.Warn("day board invalidation failed", zap.String("date", date), zap.Error(err))
	}
}

func boardCacheKey(date string) string {
	return fmt.Sprintf("dayboard:%s", date)
}

func (s *SchedulingService) recordConflicts(session *schedule.Session) {
	total := 0
	for _, p := range session.Placements() {
		total += len(p.Conflicts)
	}
	s.metrics.RecordPlacementConflicts(total)
}

func (s *SchedulingService) sessionResponse(session *schedule.Session) *dto.SessionResponse {
	submitTime, settings, location := session.Settings()

	requests := session.Requests()
	reqOut := make([]dto.PendingRequestResponse, 0, len(requests))
	for _, req := range requests {
		reqOut = append(reqOut, dto.PendingRequestResponse{
			ID:          req.ID,
			TeacherID:   req.TeacherID,
			TeacherName: req.TeacherName,
			Students:    req.Students,
		})
	}

	placements := session.Placements()
	plOut := make(map[string]dto.PlacementResponse, len(placements))
	for id, p := range placements {
		plOut[id] = dto.PlacementResponse{
			CalculatedTime: p.CalculatedTime,
			EndTime:        p.EndTime,
			Duration:       p.Duration,
			Conflicts:      p.Conflicts,
			BatchIndex:     p.BatchIndex,
			BatchSize:      p.BatchSize,
		}
	}

	return &dto.SessionResponse{
		SessionID:      session.ID(),
		Date:           session.Date(),
		State:          string(session.State()),
		PushbackState:  string(session.PushbackStatus()),
		SubmitTime:     submitTime,
		SingleDuration: settings.Single,
		MultiDuration:  settings.Multiple,
		Location:       location,
		Requests:       reqOut,
		Placements:     plOut,
		Teachers:       boardFromRegistry(session.Registry()),
	}
}

func boardFromRegistry(registry *schedule.Registry) []dto.TeacherScheduleResponse {
	out := make([]dto.TeacherScheduleResponse, 0, len(registry.TeacherIDs()))
	for _, teacherID := range registry.TeacherIDs() {
		seq, ok := registry.Sequence(teacherID)
		if !ok {
			continue
		}
		events := seq.Events()
		evOut := make([]dto.ScheduleEventResponse, 0, len(events))
		for _, ev := range events {
			evOut = append(evOut, dto.ScheduleEventResponse{
				ID:       ev.ID,
				Start:    ev.Start,
				End:      schedule.CalculateEndTime(ev.Start, ev.Duration),
				Duration: ev.Duration,
				Location: ev.Location,
				Status:   ev.Status,
				Students: ev.Students,
				GapAfter: ev.GapAfter,
			})
		}
		out = append(out, dto.TeacherScheduleResponse{
			TeacherID:   teacherID,
			TeacherName: registry.TeacherName(teacherID),
			Events:      evOut,
			Gaps:        seq.Gaps(),
		})
	}
	return out
}

func toRecalculatedResponses(recalc []schedule.Recalculated) []dto.RecalculatedResponse {
	out := make([]dto.RecalculatedResponse, 0, len(recalc))
	for _, rc := range recalc {
		out = append(out, dto.RecalculatedResponse{
			EventID:     rc.ID,
			TeacherID:   rc.Teacher,
			Students:    rc.Students,
			OldTime:     rc.Event.Start,
			OldDuration: rc.Event.Duration,
			NewTime:     rc.NewTime,
			NewEndTime:  rc.NewEndTime,
			NewDuration: rc.NewDuration,
			NewLocation: rc.NewLocation,
			NewDate:     rc.NewDate,
			Changed: rc.NewTime != rc.Event.Start ||
				rc.NewDuration != rc.Event.Duration ||
				rc.NewLocation != rc.Event.Location ||
				rc.NewDate != rc.Event.Date,
		})
	}
	return out
}

// sessionPersister adapts the event repository and transaction provider to the
// scheduling core's persistence boundary. All writes in a confirm land in one
// transaction.
type sessionPersister struct {
	events schedulingEventStore
	tx     txProvider
}

func (p *sessionPersister) CreateEvents(ctx context.Context, placements []schedule.ConfirmedPlacement) ([]string, error) {
	events := make([]*models.KiteEvent, 0, len(placements))
	for _, cp := range placements {
		day, err := time.Parse("2006-01-02", cp.Date)
		if err != nil {
			return nil, fmt.Errorf("parse placement date %q: %w", cp.Date, err)
		}
		events = append(events, &models.KiteEvent{
			TeacherID: cp.TeacherID,
			Date:      day,
			StartTime: cp.Time,
			Duration:  cp.Duration,
			Location:  cp.Location,
			Status:    models.EventStatusPlanned,
			Students:  pq.StringArray(cp.Students),
		})
	}

	tx, err := p.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin confirm tx: %w", err)
	}
	if err := p.events.BulkCreateTx(ctx, tx, events); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	// BulkCreateTx fills in generated IDs on the event structs.
	ids := make([]string, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}
	return ids, nil
}

func (p *sessionPersister) UpdateEvents(ctx context.Context, placements []schedule.ConfirmedPlacement) error {
	tx, err := p.tx.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin pushback tx: %w", err)
	}
	for _, cp := range placements {
		day, err := time.Parse("2006-01-02", cp.Date)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("parse placement date %q: %w", cp.Date, err)
		}
		event := &models.KiteEvent{
			ID:        cp.EventID,
			Date:      day,
			StartTime: cp.Time,
			Duration:  cp.Duration,
			Location:  cp.Location,
		}
		if err := p.events.UpdateScheduleTx(ctx, tx, event); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
