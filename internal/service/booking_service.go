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
	appErrors "github.com/windward-labs/kiteschool-api/pkg/errors"
)

type bookingRepository interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	Create(ctx context.Context, booking *models.Booking) error
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
	ListPackages(ctx context.Context) ([]models.LessonPackage, error)
	FindPackageByID(ctx context.Context, id string) (*models.LessonPackage, error)
	CreatePackage(ctx context.Context, pkg *models.LessonPackage) error
}

type bookingStudentReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Student, error)
}

// BookingService manages bookings and lesson packages.
type BookingService struct {
	repo      bookingRepository
	students  bookingStudentReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookingService constructs a BookingService.
func NewBookingService(repo bookingRepository, students bookingStudentReader, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{repo: repo, students: students, validator: validate, logger: logger}
}

// List returns bookings plus pagination data.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	return bookings, models.NewPagination(page, filter.PageSize, total), nil
}

// Get returns a booking by id.
func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	return booking, nil
}

// Create registers a booking after checking the package, its capacity and the
// named students exist.
func (s *BookingService) Create(ctx context.Context, req dto.CreateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	start, err := time.Parse("2006-01-02", req.DateStart)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dateStart must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.DateEnd)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dateEnd must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dateEnd precedes dateStart")
	}

	pkg, err := s.repo.FindPackageByID(ctx, req.PackageID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson package not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load package")
	}
	if len(req.StudentIDs) > pkg.Capacity {
		return nil, appErrors.Clone(appErrors.ErrValidation, "party exceeds package capacity")
	}

	students, err := s.students.FindByIDs(ctx, req.StudentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	if len(students) != len(req.StudentIDs) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "one or more students not found")
	}

	booking := &models.Booking{
		PackageID:  req.PackageID,
		StudentIDs: pq.StringArray(req.StudentIDs),
		DateStart:  start,
		DateEnd:    end,
		Status:     models.BookingStatusActive,
		Note:       normalizeOptional(req.Note),
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}
	return booking, nil
}

// UpdateStatus moves a booking through its lifecycle.
func (s *BookingService) UpdateStatus(ctx context.Context, id string, req dto.UpdateBookingStatusRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if err := s.repo.UpdateStatus(ctx, id, models.BookingStatus(req.Status)); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update booking status")
	}
	return s.Get(ctx, id)
}

// ListPackages returns the packages on offer.
func (s *BookingService) ListPackages(ctx context.Context) ([]models.LessonPackage, error) {
	packages, err := s.repo.ListPackages(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list packages")
	}
	return packages, nil
}

// CreatePackage defines a new sellable package.
func (s *BookingService) CreatePackage(ctx context.Context, req dto.CreatePackageRequest) (*models.LessonPackage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid package payload")
	}
	pkg := &models.LessonPackage{
		Description: req.Description,
		Hours:       req.Hours,
		Capacity:    req.Capacity,
		PriceCents:  req.PriceCents,
	}
	if err := s.repo.CreatePackage(ctx, pkg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create package")
	}
	return pkg, nil
}
