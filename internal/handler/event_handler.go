package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/windward-labs/kiteschool-api/internal/dto"
	"github.com/windward-labs/kiteschool-api/internal/models"
	"github.com/windward-labs/kiteschool-api/internal/service"
	appErrors "github.com/windward-labs/kiteschool-api/pkg/errors"
	"github.com/windward-labs/kiteschool-api/pkg/response"
)

type eventManager interface {
	List(ctx context.Context, filter models.KiteEventFilter) ([]models.KiteEvent, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.KiteEvent, error)
	Create(ctx context.Context, req dto.CreateEventRequest) (*models.KiteEvent, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateEventStatusRequest) (*models.KiteEvent, error)
	Delete(ctx context.Context, id string) error
}

// EventHandler exposes lesson CRUD endpoints outside the session workflow.
type EventHandler struct {
	service eventManager
}

// NewEventHandler constructs the handler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{service: svc}
}

// List returns events with pagination.
func (h *EventHandler) List(c *gin.Context) {
	filter := models.KiteEventFilter{
		TeacherID: c.Query("teacherId"),
		Status:    models.EventStatus(c.Query("status")),
		Location:  c.Query("location"),
		Page:      intQuery(c, "page"),
		PageSize:  intQuery(c, "pageSize"),
	}
	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
			return
		}
		filter.Date = &day
	}
	events, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// Get returns one event.
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Create schedules one lesson directly.
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// UpdateStatus moves an event through its lifecycle.
func (h *EventHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateEventStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	event, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete removes a lesson.
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
