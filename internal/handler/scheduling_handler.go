package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/windward-labs/kiteschool-api/internal/dto"
	"github.com/windward-labs/kiteschool-api/internal/service"
	appErrors "github.com/windward-labs/kiteschool-api/pkg/errors"
	"github.com/windward-labs/kiteschool-api/pkg/response"
)

type schedulingOrchestrator interface {
	StartSession(ctx context.Context, req dto.StartSessionRequest) (*dto.SessionResponse, error)
	GetSession(sessionID string) (*dto.SessionResponse, error)
	CloseSession(sessionID string)
	AddRequest(sessionID string, req dto.AddRequestRequest) (*dto.SessionResponse, error)
	RemoveRequest(sessionID, requestID string) (*dto.SessionResponse, error)
	UpdateSettings(sessionID string, req dto.UpdateSettingsRequest) (*dto.SessionResponse, error)
	Calculate(sessionID string) (*dto.SessionResponse, error)
	Confirm(ctx context.Context, sessionID string) (*dto.ConfirmResponse, error)
	OpenPushback(sessionID string) (*dto.SessionResponse, error)
	PreviewPushback(sessionID string, req dto.PushbackPreviewRequest) (*dto.PushbackPreviewResponse, error)
	ConfirmPushback(ctx context.Context, sessionID string) (*dto.ConfirmResponse, error)
	ClosePushback(sessionID string) (*dto.SessionResponse, error)
	DayBoard(ctx context.Context, date string) ([]dto.TeacherScheduleResponse, error)
}

// SchedulingHandler exposes the day-scheduling workflow.
type SchedulingHandler struct {
	service schedulingOrchestrator
}

// NewSchedulingHandler constructs the handler.
func NewSchedulingHandler(svc *service.SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{service: svc}
}

// StartSession opens a scheduling session for a day.
func (h *SchedulingHandler) StartSession(c *gin.Context) {
	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	session, err := h.service.StartSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// GetSession returns a session's current state.
func (h *SchedulingHandler) GetSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// CloseSession discards a session.
func (h *SchedulingHandler) CloseSession(c *gin.Context) {
	h.service.CloseSession(c.Param("id"))
	response.NoContent(c)
}

// AddRequest queues a lesson request in the session batch.
func (h *SchedulingHandler) AddRequest(c *gin.Context) {
	var req dto.AddRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}
	session, err := h.service.AddRequest(c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// RemoveRequest drops a pending request from the batch.
func (h *SchedulingHandler) RemoveRequest(c *gin.Context) {
	session, err := h.service.RemoveRequest(c.Param("id"), c.Param("requestId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// UpdateSettings changes the batch anchor, durations or teaching site.
func (h *SchedulingHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}
	session, err := h.service.UpdateSettings(c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Calculate re-runs placement for the current batch.
func (h *SchedulingHandler) Calculate(c *gin.Context) {
	session, err := h.service.Calculate(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Confirm persists the computed batch.
func (h *SchedulingHandler) Confirm(c *gin.Context) {
	result, err := h.service.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// OpenPushback starts the pushback workflow.
func (h *SchedulingHandler) OpenPushback(c *gin.Context) {
	session, err := h.service.OpenPushback(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// PreviewPushback recalculates the day against a new anchor time.
func (h *SchedulingHandler) PreviewPushback(c *gin.Context) {
	var req dto.PushbackPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid pushback payload"))
		return
	}
	preview, err := h.service.PreviewPushback(c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// ConfirmPushback persists the previewed reflow.
func (h *SchedulingHandler) ConfirmPushback(c *gin.Context) {
	result, err := h.service.ConfirmPushback(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ClosePushback abandons the pushback workflow.
func (h *SchedulingHandler) ClosePushback(c *gin.Context) {
	session, err := h.service.ClosePushback(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// DayBoard renders a day's schedule per teacher.
func (h *SchedulingHandler) DayBoard(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date query parameter is required"))
		return
	}
	board, err := h.service.DayBoard(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board, nil)
}
