package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/windward-labs/kiteschool-api/internal/dto"
	appErrors "github.com/windward-labs/kiteschool-api/pkg/errors"
)

type schedulingMock struct {
	startCaptured dto.StartSessionRequest
	addCaptured   dto.AddRequestRequest
	confirmErr    error
	sessionErr    error
}

func (m *schedulingMock) StartSession(ctx context.Context, req dto.StartSessionRequest) (*dto.SessionResponse, error) {
	m.startCaptured = req
	return &dto.SessionResponse{SessionID: "s1", Date: req.Date, State: "idle"}, nil
}

func (m *schedulingMock) GetSession(sessionID string) (*dto.SessionResponse, error) {
	if m.sessionErr != nil {
		return nil, m.sessionErr
	}
	return &dto.SessionResponse{SessionID: sessionID, State: "idle"}, nil
}

func (m *schedulingMock) CloseSession(sessionID string) {}

func (m *schedulingMock) AddRequest(sessionID string, req dto.AddRequestRequest) (*dto.SessionResponse, error) {
	m.addCaptured = req
	return &dto.SessionResponse{SessionID: sessionID, State: "ready_to_confirm"}, nil
}

func (m *schedulingMock) RemoveRequest(sessionID, requestID string) (*dto.SessionResponse, error) {
	return &dto.SessionResponse{SessionID: sessionID}, nil
}

func (m *schedulingMock) UpdateSettings(sessionID string, req dto.UpdateSettingsRequest) (*dto.SessionResponse, error) {
	return &dto.SessionResponse{SessionID: sessionID}, nil
}

func (m *schedulingMock) Calculate(sessionID string) (*dto.SessionResponse, error) {
	return &dto.SessionResponse{SessionID: sessionID, State: "ready_to_confirm"}, nil
}

func (m *schedulingMock) Confirm(ctx context.Context, sessionID string) (*dto.ConfirmResponse, error) {
	if m.confirmErr != nil {
		return nil, m.confirmErr
	}
	return &dto.ConfirmResponse{Success: true, State: "idle"}, nil
}

func (m *schedulingMock) OpenPushback(sessionID string) (*dto.SessionResponse, error) {
	return &dto.SessionResponse{SessionID: sessionID, PushbackState: "awaiting_anchor_time"}, nil
}

func (m *schedulingMock) PreviewPushback(sessionID string, req dto.PushbackPreviewRequest) (*dto.PushbackPreviewResponse, error) {
	return &dto.PushbackPreviewResponse{PushbackState: "previewing"}, nil
}

func (m *schedulingMock) ConfirmPushback(ctx context.Context, sessionID string) (*dto.ConfirmResponse, error) {
	return &dto.ConfirmResponse{Success: true, State: "closed"}, nil
}

func (m *schedulingMock) ClosePushback(sessionID string) (*dto.SessionResponse, error) {
	return &dto.SessionResponse{SessionID: sessionID, PushbackState: "closed"}, nil
}

func (m *schedulingMock) DayBoard(ctx context.Context, date string) ([]dto.TeacherScheduleResponse, error) {
	return []dto.TeacherScheduleResponse{{TeacherID: "t1"}}, nil
}

func TestSchedulingHandlerStartSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &schedulingMock{}
	handler := &SchedulingHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodPost, "/scheduling/sessions", bytes.NewReader([]byte(`{"date":"2026-08-29","submitTime":"11:00"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.StartSession(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "2026-08-29", mockSvc.startCaptured.Date)
	require.Equal(t, "11:00", mockSvc.startCaptured.SubmitTime)
}

func TestSchedulingHandlerStartSessionBadPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &SchedulingHandler{service: &schedulingMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/scheduling/sessions", bytes.NewReader([]byte(`{"date":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.StartSession(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSchedulingHandlerAddRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &schedulingMock{}
	handler := &SchedulingHandler{service: mockSvc}
	router := gin.New()
	router.POST("/scheduling/sessions/:id/requests", handler.AddRequest)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/scheduling/sessions/s1/requests", bytes.NewReader([]byte(`{"teacherId":"t1","students":["Ana"]}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "t1", mockSvc.addCaptured.TeacherID)
	require.Equal(t, []string{"Ana"}, mockSvc.addCaptured.Students)
}

func TestSchedulingHandlerGetSessionExpired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &SchedulingHandler{service: &schedulingMock{sessionErr: appErrors.ErrSessionExpired}}
	router := gin.New()
	router.GET("/scheduling/sessions/:id", handler.GetSession)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/scheduling/sessions/stale", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusGone, w.Code)
}

func TestSchedulingHandlerDayBoardRequiresDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &SchedulingHandler{service: &schedulingMock{}}
	router := gin.New()
	router.GET("/scheduling/board", handler.DayBoard)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/scheduling/board", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
