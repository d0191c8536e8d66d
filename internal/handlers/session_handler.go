package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/services"
	"github.com/SAP-F-2025/exam-session-service/internal/session"
	"github.com/SAP-F-2025/exam-session-service/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// StartSession loads a test and opens a timed session for the caller
// @Summary Start exam session
// @Description Loads the test content for the selected parts and starts the countdown
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body services.StartSessionRequest true "Session data"
// @Success 201 {object} SuccessResponse{data=services.SessionState}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	userID := currentUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Starting exam session", "test_id", req.TestID, "part_ids", req.PartIDs)

	state, err := h.sessionService.Start(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Session started", state, "session_id", state.ID)
}

// GetSession returns the full state of a session
// @Summary Get exam session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionState
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	state, err := h.sessionService.Get(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// AbandonSession drops a session without submitting
// @Summary Abandon exam session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [delete]
func (h *SessionHandler) AbandonSession(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Abandoning exam session", "session_id", sessionID)

	if err := h.sessionService.Abandon(c.Request.Context(), sessionID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SubmitSession materializes the answers and submits them upstream
// @Summary Submit exam session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SuccessResponse{data=services.SubmitResult}
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /sessions/{id}/submit [post]
func (h *SessionHandler) SubmitSession(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting exam session", "session_id", sessionID)

	result, err := h.sessionService.Submit(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Session submitted", result,
		"session_id", sessionID,
		"answered", result.Answered,
		"total", result.Total)
}

// GetSubmissions lists the recorded submissions of a session
// @Summary List session submissions
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {array} models.Submission
// @Router /sessions/{id}/submissions [get]
func (h *SessionHandler) GetSubmissions(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	submissions, err := h.sessionService.Submissions(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// ===== RESPONSES =====

// SetResponse records the answer to one question
// @Summary Set response
// @Description Merges selected options and free text into the question's response. Replace overwrites the previous selection.
// @Tags responses
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param qid path string true "Question ID"
// @Param response body models.ResponseUpdate true "Response data"
// @Success 200 {object} models.Response
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/responses/{qid} [put]
func (h *SessionHandler) SetResponse(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}
	questionID := ParseStringIDParam(c, "qid")
	if questionID == "" {
		return
	}
	var update models.ResponseUpdate
	if !bindJSON(c, &update) {
		return
	}

	response, err := h.sessionService.SetResponse(c.Request.Context(), sessionID, userID, questionID, update)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ToggleOption selects or deselects one option
// @Summary Toggle option
// @Tags responses
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param qid path string true "Question ID"
// @Param oid path string true "Option ID"
// @Param toggle body services.ToggleOptionRequest true "Selection"
// @Success 200 {object} models.Response
// @Router /sessions/{id}/responses/{qid}/options/{oid} [post]
func (h *SessionHandler) ToggleOption(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}
	questionID := ParseStringIDParam(c, "qid")
	if questionID == "" {
		return
	}
	optionID := ParseStringIDParam(c, "oid")
	if optionID == "" {
		return
	}
	var req services.ToggleOptionRequest
	if !bindJSON(c, &req) {
		return
	}

	response, err := h.sessionService.ToggleOption(c.Request.Context(), sessionID, userID, questionID, optionID, req.Selected)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetResponse reports whether a question is answered, with its response
// @Summary Get response
// @Tags responses
// @Produce json
// @Param id path string true "Session ID"
// @Param qid path string true "Question ID"
// @Success 200 {object} services.ResponseView
// @Router /sessions/{id}/responses/{qid} [get]
func (h *SessionHandler) GetResponse(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}
	questionID := ParseStringIDParam(c, "qid")
	if questionID == "" {
		return
	}

	view, err := h.sessionService.GetResponse(c.Request.Context(), sessionID, userID, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ClearResponse removes the response to one question
// @Summary Clear response
// @Tags responses
// @Param id path string true "Session ID"
// @Param qid path string true "Question ID"
// @Success 204
// @Router /sessions/{id}/responses/{qid} [delete]
func (h *SessionHandler) ClearResponse(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}
	questionID := ParseStringIDParam(c, "qid")
	if questionID == "" {
		return
	}

	if err := h.sessionService.ClearResponse(c.Request.Context(), sessionID, userID, questionID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ClearAllResponses removes every response of the session
// @Summary Clear all responses
// @Tags responses
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id}/responses [delete]
func (h *SessionHandler) ClearAllResponses(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	if err := h.sessionService.ClearAllResponses(c.Request.Context(), sessionID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== REVIEW FLAGS =====

// AddToReview flags a question for review
// @Summary Flag question for review
// @Tags review
// @Produce json
// @Param id path string true "Session ID"
// @Param qid path string true "Question ID"
// @Success 200 {object} map[string][]string
// @Router /sessions/{id}/review/{qid} [put]
func (h *SessionHandler) AddToReview(c *gin.Context) {
	h.updateReview(c, h.sessionService.AddToReview)
}

// RemoveFromReview unflags a question
// @Summary Unflag question
// @Tags review
// @Produce json
// @Param id path string true "Session ID"
// @Param qid path string true "Question ID"
// @Success 200 {object} map[string][]string
// @Router /sessions/{id}/review/{qid} [delete]
func (h *SessionHandler) RemoveFromReview(c *gin.Context) {
	h.updateReview(c, h.sessionService.RemoveFromReview)
}

// ClearReview unflags every question
// @Summary Clear review flags
// @Tags review
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id}/review [delete]
func (h *SessionHandler) ClearReview(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	if err := h.sessionService.ClearReview(c.Request.Context(), sessionID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type reviewFunc func(ctx context.Context, sessionID, userID, questionID string) ([]string, error)

func (h *SessionHandler) updateReview(c *gin.Context, fn reviewFunc) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}
	questionID := ParseStringIDParam(c, "qid")
	if questionID == "" {
		return
	}

	review, err := fn(c.Request.Context(), sessionID, userID, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}

// ===== TIMER =====

// SetTimeLimit replaces the session's time limit
// @Summary Set time limit
// @Description Sets the limit in minutes and resets the remaining time. A limit of 0 disables the countdown.
// @Tags timer
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param limit body services.SetTimeLimitRequest true "Limit"
// @Success 200 {object} session.TimerSnapshot
// @Failure 400 {object} ErrorResponse
// @Router /sessions/{id}/timer [put]
func (h *SessionHandler) SetTimeLimit(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}
	var req services.SetTimeLimitRequest
	if !bindJSON(c, &req) {
		return
	}

	timer, err := h.sessionService.SetTimeLimit(c.Request.Context(), sessionID, userID, req.Minutes)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, timer)
}

// StartTimer resumes the countdown
// @Summary Start timer
// @Tags timer
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} session.TimerSnapshot
// @Router /sessions/{id}/timer/start [post]
func (h *SessionHandler) StartTimer(c *gin.Context) {
	h.timerAction(c, h.sessionService.StartTimer)
}

// StopTimer pauses the countdown
// @Summary Stop timer
// @Tags timer
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} session.TimerSnapshot
// @Router /sessions/{id}/timer/stop [post]
func (h *SessionHandler) StopTimer(c *gin.Context) {
	h.timerAction(c, h.sessionService.StopTimer)
}

// ResetTimer restores the full limit and stops the countdown
// @Summary Reset timer
// @Tags timer
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} session.TimerSnapshot
// @Router /sessions/{id}/timer/reset [post]
func (h *SessionHandler) ResetTimer(c *gin.Context) {
	h.timerAction(c, h.sessionService.ResetTimer)
}

type timerFunc func(ctx context.Context, sessionID, userID string) (*session.TimerSnapshot, error)

func (h *SessionHandler) timerAction(c *gin.Context, fn timerFunc) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	timer, err := fn(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, timer)
}

func (h *SessionHandler) sessionParams(c *gin.Context) (sessionID, userID string, ok bool) {
	sessionID = ParseStringIDParam(c, "id")
	if sessionID == "" {
		return "", "", false
	}
	userID = currentUserID(c)
	if userID == "" {
		return "", "", false
	}
	return sessionID, userID, true
}
