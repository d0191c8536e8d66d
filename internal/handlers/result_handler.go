package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-session-service/internal/services"
	"github.com/SAP-F-2025/exam-session-service/internal/utils"
)

const (
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultLatestLimit  = 5
	defaultTimezoneName = "UTC"
)

type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
}

func NewResultHandler(resultService services.ResultService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
	}
}

// GetOverall returns the score summary of an attempt
// @Summary Get attempt overall result
// @Tags results
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} models.TestResultOverall
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id}/overall [get]
func (h *ResultHandler) GetOverall(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}

	overall, err := h.resultService.Overall(c.Request.Context(), attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, overall)
}

// GetTestInfo returns the test an attempt was taken on
// @Summary Get attempt test info
// @Tags results
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} models.AttemptTestInfo
// @Router /attempts/{id}/info [get]
func (h *ResultHandler) GetTestInfo(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}

	info, err := h.resultService.TestInfo(c.Request.Context(), attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// GetAnalysis returns the per-skill analysis of an attempt
// @Summary Get attempt analysis
// @Tags results
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} models.AttemptAnalysis
// @Router /attempts/{id}/analysis [get]
func (h *ResultHandler) GetAnalysis(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}

	analysis, err := h.resultService.Analysis(c.Request.Context(), attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// GetAnswers returns the graded answers of an attempt
// @Summary Get attempt answers
// @Tags results
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} models.AnswerResult
// @Router /attempts/{id}/answers [get]
func (h *ResultHandler) GetAnswers(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}

	answers, err := h.resultService.Answers(c.Request.Context(), attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answers)
}

// LoadResults fetches every view of an attempt at once
// @Summary Load attempt results
// @Description Fetches overall, info, analysis and answers concurrently. Views that loaded are returned even when another fails.
// @Tags results
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} services.ResultView
// @Failure 502 {object} ErrorResponse
// @Router /attempts/{id} [get]
func (h *ResultHandler) LoadResults(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}

	h.LogRequest(c, "Loading attempt results", "attempt_id", attemptID)

	view, err := h.resultService.Load(c.Request.Context(), attemptID)
	if err != nil {
		if view != nil && (view.Overall != nil || view.TestInfo != nil || view.Analysis != nil || view.Answers != nil) {
			h.LogWarn(c, "Returning partial attempt results", "attempt_id", attemptID, "error", err.Error())
			c.JSON(http.StatusOK, view)
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ResetResults drops the stored view of an attempt
// @Summary Reset attempt results
// @Tags results
// @Param id path string true "Attempt ID"
// @Success 204
// @Router /attempts/{id} [delete]
func (h *ResultHandler) ResetResults(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}

	h.resultService.Reset(attemptID)
	c.Status(http.StatusNoContent)
}

// ExportAnswers downloads the attempt's answers as a spreadsheet
// @Summary Export attempt answers
// @Tags results
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Attempt ID"
// @Success 200 {file} file
// @Router /attempts/{id}/export [get]
func (h *ResultHandler) ExportAnswers(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}

	h.LogRequest(c, "Exporting attempt answers", "attempt_id", attemptID)

	data, err := h.resultService.ExportAnswers(c.Request.Context(), attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="attempt-%s-answers.xlsx"`, attemptID))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetLatestAttempts lists the caller's most recent attempts
// @Summary Latest attempts
// @Tags results
// @Produce json
// @Param limit query int false "Number of attempts" default(5)
// @Param timezone query string false "IANA timezone for dates" default(UTC)
// @Success 200 {array} models.TestAttemptWithName
// @Router /attempts/latest [get]
func (h *ResultHandler) GetLatestAttempts(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	n := defaultLatestLimit
	if limit != nil && *limit > 0 {
		n = *limit
	}
	timezone := c.DefaultQuery("timezone", defaultTimezoneName)

	attempts, err := h.resultService.Latest(c.Request.Context(), userID, n, timezone)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempts)
}
