package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AssessmentHandler struct {
	BaseHandler
	assessmentService services.AssessmentService
}

func NewAssessmentHandler(assessmentService services.AssessmentService, logger utils.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assessmentService: assessmentService,
	}
}

// ListQuestions returns the personality questionnaire
// @Summary List personality questions
// @Description Option scores are never included
// @Tags assessment
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.PersonalityQuestion
// @Router /assessment/questions [get]
func (h *AssessmentHandler) ListQuestions(c *gin.Context) {
	questions, err := h.assessmentService.ListQuestions(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// SubmitAssessment scores the questionnaire
// @Summary Submit personality assessment
// @Tags assessment
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body services.SubmitAssessmentRequest true "Chosen options"
// @Success 200 {object} services.SubmitAssessmentResponse
// @Failure 400 {object} ErrorResponse
// @Router /assessment/submit [post]
func (h *AssessmentHandler) SubmitAssessment(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == 0 {
		return
	}

	var req services.SubmitAssessmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting personality assessment", "answers", len(req.Answers))

	resp, err := h.assessmentService.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetProgress
// @Summary Learning progress summary
// @Tags assessment
// @Security BearerAuth
// @Produce json
// @Success 200 {object} services.ProgressSummary
// @Router /assessment/progress [get]
func (h *AssessmentHandler) GetProgress(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == 0 {
		return
	}

	summary, err := h.assessmentService.Progress(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
