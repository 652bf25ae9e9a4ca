package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ModuleHandler struct {
	BaseHandler
	moduleService services.ModuleService
	exportService services.ExportService
}

func NewModuleHandler(
	moduleService services.ModuleService,
	exportService services.ExportService,
	logger utils.Logger,
) *ModuleHandler {
	return &ModuleHandler{
		BaseHandler:   NewBaseHandler(logger),
		moduleService: moduleService,
		exportService: exportService,
	}
}

// GenerateModule creates a lesson and its quiz for a topic
// @Summary Generate module
// @Description Difficulty follows the learner's assessed level. Falls back to built-in content when generation fails.
// @Tags modules
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body services.GenerateModuleRequest true "Topic"
// @Success 201 {object} services.ModuleResponse
// @Failure 400 {object} ErrorResponse
// @Router /modules/generate [post]
func (h *ModuleHandler) GenerateModule(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == 0 {
		return
	}

	var req services.GenerateModuleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Generating module", "topic", req.Topic)

	module, err := h.moduleService.Generate(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, module)
}

// SearchRoadmap creates a roadmap module for a topic
// @Summary Search roadmap
// @Tags modules
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body services.RoadmapRequest true "Topic"
// @Success 201 {object} services.ModuleResponse
// @Router /modules/search [post]
func (h *ModuleHandler) SearchRoadmap(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == 0 {
		return
	}

	var req services.RoadmapRequest
	if !h.bindJSON(c, &req) {
		return
	}

	module, err := h.moduleService.SearchRoadmap(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, module)
}

// GetModule
// @Summary Get module
// @Tags modules
// @Security BearerAuth
// @Produce json
// @Param id path uint true "Module ID"
// @Success 200 {object} services.ModuleResponse
// @Failure 404 {object} ErrorResponse
// @Router /modules/{id} [get]
func (h *ModuleHandler) GetModule(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == 0 {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	module, err := h.moduleService.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, module)
}

// GetTest returns the module quiz without answers
// @Summary Get module test
// @Tags modules
// @Security BearerAuth
// @Produce json
// @Param id path uint true "Module ID"
// @Success 200 {object} services.TestResponse
// @Failure 404 {object} ErrorResponse
// @Router /modules/{id}/test [get]
func (h *ModuleHandler) GetTest(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == 0 {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	test, err := h.moduleService.GetTest(c.Request.Context(), userID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// SubmitTest grades an attempt
// @Summary Submit module test
// @Tags modules
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path uint true "Module ID"
// @Param body body services.SubmitTestRequest true "Answers"
// @Success 200 {object} services.SubmitTestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /modules/{id}/test/submit [post]
func (h *ModuleHandler) SubmitTest(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == 0 {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SubmitTestRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting module test", "module_id", id, "answers", len(req.Answers))

	result, err := h.moduleService.SubmitTest(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RegenerateTest
// @Summary Regenerate module test
// @Description Replaces the questions; retry count and completion are kept
// @Tags modules
// @Security BearerAuth
// @Produce json
// @Param id path uint true "Module ID"
// @Success 200 {object} services.TestResponse
// @Router /modules/{id}/test/regenerate [post]
func (h *ModuleHandler) RegenerateTest(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == 0 {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	test, err := h.moduleService.RegenerateTest(c.Request.Context(), userID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// @Summary Module history
// @Tags modules
// @Security BearerAuth
// @Produce json
// @Param kind query string false "lesson or roadmap"
// @Param completed query bool false "Completion state"
// @Param limit query int false "Page size, at most 100"
// @Param offset query int false "Rows to skip"
// @Success 200 {array} services.ModuleSummary
// @Router /modules/history [get]
func (h *ModuleHandler) History(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == 0 {
		return
	}

	var query services.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	history, err := h.moduleService.History(c.Request.Context(), userID, &query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// ExportHistory downloads the learning history as a spreadsheet
// @Summary Export module history
// @Tags modules
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /modules/history/export [get]
func (h *ModuleHandler) ExportHistory(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == 0 {
		return
	}

	// Buffered so a failure can still become a JSON error
	var buf bytes.Buffer
	if err := h.exportService.ExportHistory(c.Request.Context(), userID, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("learning-history-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
