package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finman/internal/services"
)

// PipelineHandler serves endpoints called by the scheduler, not by users.
type PipelineHandler struct {
	recurringService services.RecurringServicer
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(recurringService services.RecurringServicer) *PipelineHandler {
	return &PipelineHandler{recurringService: recurringService}
}

// ExecutePending handles a scheduler pass over every due recurring transaction.
// @Summary     Execute due recurring transactions
// @Description Materialize every active recurring transaction that is due (pipeline endpoint)
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header   string              true "Pipeline API key"
// @Success     200       {object} services.BatchResult "Per-rule outcomes"
// @Failure     401       {object} ErrorResponse        "Invalid API key"
// @Failure     500       {object} ErrorResponse        "Server error"
// @Failure     503       {object} ErrorResponse        "Pipeline not configured"
// @Router      /pipeline/recurring/execute [post]
func (h *PipelineHandler) ExecutePending(c *gin.Context) {
	result, err := h.recurringService.ExecutePending(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
