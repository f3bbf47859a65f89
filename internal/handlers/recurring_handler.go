package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "finman/internal/errors"
	"finman/internal/models"
	"finman/internal/pagination"
	"finman/internal/services"
)

const defaultUpcomingDays = 7

// RecurringHandler handles recurring transaction requests.
type RecurringHandler struct {
	recurringService services.RecurringServicer
	auditService     services.AuditServicer
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService services.RecurringServicer, auditService services.AuditServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService, auditService: auditService}
}

// CreateRecurringRequest represents the request payload for creating a recurring rule.
type CreateRecurringRequest struct {
	TemplateName          string                 `json:"template_name" binding:"required,min=1,max=100"`
	Type                  models.TransactionType `json:"type" binding:"required,transaction_type"`
	Category              string                 `json:"category" binding:"required,min=1,max=100"`
	Amount                int64                  `json:"amount" binding:"required,gt=0"`
	Note                  string                 `json:"note" binding:"max=500"`
	Frequency             models.Frequency       `json:"frequency" binding:"required,frequency"`
	StartDate             *string                `json:"start_date"`
	EndDate               *string                `json:"end_date"`
	Occurrences           *int                   `json:"occurrences" binding:"omitempty,gt=0"`
	NotifyBeforeExecution bool                   `json:"notify_before_execution"`
	NotifyDays            *int                   `json:"notify_days" binding:"omitempty,gte=0,lte=30"`
}

// UpdateRecurringRequest represents the request payload for updating a recurring rule.
type UpdateRecurringRequest struct {
	TemplateName          *string           `json:"template_name" binding:"omitempty,min=1,max=100"`
	Category              *string           `json:"category" binding:"omitempty,min=1,max=100"`
	Amount                *int64            `json:"amount" binding:"omitempty,gt=0"`
	Note                  *string           `json:"note" binding:"omitempty,max=500"`
	Frequency             *models.Frequency `json:"frequency" binding:"omitempty,frequency"`
	EndDate               *string           `json:"end_date"`
	Occurrences           *int              `json:"occurrences" binding:"omitempty,gt=0"`
	IsActive              *bool             `json:"is_active"`
	NotifyBeforeExecution *bool             `json:"notify_before_execution"`
	NotifyDays            *int              `json:"notify_days" binding:"omitempty,gte=0,lte=30"`
}

// CreateRecurring handles the creation of a recurring rule.
// @Summary     Create a recurring transaction
// @Description Create a template that materializes a transaction on a schedule
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRecurringRequest true "Recurring transaction details"
// @Success     201 {object} models.RecurringTransaction "Recurring transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring [post]
func (h *RecurringHandler) CreateRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	start, err := parseOptionalTime(req.StartDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	end, err := parseOptionalTime(req.EndDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	input := services.RecurringInput{
		TemplateName:          req.TemplateName,
		Type:                  req.Type,
		Category:              req.Category,
		Amount:                req.Amount,
		Note:                  req.Note,
		Frequency:             req.Frequency,
		EndDate:               end,
		Occurrences:           req.Occurrences,
		NotifyBeforeExecution: req.NotifyBeforeExecution,
		NotifyDays:            req.NotifyDays,
	}
	if start != nil {
		input.StartDate = *start
	}

	rule, err := h.recurringService.CreateRecurring(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_RECURRING", "recurring_transaction", rule.ID, c.ClientIP(),
		map[string]interface{}{"template_name": req.TemplateName, "amount": req.Amount, "frequency": req.Frequency})

	c.JSON(http.StatusCreated, gin.H{"recurring": rule})
}

// GetRecurring handles listing recurring rules.
// @Summary     Get recurring transactions
// @Description Get a paginated list of the user's recurring transactions
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       is_active query bool false "Filter by active status"
// @Param       page      query int  false "Page number (default 1)"
// @Param       page_size query int  false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.RecurringTransaction] "Paginated recurring transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring [get]
func (h *RecurringHandler) GetRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	isActive, err := parseBoolQuery(c, "is_active")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.recurringService.GetUserRecurring(userID, page, isActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRecurringByID handles retrieving a single recurring rule.
// @Summary     Get recurring transaction by ID
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Recurring transaction ID"
// @Success     200 {object} models.RecurringTransaction "Recurring transaction"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [get]
func (h *RecurringHandler) GetRecurringByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rule, err := h.recurringService.GetRecurringByID(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring": rule})
}

// UpdateRecurring handles updating a recurring rule.
// @Summary     Update recurring transaction
// @Description Edit, pause or resume a recurring transaction
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                 true "Recurring transaction ID"
// @Param       request body UpdateRecurringRequest true "Fields to update"
// @Success     200 {object} models.RecurringTransaction "Updated recurring transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring transaction not found"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [put]
func (h *RecurringHandler) UpdateRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	end, err := parseOptionalTime(req.EndDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rule, err := h.recurringService.UpdateRecurring(userID, id, services.RecurringUpdate{
		TemplateName:          req.TemplateName,
		Category:              req.Category,
		Amount:                req.Amount,
		Note:                  req.Note,
		Frequency:             req.Frequency,
		EndDate:               end,
		Occurrences:           req.Occurrences,
		IsActive:              req.IsActive,
		NotifyBeforeExecution: req.NotifyBeforeExecution,
		NotifyDays:            req.NotifyDays,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_RECURRING", "recurring_transaction", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"recurring": rule})
}

// DeleteRecurring handles deleting a recurring rule.
// @Summary     Delete recurring transaction
// @Description Soft-delete a recurring transaction. Transactions it created are kept.
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Recurring transaction ID"
// @Success     200 {object} map[string]string "Recurring transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [delete]
func (h *RecurringHandler) DeleteRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteRecurring(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_RECURRING", "recurring_transaction", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Recurring transaction deleted successfully"})
}

// GetUpcoming handles listing rules due within the next days.
// @Summary     Get upcoming recurring transactions
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       days query int false "Look-ahead in days (default 7)"
// @Success     200 {array}  models.RecurringTransaction "Upcoming recurring transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/upcoming [get]
func (h *RecurringHandler) GetUpcoming(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	days := defaultUpcomingDays
	if v := c.Query("days"); v != "" {
		days, err = strconv.Atoi(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "days must be an integer"))
			return
		}
	}

	rules, err := h.recurringService.GetUpcoming(userID, days)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring": rules, "days": days})
}

// ExecuteNow handles running a rule immediately.
// @Summary     Execute recurring transaction now
// @Description Materialize the next occurrence immediately and advance the schedule
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Recurring transaction ID"
// @Success     201 {object} services.Execution "Execution result"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring transaction not found"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id}/execute [post]
func (h *RecurringHandler) ExecuteNow(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	exec, err := h.recurringService.ExecuteNow(c.Request.Context(), userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "EXECUTE_RECURRING", "recurring_transaction", id, c.ClientIP(),
		map[string]interface{}{"transaction_id": exec.Transaction.ID, "occurrence": exec.Recurring.ExecutedCount})

	c.JSON(http.StatusCreated, exec)
}
