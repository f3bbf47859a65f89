package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finman/internal/services"
)

// NotificationHandler serves the notification feed.
type NotificationHandler struct {
	notificationService services.NotificationServicer
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService services.NotificationServicer) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GetNotifications handles the notification feed.
// @Summary     Get notifications
// @Description Budget, goal, recurring and large transaction notices, newest first
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.NotificationFeed "Notification feed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	feed, err := h.notificationService.GetNotifications(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}
