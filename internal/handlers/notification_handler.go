package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nahid-hossain/flocknet/backend/internal/middleware"
	"github.com/nahid-hossain/flocknet/backend/internal/models"
	"github.com/nahid-hossain/flocknet/backend/internal/repositories"
)

// NotificationHandler handles notification-log HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.DELETE("/notifications", h.DeleteNotifications)
}

// NotificationView includes the sender's identity fields
type NotificationView struct {
	models.Notification
	From models.UserCompact `json:"from"`
}

// GetNotifications returns the caller's notifications with the sender
// populated, then marks every one of them as read. The read side effect is
// part of the contract: retrieval is not read-only.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)
	if currentUser == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	notifications, err := h.notificationRepository.GetByRecipientID(currentUser.ID.Hex())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	enriched := make([]NotificationView, len(notifications))
	userCache := make(map[string]models.UserCompact)
	for i, n := range notifications {
		enriched[i] = NotificationView{Notification: n}
		if from, ok := userCache[n.FromID]; ok {
			enriched[i].From = from
			continue
		}
		user, err := h.userRepository.GetUserByID(c.Request().Context(), n.FromID)
		if err == nil {
			compact := user.ToCompact()
			userCache[n.FromID] = compact
			enriched[i].From = compact
		}
	}

	if err := h.notificationRepository.MarkAllAsRead(currentUser.ID.Hex()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusOK, enriched)
}

// DeleteNotifications removes every notification addressed to the caller
func (h *NotificationHandler) DeleteNotifications(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)
	if currentUser == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.notificationRepository.DeleteAllForRecipient(currentUser.ID.Hex()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Notifications deleted successfully"})
}
