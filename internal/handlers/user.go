package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/nahid-hossain/flocknet/backend/internal/middleware"
	"github.com/nahid-hossain/flocknet/backend/internal/models"
	"github.com/nahid-hossain/flocknet/backend/internal/repositories"
	"github.com/nahid-hossain/flocknet/backend/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles HTTP requests related to the user directory
type UserHandler struct {
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
	assetStore             storage.AssetStore
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, notifRepo repositories.NotificationRepository, assetStore storage.AssetStore) *UserHandler {
	return &UserHandler{
		userRepository:         userRepo,
		notificationRepository: notifRepo,
		assetStore:             assetStore,
	}
}

// RegisterUserRoutes registers user directory routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/profile/:username", h.GetUserProfile)
	g.POST("/users/follow/:id", h.FollowUnfollowUser)
	g.GET("/users/suggested", h.GetSuggestedUsers)
	g.POST("/users/update", h.UpdateUser)
}

// GetUserProfile fetches a profile by username, password excluded
func (h *UserHandler) GetUserProfile(c echo.Context) error {
	username := c.Param("username")

	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	user.Password = ""
	return c.JSON(http.StatusOK, user)
}

// FollowUnfollowUser toggles the follow relationship between the caller and
// the target user. Following appends a follow notification; unfollowing
// creates none.
func (h *UserHandler) FollowUnfollowUser(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)
	if currentUser == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID := c.Param("id")
	if targetID == currentUser.ID.Hex() {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow/unfollow yourself")
	}

	ctx := c.Request().Context()
	target, err := h.userRepository.GetUserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	if currentUser.IsFollowing(target.ID) {
		if err := h.userRepository.Unfollow(ctx, currentUser.ID, target.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "User unfollowed successfully"})
	}

	if err := h.userRepository.Follow(ctx, currentUser.ID, target.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	notif := &models.Notification{
		Type:   models.NotificationTypeFollow,
		FromID: currentUser.ID.Hex(),
		ToID:   target.ID.Hex(),
	}
	if err := h.notificationRepository.CreateNotification(notif); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "User followed successfully"})
}

// GetSuggestedUsers samples 10 users at random excluding the caller, drops
// the ones already followed and returns at most 4. Sampling before
// filtering can yield fewer than 4 results even when more are eligible;
// that is the documented behavior.
func (h *UserHandler) GetSuggestedUsers(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)
	if currentUser == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	sampled, err := h.userRepository.SampleUsers(c.Request().Context(), currentUser.ID, 10)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	suggested := []models.User{}
	for _, user := range sampled {
		if currentUser.IsFollowing(user.ID) {
			continue
		}
		user.Password = ""
		suggested = append(suggested, user)
		if len(suggested) == 4 {
			break
		}
	}

	return c.JSON(http.StatusOK, suggested)
}

// UpdateUser applies a partial profile update. Empty fields are left
// unchanged; a password change needs both the current and the new password;
// image fields replace the stored asset through the asset host.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)
	if currentUser == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, currentUser.ID.Hex())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	if (req.NewPassword == "") != (req.CurrentPassword == "") {
		return echo.NewHTTPError(http.StatusBadRequest, "Please provide both current and new password")
	}
	if req.CurrentPassword != "" && req.NewPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Current password is incorrect")
		}
		if len(req.NewPassword) < 6 {
			return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 6 characters long")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
		}
		user.Password = string(hashed)
	}

	if req.ProfileImg != "" {
		url, err := h.replaceAsset(c, user.ProfileImg, req.ProfileImg)
		if err != nil {
			return err
		}
		user.ProfileImg = url
	}
	if req.CoverImg != "" {
		url, err := h.replaceAsset(c, user.CoverImg, req.CoverImg)
		if err != nil {
			return err
		}
		user.CoverImg = url
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.Link != "" {
		user.Link = req.Link
	}

	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	user.Password = ""
	return c.JSON(http.StatusOK, user)
}

// replaceAsset destroys the previously stored image, if any, then uploads
// the new one and returns its URL.
func (h *UserHandler) replaceAsset(c echo.Context, oldURL, data string) (string, error) {
	ctx := c.Request().Context()
	if oldURL != "" {
		if err := h.assetStore.Destroy(ctx, storage.AssetIDFromURL(oldURL)); err != nil {
			return "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete old image")
		}
	}
	url, err := h.assetStore.Upload(ctx, data)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload image")
	}
	return url, nil
}
