package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/nahid-hossain/flocknet/backend/internal/middleware"
	"github.com/nahid-hossain/flocknet/backend/internal/models"
	"github.com/nahid-hossain/flocknet/backend/internal/repositories"
	"github.com/nahid-hossain/flocknet/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostHandler handles HTTP requests related to the post store
type PostHandler struct {
	postRepository         repositories.PostRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
	assetStore             storage.AssetStore
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, notifRepo repositories.NotificationRepository, assetStore storage.AssetStore) *PostHandler {
	return &PostHandler{
		postRepository:         postRepo,
		userRepository:         userRepo,
		notificationRepository: notifRepo,
		assetStore:             assetStore,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts/all", h.GetAllPosts)
	g.GET("/posts/following", h.GetFollowingPosts)
	g.GET("/posts/likes/:id", h.GetLikedPosts)
	g.GET("/posts/user/:username", h.GetUserPosts)
	g.POST("/posts/create", h.CreatePost)
	g.POST("/posts/like/:id", h.LikeUnlikePost)
	g.POST("/posts/comment/:id", h.CommentOnPost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post; at least one of text/img is required
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)
	if currentUser == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.Text == "" && req.Img == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Post must have text or image")
	}

	ctx := c.Request().Context()

	img := ""
	if req.Img != "" {
		url, err := h.assetStore.Upload(ctx, req.Img)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload image")
		}
		img = url
	}

	post := &models.Post{
		UserID: currentUser.ID,
		Text:   req.Text,
		Img:    img,
	}

	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(http.StatusCreated, post)
}

// DeletePost deletes the caller's post, destroying its image asset first
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)
	if currentUser == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	if post.UserID != currentUser.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if post.Img != "" {
		if err := h.assetStore.Destroy(ctx, storage.AssetIDFromURL(post.Img)); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete image")
		}
	}

	if err := h.postRepository.DeletePost(ctx, post.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted successfully"})
}

// CommentOnPost appends a comment to a post and returns the updated post
func (h *PostHandler) CommentOnPost(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)
	if currentUser == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Text field is required")
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	comment := &models.Comment{
		UserID: currentUser.ID,
		Text:   req.Text,
	}
	if err := h.postRepository.AddComment(ctx, post.ID, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	post.Comments = append(post.Comments, *comment)
	return c.JSON(http.StatusOK, post)
}

// LikeUnlikePost toggles the caller's like on a post, keeping the post's
// like set and the caller's likedPosts set in sync. The transition into
// "liked" appends a like notification to the post owner.
func (h *PostHandler) LikeUnlikePost(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)
	if currentUser == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	if post.HasLike(currentUser.ID) {
		if err := h.postRepository.Unlike(ctx, post.ID, currentUser.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Post unliked successfully"})
	}

	if err := h.postRepository.Like(ctx, post.ID, currentUser.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	notif := &models.Notification{
		Type:   models.NotificationTypeLike,
		FromID: currentUser.ID.Hex(),
		ToID:   post.UserID.Hex(),
	}
	if err := h.notificationRepository.CreateNotification(notif); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Post liked successfully"})
}

// GetAllPosts returns every post newest-first with owners and comment
// authors populated
func (h *PostHandler) GetAllPosts(c echo.Context) error {
	posts, err := h.postRepository.GetAllPosts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, h.assemblePostViews(c.Request().Context(), posts))
}

// GetLikedPosts returns the posts liked by the user in the path
func (h *PostHandler) GetLikedPosts(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	posts, err := h.postRepository.GetPostsByIDs(ctx, user.LikedPosts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, h.assemblePostViews(ctx, posts))
}

// GetFollowingPosts returns the caller's feed: posts authored by anyone the
// caller follows, newest-first
func (h *PostHandler) GetFollowingPosts(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)
	if currentUser == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	posts, err := h.postRepository.GetPostsByAuthors(ctx, currentUser.Following)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, h.assemblePostViews(ctx, posts))
}

// GetUserPosts returns the posts authored by the named user, newest-first
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	posts, err := h.postRepository.GetPostsByAuthor(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, h.assemblePostViews(ctx, posts))
}

// assemblePostViews populates post owners and comment authors with their
// password-stripped user records, caching lookups per request.
func (h *PostHandler) assemblePostViews(ctx context.Context, posts []models.Post) []models.PostView {
	userCache := make(map[primitive.ObjectID]*models.User)

	lookup := func(id primitive.ObjectID) *models.User {
		if user, ok := userCache[id]; ok {
			return user
		}
		user, err := h.userRepository.GetUserByID(ctx, id.Hex())
		if err != nil {
			userCache[id] = nil
			return nil
		}
		user.Password = ""
		userCache[id] = user
		return user
	}

	views := make([]models.PostView, len(posts))
	for i, post := range posts {
		comments := make([]models.CommentView, len(post.Comments))
		for j, comment := range post.Comments {
			comments[j] = models.CommentView{
				ID:        comment.ID,
				User:      lookup(comment.UserID),
				Text:      comment.Text,
				CreatedAt: comment.CreatedAt,
			}
		}
		views[i] = models.PostView{
			ID:        post.ID,
			User:      lookup(post.UserID),
			Text:      post.Text,
			Img:       post.Img,
			Likes:     post.Likes,
			Comments:  comments,
			CreatedAt: post.CreatedAt,
		}
	}
	return views
}
