package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
	"github.com/AyushPithale/social-platform-gateway/internal/transport/http/middleware"
	"github.com/AyushPithale/social-platform-gateway/internal/usecase"
)

// PostHandler exposes the post CRUD endpoints.
type PostHandler struct {
	posts  *usecase.PostService
	logger *zap.Logger
}

// NewPostHandler builds a new post handler instance.
func NewPostHandler(posts *usecase.PostService, log *zap.Logger) *PostHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostHandler{posts: posts, logger: log}
}

// RegisterRoutes attaches the post endpoints to the provided group. Reads
// are public; writes require the authenticated identity middleware supplied
// by the caller.
func (h *PostHandler) RegisterRoutes(group *gin.RouterGroup, requireIdentity gin.HandlerFunc) {
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.POST("", requireIdentity, h.Create)
	group.DELETE("/:id", requireIdentity, h.Delete)
}

// Create persists a new post for the authenticated user.
func (h *PostHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		RespondWithError(c, h.logger, domain.NewAuthenticationError("authentication required"))
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("content is required"))
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), userID, req.Content, req.MediaIDs)
	if err != nil {
		RespondWithError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, PostResponse{
		Success: true,
		Post:    *post,
	})
}

// List serves one page of posts ordered newest first.
func (h *PostHandler) List(c *gin.Context) {
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("limit"), 10)

	result, err := h.posts.ListPosts(c.Request.Context(), page, pageSize)
	if err != nil {
		RespondWithError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, PostPageResponse{
		Success:     true,
		Posts:       result.Posts,
		CurrentPage: result.CurrentPage,
		TotalPages:  result.TotalPages,
		TotalPosts:  result.TotalPosts,
	})
}

// Get serves a single post by identifier.
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.posts.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, PostResponse{
		Success: true,
		Post:    *post,
	})
}

// Delete removes a post owned by the authenticated user.
func (h *PostHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		RespondWithError(c, h.logger, domain.NewAuthenticationError("authentication required"))
		return
	}

	if err := h.posts.DeletePost(c.Request.Context(), userID, c.Param("id")); err != nil {
		RespondWithError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: "post deleted successfully",
	})
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
