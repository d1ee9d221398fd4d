package handlers

import (
	"time"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
)

// ErrorResponse is the uniform failure payload. Every non-2xx response
// carries this shape regardless of which layer produced the error.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewErrorResponse creates a failure payload.
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Success: false, Message: message}
}

// MessageResponse represents a simple success payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UserSummary describes a minimal view of a user returned by the API.
type UserSummary struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserSummary(user *domain.User) UserSummary {
	return UserSummary{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// RegisterRequest defines the payload for the register endpoint.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is returned after successful account creation.
type RegisterResponse struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	User         UserSummary `json:"user"`
	AccessToken  string      `json:"accessToken,omitempty"`
	RefreshToken string      `json:"refreshToken,omitempty"`
}

// LoginRequest defines the payload for the login endpoint. The identifier
// accepts a username or an email address.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// LoginResponse is returned after successful credential verification.
type LoginResponse struct {
	Success      bool   `json:"success"`
	UserID       string `json:"userId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// RefreshRequest defines the payload for the refresh endpoint.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// CreatePostRequest defines the payload for post creation.
type CreatePostRequest struct {
	Content  string   `json:"content" binding:"required"`
	MediaIDs []string `json:"mediaIds"`
}

// PostResponse wraps a single post.
type PostResponse struct {
	Success bool        `json:"success"`
	Post    domain.Post `json:"post"`
}

// PostPageResponse wraps one page of posts with pagination metadata.
type PostPageResponse struct {
	Success     bool          `json:"success"`
	Posts       []domain.Post `json:"posts"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
	TotalPosts  int64         `json:"totalPosts"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
