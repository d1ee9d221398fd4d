package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AyushPithale/social-platform-gateway/internal/core/port"
	appLogger "github.com/AyushPithale/social-platform-gateway/internal/infra/logger"
)

// IdentifierFunc extracts the identifier used to scope admission counters
// (e.g., client IP or authenticated user ID).
type IdentifierFunc func(*gin.Context) (string, bool)

// AdmissionRule configures a fixed-window quota for a particular identifier.
// FailClosed controls the posture when the shared counter store is
// unreachable: closed rules reject with 503, open rules wave the request
// through unthrottled.
type AdmissionRule struct {
	Name       string
	Limit      int64
	Window     time.Duration
	Identifier IdentifierFunc
	FailClosed bool
}

// AdmissionController enforces fixed-window quotas against a counter store
// shared by every process instance.
type AdmissionController struct {
	store  port.AdmissionStore
	logger *zap.Logger
}

type admissionRejection struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// NewAdmissionController builds a reusable admission middleware helper.
func NewAdmissionController(store port.AdmissionStore, log *zap.Logger) *AdmissionController {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdmissionController{store: store, logger: log}
}

// ClientIPIdentifier builds an IdentifierFunc using the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		if ip == "" {
			return "", false
		}
		return ip, true
	}
}

// IPAndRouteIdentifier scopes the counter to the (client IP, route) pair so
// a quota on one sensitive route never consumes another route's budget.
func IPAndRouteIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		if ip == "" {
			return "", false
		}
		return fmt.Sprintf("%s:%s", ip, c.FullPath()), true
	}
}

// UserOrIPIdentifier prefers the authenticated user ID and falls back to the
// client IP for anonymous traffic.
func UserOrIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		if userID := GetUserID(c); userID != "" {
			return userID, true
		}
		ip := c.ClientIP()
		if ip == "" {
			return "", false
		}
		return ip, true
	}
}

// Admit returns a Gin middleware enforcing the provided rules. Every rule is
// evaluated so each window advances even when an earlier rule already
// rejected the request.
func (ac *AdmissionController) Admit(rules ...AdmissionRule) gin.HandlerFunc {
	filtered := make([]AdmissionRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Identifier == nil || rule.Limit <= 0 || rule.Window <= 0 {
			continue
		}
		if rule.Name == "" {
			rule.Name = "default"
		}
		filtered = append(filtered, rule)
	}

	return func(c *gin.Context) {
		if len(filtered) == 0 || ac.store == nil {
			c.Next()
			return
		}

		var (
			rejected    *AdmissionRule
			retryAfter  time.Duration
			unavailable bool
		)

		for i := range filtered {
			rule := filtered[i]

			identifier, ok := rule.Identifier(c)
			if !ok || identifier == "" {
				continue
			}

			key := fmt.Sprintf("%s:%s", rule.Name, identifier)

			count, reset, err := ac.store.IncrementWindow(c.Request.Context(), key, rule.Window)
			if err != nil {
				ac.logger.Warn("admission check failed",
					zap.String("rule", rule.Name),
					zap.String("identifier", appLogger.MaskIP(identifier)),
					zap.Error(err),
				)
				if rule.FailClosed {
					unavailable = true
				}
				continue
			}

			remaining := rule.Limit - count
			if remaining < 0 {
				remaining = 0
			}

			c.Header("X-RateLimit-Limit", strconv.FormatInt(rule.Limit, 10))
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > rule.Limit {
				ac.logger.Warn("request rejected by admission control",
					zap.String("rule", rule.Name),
					zap.String("identifier", appLogger.MaskIP(identifier)),
					zap.Int64("count", count),
					zap.Int64("limit", rule.Limit),
					zap.String("path", c.Request.URL.Path),
				)
				if rejected == nil || reset > retryAfter {
					snapshot := rule
					rejected = &snapshot
					retryAfter = reset
				}
			}
		}

		if rejected != nil {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, admissionRejection{
				Success:    false,
				Message:    "too many requests",
				RetryAfter: seconds,
			})
			return
		}

		if unavailable {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, admissionRejection{
				Success: false,
				Message: "service temporarily unavailable",
			})
			return
		}

		c.Next()
	}
}
