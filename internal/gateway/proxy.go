package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AyushPithale/social-platform-gateway/internal/infra/config"
	"github.com/AyushPithale/social-platform-gateway/internal/infra/security"
	"github.com/AyushPithale/social-platform-gateway/internal/transport/http/middleware"
)

// Route maps one public path prefix to an upstream service. The public
// surface speaks /v1 while interior services speak /api, so the prefix is
// rewritten on the way through.
type Route struct {
	// Prefix is the public path prefix, e.g. "/v1/auth".
	Prefix string
	// Target is the upstream base URL.
	Target *url.URL
	// Rewrite replaces Prefix on the forwarded path, e.g. "/api/auth".
	Rewrite string
	// RequireAuth forces bearer verification at the edge for the listed
	// methods. Empty means no edge verification for any method.
	RequireAuth map[string]bool
}

// Proxy is the edge reverse proxy. It owns the public surface: it verifies
// bearer tokens where required, forwards the verified identity to interior
// services, and applies the global admission budget to every request.
type Proxy struct {
	routes   []Route
	verifier *security.TokenIssuer
	logger   *zap.Logger
}

// writeMethods lists the HTTP methods that mutate state and therefore need a
// verified identity at the edge.
var writeMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// BuildRoutes constructs the routing table from configuration.
func BuildRoutes(cfg config.GatewaySettings) ([]Route, error) {
	authTarget, err := url.Parse(cfg.AuthServiceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid auth service url: %w", err)
	}
	postTarget, err := url.Parse(cfg.PostServiceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid post service url: %w", err)
	}

	return []Route{
		{
			Prefix:  "/v1/auth",
			Target:  authTarget,
			Rewrite: "/api/auth",
		},
		{
			Prefix:      "/v1/posts",
			Target:      postTarget,
			Rewrite:     "/api/posts",
			RequireAuth: writeMethods,
		},
	}, nil
}

// NewProxy builds the edge proxy over the supplied routing table.
func NewProxy(routes []Route, verifier *security.TokenIssuer, log *zap.Logger) *Proxy {
	if log == nil {
		log = zap.NewNop()
	}
	return &Proxy{routes: routes, verifier: verifier, logger: log}
}

// Register configures the Gin engine with the edge middleware chain and the
// proxy routes.
func (p *Proxy) Register(r *gin.Engine, admission *middleware.AdmissionController, globalRule middleware.AdmissionRule) {
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(p.logger))
	r.Use(p.identity())
	if admission != nil {
		r.Use(admission.Admit(globalRule))
	}

	for _, route := range p.routes {
		handler := p.forwarder(route)
		group := r.Group(route.Prefix)
		group.Any("", handler)
		group.Any("/*path", handler)
	}
}

// identity strips any client-supplied identity header, then verifies the
// bearer token when present and forwards the verified subject. Interior
// services trust the header precisely because this hop always overwrites it.
func (p *Proxy) identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Header.Del(middleware.TrustedIdentityHeader)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.Next()
			return
		}

		claims, err := p.verifier.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			// An unverifiable token forwards as anonymous; routes that
			// require identity reject it downstream in the forwarder.
			c.Next()
			return
		}

		c.Set(middleware.UserIDKey, claims.UserID)
		c.Request.Header.Set(middleware.TrustedIdentityHeader, claims.UserID)

		if reqCtx := middleware.GetRequestContext(c); reqCtx != nil {
			reqCtx.UserID = claims.UserID
		}

		c.Next()
	}
}

func (p *Proxy) forwarder(route Route) gin.HandlerFunc {
	proxy := httputil.NewSingleHostReverseProxy(route.Target)

	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		req.URL.Path = route.Rewrite + strings.TrimPrefix(req.URL.Path, route.Prefix)
		req.Host = route.Target.Host
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		p.logger.Error("proxy upstream error",
			zap.String("prefix", route.Prefix),
			zap.String("target", route.Target.String()),
			zap.Error(err),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"success":false,"message":"bad gateway"}`))
	}

	return func(c *gin.Context) {
		if route.RequireAuth[c.Request.Method] && middleware.GetUserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authentication required",
			})
			return
		}

		proxy.ServeHTTP(c.Writer, c.Request)
	}
}
