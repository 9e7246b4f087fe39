package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration. Registrars fall into two sets:
// protected ones live behind the authentication middleware, public ones
// (webhooks, health) are reachable without a token.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	authMW     gin.HandlerFunc
	public     []RouteRegistrar
	protected  []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithAuthMiddleware sets the middleware applied to protected registrars
func WithAuthMiddleware(mw gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.authMW = mw
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar behind the authentication middleware
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.protected = append(r.protected, registrar)
	return r
}

// RegisterPublic adds a RouteRegistrar reachable without authentication
func (r *Router) RegisterPublic(registrar RouteRegistrar) *Router {
	r.public = append(r.public, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/" + r.apiVersion)

	for _, registrar := range r.public {
		registrar.RegisterRoutes(api)
	}

	secured := api.Group("")
	if r.authMW != nil {
		secured.Use(r.authMW)
	}
	for _, registrar := range r.protected {
		registrar.RegisterRoutes(secured)
	}
}
