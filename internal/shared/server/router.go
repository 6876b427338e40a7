package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheuss-dsr/dedicandos/internal/exams"
	"github.com/matheuss-dsr/dedicandos/internal/shared/config"
	"github.com/matheuss-dsr/dedicandos/internal/shared/metrics"
	"github.com/matheuss-dsr/dedicandos/internal/shared/server/middleware"
	"github.com/matheuss-dsr/dedicandos/internal/shared/server/respond"
	"github.com/matheuss-dsr/dedicandos/internal/users"
)

// Rate-limit groups. Assembly and export are the expensive endpoints; the
// per-user cooldown already throttles repeat assemblies, so these rules only
// guard against bursts.
const (
	groupGenerate = "GENERATE"
	groupExport   = "EXPORT"
)

// RouterDeps carries the wired handlers into route registration.
type RouterDeps struct {
	Config      config.Config
	ExamHandler *exams.Handler
	UserHandler *users.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				groupGenerate: {Rate: 0.5, Burst: 3},
				groupExport:   {Rate: 0.5, Burst: 5},
			},
			GroupFor: rateLimitGroup,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.ExamHandler != nil {
		deps.ExamHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	path := c.FullPath()
	switch {
	case path == "/api/v1/exams/generate":
		return groupGenerate
	case path == "/api/v1/exams/export", path == "/api/v1/exams/:id/export":
		return groupExport
	default:
		return ""
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
