// Package api provides the HTTP surface: gin handlers for the action
// queue lifecycle, planning, the alert pipeline, the audit trail, and
// operational endpoints.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/stockpilotai/stockpilot/internal/dbpool"
	"github.com/stockpilotai/stockpilot/internal/middleware"
	"github.com/stockpilotai/stockpilot/internal/rules"
	"github.com/stockpilotai/stockpilot/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log              *logrus.Logger
	Pool             *dbpool.Pool // nil on the file backend
	Hub              *ws.Hub
	Actions          ActionService
	Planner          PlanService
	Audit            AuditReader
	Filter           AlertFilter
	Rules            *rules.Rules
	CORSOrigins      []string
	Version          string
	RestaurantID     string
	AutopilotEnabled bool
	PlannerEnabled   bool
	ClassifierOutput string
}

// maxBodySize caps request bodies at 1 MB; plan requests are the largest
// payloads and stay well under that.
const maxBodySize = 1 << 20

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.Prometheus())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all route handlers.
func registerRoutes(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, log, deps.Version)
	actions := NewActionHandler(deps.Actions, deps.Hub, log)
	plan := NewPlanHandler(deps.Planner, deps.Actions, deps.Hub, log, deps.RestaurantID, deps.AutopilotEnabled)
	alerts := NewAlertsHandler(deps.Filter, deps.Rules, deps.Hub, log, deps.ClassifierOutput)
	audit := NewAuditHandler(deps.Audit, log)
	status := NewStatusHandler(deps.Actions, deps.Audit, deps.Hub, log,
		deps.RestaurantID, deps.AutopilotEnabled, deps.PlannerEnabled)

	r.GET("/api/v1/health", health.Liveness)
	r.GET("/api/v1/ready", health.Readiness)

	agent := r.Group("/agent")
	agent.POST("/plan", plan.Plan)
	agent.POST("/command", plan.Command)
	agent.POST("/approve", actions.Approve)
	agent.POST("/reject", actions.Reject)
	agent.POST("/execute", actions.Execute)
	agent.POST("/rollback", actions.Rollback)
	agent.POST("/auto", actions.AutoRun)
	agent.GET("/actions", actions.List)
	agent.GET("/actions/:id", actions.Get)
	agent.GET("/history", audit.History)
	agent.GET("/status", status.Status)

	r.POST("/api/alerts/run", alerts.Run)
	r.POST("/api/alerts/reset", alerts.Reset)
	r.GET("/api/alerts/history", alerts.History)

	r.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins))
}

// NewRouter creates and configures the Gin engine with all middleware and
// routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(r, deps)
	registerRoutes(ctx, r, deps)

	return r
}
