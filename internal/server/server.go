// Package server exposes the weekly planner over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/logger"
	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/scheduler"
	"github.com/julianstephens/studyweek/internal/utils"
	"github.com/julianstephens/studyweek/internal/validation"
)

type Planner interface {
	PlanWeek(ctx context.Context, userID string, weekStart *time.Time, now time.Time) (models.WeeklyPlan, error)
}

type PlanApplier interface {
	Apply(ctx context.Context, plan models.WeeklyPlan) (scheduler.ApplyResult, error)
}

type Config struct {
	Planner     Planner
	Applier     PlanApplier // nil disables apply
	DefaultUser string
	Location    *time.Location
	Now         func() time.Time
}

type Server struct {
	cfg    Config
	router *gin.Engine
}

func New(cfg Config) *Server {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.DefaultUser == "" {
		cfg.DefaultUser = constants.DefaultUserID
	}
	s := &Server{cfg: cfg}
	s.router = s.newRouter()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", healthCheck)

	api := router.Group("/api")
	{
		api.GET("/planning/weekly-plan", s.getWeeklyPlan)
		api.POST("/planning/weekly-plan", s.postWeeklyPlan)
	}
	return router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) userID(c *gin.Context) string {
	if id := c.GetHeader(constants.UserIDHeader); id != "" {
		return id
	}
	return s.cfg.DefaultUser
}

func (s *Server) parseWeekStart(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := utils.ParseDateInLocation(raw, s.cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("weekStart must be YYYY-MM-DD: %w", err)
	}
	return &t, nil
}

type weeklyPlanResponse struct {
	Success       bool              `json:"success"`
	Plan          models.WeeklyPlan `json:"plan"`
	Applied       *bool             `json:"applied,omitempty"`
	EventsCreated int               `json:"eventsCreated,omitempty"`
	EventsFailed  int               `json:"eventsFailed,omitempty"`
	Message       string            `json:"message,omitempty"`
}

// GET /api/planning/weekly-plan?weekStart=YYYY-MM-DD
func (s *Server) getWeeklyPlan(c *gin.Context) {
	weekStart, err := s.parseWeekStart(c.Query("weekStart"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_week_start", err)
		return
	}

	plan, ok := s.plan(c, weekStart)
	if !ok {
		return
	}
	respondOK(c, weeklyPlanResponse{Success: true, Plan: plan})
}

type weeklyPlanRequest struct {
	WeekStart string `json:"weekStart"`
	Apply     bool   `json:"apply"`
}

// POST /api/planning/weekly-plan
func (s *Server) postWeeklyPlan(c *gin.Context) {
	var req weeklyPlanRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
	}
	weekStart, err := s.parseWeekStart(req.WeekStart)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_week_start", err)
		return
	}
	if req.Apply && s.cfg.Applier == nil {
		respondError(c, http.StatusBadRequest, "apply_unavailable",
			errors.New("applying plans is not configured on this server"))
		return
	}

	plan, ok := s.plan(c, weekStart)
	if !ok {
		return
	}

	applied := false
	if !req.Apply || len(plan.Sessions) == 0 {
		respondOK(c, weeklyPlanResponse{
			Success: true,
			Plan:    plan,
			Applied: &applied,
			Message: "Plan generated. Send apply=true to create the sessions.",
		})
		return
	}

	res, err := s.cfg.Applier.Apply(c.Request.Context(), plan)
	if err != nil {
		logger.Error("Failed to apply weekly plan", "user", plan.UserID, "error", err)
		respondError(c, http.StatusInternalServerError, "apply_failed", err)
		return
	}
	applied = true
	msg := fmt.Sprintf("%d session(s) created", res.Created)
	if res.Failed > 0 {
		msg += fmt.Sprintf(" (%d failed)", res.Failed)
	}
	respondOK(c, weeklyPlanResponse{
		Success:       true,
		Plan:          plan,
		Applied:       &applied,
		EventsCreated: res.Created,
		EventsFailed:  res.Failed,
		Message:       msg,
	})
}

func (s *Server) plan(c *gin.Context, weekStart *time.Time) (models.WeeklyPlan, bool) {
	userID := s.userID(c)
	plan, err := s.cfg.Planner.PlanWeek(c.Request.Context(), userID, weekStart, s.cfg.Now())
	if err != nil {
		if errors.Is(err, validation.ErrInvalidInterval) {
			respondError(c, http.StatusUnprocessableEntity, "invalid_calendar_data", err)
			return models.WeeklyPlan{}, false
		}
		logger.Error("Failed to plan week", "user", userID, "error", err)
		respondError(c, http.StatusInternalServerError, "planning_failed", err)
		return models.WeeklyPlan{}, false
	}
	return plan, true
}
