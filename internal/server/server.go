package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskboard/internal/apperr"
	"taskboard/internal/board"
	"taskboard/internal/notify"
)

// Server provides HTTP handlers for the board API.
type Server struct {
	engine *gin.Engine
	board  *board.Service
	events *notify.Bus
	logger *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
// events may be nil, in which case the event stream is not mounted.
func New(svc *board.Service, events *notify.Bus, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/healthz"))

	srv := &Server{
		engine: router,
		board:  svc,
		events: events,
		logger: logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		projects := api.Group("/projects")
		{
			projects.GET("", s.handleListProjects)
			projects.POST("", s.handleCreateProject)
			projects.PUT("/reorder", s.handleReorderProjects)
			projects.GET("/:id", s.handleGetProject)
			projects.PATCH("/:id", s.handleUpdateProject)
			projects.DELETE("/:id", s.handleDeleteProject)
			projects.POST("/:id/archive", s.handleArchiveProject)
			projects.POST("/:id/restore", s.handleRestoreProject)
			projects.GET("/:id/tasks", s.handleListTasks)
			projects.POST("/:id/tasks", s.handleCreateTask)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("/:id", s.handleGetTask)
			tasks.PATCH("/:id", s.handleUpdateTask)
			tasks.POST("/:id/move", s.handleMoveTask)
			tasks.GET("/:id/transitions", s.handleListTransitions)
		}

		if s.events != nil {
			api.GET("/events", s.handleEvents)
		}
	}

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
	})
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// respondError logs the error and returns a JSON payload whose status
// follows the error taxonomy.
func (s *Server) respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	} else {
		s.logger.Debug("request rejected", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}

	body := gin.H{"error": err.Error()}
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		body["field"] = verr.Field
		body["rule"] = verr.Rule
	}
	c.JSON(status, body)
}

// respondBadRequest reports a malformed request body.
func (s *Server) respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
