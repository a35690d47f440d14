package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aescanero/basecamp/internal/auth"
)

const serviceName = "basecamp-api"

// ErrorResponse is the error envelope returned by every failing route
type ErrorResponse struct {
	Error      bool   `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:      true,
		Message:    message,
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	status := s.health.GetStatus()

	code, state := http.StatusOK, "healthy"
	if !status.Healthy {
		code, state = http.StatusServiceUnavailable, "unhealthy"
	}

	c.JSON(code, gin.H{
		"status":      state,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(s.started).Seconds(),
		"environment": s.env,
		"version":     s.version,
		"checks": gin.H{
			"database": status.Database,
		},
	})
}

// handleInfo describes the API
func (s *Server) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        serviceName,
		"version":     s.version,
		"description": "basecamp API",
		"endpoints": gin.H{
			"health":  "/health",
			"metrics": "/metrics",
			"me":      "/api/v1/me",
			"session": "/api/v1/session",
		},
	})
}

// handleMe returns the authenticated subject
func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"subject": auth.Subject(c)})
}

// handleCreateSession exchanges a bearer token for a session cookie
func (s *Server) handleCreateSession(c *gin.Context) {
	subject := auth.Subject(c)

	if err := s.sessions.Issue(c, subject); err != nil {
		s.logger.Error("failed to issue session", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to create session")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"subject":   subject,
		"expiresIn": int(s.sessions.MaxAge().Seconds()),
	})
}

// handleDeleteSession clears the session cookie
func (s *Server) handleDeleteSession(c *gin.Context) {
	s.sessions.Clear(c)
	c.Status(http.StatusNoContent)
}

// handleNotFound returns the 404 envelope
func (s *Server) handleNotFound(c *gin.Context) {
	respondError(c, http.StatusNotFound, "Route not found")
}
