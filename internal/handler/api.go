package handler

import (
	"errors"
	"net/http"
	"time"

	"claim-annotator/internal/middleware"
	"claim-annotator/internal/models"
	"claim-annotator/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler handles HTTP requests
type Handler struct {
	registry *session.Registry
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(registry *session.Registry, secret []byte, tokenTTL time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		registry: registry,
		secret:   secret,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/login", h.Login)
		api.GET("/labels", h.Labels)

		authed := api.Group("", middleware.AuthMiddleware(h.secret, h.logger))
		{
			authed.GET("/session", h.GetSession)
			authed.POST("/annotate", h.Annotate)
			authed.POST("/skip", h.Skip)
			authed.POST("/logout", h.Logout)
		}
	}

	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Login admits an annotator and returns a bearer token plus the initial
// session state.
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.registry.Login(req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrEmptyIdentity):
			c.JSON(http.StatusBadRequest, gin.H{"error": "user id must not be empty"})
		case errors.Is(err, session.ErrAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied: your user id is not authorized"})
		default:
			h.logger.Error("Failed to log in annotator", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}

	token, err := h.signToken(sess)
	if err != nil {
		h.logger.Error("Failed to sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"session": sess.View(),
	})
}

func (h *Handler) signToken(sess *session.Session) (string, error) {
	now := time.Now()
	claims := &models.Claims{
		UserID:    sess.UserID,
		SessionID: sess.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// Labels returns the fixed label set in display order.
func (h *Handler) Labels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"labels": models.Labels})
}

// GetSession returns the observable session state for rendering.
func (h *Handler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, sess.View())
}

// Annotate records a label for the current sentence.
func (h *Handler) Annotate(c *gin.Context) {
	var req models.AnnotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, ok := h.session(c)
	if !ok {
		return
	}

	result, err := sess.RecordLabel(models.Label(req.Label))
	if err != nil {
		switch {
		case errors.Is(err, session.ErrUnknownLabel):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown label"})
		case errors.Is(err, session.ErrSessionFinished):
			c.JSON(http.StatusConflict, gin.H{"error": "all sentences are annotated"})
		default:
			h.logger.Error("Failed to record label", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record label"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Skip advances past the current sentence without recording a label.
func (h *Handler) Skip(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	view, err := sess.Skip()
	if err != nil {
		if errors.Is(err, session.ErrSessionFinished) {
			c.JSON(http.StatusConflict, gin.H{"error": "all sentences are annotated"})
			return
		}
		h.logger.Error("Failed to skip sentence", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to skip"})
		return
	}

	c.JSON(http.StatusOK, view)
}

// Logout flushes buffered annotations and discards the session.
func (h *Handler) Logout(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	h.registry.Logout(userID)

	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	userID := c.MustGet("user_id").(string)

	sess, err := h.registry.Get(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no active session, log in again"})
		return nil, false
	}
	return sess, true
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "claim-annotator",
		"version": "1.0.0",
	})
}
