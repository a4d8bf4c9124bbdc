package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"oclock-api/internal/repository"
	"oclock-api/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	punches  service.PunchService
	reports  service.ReportService
	archives service.ArchiveService

	jwtSecret      []byte
	tokenTTL       time.Duration
	allowedOrigins []string
	logger         *logrus.Logger
}

func NewHandler(
	users service.UserService,
	punches service.PunchService,
	reports service.ReportService,
	archives service.ArchiveService,
	jwtSecret string,
	tokenTTL time.Duration,
	allowedOrigins []string,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		users:          users,
		punches:        punches,
		reports:        reports,
		archives:       archives,
		jwtSecret:      []byte(jwtSecret),
		tokenTTL:       tokenTTL,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(h.allowedOrigins))
	router.Use(h.requestLogger())

	api := router.Group("/api")

	api.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
	api.POST("/auth/login", h.login)

	authed := api.Group("")
	authed.Use(h.authRequired())
	{
		users := authed.Group("/users")
		users.POST("", h.requireAdmin(), h.createUser)
		users.GET("", h.requireAdmin(), h.listUsers)
		users.GET("/:id", h.getUser)
		users.PUT("/:id", h.requireAdmin(), h.updateUser)
		users.DELETE("/:id", h.requireAdmin(), h.deleteUser)

		punches := authed.Group("/punches")
		punches.POST("/clock/:userId", h.clockPunch)
		punches.GET("/user/:userId/day", h.listPunchesByDay)
		punches.GET("/user/:userId/range", h.listPunchesByUserAndRange)
		punches.GET("/range", h.requireAdmin(), h.listPunchesByRange)
		punches.GET("", h.requireAdmin(), h.listPunches)
		punches.POST("", h.requireAdmin(), h.createPunch)
		punches.GET("/:id", h.requireAdmin(), h.getPunch)
		punches.PUT("/:id", h.requireAdmin(), h.updatePunch)
		punches.DELETE("/:id", h.requireAdmin(), h.deletePunch)

		reports := authed.Group("/reports")
		reports.GET("/archives", h.requireAdmin(), h.listArchives)
		reports.GET("/:userId/monthly", h.monthlyReport)
		reports.GET("/:userId/accumulated", h.accumulatedReport)
		reports.POST("/:userId/monthly/archive", h.requireAdmin(), h.archiveMonthly)
		reports.POST("/:userId/accumulated/archive", h.requireAdmin(), h.archiveAccumulated)
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "":
			if _, ok := allowed[origin]; ok {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				c.Writer.Header().Set("Vary", "Origin")
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Writer.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		}).Info("request")
	}
}

// respondError maps service/repository errors to HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrUserNotFound), errors.Is(err, repository.ErrPunchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrCPFTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidCPF):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
