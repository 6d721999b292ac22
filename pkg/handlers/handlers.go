package handlers

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/arnavshah/tabling-scheduler/pkg/auth"
	"github.com/arnavshah/tabling-scheduler/pkg/availability"
	"github.com/arnavshah/tabling-scheduler/pkg/config"
	"github.com/arnavshah/tabling-scheduler/pkg/database"
	"github.com/arnavshah/tabling-scheduler/pkg/logger"
	"github.com/arnavshah/tabling-scheduler/pkg/metrics"
	"github.com/arnavshah/tabling-scheduler/pkg/models"
	"github.com/arnavshah/tabling-scheduler/pkg/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

//go:embed static/*
var staticEmbed embed.FS

// Handler contains dependencies for the route handlers
type Handler struct {
	DB       *gorm.DB
	Auth     *auth.Authenticator
	Config   *config.Config
	Log      logger.Logger
	Metrics  *metrics.PromRecorder
	Gatherer prometheus.Gatherer
}

// New wires a Handler. A nil registry selects the process-wide default.
func New(db *gorm.DB, cfg *config.Config, log logger.Logger, reg *prometheus.Registry) (*Handler, error) {
	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	rec, err := metrics.NewPromRecorder(registerer)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{
		DB:       db,
		Auth:     auth.New(cfg),
		Config:   cfg,
		Log:      log,
		Metrics:  rec,
		Gatherer: gatherer,
	}, nil
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := h.Auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the HMAC API key and enforces its daily limit
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			return
		}

		userID, err := h.Auth.VerifyHMACKey(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			return
		}

		// Fetch or create the key record to track usage
		apiKey, err := database.TouchKey(h.DB, key, userID, h.Config.RateLimit)
		if err != nil {
			h.Log.Errorf("api key lookup for %s: %v", userID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not load API key"})
			return
		}
		used, err := database.RequestsToday(h.DB, apiKey.ID)
		if err != nil {
			h.Log.Errorf("usage lookup for key %d: %v", apiKey.ID, err)
		} else if apiKey.RateLimit > 0 && used >= apiKey.RateLimit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Daily request limit reached"})
			return
		}

		c.Set("apiKey", apiKey)
		c.Set("userID", userID)
		c.Next()
	}
}

// RecordUsage records API usage for the calling key
func (h *Handler) RecordUsage(c *gin.Context, slotCount, memberCount int) {
	apiKey, ok := currentKey(c)
	if !ok {
		return
	}
	if err := database.RecordUsage(h.DB, apiKey.ID, slotCount, memberCount); err != nil {
		h.Log.Warnf("record usage for key %d: %v", apiKey.ID, err)
	}
	h.Metrics.RecordRequest(c.FullPath(), memberCount)
}

// engine builds a scheduler over a freshly validated roster
func (h *Handler) engine(r models.Roster) (*scheduler.Scheduler, error) {
	store, err := availability.NewStore(r)
	if err != nil {
		return nil, err
	}
	return scheduler.NewScheduler(store,
		scheduler.WithOptions(h.Config.Solver),
		scheduler.WithLogger(h.Log),
		scheduler.WithRecorder(h.Metrics),
	), nil
}

// respond writes a schedule with its diagnostics and records usage
func (h *Handler) respond(c *gin.Context, eng *scheduler.Scheduler, sched models.Schedule, warnings []models.Warning) {
	h.RecordUsage(c, len(sched.Slots), eng.Store().Len())
	c.JSON(http.StatusOK, models.ScheduleResponse{
		Schedule:      sched,
		Warnings:      warnings,
		Conflicts:     eng.Diagnose(sched),
		FairnessScore: eng.FairnessScore(sched),
	})
}

// fail maps engine and storage errors onto HTTP responses
func (h *Handler) fail(c *gin.Context, err error) {
	var inputErr *models.InputError
	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  inputErr.Error(),
			"record": inputErr.Record,
			"field":  inputErr.Field,
		})
	case errors.Is(err, models.ErrInfeasible):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.Log.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// AdminInterface serves the admin web interface from embedded files
func (h *Handler) AdminInterface(c *gin.Context) {
	if err := h.Auth.EnsureAdminExists(h.DB, h.Config.AdminUsername, h.Config.AdminPassword, h.Log); err != nil {
		h.Log.Warnf("ensure admin: %v", err)
	}

	data, err := staticEmbed.ReadFile("static/index.html")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "static/index.html not found in embedded FS"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// GetStaticFS returns the embedded filesystem for static assets
func (h *Handler) GetStaticFS() http.FileSystem {
	sub, err := fs.Sub(staticEmbed, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

func bearer(c *gin.Context) string {
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

func currentKey(c *gin.Context) (*database.APIKey, bool) {
	raw, exists := c.Get("apiKey")
	if !exists {
		return nil, false
	}
	apiKey, ok := raw.(*database.APIKey)
	return apiKey, ok
}
