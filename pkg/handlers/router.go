package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is reported by the banner route
const Version = "1.0.0"

// NewRouter mounts every route on a fresh gin engine
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.MaxMultipartMemory = int64(h.Config.MaxUploadMB) << 20

	// Admin interface, served from the embedded FS
	r.StaticFS("/static", h.GetStaticFS())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Tabling Scheduler API",
			"version": Version,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{})))

	r.GET("/admin", h.AdminInterface)
	r.POST("/admin/login", h.Login)

	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/roster", h.UploadRoster)
		api.POST("/validate/roster", h.ValidateRoster)
		api.POST("/schedule", h.Schedule)
		api.POST("/reoptimize", h.Reoptimize)
		api.POST("/match", h.Match)
		api.POST("/match/candidates", h.MatchCandidates)
		api.POST("/validate", h.ValidatePlacement)
		api.POST("/lock", h.Lock)
		api.POST("/unlock", h.Unlock)
		api.POST("/export/xlsx", h.ExportXLSX)
		api.POST("/export/csv", h.ExportCSV)
		api.POST("/sessions", h.SaveSession)
		api.GET("/sessions", h.ListSessions)
		api.GET("/sessions/:id", h.GetSession)
		api.DELETE("/sessions/:id", h.DeleteSession)
		api.GET("/usage", h.GetMyUsage)
	}

	return r
}
