package handlers

import (
	"net/http"

	"github.com/arnavshah/tabling-scheduler/pkg/availability"
	"github.com/arnavshah/tabling-scheduler/pkg/database"
	"github.com/arnavshah/tabling-scheduler/pkg/models"
	"github.com/gin-gonic/gin"
)

// SaveSession stores the caller's roster and schedule under a name
func (h *Handler) SaveSession(c *gin.Context) {
	apiKey, ok := currentKey(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}
	var req models.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Reject rosters that could not be loaded back into the engine.
	if _, err := availability.NewStore(req.Roster); err != nil {
		h.fail(c, err)
		return
	}

	session, err := database.SaveSession(h.DB, apiKey.ID, req.Name, req.Roster, req.Schedule)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// ListSessions returns the caller's saved sessions without their payloads
func (h *Handler) ListSessions(c *gin.Context) {
	apiKey, ok := currentKey(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}
	sessions, err := database.ListSessions(h.DB, apiKey.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetSession loads one saved session
func (h *Handler) GetSession(c *gin.Context) {
	apiKey, ok := currentKey(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}
	session, r, sched, err := database.LoadSession(h.DB, apiKey.ID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":  session,
		"roster":   r,
		"schedule": sched,
	})
}

// DeleteSession removes one saved session
func (h *Handler) DeleteSession(c *gin.Context) {
	apiKey, ok := currentKey(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}
	if err := database.DeleteSession(h.DB, apiKey.ID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}
