package handlers

import (
	"errors"
	"net/http"

	"github.com/arnavshah/tabling-scheduler/pkg/availability"
	"github.com/arnavshah/tabling-scheduler/pkg/models"
	"github.com/arnavshah/tabling-scheduler/pkg/roster"
	"github.com/gin-gonic/gin"
)

// UploadRoster parses a signup sheet (.csv, .xlsx or .xls) into a roster
func (h *Handler) UploadRoster(c *gin.Context) {
	limit := int64(h.Config.MaxUploadMB) << 20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open roster file"})
		return
	}
	defer f.Close()

	r, warnings, err := roster.Parse(header.Filename, f, nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.RecordUsage(c, 0, len(r.Members))
	c.JSON(http.StatusOK, gin.H{"roster": r, "warnings": warnings})
}

// ValidateRoster checks a roster without solving
func (h *Handler) ValidateRoster(c *gin.Context) {
	var r models.Roster
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": err.Error()})
		return
	}

	store, err := availability.NewStore(r)
	if err != nil {
		body := gin.H{"valid": false, "error": err.Error()}
		var inputErr *models.InputError
		if errors.As(err, &inputErr) {
			body["record"] = inputErr.Record
			body["field"] = inputErr.Field
		}
		c.JSON(http.StatusOK, body)
		return
	}

	males := 0
	for _, m := range store.Members() {
		if m.IsMale() && !store.Excluded(m.ID) {
			males++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"member_count":   store.Len(),
			"excluded_count": len(r.Excluded),
			"male_count":     males,
			"slots_per_day":  len(store.Times()),
		},
	})
}

// Schedule solves a fresh week
func (h *Handler) Schedule(c *gin.Context) {
	var req models.SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	days := req.Days
	if len(days) == 0 {
		var err error
		if days, err = h.Config.ActiveDays(); err != nil {
			h.fail(c, err)
			return
		}
	}

	eng, err := h.engine(req.Roster)
	if err != nil {
		h.fail(c, err)
		return
	}
	sched, err := eng.Solve(days, req.Locked)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, eng, sched, nil)
}

// Reoptimize re-solves a schedule around its locks, or around the given lock set
func (h *Handler) Reoptimize(c *gin.Context) {
	var req models.ReoptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	locked := req.Schedule.Locked
	if req.Locked != nil {
		locked = *req.Locked
	}

	eng, err := h.engine(req.Roster)
	if err != nil {
		h.fail(c, err)
		return
	}
	sched, err := eng.Reoptimize(req.Schedule, locked)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, eng, sched, nil)
}

// Match locks two members into their best shared slot
func (h *Handler) Match(c *gin.Context) {
	var req models.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eng, err := h.engine(req.Roster)
	if err != nil {
		h.fail(c, err)
		return
	}
	sched, err := eng.MatchPartners(req.MemberA, req.MemberB, req.Schedule, req.Force)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, eng, sched, nil)
}

// MatchCandidates lists the slots two members could share, best first
func (h *Handler) MatchCandidates(c *gin.Context) {
	var req models.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eng, err := h.engine(req.Roster)
	if err != nil {
		h.fail(c, err)
		return
	}
	cands, err := eng.PartnerSlots(req.MemberA, req.MemberB, req.Schedule, req.Force)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.RecordUsage(c, len(cands), eng.Store().Len())
	c.JSON(http.StatusOK, gin.H{"candidates": cands})
}

// ValidatePlacement reports what placing a member into a slot would break
func (h *Handler) ValidatePlacement(c *gin.Context) {
	var req models.PlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eng, err := h.engine(req.Roster)
	if err != nil {
		h.fail(c, err)
		return
	}
	warnings, err := eng.ValidatePlacement(req.Schedule, req.MemberID, req.Slot)
	if err != nil {
		h.fail(c, err)
		return
	}

	allowed := true
	for _, w := range warnings {
		if w.Severity == models.Hard {
			allowed = false
		}
	}
	h.RecordUsage(c, 1, eng.Store().Len())
	c.JSON(http.StatusOK, gin.H{
		"allowed":  allowed,
		"warnings": warnings,
	})
}

// Lock pins the given members to a slot and re-solves
func (h *Handler) Lock(c *gin.Context) {
	var req models.LockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eng, err := h.engine(req.Roster)
	if err != nil {
		h.fail(c, err)
		return
	}
	sched, warnings, err := eng.LockSlot(req.Schedule, req.Slot, req.MemberIDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, eng, sched, warnings)
}

// Unlock releases a slot's locks without re-solving
func (h *Handler) Unlock(c *gin.Context) {
	var req models.LockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eng, err := h.engine(req.Roster)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, eng, eng.UnlockSlot(req.Schedule, req.Slot), nil)
}
