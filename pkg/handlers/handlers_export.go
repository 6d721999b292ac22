package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arnavshah/tabling-scheduler/pkg/availability"
	"github.com/arnavshah/tabling-scheduler/pkg/export"
	"github.com/arnavshah/tabling-scheduler/pkg/models"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type writerFunc func(io.Writer, *availability.Store, models.Schedule) error

// ExportXLSX renders the schedule as a workbook download
func (h *Handler) ExportXLSX(c *gin.Context) {
	h.export(c, "xlsx", xlsxContentType, export.WriteXLSX)
}

// ExportCSV renders the schedule as one CSV row per placed member
func (h *Handler) ExportCSV(c *gin.Context) {
	h.export(c, "csv", "text/csv; charset=utf-8", export.WriteCSV)
}

func (h *Handler) export(c *gin.Context, ext, contentType string, write writerFunc) {
	var req models.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	store, err := availability.NewStore(req.Roster)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, store, req.Schedule); err != nil {
		h.fail(c, fmt.Errorf("export %s: %w", ext, err))
		return
	}
	h.RecordUsage(c, len(req.Schedule.Slots), store.Len())

	filename := fmt.Sprintf("schedule-%s.%s", time.Now().Format("2006-01-02"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
