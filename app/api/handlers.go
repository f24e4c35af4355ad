package api

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/event-comb/app/database"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 500
)

func NewHandler(runRepo database.RunRepository, readRows RowsReader, version string) *Handler {
	return &Handler{
		runRepo:  runRepo,
		readRows: readRows,
		version:  version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	if runCount, err := h.runRepo.GetRunCount(); err == nil {
		health["runs"] = runCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListRuns(c *gin.Context) {
	limit := defaultRunsLimit
	if value := c.Query("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = min(parsed, maxRunsLimit)
	}

	runs, err := h.runRepo.ListRuns(limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	response := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		response = append(response, newRunResponse(run))
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  response,
		"total": len(response),
	})
}

func (h *Handler) APIGetRun(c *gin.Context) {
	run, ok := h.findRun(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, newRunResponse(*run))
}

func (h *Handler) APIGetRunRows(c *gin.Context) {
	run, ok := h.findRun(c)
	if !ok {
		return
	}

	if run.OutputPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run has no output file"})
		return
	}

	rows, err := h.readRows(run.OutputPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Output file not found"})
			return
		}
		slog.Error("Output read error", "run", run.ID, "path", run.OutputPath, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read output file"})
		return
	}

	c.Header("X-Run-Rows", strconv.Itoa(len(rows)))

	c.JSON(http.StatusOK, gin.H{
		"run":   newRunResponse(*run),
		"rows":  rows,
		"total": len(rows),
	})
}

func (h *Handler) findRun(c *gin.Context) (*database.Run, bool) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing run id parameter"})
		return nil, false
	}

	run, err := h.runRepo.GetRun(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_run", "run", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}

	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return nil, false
	}

	return run, true
}
