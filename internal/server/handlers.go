package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sentiboard/internal/domain"
	"sentiboard/internal/export"
	"sentiboard/internal/service"
)

const (
	maxUploadBytes   = 5 << 20
	defaultRunsLimit = 20
	maxRunsLimit     = 100
	defaultStatsDays = 30
)

// Pinger is a dependency the health endpoint checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	svc    *service.Service
	checks map[string]Pinger
}

func NewHandler(svc *service.Service, checks map[string]Pinger) *Handler {
	return &Handler{svc: svc, checks: checks}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type resultsRequest struct {
	Results []domain.AnalysisResult `json:"results"`
}

// Analyze handles POST /api/v1/analyze with a JSON body or a multipart file.
func (h *Handler) Analyze(c *gin.Context) {
	var text string
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			handleInvalidRequest(c, "missing file field")
			return
		}
		if fh.Size > maxUploadBytes {
			handleInvalidRequest(c, fmt.Sprintf("file exceeds %d bytes", maxUploadBytes))
			return
		}
		f, err := fh.Open()
		if err != nil {
			handleInvalidRequest(c, err.Error())
			return
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		if err != nil {
			handleInvalidRequest(c, err.Error())
			return
		}
		text = string(data)
	} else {
		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			handleInvalidRequest(c, err.Error())
			return
		}
		text = req.Text
	}

	run, err := h.svc.AnalyzeText(c.Request.Context(), text, "api", c.GetHeader("X-Requested-By"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, run)
}

// Evaluate handles POST /api/v1/evaluate. Data is null when no result text
// is in the reference set.
func (h *Handler) Evaluate(c *gin.Context) {
	var req resultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleInvalidRequest(c, err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, h.svc.Evaluate(req.Results))
}

func (h *Handler) Summary(c *gin.Context) {
	var req resultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleInvalidRequest(c, err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, h.svc.Summarize(req.Results))
}

// Export handles POST /api/v1/export/:format.
func (h *Handler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	var req resultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleInvalidRequest(c, err.Error())
		return
	}
	art, err := h.svc.Export(format, req.Results)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendArtifact(c, art)
}

func (h *Handler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRunsLimit)))
	if err != nil || limit < 1 {
		limit = defaultRunsLimit
	}
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}
	runs, err := h.svc.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if runs == nil {
		runs = []domain.RunRecord{}
	}
	respondSuccess(c, http.StatusOK, runs)
}

func (h *Handler) GetRun(c *gin.Context) {
	run, err := h.svc.Run(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, run)
}

// ExportRun handles GET /api/v1/runs/:id/export/:format.
func (h *Handler) ExportRun(c *gin.Context) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	art, err := h.svc.ExportRun(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendArtifact(c, art)
}

// Stats handles GET /api/v1/stats?days=N.
func (h *Handler) Stats(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultStatsDays)))
	if err != nil || days < 1 {
		days = defaultStatsDays
	}
	since := time.Now().AddDate(0, 0, -days)
	stats, err := h.svc.Stats(c.Request.Context(), since)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, stats)
}

func (h *Handler) GroundTruth(c *gin.Context) {
	entries := h.svc.GroundTruth()
	if entries == nil {
		entries = []domain.GroundTruthEntry{}
	}
	respondSuccess(c, http.StatusOK, entries)
}

type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := make(map[string]string, len(h.checks))
	healthy := true
	for name, p := range h.checks {
		if p == nil {
			components[name] = "not configured"
			continue
		}
		if err := p.Ping(ctx); err != nil {
			components[name] = "error: " + err.Error()
			healthy = false
			continue
		}
		components[name] = "ok"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, HealthStatus{Status: status, Components: components})
}

func sendArtifact(c *gin.Context, art export.Artifact) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	c.Data(http.StatusOK, art.ContentType, art.Data)
}
