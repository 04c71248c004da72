package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/barnmonitor/internal/apperrors"
	"github.com/mamadbah2/barnmonitor/internal/domain/models"
	"github.com/mamadbah2/barnmonitor/internal/repository/mongodb"
	"github.com/mamadbah2/barnmonitor/internal/service/export"
	"github.com/mamadbah2/barnmonitor/internal/session"
)

// Summarizer builds the dashboard figures.
type Summarizer interface {
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}

// ProfileFetcher loads a farmer with the herd.
type ProfileFetcher interface {
	Farmer(ctx context.Context, id int) (*models.FarmerProfile, error)
}

// Exporter copies records to an external spreadsheet.
type Exporter interface {
	Export(ctx context.Context) (export.Result, error)
}

// DashboardHandler serves the dashboard, the farmer profile, snapshot history and export.
type DashboardHandler struct {
	store     session.Store
	reporting Summarizer
	profiles  ProfileFetcher
	snapshots mongodb.Repository
	exporter  Exporter
	logger    *zap.Logger
}

// NewDashboardHandler constructs the handler. snapshots and exporter may be nil when not configured.
func NewDashboardHandler(store session.Store, reporting Summarizer, profiles ProfileFetcher, snapshots mongodb.Repository, exporter Exporter, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{
		store:     store,
		reporting: reporting,
		profiles:  profiles,
		snapshots: snapshots,
		exporter:  exporter,
		logger:    logger,
	}
}

// Summary returns weather, revenue, production and herd size.
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.reporting.Summary(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "dashboard summary failed", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Profile returns the logged in farmer with animals and their records.
func (h *DashboardHandler) Profile(c *gin.Context) {
	current, ok := h.session(c)
	if !ok {
		return
	}

	profile, err := h.profiles.Farmer(c.Request.Context(), current.UserID())
	if err != nil {
		respondError(c, h.logger, "farmer profile failed", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// History lists stored dashboard snapshots, newest first (?limit=, default 30).
func (h *DashboardHandler) History(c *gin.Context) {
	if h.snapshots == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Snapshot history is not configured."})
		return
	}

	current, ok := h.session(c)
	if !ok {
		return
	}

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "30"), 10, 64)
	if err != nil || limit <= 0 {
		limit = 30
	}

	snapshots, err := h.snapshots.RecentSnapshots(c.Request.Context(), current.UserID(), limit)
	if err != nil {
		respondError(c, h.logger, "snapshot history failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}

// Export writes the farmer's sales and production to Google Sheets.
func (h *DashboardHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Spreadsheet export is not configured."})
		return
	}

	result, err := h.exporter.Export(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "export failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DashboardHandler) session(c *gin.Context) (*models.Session, bool) {
	current, err := h.store.Get()
	if err == nil && current == nil {
		err = apperrors.ErrNoSession
	}
	if err != nil {
		respondError(c, h.logger, "session unavailable", err)
		return nil, false
	}
	return current, true
}
