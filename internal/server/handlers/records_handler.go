package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/barnmonitor/internal/service/records"
)

// RecordsHandler exposes one record collection: list, submit, edit, cancel and delete.
type RecordsHandler struct {
	ctrl   records.Controller
	logger *zap.Logger
}

// NewRecordsHandler constructs the HTTP handler adapter for a collection.
func NewRecordsHandler(ctrl records.Controller, logger *zap.Logger) *RecordsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsHandler{ctrl: ctrl, logger: logger}
}

// List reloads the collection, then applies ?sort=&dir= and ?q= in memory.
func (h *RecordsHandler) List(c *gin.Context) {
	if err := h.ctrl.Load(c.Request.Context()); err != nil {
		respondError(c, h.logger, "load records failed", err)
		return
	}

	if field, ok := c.GetQuery("sort"); ok {
		if err := h.ctrl.Sort(field, records.Direction(c.Query("dir"))); err != nil {
			respondError(c, h.logger, "invalid sort", err)
			return
		}
	}
	h.ctrl.Filter(c.Query("q"))

	c.JSON(http.StatusOK, h.ctrl.Render())
}

// Show returns a single record fetched from the API.
func (h *RecordsHandler) Show(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}

	record, err := h.ctrl.Detail(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get record failed", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Submit creates a record, or updates the one being edited.
func (h *RecordsHandler) Submit(c *gin.Context) {
	status := http.StatusCreated
	if h.ctrl.Editing() {
		status = http.StatusOK
	}

	bind := func(obj any) error {
		if err := c.ShouldBindJSON(obj); err != nil {
			return fmt.Errorf("%w: %v", errInvalidBody, err)
		}
		return nil
	}

	if err := h.ctrl.SubmitWith(c.Request.Context(), bind); err != nil {
		respondError(c, h.logger, "submit record failed", err)
		return
	}

	c.JSON(status, h.ctrl.Render())
}

// Edit selects a record for editing and returns the pre-filled form.
func (h *RecordsHandler) Edit(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}

	if err := h.ctrl.Edit(id); err != nil {
		respondError(c, h.logger, "edit record failed", err)
		return
	}
	c.JSON(http.StatusOK, h.ctrl.Render())
}

// Cancel abandons the current edit.
func (h *RecordsHandler) Cancel(c *gin.Context) {
	h.ctrl.Cancel()
	c.JSON(http.StatusOK, h.ctrl.Render())
}

// Delete removes a record.
func (h *RecordsHandler) Delete(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}

	if err := h.ctrl.Remove(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "delete record failed", err)
		return
	}
	c.JSON(http.StatusOK, h.ctrl.Render())
}

func (h *RecordsHandler) id(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The record id is not valid."})
		return 0, false
	}
	return id, true
}

// NewRecordsHandlers builds one handler per controller, keeping the collection names.
func NewRecordsHandlers(ctrls map[string]records.Controller, logger *zap.Logger) map[string]*RecordsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := make(map[string]*RecordsHandler, len(ctrls))
	for name, ctrl := range ctrls {
		out[name] = NewRecordsHandler(ctrl, logger.With(zap.String("collection", name)))
	}
	return out
}
