package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
	"github.com/comitanigiacomo/habit-hero/internal/core/services"
)

// StatusHandler serves the read side computed by the streak engine.
type StatusHandler struct {
	svc *services.StatusService
}

func NewStatusHandler(svc *services.StatusService) *StatusHandler {
	return &StatusHandler{svc: svc}
}

func (h *StatusHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.GET("/status", h.ListStatus)
		habits.GET("/today", h.Today)
		habits.GET("/incomplete-today", h.IncompleteToday)
		habits.GET("/:id/status", h.Status)
		habits.GET("/:id/streak", h.Streak)
	}
}

// ListStatus godoc
// @Summary  Status record for every habit of the caller
// @Tags     status
// @Produce  json
// @Success  200 {array} domain.StatusRecord
// @Security BearerAuth
// @Router   /habits/status [get]
func (h *StatusHandler) ListStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	records, err := h.svc.EvaluateAllForUser(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	if records == nil {
		records = []domain.StatusRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// Status godoc
// @Summary  Status record for one habit
// @Tags     status
// @Produce  json
// @Param    id path int true "habit id"
// @Success  200 {object} domain.StatusRecord
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /habits/{id}/status [get]
func (h *StatusHandler) Status(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	record, err := h.svc.EvaluateHabit(c.Request.Context(), id, userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *StatusHandler) Streak(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	streak, err := h.svc.GetStreak(c.Request.Context(), id, userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, streak)
}

func (h *StatusHandler) Today(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	entries, err := h.svc.TodayOverview(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, nonNil(entries))
}

func (h *StatusHandler) IncompleteToday(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	entries, err := h.svc.IncompleteToday(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, nonNil(entries))
}

func nonNil(entries []domain.TodayEntry) []domain.TodayEntry {
	if entries == nil {
		return []domain.TodayEntry{}
	}
	return entries
}
