package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
	"github.com/comitanigiacomo/habit-hero/internal/core/services"
)

const defaultStatsWindowDays = 7

type StatsHandler struct {
	svc   *services.StatsService
	clock domain.Clock
}

func NewStatsHandler(svc *services.StatsService, clock domain.Clock) *StatsHandler {
	return &StatsHandler{svc: svc, clock: clock}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats/completion", h.GetCompletionStats)
}

// GetCompletionStats godoc
// @Summary  Completion rates over a date range (last 7 days by default)
// @Tags     stats
// @Produce  json
// @Param    start_date query string false "YYYY-MM-DD"
// @Param    end_date   query string false "YYYY-MM-DD"
// @Success  200 {object} domain.CompletionStats
// @Failure  400 {object} map[string]string
// @Security BearerAuth
// @Router   /stats/completion [get]
func (h *StatsHandler) GetCompletionStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	end, ok := queryDate(c, "end_date")
	if !ok {
		return
	}
	start, ok := queryDate(c, "start_date")
	if !ok {
		return
	}

	endDate := h.clock.Today()
	if end != nil {
		endDate = *end
	}
	startDate := endDate.AddDays(-(defaultStatsWindowDays - 1))
	if start != nil {
		startDate = *start
	}

	stats, err := h.svc.GetCompletionStats(c.Request.Context(), domain.StatsInput{
		UserID:    userID,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
