package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
	"github.com/comitanigiacomo/habit-hero/internal/core/services"
)

type CheckInHandler struct {
	svc *services.CheckInService
}

func NewCheckInHandler(svc *services.CheckInService) *CheckInHandler {
	return &CheckInHandler{svc: svc}
}

type completeRequest struct {
	HabitID int64        `json:"habit_id" binding:"required,gt=0"`
	Date    *domain.Date `json:"date"`
	Note    *string      `json:"note"`
}

func (h *CheckInHandler) RegisterRoutes(router *gin.RouterGroup) {
	checkins := router.Group("/checkins")
	{
		checkins.POST("", h.Complete)
		checkins.POST("/:habit_id/undo", h.Undo)
		checkins.GET("/habit/:habit_id", h.ListByHabit)
	}
}

// Complete godoc
// @Summary  Mark a habit done for a day (today when date is omitted)
// @Tags     checkins
// @Accept   json
// @Produce  json
// @Param    checkin body completeRequest true "check-in"
// @Success  200 {object} domain.CheckIn
// @Failure  403 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /checkins [post]
func (h *CheckInHandler) Complete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checkin, err := h.svc.MarkCompleted(c.Request.Context(), services.CompleteInput{
		HabitID: req.HabitID,
		UserID:  userID,
		Date:    req.Date,
		Note:    req.Note,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, checkin)
}

// Undo godoc
// @Summary  Clear the completion of a day (today when date is omitted)
// @Tags     checkins
// @Produce  json
// @Param    habit_id path  int    true  "habit id"
// @Param    date     query string false "YYYY-MM-DD"
// @Success  200 {object} domain.CheckIn
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /checkins/{habit_id}/undo [post]
func (h *CheckInHandler) Undo(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	habitID, ok := pathID(c, "habit_id")
	if !ok {
		return
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}

	checkin, err := h.svc.MarkIncomplete(c.Request.Context(), services.UndoInput{
		HabitID: habitID,
		UserID:  userID,
		Date:    date,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, checkin)
}

func (h *CheckInHandler) ListByHabit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	habitID, ok := pathID(c, "habit_id")
	if !ok {
		return
	}

	list, err := h.svc.ListByHabitID(c.Request.Context(), habitID, userID)
	if err != nil {
		handleError(c, err)
		return
	}
	if list == nil {
		list = []domain.CheckIn{}
	}

	c.JSON(http.StatusOK, list)
}
