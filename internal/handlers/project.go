package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"time-ledger/internal/apperr"
	"time-ledger/internal/identity"
	"time-ledger/internal/service/reference"
	"time-ledger/internal/timecalc"
)

//
// ПРОЕКТЫ
//

type projectRequest struct {
	Name     string          `json:"name"`
	Rate     decimal.Decimal `json:"rate"`
	LockDate string          `json:"lock_date"`
}

func (r projectRequest) input() (reference.ProjectInput, error) {
	lock, err := timecalc.ParseOptionalDay(r.LockDate)
	if err != nil {
		return reference.ProjectInput{}, apperr.Validation("lock_date %q: expected YYYY-MM-DD", r.LockDate)
	}
	return reference.ProjectInput{Name: r.Name, Rate: r.Rate, LockDate: lock}, nil
}

func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.Reference.ListProjects(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Handler) GetProject(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.Reference.GetProject(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateProject(c *gin.Context) {
	var req projectRequest
	if !bind(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(c, err)
		return
	}
	p, err := h.Reference.CreateProject(c.Request.Context(), caller(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProject(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req projectRequest
	if !bind(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(c, err)
		return
	}
	p, err := h.Reference.UpdateProject(c.Request.Context(), caller(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) AssignTask(c *gin.Context) {
	h.projectTask(c, h.Reference.AssignTask)
}

func (h *Handler) UnassignTask(c *gin.Context) {
	h.projectTask(c, h.Reference.UnassignTask)
}

func (h *Handler) projectTask(c *gin.Context, op func(ctx context.Context, cl identity.Caller, projectID, taskID uint) error) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	taskID, ok := idParam(c, "task_id")
	if !ok {
		return
	}
	if err := op(c.Request.Context(), caller(c), projectID, taskID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

//
// ЗАДАЧИ И КОДЫ ТРУДОЗАТРАТ
//

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.Reference.ListTasks(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTask(c *gin.Context) {
	var req nameRequest
	if !bind(c, &req) {
		return
	}
	t, err := h.Reference.CreateTask(c.Request.Context(), caller(c), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) ListLaborCodes(c *gin.Context) {
	codes, err := h.Reference.ListLaborCodes(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, codes)
}

func (h *Handler) CreateLaborCode(c *gin.Context) {
	var req nameRequest
	if !bind(c, &req) {
		return
	}
	lc, err := h.Reference.CreateLaborCode(c.Request.Context(), caller(c), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, lc)
}

//
// НАСТРОЙКИ
//

type configRequest struct {
	MinutesPartition uint8  `json:"minutes_partition" binding:"required"`
	FirstDayOfWeek   string `json:"first_day_of_week" binding:"required"`
}

func (h *Handler) GetConfig(c *gin.Context) {
	cfg, err := h.Reference.Config(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, configResponse(cfg.MinutesPartition, cfg.FirstDayOfWeek))
}

func (h *Handler) UpdateConfig(c *gin.Context) {
	var req configRequest
	if !bind(c, &req) {
		return
	}
	day, ok := timecalc.ParseWeekday(req.FirstDayOfWeek)
	if !ok {
		badRequest(c, "first_day_of_week must be a weekday name")
		return
	}
	cfg, err := h.Reference.UpdateConfig(c.Request.Context(), caller(c), req.MinutesPartition, day)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, configResponse(cfg.MinutesPartition, cfg.FirstDayOfWeek))
}

func configResponse(partition uint8, firstDay time.Weekday) gin.H {
	return gin.H{
		"minutes_partition": partition,
		"first_day_of_week": firstDay.String(),
	}
}
