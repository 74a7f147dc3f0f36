package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"time-ledger/internal/apperr"
	"time-ledger/internal/service/entry"
	"time-ledger/internal/service/favorite"
	"time-ledger/internal/timecalc"
)

//
// ИЗБРАННЫЕ ШАБЛОНЫ
//

type favoriteRequest struct {
	Name        string `json:"name" binding:"required"`
	ProjectID   uint   `json:"project_id" binding:"required"`
	TaskID      *uint  `json:"task_id"`
	LaborCodeID *uint  `json:"labor_code_id"`
}

func (r favoriteRequest) input() favorite.Input {
	return favorite.Input{
		Name:        r.Name,
		ProjectID:   r.ProjectID,
		TaskID:      r.TaskID,
		LaborCodeID: r.LaborCodeID,
	}
}

func (h *Handler) ListFavorites(c *gin.Context) {
	list, err := h.Favorites.List(c.Request.Context(), caller(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateFavorite(c *gin.Context) {
	var req favoriteRequest
	if !bind(c, &req) {
		return
	}
	fav, err := h.Favorites.Create(c.Request.Context(), caller(c), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, fav)
}

func (h *Handler) UpdateFavorite(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req favoriteRequest
	if !bind(c, &req) {
		return
	}
	fav, err := h.Favorites.Update(c.Request.Context(), caller(c), id, req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fav)
}

func (h *Handler) DeleteFavorite(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Favorites.Delete(c.Request.Context(), caller(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type applyRequest struct {
	Date        string `json:"date" binding:"required"`
	Hours       uint8  `json:"hours"`
	Minutes     uint8  `json:"minutes"`
	Description string `json:"description"`
}

// ApplyFavorite создаёт запись текущего пользователя по шаблону.
func (h *Handler) ApplyFavorite(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req applyRequest
	if !bind(c, &req) {
		return
	}
	day, err := timecalc.ParseDay(req.Date)
	if err != nil {
		h.fail(c, apperr.Validation("date %q: expected YYYY-MM-DD", req.Date))
		return
	}

	cl := caller(c)
	fav, err := h.Favorites.Get(c.Request.Context(), cl, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	te, err := h.Entries.Create(c.Request.Context(), cl, entry.Input{
		ProjectID:   fav.ProjectID,
		TaskID:      fav.TaskID,
		LaborCodeID: fav.LaborCodeID,
		Date:        day,
		Hours:       req.Hours,
		Minutes:     req.Minutes,
		Description: req.Description,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, te)
}
