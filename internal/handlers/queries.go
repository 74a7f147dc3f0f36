package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"time-ledger/internal/query"
	"time-ledger/internal/service/savedquery"
)

//
// СОХРАНЁННЫЕ ЗАПРОСЫ
//

type savedQueryRequest struct {
	Name string `json:"name" binding:"required"`
	filterRequest
}

func (h *Handler) queryInput(c *gin.Context) (savedquery.Input, bool) {
	var req savedQueryRequest
	if !bind(c, &req) {
		return savedquery.Input{}, false
	}
	f, err := h.filter(c, req.filterRequest)
	if err != nil {
		h.fail(c, err)
		return savedquery.Input{}, false
	}
	return savedquery.Input{Name: req.Name, Filter: f}, true
}

func (h *Handler) ListQueries(c *gin.Context) {
	list, err := h.Queries.List(c.Request.Context(), caller(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateQuery(c *gin.Context) {
	in, ok := h.queryInput(c)
	if !ok {
		return
	}
	q, err := h.Queries.Create(c.Request.Context(), caller(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *Handler) GetQuery(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	q, err := h.Queries.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *Handler) UpdateQuery(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	in, ok := h.queryInput(c)
	if !ok {
		return
	}
	q, err := h.Queries.Update(c.Request.Context(), caller(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *Handler) DeleteQuery(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Queries.Delete(c.Request.Context(), caller(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) savedRows(c *gin.Context) ([]query.Row, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}
	q, err := h.Queries.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return h.run(c, query.FromSavedQuery(*q))
}

func (h *Handler) RunQuery(c *gin.Context) {
	rows, ok := h.savedRows(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":   rows,
		"totals": query.Totals(rows),
	})
}

func (h *Handler) ExportQuery(c *gin.Context) {
	rows, ok := h.savedRows(c)
	if !ok {
		return
	}
	h.writeCSV(c, "saved-query", rows)
}
