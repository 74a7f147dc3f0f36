package handlers

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"time-ledger/internal/apperr"
	"time-ledger/internal/csvexport"
	"time-ledger/internal/identity"
	"time-ledger/internal/query"
	"time-ledger/internal/service/entry"
	"time-ledger/internal/service/reference"
	"time-ledger/internal/timecalc"
)

//
// ЗАПИСИ ВРЕМЕНИ
//

type entryRequest struct {
	UserID      uint   `json:"user_id"`
	ProjectID   uint   `json:"project_id" binding:"required"`
	TaskID      *uint  `json:"task_id"`
	LaborCodeID *uint  `json:"labor_code_id"`
	Date        string `json:"date" binding:"required"`
	Hours       uint8  `json:"hours"`
	Minutes     uint8  `json:"minutes"`
	Description string `json:"description"`
}

func (r entryRequest) input() (entry.Input, error) {
	day, err := timecalc.ParseDay(r.Date)
	if err != nil {
		return entry.Input{}, apperr.Validation("date %q: expected YYYY-MM-DD", r.Date)
	}
	return entry.Input{
		UserID:      r.UserID,
		ProjectID:   r.ProjectID,
		TaskID:      r.TaskID,
		LaborCodeID: r.LaborCodeID,
		Date:        day,
		Hours:       r.Hours,
		Minutes:     r.Minutes,
		Description: r.Description,
	}, nil
}

// ListEntries: записи текущего пользователя; администратор может
// передать ?user_id=.
func (h *Handler) ListEntries(c *gin.Context) {
	var owner uint
	if s := c.Query("user_id"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			badRequest(c, "invalid user_id")
			return
		}
		owner = uint(v)
	}

	entries, err := h.Entries.ListByOwner(c.Request.Context(), caller(c), owner)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) CreateEntry(c *gin.Context) {
	var req entryRequest
	if !bind(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(c, err)
		return
	}

	te, err := h.Entries.Create(c.Request.Context(), caller(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, te)
}

func (h *Handler) GetEntry(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	te, err := h.Entries.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, te)
}

func (h *Handler) UpdateEntry(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req entryRequest
	if !bind(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(c, err)
		return
	}

	te, err := h.Entries.Update(c.Request.Context(), caller(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, te)
}

func (h *Handler) DeleteEntry(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Entries.Delete(c.Request.Context(), caller(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

//
// ПОИСК И ВЫГРУЗКА
//

type filterRequest struct {
	UserIDs      []uint `json:"user_ids"`
	ProjectIDs   []uint `json:"project_ids"`
	TaskIDs      []uint `json:"task_ids"`
	LaborCodeIDs []uint `json:"labor_code_ids"`
	From         string `json:"from"`
	To           string `json:"to"`
	// Week: любой день недели; задаёт From/To по настроенному первому дню.
	Week        string `json:"week"`
	Description string `json:"description"`
}

func (h *Handler) filter(c *gin.Context, req filterRequest) (query.Filter, error) {
	f := query.Filter{
		UserIDs:      req.UserIDs,
		ProjectIDs:   req.ProjectIDs,
		TaskIDs:      req.TaskIDs,
		LaborCodeIDs: req.LaborCodeIDs,
		Description:  req.Description,
	}

	var err error
	if f.From, err = timecalc.ParseOptionalDay(req.From); err != nil {
		return f, apperr.Validation("from %q: expected YYYY-MM-DD", req.From)
	}
	if f.To, err = timecalc.ParseOptionalDay(req.To); err != nil {
		return f, apperr.Validation("to %q: expected YYYY-MM-DD", req.To)
	}

	if req.Week != "" {
		if req.From != "" || req.To != "" {
			return f, apperr.Validation("week cannot be combined with from/to")
		}
		day, err := timecalc.ParseDay(req.Week)
		if err != nil {
			return f, apperr.Validation("week %q: expected YYYY-MM-DD", req.Week)
		}
		cfg, err := reference.LoadConfiguration(h.DB.WithContext(c.Request.Context()))
		if err != nil {
			return f, err
		}
		start, end := timecalc.WeekRange(day, cfg.FirstDayOfWeek)
		f.From, f.To = &start, &end
	}
	return f, nil
}

// restrict сужает фильтр не-администратора до его собственных записей.
// false: запрошенный набор пользователей не содержит вызывающего,
// пересечение пусто.
func restrict(cl identity.Caller, f query.Filter) (query.Filter, bool) {
	if cl.Elevated {
		return f, true
	}
	if len(f.UserIDs) > 0 && !slices.Contains(f.UserIDs, cl.UserID) {
		return f, false
	}
	f.UserIDs = []uint{cl.UserID}
	return f, true
}

func (h *Handler) run(c *gin.Context, f query.Filter) ([]query.Row, bool) {
	f, ok := restrict(caller(c), f)
	if !ok {
		return []query.Row{}, true
	}
	rows, err := h.Engine.Run(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return rows, true
}

func (h *Handler) SearchEntries(c *gin.Context) {
	var req filterRequest
	if !bind(c, &req) {
		return
	}
	f, err := h.filter(c, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	rows, ok := h.run(c, f)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":   rows,
		"totals": query.Totals(rows),
	})
}

func (h *Handler) ExportEntries(c *gin.Context) {
	var req filterRequest
	if !bind(c, &req) {
		return
	}
	f, err := h.filter(c, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	rows, ok := h.run(c, f)
	if !ok {
		return
	}
	h.writeCSV(c, "time-entries", rows)
}

func (h *Handler) writeCSV(c *gin.Context, name string, rows []query.Row) {
	filename := name + "-" + time.Now().UTC().Format(timecalc.DayLayout) + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := csvexport.Write(c.Writer, query.ExportRows(rows)); err != nil {
		h.Log.WithContext(c.Request.Context()).Error("csv export failed", "error", err)
	}
}
