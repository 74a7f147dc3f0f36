package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"time-ledger/internal/audit"
)

// EntryHistory отдаёт журнал изменений записи и её текущее состояние,
// восстановленное из журнала (null после удаления).
func (h *Handler) EntryHistory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	recs, err := h.Entries.History(c.Request.Context(), caller(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	state, err := audit.Replay(recs)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": recs,
		"current": state,
	})
}
