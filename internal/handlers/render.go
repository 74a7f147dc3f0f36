package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"time-ledger/internal/apperr"
	"time-ledger/internal/identity"
	"time-ledger/internal/logger"
	"time-ledger/internal/middleware"
	"time-ledger/internal/query"
	"time-ledger/internal/service/entry"
	"time-ledger/internal/service/favorite"
	"time-ledger/internal/service/reference"
	"time-ledger/internal/service/savedquery"
)

// Handler держит сервисы, которые вызывают HTTP-обработчики.
type Handler struct {
	DB        *gorm.DB
	Entries   *entry.Service
	Queries   *savedquery.Service
	Favorites *favorite.Service
	Reference *reference.Service
	Engine    *query.Engine
	Issuer    identity.Issuer
	Log       *logger.Logger
}

func New(db *gorm.DB, issuer identity.Issuer, log *logger.Logger) *Handler {
	return &Handler{
		DB:        db,
		Entries:   entry.NewService(db, log),
		Queries:   savedquery.NewService(db, log),
		Favorites: favorite.NewService(db, log),
		Reference: reference.NewService(db, log),
		Engine:    query.NewEngine(db),
		Issuer:    issuer,
		Log:       log.Named("http"),
	}
}

// fail переводит ошибку сервиса в JSON-ответ. Детали 500-х уходят только в лог.
func (h *Handler) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.Log.WithContext(c.Request.Context()).WithFields(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed", "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// caller всегда есть за RequireAuth.
func caller(c *gin.Context) identity.Caller {
	cl, _ := middleware.CurrentCaller(c)
	return cl
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// bind разбирает JSON-тело; на ошибке уже ответил 400.
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}
