package server

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"time-ledger/internal/config"
	"time-ledger/internal/handlers"
	"time-ledger/internal/logger"
	"time-ledger/internal/middleware"
)

func NewRouter(cfg *config.Config, h *handlers.Handler, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(log.Named("http")))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("ledger_session", store))

	r.Use(middleware.InjectCaller(h.Issuer))

	// AUTH
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)

	// HEALTHCHECK
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.Use(middleware.RequireAuth())

	// ЗАПИСИ ВРЕМЕНИ
	api.GET("/entries", h.ListEntries)
	api.POST("/entries", h.CreateEntry)
	api.POST("/entries/search", h.SearchEntries)
	api.POST("/entries/export", h.ExportEntries)
	api.GET("/entries/:id", h.GetEntry)
	api.PUT("/entries/:id", h.UpdateEntry)
	api.DELETE("/entries/:id", h.DeleteEntry)
	api.GET("/entries/:id/history", h.EntryHistory)

	// СОХРАНЁННЫЕ ЗАПРОСЫ
	api.GET("/queries", h.ListQueries)
	api.POST("/queries", h.CreateQuery)
	api.GET("/queries/:id", h.GetQuery)
	api.PUT("/queries/:id", h.UpdateQuery)
	api.DELETE("/queries/:id", h.DeleteQuery)
	api.GET("/queries/:id/run", h.RunQuery)
	api.GET("/queries/:id/export", h.ExportQuery)

	// ИЗБРАННОЕ
	api.GET("/favorites", h.ListFavorites)
	api.POST("/favorites", h.CreateFavorite)
	api.PUT("/favorites/:id", h.UpdateFavorite)
	api.DELETE("/favorites/:id", h.DeleteFavorite)
	api.POST("/favorites/:id/apply", h.ApplyFavorite)

	// СПРАВОЧНИКИ: читать могут все, менять только админ
	admin := middleware.RequireElevated()

	api.GET("/projects", h.ListProjects)
	api.GET("/projects/:id", h.GetProject)
	api.POST("/projects", admin, h.CreateProject)
	api.PUT("/projects/:id", admin, h.UpdateProject)
	api.POST("/projects/:id/tasks/:task_id", admin, h.AssignTask)
	api.DELETE("/projects/:id/tasks/:task_id", admin, h.UnassignTask)

	api.GET("/tasks", h.ListTasks)
	api.POST("/tasks", admin, h.CreateTask)

	api.GET("/labor-codes", h.ListLaborCodes)
	api.POST("/labor-codes", admin, h.CreateLaborCode)

	api.GET("/config", h.GetConfig)
	api.PUT("/config", admin, h.UpdateConfig)

	return r
}
