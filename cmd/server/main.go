package main

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"time-ledger/internal/config"
	"time-ledger/internal/database"
	"time-ledger/internal/handlers"
	"time-ledger/internal/identity"
	"time-ledger/internal/logger"
	"time-ledger/internal/server"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger("time-ledger")
	defer func() { _ = log.Sync() }()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.Init(cfg.DBDSN, cfg.AdminUsername, cfg.AdminPassword, log)

	issuer := identity.Issuer{Secret: []byte(cfg.JWTSecret), TTL: cfg.JWTTTL}
	h := handlers.New(db, issuer, log)
	r := server.NewRouter(cfg, h, log)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Info("starting server", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("server error", "error", err)
	}
}
