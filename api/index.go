package handler

import (
	"net/http"

	"github.com/arnavshah/tabling-scheduler/pkg/config"
	"github.com/arnavshah/tabling-scheduler/pkg/database"
	"github.com/arnavshah/tabling-scheduler/pkg/handlers"
	"github.com/arnavshah/tabling-scheduler/pkg/logger"
	"github.com/gin-gonic/gin"
)

var (
	router  http.Handler
	initErr error
)

func init() {
	// .env is only present under vercel dev
	config.LoadDotEnv()

	log := logger.New("vercel")
	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}
	logger.SetLevel(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		initErr = err
		return
	}
	h, err := handlers.New(db, cfg, log, nil)
	if err != nil {
		initErr = err
		return
	}
	if err := h.Auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword, log); err != nil {
		log.Warnf("ensure admin: %v", err)
	}
	router = handlers.NewRouter(h)
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, r *http.Request) {
	if initErr != nil {
		http.Error(w, "service unavailable: "+initErr.Error(), http.StatusServiceUnavailable)
		return
	}
	router.ServeHTTP(w, r)
}
