package main

import (
	"github.com/miniblog/miniblog/config"
	"github.com/miniblog/miniblog/models"
	"github.com/miniblog/miniblog/routes"
	"github.com/miniblog/miniblog/store"
	"github.com/miniblog/miniblog/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	if cfg.SessionSecret == "" {
		utils.Sugar.Fatal("SESSION_SECRET must be set via config or environment")
	}

	var users store.UserStore
	var posts store.PostStore
	switch cfg.Storage {
	case "memory":
		// Volatile backend for local development; everything is lost on exit.
		mem := store.NewMemoryStore(cfg.BcryptCost)
		users, posts = mem, mem
		utils.Sugar.Warn("using in-memory storage, data will not persist")
	default:
		db := config.InitDatabase(&models.User{}, &models.Post{})
		users = store.NewGormUserStore(db, cfg.BcryptCost)
		posts = store.NewGormPostStore(db)
	}

	r := routes.SetupRouter(cfg, users, posts)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
