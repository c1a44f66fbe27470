package main

import (
	"fmt"
	"log"
	"os"

	"finanz-server/internal/cache"
	"finanz-server/internal/config"
	"finanz-server/internal/database"
	"finanz-server/internal/router"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if cfg.Storage.Dir != "" {
		if err := os.MkdirAll(cfg.Storage.Dir, 0o755); err != nil {
			log.Fatalf("create storage dir: %v", err)
		}
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	store, err := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("init redis: %v", err)
	}
	if store == nil {
		log.Printf("redis disabled, running without cache and rate limiting")
	}

	r, err := router.Setup(cfg, db, store)
	if err != nil {
		log.Fatalf("setup router: %v", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
