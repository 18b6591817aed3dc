package main

import (
	"log"

	"github.com/inspitereno-lang/entebhoomi/internal/config"
	"github.com/inspitereno-lang/entebhoomi/internal/sandbox"
)

func main() {
	cfg := config.Load()

	srv, err := sandbox.New(cfg)
	if err != nil {
		log.Fatalf("sandbox setup failed: %v", err)
	}

	if err := srv.Seed(); err != nil {
		log.Fatalf("sandbox seed failed: %v", err)
	}

	log.Printf("Starting sandbox on :%s", cfg.AppPort)
	if err := srv.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
