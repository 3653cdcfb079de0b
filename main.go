package main

import (
	"log"

	"tonpulse/app"
	"tonpulse/config"
)

func main() {
	cfg := config.LoadFromEnv()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize application: %v", err)
	}

	if err := application.Start(); err != nil {
		log.Fatalf("❌ Application error: %v", err)
	}
}
