package main

import (
	"log"
	"os"

	"trust-guard/bot"
	"trust-guard/config"
	"trust-guard/handlers"
	trust_db "trust-guard/utils/database/trust"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	store, err := trust_db.Init(cfg.Guard.DatabasePath)
	if err != nil {
		log.Fatalf("Error initializing trust database: %v", err)
	}
	defer store.Close()

	b, err := bot.New(cfg, store)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)

	b.Run()

	defer b.Close()
}
