package main

import (
	"flag"
	"log"
	"os"

	"StockSage/internal/di"
	"StockSage/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s llm=%s model=%s port=%d", cfg.Environment, cfg.LLM.Provider, cfg.LLM.Model, cfg.Server.Port)
	for name, configured := range cfg.Summary() {
		log.Printf("integration %s configured=%t", name, configured)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
