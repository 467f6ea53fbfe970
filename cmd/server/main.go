package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/canteenhub/api/internal/config"
	"github.com/canteenhub/api/internal/router"
	"github.com/canteenhub/api/internal/store"
	"github.com/canteenhub/api/internal/ws"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := store.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Printf("Connected to %s database", cfg.DBDriver)

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, db, hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
