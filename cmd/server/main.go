package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/config"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/server"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/store"
)

func main() {
	debug := flag.Bool("debug", false, "Log every applied command")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.Debug = cfg.Debug || *debug

	db, err := store.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	srv := server.New(server.Options{
		Rules:            cfg.Rules,
		Seed:             cfg.Seed,
		StartingPowerUps: cfg.StartingPowerUps,
		TokenSecret:      cfg.TokenSecret,
		Debug:            cfg.Debug,
	}, db)

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv.Handler(),
	}
	httpServer.RegisterOnShutdown(srv.Close)

	log.Printf("Blocktopia server starting on %s", cfg.Addr())
	log.Printf("WebSocket endpoint: ws://%s/ws", cfg.Addr())

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-done
	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	srv.Wait()
	log.Println("All games saved")
}
