package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gorm.io/gorm"

	"bakeshop/internal/config"
	"bakeshop/internal/db"
	"bakeshop/internal/db/mock"
	applog "bakeshop/internal/log"
	"bakeshop/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		log.Fatalf("invalid log level: %v", err)
	}

	database, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to initialise database: %v", err)
	}

	srv := server.New(server.Config{
		Addr: cfg.Server.Addr,
		Session: server.SessionConfig{
			Lifetime:     cfg.Session.Lifetime,
			CookieName:   cfg.Session.CookieName,
			CookieDomain: cfg.Session.CookieDomain,
			CookieSecure: cfg.Session.CookieSecure,
		},
		Database: database,
	})

	go func() {
		log.Printf("starting http server on %s", cfg.Server.Addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server encountered an error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh

	log.Println("shutting down http server")
	if err := srv.Stop(); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
}

// openDatabase connects to the configured database, falling back to the
// seeded in-memory mock when no URL is configured.
func openDatabase(cfg config.Config) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.Database.URL) == "" {
		log.Println("DATABASE_URL not set, using in-memory mock database")
		return mock.New(context.Background())
	}
	return db.Configure(cfg.Database)
}
