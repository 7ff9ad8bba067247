package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stageset/stageset/internal/config"
	"github.com/stageset/stageset/internal/database"
	"github.com/stageset/stageset/internal/hub"
	"github.com/stageset/stageset/internal/processor"
	"github.com/stageset/stageset/internal/queue"
	"github.com/stageset/stageset/internal/router"
)

func main() {
	cfg := config.Load()

	store, err := database.NewStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("open data directory: %v", err)
	}
	defer store.Close()

	h := hub.New()

	var journal processor.Journal
	if cfg.QueueEnabled {
		journal = queue.NewPublisher(cfg.AMQPURL)
		go queue.StartNotificationConsumer(cfg.AMQPURL)
	}

	proc := processor.New(store, h, journal)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Preselect a show so kiosk-style deployments come up ready to edit.
	if cfg.Show != "" {
		err := proc.SelectShow(ctx, cfg.Show)
		if errors.Is(err, database.ErrShowNotFound) {
			err = proc.CreateShow(ctx, cfg.Show)
		}
		if err != nil {
			log.Printf("could not select show %q: %v", cfg.Show, err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, proc, h, config.NewRedisClient())

	go func() {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s, data=%s)", addr, cfg.Env, cfg.DataDir)
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
