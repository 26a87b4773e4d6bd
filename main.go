package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IAmMasterCraft/expense-tracker/internal/config"
	"github.com/IAmMasterCraft/expense-tracker/internal/database"
	"github.com/IAmMasterCraft/expense-tracker/internal/router"
	"github.com/IAmMasterCraft/expense-tracker/internal/store"
	"github.com/IAmMasterCraft/expense-tracker/internal/syncer"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// .env is optional, real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	syncer.SetLogger(log)

	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("init database")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	st := store.New(db)
	session := syncer.NewSession(time.Duration(cfg.Sync.TokenTTLMinutes) * time.Minute)
	client := syncer.NewSheetsClient(cfg.Sync.BaseURL, time.Duration(cfg.Sync.TimeoutSeconds)*time.Second)
	rec := syncer.NewReconciler(st, client, session)
	sched := syncer.NewScheduler(st, rec, session, time.Duration(cfg.Sync.DebounceMs)*time.Millisecond)
	st.OnChange(sched.Notify)

	r := router.SetupRouter(cfg, st, rec, session, sched, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("run server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
