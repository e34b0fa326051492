package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phenrril/sourcing/internal/app"
)

func main() {
	cfg := app.LoadConfig()

	zerolog.TimeFieldFormat = time.RFC3339
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.Production() {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}

	gormLog := logger.Default.LogMode(logger.Warn)
	if cfg.Production() {
		gormLog = logger.Default.LogMode(logger.Error)
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{TranslateError: true, Logger: gormLog})
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to database")
	}

	ctx := context.Background()
	application, err := app.NewApp(ctx, db, cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to create app")
	}
	defer application.Close()
	if err := application.MigrateAndSeed(ctx); err != nil {
		zlog.Fatal().Err(err).Msg("failed to migrate and seed database")
	}

	port := cfg.Port
	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		zlog.Warn().Err(err).Str("port", port).Msg("port busy, trying 8081-8090")
		for p := 8081; p <= 8090; p++ {
			l2, err2 := net.Listen("tcp", net.JoinHostPort("", fmt.Sprintf("%d", p)))
			if err2 == nil {
				ln = l2
				port = fmt.Sprint(p)
				break
			}
		}
		if ln == nil {
			zlog.Fatal().Err(err).Msg("no free port")
		}
	}

	server := &http.Server{
		Handler:           application.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info().Str("port", port).Str("env", cfg.Env).Msg("listening")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}
