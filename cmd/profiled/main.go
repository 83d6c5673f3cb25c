// Command profiled serves saved profile pages over HTTP for the editor's
// remote store.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pagesmith/internal/logging"
	"pagesmith/internal/persist"
	"pagesmith/internal/profileapi"
)

func main() {
	_ = godotenv.Load()
	cfg, err := parseFlags(os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("flags: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, dialect, err := openDatabase(cfg)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := persist.NewSQLStore(ctx, db, dialect, logger)
	cancel()
	if err != nil {
		logger.Fatal("schema creation failed", zap.Error(err))
	}
	logger.Info("database schema ready", zap.String("type", cfg.DatabaseType))

	svc := profileapi.New(store, profileapi.Options{Logger: logger, Tokens: cfg.Tokens})
	server := http.Server{
		Handler:           svc.Router(),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logger.Info("listening", zap.Int("port", cfg.Port))
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server closed", zap.Error(err))
		return
	}
	logger.Info("server closed")
}

func openDatabase(cfg serverConfig) (*sql.DB, persist.Dialect, error) {
	if cfg.DatabaseType == "postgres" {
		db, err := persist.OpenPostgres(cfg.DatabaseURL)
		return db, persist.Postgres, err
	}
	db, err := persist.OpenSQLite(cfg.DatabaseURL)
	return db, persist.SQLite, err
}
