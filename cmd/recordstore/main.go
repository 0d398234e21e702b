// Command recordstore serves the employee resource consumed by the
// directory service.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"employee-directory/internal/config"
	"employee-directory/internal/db"
	"employee-directory/internal/handlers"
	"employee-directory/internal/repository"
	"employee-directory/internal/router"

	"github.com/gin-gonic/gin"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateRecordStore(); err != nil {
		logger.Fatal(err)
	}
	dialect, err := db.ParseDialect(cfg.DBDriver)
	if err != nil {
		logger.Fatal(err)
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, dialect, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal(err)
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn, dialect); err != nil {
		logger.Fatal(err)
	}

	repo := repository.NewSQLEmployeeRepository(conn, dialect)

	gin.SetMode(gin.ReleaseMode)
	r := router.New(logger)
	router.SetupRecordStore(r, handlers.NewRecordHandler(repo, logger), cfg.CORSOrigins, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return conn.PingContext(pingCtx)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Printf("record store (%s) listening on :%s ...", dialect, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
	logger.Println("record store stopped")
}
