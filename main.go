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
	"employee-directory/internal/directory"
	"employee-directory/internal/handlers"
	"employee-directory/internal/metrics"
	"employee-directory/internal/recordstore"
	"employee-directory/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateDirectory(); err != nil {
		logger.Fatal(err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		logger.Fatalf("metrics: %v", err)
	}

	client, err := recordstore.NewClient(cfg.RecordStoreURL,
		recordstore.WithTimeout(cfg.RequestTimeout),
		recordstore.WithMetrics(m),
	)
	if err != nil {
		logger.Fatalf("record store client: %v", err)
	}

	ctrl, err := directory.NewController(client,
		directory.WithLogger(logger),
		directory.WithMetrics(m),
		directory.WithNotificationTTL(cfg.NotificationTTL),
	)
	if err != nil {
		logger.Fatalf("directory: %v", err)
	}
	defer ctrl.Close()

	// a failed first load leaves the directory in its error state; the
	// service still starts so the user can retry
	if err := ctrl.Refresh(context.Background()); err != nil {
		logger.Printf("initial load failed: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	r := router.New(logger)
	dh := handlers.NewDirectoryHandler(ctrl, logger)
	router.SetupDirectory(r, dh, registry)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	// event streams never go idle on their own
	srv.RegisterOnShutdown(dh.CloseStreams)

	go func() {
		logger.Printf("directory listening on :%s ...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
	logger.Println("directory stopped")
}
