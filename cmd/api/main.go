package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"example.com/tracker/internal/api"
	"example.com/tracker/internal/config"
	"example.com/tracker/internal/domain"
	persistence "example.com/tracker/internal/persistence/postgres"
	httptransport "example.com/tracker/internal/transport/http"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	// The store connects and ensures the schema on first use, not here,
	// so the process comes up even when Postgres is still starting.
	store := persistence.NewStore(cfg.PostgresURL)
	defer store.Close()

	repo := persistence.NewRepository(store)
	service := domain.NewService(repo)
	handler := api.NewHandler(service, log)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	wrapped := httptransport.RequestLogger(log)(httptransport.CORS(cfg.CORSAllowedOrigin)(router))

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}, wrapped)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("address", cfg.HTTPAddress).Info("tracker listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-shutdownCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
	}
}
