package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/vectorscene/internal/config"
	"github.com/inamate/vectorscene/internal/export"
	"github.com/inamate/vectorscene/internal/logging"
	mw "github.com/inamate/vectorscene/internal/middleware"
	"github.com/inamate/vectorscene/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))
	logging.SetLogger(slog.Default())

	manager := session.NewManager(cfg.EngineOptions())
	sessionHandler := session.NewHandler(manager, cfg.AllowedOrigins)
	exportHandler := export.NewHandler(sessionHandler, cfg.MaxUploadBytes)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.AllowedOrigins))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/sessions", sessionHandler.Create).Methods("POST")
	r.HandleFunc("/sessions/{id}", sessionHandler.Delete).Methods("DELETE")
	r.HandleFunc("/sessions/{id}/layers", sessionHandler.Layers).Methods("GET")

	r.HandleFunc("/sessions/{id}/frame.png", exportHandler.FramePNG).Methods("GET")
	r.HandleFunc("/sessions/{id}/export.svg", exportHandler.SVG).Methods("GET")
	r.HandleFunc("/sessions/{id}/import/svg", exportHandler.ImportSVG).Methods("POST", "OPTIONS")
	r.HandleFunc("/sessions/{id}/import/flat", exportHandler.ImportFlat).Methods("POST", "OPTIONS")

	// WebSocket endpoint
	r.HandleFunc("/ws/session/{id}", sessionHandler.WebSocket)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Close sessions first so websocket pumps return
		manager.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "origins", cfg.AllowedOrigins)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
