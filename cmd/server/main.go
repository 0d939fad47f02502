package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/diagrammer/backend-go/internal/collab"
	"github.com/inamate/diagrammer/backend-go/internal/config"
	"github.com/inamate/diagrammer/backend-go/internal/drawing"
	"github.com/inamate/diagrammer/backend-go/internal/engine"
	"github.com/inamate/diagrammer/backend-go/internal/export"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	drawingService := drawing.NewService(store)
	drawingHandler := drawing.NewHandler(drawingService)

	sceneCfg, err := cfg.Scene.Scene()
	if err != nil {
		slog.Error("scene config", "error", err)
		os.Exit(1)
	}
	var engineOpts []engine.Option
	if cfg.Scene.SystemClipboard {
		if engine.SystemClipboardAvailable() {
			engineOpts = append(engineOpts, engine.WithClipboard(engine.SystemClipboard{}))
		} else {
			slog.Warn("system clipboard unavailable, using in-memory clipboard")
		}
	}

	hub := collab.NewHub(drawingService.LoadDocument, drawingService.SaveDocument, sceneCfg, engineOpts...)
	go hub.Run()

	r := mux.NewRouter()

	// Global middleware
	r.Use(recovery)
	r.Use(logger)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	drawingHandler.Mount(api)
	export.NewHandler(drawingService, sceneCfg).Mount(api)

	// WebSocket endpoint
	origins := cfg.Origins()
	r.HandleFunc("/ws/drawing/{drawingId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, drawingService, origins)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first to save all dirty drawings
		slog.Info("saving all drawings...")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore uses PostgreSQL when DATABASE_URL is set and an embedded badger
// database otherwise.
func openStore(ctx context.Context, cfg *config.Config) (drawing.Store, error) {
	if cfg.DatabaseURL != "" {
		slog.Info("using postgres store")
		return drawing.NewPGStore(ctx, cfg.DatabaseURL)
	}
	slog.Info("using badger store", "dir", cfg.DataDir)
	return drawing.OpenBadgerStore(cfg.DataDir)
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, svc *drawing.Service, origins []string) {
	drawingID := mux.Vars(r)["drawingId"]

	if _, err := svc.Get(r.Context(), drawingID); err != nil {
		switch {
		case errors.Is(err, drawing.ErrNotFound):
			http.Error(w, "drawing not found", http.StatusNotFound)
		case errors.Is(err, drawing.ErrInvalidID):
			http.Error(w, "invalid drawing id", http.StatusBadRequest)
		default:
			slog.Error("get drawing", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	userID := "anon-" + uuid.New().String()[:8]
	displayName := r.URL.Query().Get("name")
	if displayName == "" {
		displayName = "Anonymous"
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := collab.NewClient(hub, conn, userID, displayName, drawingID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
