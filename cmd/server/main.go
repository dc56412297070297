package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"noteboard/internal/auth"
	"noteboard/internal/config"
	mcpserver "noteboard/internal/mcp"
	"noteboard/internal/notes"
	"noteboard/internal/push"
	"noteboard/internal/remote"
	"noteboard/internal/session"

	"github.com/newrelic/go-agent/v3/newrelic"
	"go.uber.org/automaxprocs/maxprocs"
)

//go:embed static
var staticFS embed.FS

func main() {
	// Config
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Info(fmt.Sprintf(format, args...))
	})); err != nil {
		logger.Warn("failed to set GOMAXPROCS", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wire dependencies
	api := remote.New(cfg.APIHost, &http.Client{Timeout: cfg.APITimeout}, logger)
	store := session.NewCookieStore(cfg.SessionKey(), cfg.SecureCookies)

	noteRepo := notes.NewRepo(api)
	noteSvc := notes.NewService(noteRepo)
	views := notes.NewRegistry(noteSvc, cfg.ViewTTL, logger)
	go views.RunSweeper(ctx, time.Minute)

	// Push channel
	var hub *push.Hub
	src, err := push.Open(ctx, push.Options{
		Driver:       cfg.Push.Driver,
		APIHost:      cfg.APIHost,
		URL:          cfg.Push.URL,
		QueueURL:     cfg.Push.QueueURL,
		WaitTime:     cfg.Push.WaitTime,
		RedisAddr:    cfg.Push.RedisAddr,
		RedisChannel: cfg.Push.RedisChannel,
		Event:        cfg.Push.Event,
	}, logger)
	switch {
	case err != nil && cfg.Push.Driver == push.DriverSocketIO:
		// The API host may not expose socket.io; pages still work without live refresh.
		logger.Warn("live refresh unavailable", "error", err)
	case err != nil:
		log.Fatalf("failed to open push channel: %v", err)
	}
	if src != nil {
		hub = push.NewHub(16, logger)
		go func() {
			if err := hub.Run(ctx, src); err != nil {
				logger.Error("push channel stopped", "error", err)
			}
			hub.Close()
		}()
		logger.Info("live refresh enabled", "driver", cfg.Push.Driver, "event", cfg.Push.Event)
	}

	authHandler := auth.NewHandler(auth.NewClient(api), store, logger)
	noteHandler := notes.NewHandler(noteSvc, views, store, hub, logger)

	// Create MCP server
	mcpSrv := mcpserver.NewServer(noteSvc, mcpserver.FromContext)

	// Instrumentation
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.License),
			newrelic.ConfigEnabled(cfg.NewRelic.Enabled),
		)
		if err != nil {
			log.Fatalf("failed to start new relic: %v", err)
		}
		defer nrApp.Shutdown(5 * time.Second)
	}
	handle := func(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
		if nrApp != nil {
			mux.HandleFunc(newrelic.WrapHandleFunc(nrApp, pattern, h))
			return
		}
		mux.HandleFunc(pattern, h)
	}

	// HTTP router
	mux := http.NewServeMux()

	// Static files
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("failed to get static fs: %v", err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	// Auth views
	handle(mux, "GET /login", authHandler.LoginPage)
	handle(mux, "POST /login", authHandler.Login)
	handle(mux, "GET /register", authHandler.RegisterPage)
	handle(mux, "POST /register", authHandler.Register)
	handle(mux, "POST /logout", noteHandler.Logout)

	// Notes view
	handle(mux, "GET /", noteHandler.HomePage)
	handle(mux, "GET /fragments/notes", noteHandler.NotesFragment)
	handle(mux, "POST /notes", noteHandler.CreateNote)
	handle(mux, "POST /notes/{id}/edit", noteHandler.EditNote)
	handle(mux, "POST /notes/edit/cancel", noteHandler.CancelEdit)
	handle(mux, "POST /notes/{id}/update", noteHandler.UpdateNote)
	handle(mux, "POST /notes/{id}/delete", noteHandler.DeleteNote)
	handle(mux, "POST /notes/{id}/share", noteHandler.ShareNote)
	handle(mux, "POST /notes/reorder", noteHandler.Reorder)
	handle(mux, "POST /search", noteHandler.Search)

	// Long-lived stream, kept out of transaction tracing
	mux.HandleFunc("GET /events", noteHandler.Events)

	// MCP endpoint (HTTP transport)
	// MCP uses POST for requests and GET for SSE streams
	mcpHTTP := mcpserver.NewHTTPHandler(mcpSrv)
	mux.Handle("POST /mcp", mcpHTTP)
	mux.Handle("GET /mcp", mcpHTTP)
	mux.Handle("DELETE /mcp", mcpHTTP)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()

		logger.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Port, "api", api.BaseURL())
	logger.Info("endpoints available",
		"web", "http://localhost:"+cfg.Port,
		"mcp", "http://localhost:"+cfg.Port+"/mcp",
	)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}

	logger.Info("server stopped")
}

func logLevel() slog.Level {
	if os.Getenv("LOG_LEVEL") == "debug" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
