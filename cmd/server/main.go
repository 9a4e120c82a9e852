// AI Task Manager web server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/taskpilot/internal/api"
	"github.com/ashureev/taskpilot/internal/cache"
	"github.com/ashureev/taskpilot/internal/chat"
	"github.com/ashureev/taskpilot/internal/chatrpc"
	"github.com/ashureev/taskpilot/internal/config"
	"github.com/ashureev/taskpilot/internal/identity"
	"github.com/ashureev/taskpilot/internal/middleware"
	"github.com/ashureev/taskpilot/internal/store"
	"github.com/ashureev/taskpilot/internal/tasks"
	"github.com/ashureev/taskpilot/internal/users"
	"github.com/ashureev/taskpilot/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped successfully")
}

func run(cfg *config.Config) error {
	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "db_driver", cfg.Database.Driver)

	// Initialize dependencies.
	repo, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()
	slog.Info("Database connected", "driver", repo.Driver())

	var userOpts []users.Option
	var cachePinger api.Pinger
	if cfg.CacheEnabled() {
		rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer func() { _ = rc.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			slog.Warn("Redis unreachable, users cache will behave as misses", "error", err)
		}
		cancel()

		userOpts = append(userOpts, users.WithCache(rc, cfg.Redis.UsersTTL))
		cachePinger = rc
		slog.Info("Users cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.UsersTTL)
	}

	task, err := tasks.Load()
	if err != nil {
		return err
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}

	// Initialize services.
	chatSvc := chat.NewService(cfg.Chat.ReplyDelay)
	userSvc := users.NewService(repo, userOpts...)
	registry := chat.NewRegistry()

	// Initialize handlers.
	pageHandler := api.NewHandler(renderer, userSvc, task).WithLocation(cfg.DisplayLocation)
	healthHandler := api.NewHealthHandler(repo, cachePinger).WithSessions(registry)
	chatHandler := chat.NewHandler(chatSvc, cfg.Chat.MaxRequestBytes)
	wsHandler := chat.NewWebSocketHandler(chatSvc, registry, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	healthHandler.RegisterHealth(r)
	pageHandler.RegisterRoutes(r)
	chatHandler.RegisterRoutes(r)
	r.Get("/ws/chat", wsHandler.ServeHTTP)
	r.Handle("/static/*", web.StaticHandler())
	r.NotFound(api.NotFound)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // 0 = no timeout for websocket chats
		IdleTimeout:  120 * time.Second,
	}

	var (
		rpcServer   *chatrpc.Server
		rpcListener net.Listener
	)
	if cfg.GRPCPort != "" {
		rpcListener, err = net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return err
		}
		rpcServer = chatrpc.NewServer(chatSvc)
	} else {
		slog.Info("gRPC chat service disabled (GRPC_PORT not set)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if rpcServer != nil {
		g.Go(func() error {
			return rpcServer.Serve(rpcListener)
		})
	}

	// Wait for shutdown signal or a listener failure.
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down gracefully...")

		registry.CloseAll()
		if rpcServer != nil {
			rpcServer.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
			return err
		}
		return nil
	})

	return g.Wait()
}
