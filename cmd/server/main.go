package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/sleepingqueens/queens-server-go/internal/config"
	"github.com/sleepingqueens/queens-server-go/internal/game"
	"github.com/sleepingqueens/queens-server-go/internal/repository"
	"github.com/sleepingqueens/queens-server-go/internal/room"
	"github.com/sleepingqueens/queens-server-go/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting queens server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
	logger.Info("queens server stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// Cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var engineOpts []game.Option
	if cfg.Game.Seed != 0 {
		engineOpts = append(engineOpts, game.WithSeed(cfg.Game.Seed))
		logger.Warn("deterministic shuffles enabled", zap.Uint64("seed", cfg.Game.Seed))
	}
	engine := game.NewEngine(logger.Named("engine"), engineOpts...)

	roomOpts := []room.Option{room.WithMaxPlayers(cfg.Game.MaxPlayers)}

	// Optional results archive
	var results server.ResultLister
	if cfg.Database.Enabled {
		db, err := repository.NewDB(ctx, cfg.Database, logger.Named("db"))
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)

		matches := repository.NewMatchRepository(db)
		if err := matches.EnsureSchema(ctx); err != nil {
			return err
		}
		roomOpts = append(roomOpts, room.WithResultRecorder(matches))
		results = matches
	} else {
		logger.Info("results archive disabled")
	}

	roomMgr := room.NewManager(engine, logger.Named("rooms"), roomOpts...)
	logger.Info("room manager initialized", zap.Int("max_players", cfg.Game.MaxPlayers))

	hub := server.NewHub(server.RoomStateSource(roomMgr), server.OriginChecker(cfg.Server.AllowedOrigins), logger.Named("hub"))
	roomMgr.SetNotificationHandler(hub.HandleNotification)

	api := server.NewServer(roomMgr, hub, results, cfg.Server.AllowedOrigins, logger.Named("http"))
	httpServer := &http.Server{
		Addr:         cfg.Server.HTTP.Address,
		Handler:      api.Handler(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
	}

	grpcServer := server.NewGRPCServer(logger.Named("grpc"))
	lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.GRPC.Address, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("starting HTTP server", zap.String("address", cfg.Server.HTTP.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("starting gRPC server", zap.String("address", cfg.Server.GRPC.Address))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down gracefully...", zap.Duration("timeout", cfg.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		grpcServer.Drain()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown incomplete", zap.Error(err))
		}
		grpcServer.Stop(shutdownCtx)
		return nil
	})

	return g.Wait()
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
