package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"little-realm/server/auth"
	"little-realm/server/config"
	"little-realm/server/handlers"
	"little-realm/server/logger"
	"little-realm/server/network"
	"little-realm/server/persistence"
	"little-realm/server/services"
	"little-realm/server/templates"
)

func main() {
	logger.Init()
	if err := run(); err != nil {
		logger.Log.WithError(err).Fatal("Server stopped")
	}
	logger.Log.Info("Server stopped")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := persistence.Open(cfg.DBType, cfg.DatabaseURL, cfg.DBFile)
	if err != nil {
		return fmt.Errorf("initialize persistence: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Log.WithError(err).Warn("Failed to close persistence")
		}
	}()
	logger.Log.WithField("backend", cfg.DBType).Info("Persistence initialized")

	credentials, err := auth.LoadFile(cfg.UsersFile)
	if err != nil {
		return err
	}

	lib, err := loadTemplates(cfg.TemplateDir)
	if err != nil {
		return err
	}
	logger.Log.WithFields(logrus.Fields{
		"items":     len(lib.Items),
		"lifeforms": len(lib.LifeForms),
		"rooms":     len(lib.Rooms),
	}).Info("Templates loaded")

	store := services.NewEntityStore(db, cfg.InventoryCapacity)
	factory := services.NewFactory(store, lib)
	players := services.NewPlayerService(store, factory, services.StartPosition{
		Room: cfg.StartRoom,
		X:    cfg.StartX,
		Y:    cfg.StartY,
	})
	worker := handlers.NewWorker(handlers.NewDispatcher(store, players, credentials))
	server := network.NewServer(worker, cfg.HandshakeTimeout, cfg.MaxMessageSize)

	// The worker outlives the listeners so online characters can be saved
	// after the last session ends.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan error, 1)
	go func() { workerDone <- worker.Run(workerCtx) }()
	defer func() {
		stopWorker()
		<-workerDone
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	if cfg.TCPAddr != config.Disabled {
		ln, err := net.Listen("tcp", cfg.TCPAddr)
		if err != nil {
			return fmt.Errorf("listen tcp %s: %w", cfg.TCPAddr, err)
		}
		g.Go(func() error { return server.ServeTCP(gctx, ln) })
	}
	if cfg.HTTPAddr != config.Disabled {
		ln, err := net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			return fmt.Errorf("listen http %s: %w", cfg.HTTPAddr, err)
		}
		g.Go(func() error { return server.ServeWebSocket(gctx, ln) })
	}

	serveErr := g.Wait()
	logger.Log.Info("Shutting down")
	server.Shutdown()

	var saveErr error
	if err := worker.Do(context.Background(), func(*handlers.Dispatcher) {
		saveErr = players.SaveAll()
	}); err != nil {
		return fmt.Errorf("save characters: %w", err)
	}
	if saveErr != nil {
		logger.Log.WithError(saveErr).Error("Failed to save some characters")
	}
	return serveErr
}

func loadTemplates(dir string) (*templates.Library, error) {
	if dir == "" {
		return templates.Default()
	}
	return templates.LoadDir(dir)
}
