package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kidandcat/tracker/internal/auth"
	"github.com/kidandcat/tracker/internal/config"
	"github.com/kidandcat/tracker/internal/db"
	"github.com/kidandcat/tracker/internal/logger"
	"github.com/kidandcat/tracker/internal/server"
)

func main() {
	configPath := flag.String("config", "config.json", "path to JSON config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	d, err := db.Open(cfg.Server.DataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer d.Close()

	ctx := context.Background()

	if cfg.Server.SeedDemo {
		hash, err := auth.HashPassword(cfg.Server.DemoPassword)
		if err != nil {
			return fmt.Errorf("hash demo password: %w", err)
		}
		seeded, err := d.Seed(ctx, hash)
		if err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		if seeded {
			log.Info("seeded demo data", zap.String("data_dir", cfg.Server.DataDir))
		}
	}

	// Sync admin users from config
	adminHash, err := auth.HashPassword(cfg.Server.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	created, err := d.SyncAdmins(ctx, cfg.Server.AdminEmails, adminHash)
	if err != nil {
		return fmt.Errorf("sync admins: %w", err)
	}
	for _, email := range created {
		log.Info("created admin user", zap.String("email", email))
	}

	api := server.NewAPI(d, log)
	srv := server.NewServer(cfg.Server.Addr, api.Router(), log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("received signal", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
