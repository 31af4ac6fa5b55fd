package main

import (
	"context"
	"expvar"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/emzola/shelflog/config"
	"github.com/emzola/shelflog/handler"
	"github.com/emzola/shelflog/internal/jsonlog"
	"github.com/emzola/shelflog/repository"
	"github.com/emzola/shelflog/repository/memory"
	"github.com/emzola/shelflog/repository/mongodb"
	"github.com/emzola/shelflog/repository/postgres"
	"github.com/emzola/shelflog/service"
	"github.com/spf13/cobra"
)

// app defines the application's layers and shared resources.
type app struct {
	config  config.Config
	logger  *jsonlog.Logger
	wg      *sync.WaitGroup
	repo    repository.Repository
	service service.Service
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "shelflogd",
		Short:         "ShelfLog API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (defaults to $CONFIG_PATH)")
	root.AddCommand(serveCmd(&configPath), importCmd(&configPath), backupCmd(&configPath))
	return root
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			cache := handler.NewLimiterCache()
			go cache.Start()
			defer cache.Stop()

			publishMetrics(a.repo)
			h := handler.New(a.config, a.logger, cache, a.service)
			err = a.serve(h.Routes())
			if err != nil {
				a.logger.PrintError(err, nil)
			}
			return err
		},
	}
}

func importCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Add the books of a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ctx, cancel := a.readyContext(cmd.Context())
			defer cancel()
			if err := repository.WaitReady(ctx, a.repo, 100*time.Millisecond); err != nil {
				return fmt.Errorf("database not ready: %w", err)
			}
			report, err := a.service.ImportBooks(cmd.Context(), f)
			if err != nil {
				return err
			}
			for _, failure := range report.Failures {
				a.logger.PrintInfo("book rejected", map[string]string{
					"index":  fmt.Sprint(failure.Index),
					"title":  failure.Title,
					"reason": failure.Reason,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d books, %d failed\n", report.Inserted, report.Failed)
			return nil
		},
	}
}

func backupCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Upload a JSON snapshot of every book to S3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := a.readyContext(cmd.Context())
			defer cancel()
			if err := repository.WaitReady(ctx, a.repo, 100*time.Millisecond); err != nil {
				return fmt.Errorf("database not ready: %w", err)
			}
			key, err := a.service.BackupBooks(cmd.Context())
			if err != nil {
				return err
			}
			a.logger.PrintInfo("backup uploaded", map[string]string{
				"bucket": a.config.S3.Bucket,
				"key":    key,
			})
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}

// newApp loads the configuration and builds the persistence and service
// layers shared by every subcommand.
func newApp(configPath string) (*app, error) {
	cfg, err := config.Decode(configPath)
	if err != nil {
		return nil, err
	}
	level, err := jsonlog.ParseLevel(cfg.Logger.Level)
	if err != nil {
		return nil, err
	}
	logger := jsonlog.New(os.Stdout, level)

	repo, err := openRepository(cfg, logger)
	if err != nil {
		logger.PrintError(err, map[string]string{"driver": cfg.Database.Driver})
		return nil, err
	}
	logger.PrintInfo("database configured", map[string]string{"driver": cfg.Database.Driver})

	var wg sync.WaitGroup
	return &app{
		config:  cfg,
		logger:  logger,
		wg:      &wg,
		repo:    repo,
		service: service.New(cfg, &wg, logger, repo),
	}, nil
}

// openRepository selects the persistence backend named by the driver setting.
func openRepository(cfg config.Config, logger *jsonlog.Logger) (repository.Repository, error) {
	switch cfg.Database.Driver {
	case "mongodb":
		client, err := mongodb.OpenClient(cfg)
		if err != nil {
			return nil, err
		}
		return mongodb.New(client, cfg, logger), nil
	case "postgres":
		db, err := postgres.OpenDBConn(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.New(db, cfg, logger), nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// readyContext bounds how long a one-shot command waits for the database.
func (a *app) readyContext(parent context.Context) (context.Context, context.CancelFunc) {
	wait := a.config.Database.ServerSelectionTimeout + a.config.Database.ReconnectDelay
	return context.WithTimeout(parent, wait)
}

// close waits for background work and releases the database.
func (a *app) close() {
	a.wg.Wait()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.repo.Close(ctx); err != nil {
		a.logger.PrintError(err, nil)
	}
}

func publishMetrics(repo repository.Repository) {
	if expvar.Get("version") != nil {
		return
	}
	expvar.NewString("version").Set(handler.Version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("database_ready", expvar.Func(func() any {
		return repo.Ready()
	}))
	expvar.Publish("timestamp", expvar.Func(func() any {
		return time.Now().Unix()
	}))
}
