package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"virtualvault/internal/app"
	"virtualvault/internal/cache"
	"virtualvault/internal/config"
	"virtualvault/internal/events"
	"virtualvault/internal/logging"
	"virtualvault/internal/payment"
	"virtualvault/internal/repositories"
	"virtualvault/internal/seed"
	"virtualvault/internal/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           "vault",
		Short:         "Virtual Vault store backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.yaml)")

	root.AddCommand(
		newServeCmd(&configFile),
		newMigrateCmd(&configFile),
		newSeedCmd(&configFile),
		newMakeAdminCmd(&configFile),
	)
	return root
}

// env holds the resources shared by the commands.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *repositories.Store
	cache  cache.Cache
}

func setup(ctx context.Context, configFile string) (*env, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	store, err := repositories.OpenStore(ctx, cfg, logger.Named("store"))
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	var c cache.Cache = cache.Nop{}
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			_ = store.Close(ctx)
			_ = logger.Sync()
			return nil, err
		}
		c = redisCache
	}
	return &env{cfg: cfg, logger: logger, store: store, cache: c}, nil
}

func (e *env) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if rc, ok := e.cache.(*cache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			e.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if err := e.store.Close(ctx); err != nil {
		e.logger.Warn("failed to close store", zap.Error(err))
	}
	_ = e.logger.Sync()
}

func (e *env) authService() *services.AuthService {
	return services.NewAuthService(e.store.Users, services.AuthConfig{
		JWTSecret:  e.cfg.JWTSecret,
		TokenTTL:   e.cfg.JWTTTL,
		BcryptCost: e.cfg.BcryptCost,
	}, e.logger.Named("auth"))
}

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the order event consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			e, err := setup(ctx, *configFile)
			if err != nil {
				return err
			}
			defer e.close()
			return serve(ctx, e)
		},
	}
}

func serve(ctx context.Context, e *env) error {
	logger := e.logger
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	bus, err := events.Open(e.cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Warn("failed to close event bus", zap.Error(err))
		}
	}()

	gateway, err := payment.New(e.cfg.Braintree)
	if err != nil {
		return err
	}
	if _, ok := gateway.(payment.Unconfigured); ok {
		logger.Warn("braintree credentials missing, payments are disabled")
	}

	application := app.New(app.Deps{
		Config:       e.cfg,
		Logger:       logger,
		Store:        e.store,
		Cache:        e.cache,
		Events:       bus,
		Gateway:      gateway,
		EventsDriver: e.cfg.EventsDriver,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", e.cfg.AppPort), zap.String("store", e.store.Driver))
		return application.Fiber.Listen(e.cfg.AppPort)
	})
	g.Go(func() error {
		logger.Info("starting order event consumer", zap.String("driver", e.cfg.EventsDriver))
		return bus.Consume(gctx, events.LogHandler(logger.Named("consumer")))
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return application.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("server gracefully stopped")
	return nil
}

func newMigrateCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables (SQL) or indexes (MongoDB)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd.Context(), *configFile)
			if err != nil {
				return err
			}
			defer e.close()
			if err := e.store.Migrate(cmd.Context()); err != nil {
				return err
			}
			e.logger.Info("migration complete", zap.String("store", e.store.Driver))
			return nil
		},
	}
}

func newSeedCmd(configFile *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories, products and users from a YAML fixture",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fixture, err := seed.LoadFile(file)
			if err != nil {
				return err
			}
			e, err := setup(cmd.Context(), *configFile)
			if err != nil {
				return err
			}
			defer e.close()
			if err := e.store.Migrate(cmd.Context()); err != nil {
				return err
			}

			logger := e.logger
			seeder := seed.NewSeeder(e.store,
				e.authService(),
				services.NewCategoryService(e.store.Categories, e.cache, e.cfg.CacheTTL, logger.Named("category")),
				services.NewProductService(e.store.Products, e.store.Categories, e.cache, e.cfg.CacheTTL, logger.Named("product")),
				logger.Named("seed"),
			)
			res, err := seeder.Apply(cmd.Context(), fixture, filepath.Dir(file))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d categories, %d products, %d users (%d skipped)\n",
				res.Categories, res.Products, res.Users, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "catalog.yaml", "seed fixture")
	return cmd
}

func newMakeAdminCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "make-admin <email>",
		Short: "Grant the admin role to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), *configFile)
			if err != nil {
				return err
			}
			defer e.close()
			user, err := e.authService().MakeAdmin(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", user.Email)
			return nil
		},
	}
}
