package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shirtcatalog/internal/config"
	"shirtcatalog/internal/logging"
	"shirtcatalog/internal/models"
	"shirtcatalog/internal/repositories"
	"shirtcatalog/internal/services"
	"shirtcatalog/pkg/rabbitmq"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand(viper.New()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(v *viper.Viper) *cobra.Command {
	var configFile string

	load := func() (config.Config, error) {
		cfg, err := config.Load(v, configFile)
		if err != nil {
			return config.Config{}, err
		}
		if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
			return config.Config{}, err
		}
		return cfg, nil
	}

	root := &cobra.Command{
		Use:           "shirtcatalog",
		Short:         "Shirt catalog HTTP service",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	root.PersistentFlags().String("port", "", "listen address, e.g. :3000")
	root.PersistentFlags().String("driver", "", "record store driver: mongo, postgres, sqlite or memory")
	_ = v.BindPFlag("APP_PORT", root.PersistentFlags().Lookup("port"))
	_ = v.BindPFlag("DATABASE_DRIVER", root.PersistentFlags().Lookup("driver"))

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE:  root.RunE,
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Prepare the record store schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			repo, err := repositories.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer repo.Close()
			if err := repo.Migrate(cmd.Context()); err != nil {
				return err
			}
			log.Info().Str("driver", cfg.Database.Driver).Msg("record store migrated")
			return nil
		},
	})
	return root
}

func serve(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// A store that cannot be reached is fatal: never serve without a backing store.
	repo, err := repositories.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to connect to record store")
	}
	defer repo.Close()
	if err := repo.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate record store")
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("record store connected")

	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Warn().Err(err).Msg("catalog events disabled")
		} else {
			defer mqClient.Close()
			events = mqClient
			startEventConsumer(cfg, mqClient)
		}
	}

	app, err := newApp(cfg, repo, events)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("starting server")
		listenErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info().Msg("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during Fiber shutdown")
	}
	log.Info().Msg("server gracefully stopped")
	return nil
}

type eventConsumer interface {
	ConsumeCatalogEvents(handler func(models.CatalogEvent) error) error
}

// startEventConsumer attaches the logging consumer when RABBITMQ_CONSUME is set.
func startEventConsumer(cfg config.Config, consumer eventConsumer) {
	if !cfg.ConsumeEvents {
		return
	}
	if err := consumer.ConsumeCatalogEvents(logCatalogEvent); err != nil {
		log.Warn().Err(err).Msg("failed to start catalog event consumer")
	}
}

func logCatalogEvent(event models.CatalogEvent) error {
	log.Info().
		Str("event", event.Type).
		Str("shirt_id", event.Shirt.ID).
		Str("photo", event.Shirt.PhotoRef).
		Time("occurred_at", event.OccurredAt).
		Msg("catalog event received")
	return nil
}
