package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/BlackForgeOfficial/ShadowEconomy/internal/config"
	"github.com/BlackForgeOfficial/ShadowEconomy/internal/events/kafka"
	"github.com/BlackForgeOfficial/ShadowEconomy/internal/httpapi"
	"github.com/BlackForgeOfficial/ShadowEconomy/internal/interfaces"
	"github.com/BlackForgeOfficial/ShadowEconomy/internal/ledger"
	"github.com/BlackForgeOfficial/ShadowEconomy/internal/metrics"
	"github.com/BlackForgeOfficial/ShadowEconomy/internal/storage/memory"
	"github.com/BlackForgeOfficial/ShadowEconomy/internal/storage/postgres"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "shadoweconomy",
	Short: "Concurrent balance ledger with a ranked top-balances view",
	RunE:  runServe,
}

func main() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}

	var pub interfaces.EventPublisher
	var kafkaPub *kafka.Publisher
	if cfg.Kafka.Enabled {
		kafkaPub = kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		pub = kafkaPub
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("kafka publisher enabled")
	}

	stats := metrics.NewRegistry()
	promReg := prometheus.NewRegistry()
	stats.MustRegister(promReg)

	led, err := ledger.New(ctx, store, ledger.Options{
		Publisher:   pub,
		Logger:      log.Logger,
		Metrics:     stats,
		SaveTimeout: cfg.Ledger.SaveTimeout,
		EventBuffer: cfg.Ledger.EventBuffer,
	})
	if err != nil {
		return err
	}

	srv := httpapi.NewServer(cfg.Server, led, log.Logger, promReg)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := led.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ledger shutdown")
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			log.Error().Err(err).Msg("kafka shutdown")
		}
	}
	return nil
}

func buildStore(ctx context.Context, cfg config.Config) (interfaces.BalanceStore, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.Storage.Postgres)
		if err != nil {
			return nil, err
		}
		store := postgres.NewPostgresBalanceStore(db, cfg.Storage.Postgres.QueryTimeout)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		log.Info().Msg("using postgres balance store")
		return store, nil
	default:
		log.Info().Msg("using in-memory balance store")
		return memory.NewMemoryBalanceStore(), nil
	}
}
