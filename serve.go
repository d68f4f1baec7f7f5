package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chiaview/site-backend/api"
	"github.com/chiaview/site-backend/config"
	"github.com/chiaview/site-backend/database"
	"github.com/chiaview/site-backend/services"
)

const shutdownTimeout = 30 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("Initializing app...")
	cfg, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("provider", cfg.DBProvider).Str("env", cfg.AppEnv).Msg("configuration loaded")

	deps, err := buildDependencies(ctx, cfg, database.New(db))
	if err != nil {
		return err
	}

	server, err := api.NewServer(cfg, deps)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Closing server")
		server.ShutdownGracefully(shutdownTimeout)
		return nil
	})
	return g.Wait()
}

// buildDependencies constructs every outbound client once. Optional integrations
// that are not configured are left nil and their endpoints report as much.
func buildDependencies(ctx context.Context, cfg *config.Config, db database.Database) (api.Dependencies, error) {
	deps := api.Dependencies{Database: db}

	var identity services.IdentityProvider
	if cfg.DBProvider == config.ProviderLocalStorage {
		identity = services.NewLocalAuth(cfg.LocalAdminEmail, cfg.LocalAdminPassword, cfg.SessionSecret)
	} else {
		identity = services.NewSupabaseAuth(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	}
	deps.Auth = services.NewAdminAuth(identity, cfg.AdminAllowlist())

	deps.Stores = map[string]services.KVStore{
		config.ProviderSupabase: services.NewPostgresStore(db.DataStoreRepo()),
		config.ProviderFirebase: services.NewFirebaseStore(cfg.FirebaseURL, cfg.FirebaseSecret),
	}
	if cfg.DBProvider == config.ProviderLocalStorage {
		client, err := services.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return deps, err
		}
		deps.Stores[config.ProviderLocalStorage] = services.NewRedisStore(client, cfg.RedisNamespace)
	}

	var gateway services.PaymentGateway
	if g := services.NewStripeGateway(cfg.StripeSecretKey); g != nil {
		gateway = g
	} else {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, payments disabled")
	}
	deps.Payments = services.NewPayments(gateway, cfg.StripeWebhookSecret)

	deps.Notifier = services.NewContactNotifier(
		services.NewEmailSender(services.ResendBaseURL, cfg.ResendAPIKey, cfg.NotifyEmailFrom),
		cfg.NotifyEmailTo,
		services.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken),
		cfg.TwilioFromNumber,
		cfg.NotifySMSTo,
	)

	storage, err := services.NewObjectStorage(ctx, services.StorageConfig{
		Endpoint:        cfg.StorageEndpoint,
		Region:          cfg.StorageRegion,
		Bucket:          cfg.StorageBucket,
		AccessKeyID:     cfg.StorageAccessKey,
		SecretAccessKey: cfg.StorageSecretKey,
		PublicURL:       cfg.StoragePublicURL,
	})
	if err != nil {
		return deps, err
	}
	if storage != nil {
		deps.Uploader = storage
	}

	return deps, nil
}
