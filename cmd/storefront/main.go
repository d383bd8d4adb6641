package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/config"
	h "github.com/fjod/storefront/internal/http"
	"github.com/fjod/storefront/internal/mailer"
	"github.com/fjod/storefront/internal/publisher"
	"github.com/fjod/storefront/internal/repository"
	"github.com/fjod/storefront/internal/reservation"
	"github.com/fjod/storefront/internal/service"
	"github.com/fjod/storefront/internal/shipping"
	"github.com/fjod/storefront/internal/store"
	"github.com/fjod/storefront/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := logger.New(cfg.LogLevel)
	log.Info("storefront starting...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catalog
	provider := newCatalogProvider(cfg, log)

	// Cart store
	cartStore, closeStore := newCartStore(ctx, cfg, log)
	defer closeStore()

	// Database setup
	repo, err := newRepository(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	log.WithField("driver", cfg.DBDriver).Info("database migrations completed")

	// Mail
	sender, err := newSender(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to configure mail")
	}

	estimator := shipping.Estimator{BoxCapacity: cfg.BoxCapacity, RatePerBox: cfg.RatePerBox}
	cartService := service.NewCartService(cartStore, provider, estimator, log)
	reservationService := service.NewReservationService(cartService, repo, sender, reservation.Composer{
		ShopName:   cfg.ShopName,
		From:       cfg.MailFrom,
		OwnerEmail: cfg.OwnerEmail,
	}, log)

	router := h.NewRouter(h.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		SessionTTL:     cfg.CartTTL,
		SecureCookies:  cfg.SecureCookies,
		ReserveLimit:   cfg.ReserveLimit,
		ReserveWindow:  cfg.ReserveWindow,
	}, h.NewHandlers(provider, cartService, reservationService), log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("port", cfg.HTTPPort).Info("storefront listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(repo, publisher.NewKafkaWriter(cfg.KafkaTopic, cfg.KafkaBrokers...), log)
		defer poller.Close()
		g.Go(func() error {
			log.WithField("brokers", cfg.KafkaBrokers).Info("outbox poller started")
			poller.Run(gctx)
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server stopped with error")
		return
	}
	log.Info("server exited")
}

func newCatalogProvider(cfg *config.Config, log logrus.FieldLogger) catalog.Provider {
	if cfg.CatalogURL == "" {
		log.Warn("CATALOG_URL not set, serving fallback catalog")
		return catalog.NewStaticProvider(catalog.Fallback())
	}
	sheet := catalog.NewSheetProvider(cfg.CatalogURL, &http.Client{Timeout: cfg.CatalogTimeout}, log)
	return catalog.NewCachedProvider(sheet, cfg.CatalogCacheTTL, log)
}

func newCartStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (store.CartStore, func()) {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set, carts are kept in memory")
		s := store.NewMemoryStore(cfg.CartTTL)
		return s, func() { _ = s.Close() }
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("redis connection failed")
	}
	log.Info("redis ping succeeded")
	return store.NewRedisStore(redisClient, cfg.CartTTL), func() { _ = redisClient.Close() }
}

func newRepository(cfg *config.Config) (*repository.Repository, error) {
	if cfg.DBDriver == repository.DriverPostgres {
		return repository.NewPostgresRepository(&repository.Credentials{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
	}
	return repository.NewSQLiteRepository(cfg.SQLitePath)
}

func newSender(cfg *config.Config, log logrus.FieldLogger) (mailer.Sender, error) {
	if !cfg.SMTPEnabled() {
		log.Warn("SMTP_HOST not set, emails are logged instead of sent")
		return mailer.NewLogSender(log), nil
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		Timeout:  cfg.SMTPTimeout,
	})
}
