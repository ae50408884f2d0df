package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/auth"
	"github.com/raseen-shahil/Med-App-sub000/cache"
	medicineControllers "github.com/raseen-shahil/Med-App-sub000/controllers/medicine"
	orderControllers "github.com/raseen-shahil/Med-App-sub000/controllers/order"
	"github.com/raseen-shahil/Med-App-sub000/database"
	"github.com/raseen-shahil/Med-App-sub000/events"
	"github.com/raseen-shahil/Med-App-sub000/logger"
	"github.com/raseen-shahil/Med-App-sub000/routes"
	"github.com/raseen-shahil/Med-App-sub000/storage"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	log.Info().Msg("✅ Starting application...")
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}

	db, err := database.Open(cfg.DSN())
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		return err
	}

	catalogCache, err := openCache(ctx)
	if err != nil {
		return err
	}

	publisher, err := events.New(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	app, err := auth.NewFirebaseApp(ctx, cfg.FirebaseCredentialsJSON, cfg.FirebaseProjectID, cfg.FirebaseStorageBucket)
	if err != nil {
		return err
	}
	verifier, err := auth.NewFirebaseVerifier(ctx, app, cfg.FirebaseProjectID)
	if err != nil {
		return err
	}
	store, err := imageStore(ctx, app)
	if err != nil {
		return err
	}
	uploader := storage.NewUploader(store, cfg.ImageMaxSide, cfg.ImageQuality, cfg.UploadAttempts, cfg.UploadBaseDelay)

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	hub := orderControllers.NewHub()
	defer hub.Close()

	fee, freeOver := cfg.Shipping()
	orders := orderControllers.NewService(db, publisher, hub, fee, freeOver, cfg.DeliveryDays)
	logShipping(fee, freeOver)

	if cfg.AdminAPIKey == "" {
		log.Warn().Msg("ADMIN_API_KEY is empty; /admin routes will reject every request")
	}

	r := gin.New()
	// Allow large file uploads (32 MB in memory, the rest spills to disk)
	r.MaxMultipartMemory = 32 << 20
	r.Use(logger.RequestID(), logger.RequestLogger(&log.Logger), logger.Recover(&log.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Origins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY", "Idempotency-Key", logger.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.ImageStore == "local" {
		// Serve uploaded images
		r.Static("/uploads", cfg.UploadsDir)
	}

	routes.SetupRoutes(r, routes.Deps{
		DB:          db,
		Issuer:      issuer,
		Auth:        auth.NewHandler(db, verifier, issuer, publisher),
		Catalog:     &medicineControllers.Catalog{DB: db, Cache: catalogCache, Images: uploader},
		Orders:      orders,
		Hub:         hub,
		AdminAPIKey: cfg.AdminAPIKey,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("🚀 Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("🛑 shutting down")
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.ImageStore == "local" {
		g.Go(func() error {
			// back up images daily at the configured hour and keep BACKUP_RETENTION worth
			storage.RunDailyBackup(gctx, cfg.UploadsDir, cfg.BackupDir, cfg.BackupRetention, cfg.BackupHour)
			return nil
		})
	}
	return g.Wait()
}

func openCache(ctx context.Context) (cache.Cache, error) {
	if cfg.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR not set; catalog cache disabled")
		return cache.Noop{}, nil
	}
	client, err := cache.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("catalog cache enabled")
	return cache.NewRedis(client, cfg.CacheTTL), nil
}

func imageStore(ctx context.Context, app *firebase.App) (storage.ImageStore, error) {
	if cfg.ImageStore == "firebase" {
		return storage.NewFirebaseStore(ctx, app, cfg.FirebaseStorageBucket)
	}
	log.Info().Str("dir", cfg.UploadsDir).Msg("storing images on local disk")
	return storage.NewLocalStore(cfg.UploadsDir, cfg.PublicBaseURL), nil
}

func logShipping(fee, freeOver decimal.Decimal) {
	ev := log.Info().Str("fee", fee.String())
	if freeOver.IsPositive() {
		ev = ev.Str("free_over", freeOver.String())
	}
	ev.Int("delivery_days", cfg.DeliveryDays).Msg("shipping configured")
}
