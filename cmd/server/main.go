package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"prabhas.dev/medication-box-service/pkg/common"
	"prabhas.dev/medication-box-service/pkg/config"
	"prabhas.dev/medication-box-service/pkg/db"
	medboxHttp "prabhas.dev/medication-box-service/pkg/http"
	"prabhas.dev/medication-box-service/pkg/medbox"
	"prabhas.dev/medication-box-service/pkg/notify"
	"prabhas.dev/medication-box-service/pkg/store"
)

func main() {
	// .env is a development convenience; in production everything comes
	// from the real environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatal("Error loading .env file: ", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	var dbInstance *db.DB
	switch cfg.DBType {
	case config.DBTypeFile:
		dbInstance = db.GetInstance(db.UseSqliteDialector())
	case config.DBTypeMemory:
		dbInstance = db.GetInstance(db.UseMemorySqliteDialector())
	}

	logger := common.GetLogger()

	docStore := store.NewGormStore(dbInstance)

	box := medbox.MedBox{
		Store: docStore,
	}
	box.WithServices(medbox.ServiceOpts{
		Status:   box.GetIStatus(),
		Schedule: box.GetISchedule(),
	})

	if cfg.PushEnabled() {
		worker := notify.NewWorker(cfg.NotifyWorkers, docStore, &webpush.Options{
			Subscriber:      cfg.PushSubject,
			VAPIDPublicKey:  cfg.VapidPublicKey,
			VAPIDPrivateKey: cfg.VapidPrivateKey,
			TTL:             3600,
		})
		if err := worker.Start(context.Background()); err != nil {
			log.Fatal("Failed to start missed-dose notifier: ", err)
		}
		logger.Info("Missed-dose notifier started", zap.Int("workers", cfg.NotifyWorkers))
	} else {
		logger.Info("Push notifications disabled, no VAPID keys configured")
	}

	var responseCache *gocache.Cache
	if cfg.CacheTTL > 0 {
		responseCache = gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}

	rs := &medboxHttp.RestfulServer{
		Server:           gin.Default(),
		Box:              &box,
		Cfg:              cfg,
		RateLimiterStore: medbox.NewRateLimiterStore(rate.Limit(cfg.DeviceRate), cfg.DeviceBurst),
		ResponseCache:    responseCache,
	}
	rs.Setup()

	logger.Info("http server created with:",
		zap.Float64("device_rate", cfg.DeviceRate),
		zap.Int("device_burst", cfg.DeviceBurst),
		zap.Duration("cache_ttl", cfg.CacheTTL))

	logger.Info("Starting HTTP server on: " + cfg.HTTPHostPort)
	if err := rs.Server.Run(cfg.HTTPHostPort); err != nil {
		log.Fatalf("http server failed to serve: %v", err)
	}
}
