package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video-api/domain/repository"
	"video-api/infrastructure/cache"
	"video-api/infrastructure/configuration"
	"video-api/infrastructure/filecsv"
	"video-api/infrastructure/logger"
	"video-api/infrastructure/persistence"
	"video-api/infrastructure/pubsub"
	"video-api/infrastructure/rabbitmq"
	"video-api/infrastructure/servicebus"
	httpHandler "video-api/interfaces/http"
	"video-api/server"
	"video-api/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

// closers run in reverse order on shutdown.
type closers []func() error

func (c *closers) add(fn func() error) { *c = append(*c, fn) }

func (c closers) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while releasing resource")
		}
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	var resources closers
	defer resources.closeAll()

	videoRepository, ping, err := InitiateVideoRepository(ctx, &resources)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":  err,
			"vendor": configuration.C.Database.Vendor,
		}).Error("Database initialization failed")
		resources.closeAll()
		os.Exit(1)
	}

	if seedFile := configuration.C.App.SeedFile; seedFile != "" {
		SeedVideos(ctx, videoRepository, seedFile)
	}

	videoRepository = InitiateCache(ctx, videoRepository, &resources)
	videoEvent := InitiateEvents(ctx, &resources)

	var videoUsecase usecase.IVideoUsecase
	if videoEvent != nil {
		videoUsecase = usecase.NewVideoUsecase(videoRepository, videoEvent)
	} else {
		videoUsecase = usecase.NewVideoUsecase(videoRepository)
	}

	router := server.InitiateRouter(
		httpHandler.NewVideoHandler(videoUsecase),
		httpHandler.NewHealthHandler(ping),
		configuration.C.App.AllowOrigins,
	)

	port := configuration.C.App.Port
	logger.GetLogger().WithFields(map[string]interface{}{
		"port":   port,
		"vendor": configuration.C.Database.Vendor,
	}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.GetLogger().WithField("error", err).Warn("HTTP server shutdown did not complete")
		}
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		resources.closeAll()
		os.Exit(2)
	}
	logger.GetLogger().Info("Application stopped")
}

// InitiateVideoRepository opens the configured store and returns it with a
// ping used by the health check.
func InitiateVideoRepository(ctx context.Context, resources *closers) (repository.IVideo, httpHandler.PingFunc, error) {
	cfg := configuration.C.Database

	switch cfg.Vendor {
	case configuration.VendorMySQL:
		db, err := persistence.NewRepositories()
		if err != nil {
			return nil, nil, err
		}
		sqlDb, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		resources.add(sqlDb.Close)
		return persistence.NewVideoRepository(db), sqlDb.PingContext, nil

	case configuration.VendorPostgres:
		return initiateSQLStore(resources, cfg.Vendor, persistence.NewPostgreSQLDB, persistence.NewVideoRepositoryPostgres)

	case configuration.VendorMSSQL:
		return initiateSQLStore(resources, cfg.Vendor, persistence.NewMSSQLDB, persistence.NewVideoRepositoryMSSQL)

	case configuration.VendorSQLite:
		open := func() (*sql.DB, error) { return persistence.NewSQLiteDB(cfg.SQLite.Path) }
		return initiateSQLStore(resources, cfg.Vendor, open, persistence.NewVideoRepositorySQLite)

	case configuration.VendorMongo:
		mongoCfg := cfg.Mongo
		client, err := persistence.NewMongoDb(ctx, mongoCfg.Host, mongoCfg.Port, mongoCfg.User, mongoCfg.Password)
		if err != nil {
			return nil, nil, err
		}
		resources.add(func() error { return client.Disconnect(context.Background()) })
		ping := func(ctx context.Context) error { return client.Ping(ctx, nil) }
		return persistence.NewVideoRepositoryMongo(client, mongoCfg.Name), ping, nil
	}

	return nil, nil, fmt.Errorf("unsupported database vendor %q", cfg.Vendor)
}

func initiateSQLStore(
	resources *closers,
	vendor string,
	open func() (*sql.DB, error),
	newRepository func(*sql.DB) repository.IVideo,
) (repository.IVideo, httpHandler.PingFunc, error) {
	db, err := open()
	if err != nil {
		return nil, nil, err
	}
	resources.add(db.Close)

	if err := persistence.EnsureVideoSchema(db, vendor); err != nil {
		return nil, nil, err
	}
	logger.GetLogger().WithField("vendor", vendor).Info("Database connected.")
	return newRepository(db), db.PingContext, nil
}

// InitiateCache wraps the store with redis when a host is configured. An
// unreachable redis leaves the store unwrapped.
func InitiateCache(ctx context.Context, videoRepository repository.IVideo, resources *closers) repository.IVideo {
	redisCfg := configuration.C.RedisClient
	if !redisCfg.Enabled() {
		return videoRepository
	}

	redisClient, err := cache.NewCache(ctx, redisCfg.Addr(), redisCfg.Username, redisCfg.Password, redisCfg.DB)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - continuing without cache")
		return videoRepository
	}
	resources.add(redisClient.Close)
	logger.GetLogger().WithField("addr", redisCfg.Addr()).Info("Redis client initialized successfully.")

	return cache.NewVideoCache(videoRepository, redisClient, redisCfg.TTL())
}

// InitiateEvents returns the configured publisher, or nil when events are
// disabled or the broker cannot be reached.
func InitiateEvents(ctx context.Context, resources *closers) repository.IVideoEvent {
	events := configuration.C.Events

	var (
		videoEvent repository.IVideoEvent
		err        error
	)
	switch events.Driver {
	case "":
		return nil
	case configuration.EventsPubSub:
		client, clientErr := pubsub.NewPubSub(ctx, configuration.C.Pubsub)
		if err = clientErr; err == nil {
			videoEvent = pubsub.NewVideoPubSub(client, events.Topic)
		}
	case configuration.EventsServiceBus:
		client, clientErr := servicebus.NewServiceBus(ctx, configuration.C.ServiceBus)
		if err = clientErr; err == nil {
			videoEvent = servicebus.NewVideoServiceBus(client, events.Queue)
		}
	case configuration.EventsRabbitMQ:
		conn, connErr := rabbitmq.NewRabbitMQ(configuration.C.RabbitMQ.URL)
		if err = connErr; err == nil {
			videoEvent, err = rabbitmq.NewVideoRabbitMQ(conn, events.Queue)
			if err != nil {
				_ = conn.Close()
			}
		}
	default:
		err = fmt.Errorf("unsupported events driver %q", events.Driver)
	}

	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":  err,
			"driver": events.Driver,
		}).Warn("Event publisher not available - continuing without events")
		return nil
	}

	resources.add(videoEvent.Close)
	logger.GetLogger().WithField("driver", events.Driver).Info("Event publisher initialized")
	return videoEvent
}

// SeedVideos creates the videos listed in a CSV file. Ids that already exist
// are left untouched, so seeding is safe on every start.
func SeedVideos(ctx context.Context, videoRepository repository.IVideo, path string) {
	file, err := filecsv.NewFile(path)
	if err != nil {
		return
	}
	defer file.Close()

	videos, err := filecsv.ReadVideos(file)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error": err,
			"file":  path,
		}).Error("Error while reading seed file")
		return
	}

	created := 0
	for _, video := range videos {
		err := videoRepository.Create(ctx, video)
		switch {
		case err == nil:
			created++
		case errors.Is(err, repository.ErrVideoExists):
		default:
			logger.GetLogger().WithFields(map[string]interface{}{
				"error":    err,
				"video_id": video.ID,
			}).Warn("Error while seeding video")
		}
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"file":    path,
		"rows":    len(videos),
		"created": created,
	}).Info("Seed file loaded")
}
