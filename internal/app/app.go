package app

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vewake/tle-assignment/internal/cache"
	"github.com/vewake/tle-assignment/internal/config"
	"github.com/vewake/tle-assignment/internal/delivery/httpd"
	"github.com/vewake/tle-assignment/internal/repository"
	"github.com/vewake/tle-assignment/internal/service"
	"github.com/vewake/tle-assignment/internal/service/integration"
	"github.com/vewake/tle-assignment/internal/storage"
	"github.com/vewake/tle-assignment/internal/worker"
	"github.com/vewake/tle-assignment/internal/worker/queue"
	"github.com/vewake/tle-assignment/pkg/rabbitmq"
)

type App struct {
	server      *http.Server
	logger      zerolog.Logger
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	publisher   integration.EventPublisher
	syncConn    *amqp.Connection
	syncWorker  worker.SyncWorker
	stopWorker  context.CancelFunc
}

func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	a := &App{
		logger: log,
		config: cfg,
		db:     db,
	}

	studentCache := a.newCache(ctx)
	a.publisher = a.newPublisher()
	objectStorage := a.newStorage()

	judge := integration.NewCodeforcesClient(
		cfg.Codeforces.BaseURL,
		cfg.Codeforces.Timeout,
		cfg.Codeforces.SubmissionCount,
		log,
	)

	studentRepo := repository.NewStudentRepository(db, log)
	settingsRepo := repository.NewSettingsRepository(db, log)

	settingsService := service.NewSettingsService(settingsRepo, log)
	studentService := service.NewStudentService(studentRepo, settingsService, judge, studentCache, log)
	reconciler := service.NewReconciler(judge, studentRepo, studentCache, log)
	syncService := service.NewSyncService(
		studentRepo,
		settingsService,
		reconciler,
		a.publisher,
		service.NewFixedDelayPacer(cfg.Sync.PacingDelay),
		log,
	)
	exportService := service.NewExportService(studentService, objectStorage, log)

	a.startSyncWorker(syncService)

	handler := httpd.NewHandler(
		studentService,
		syncService,
		settingsService,
		exportService,
		cfg.Server.RequestTimeout,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpd.RequestLogger(log))
	router.Use(httpd.Recovery(log))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	a.server = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return a, nil
}

// newCache returns a disabled cache when Redis is not configured or down.
func (a *App) newCache(ctx context.Context) *cache.StudentCache {
	if a.config.Redis.URL == "" {
		a.logger.Info().Msg("Redis not configured, student cache disabled")
		return cache.NewStudentCache(nil, a.config.Redis.TTL, a.logger)
	}

	client, err := cache.NewRedisClient(ctx, a.config.Redis.URL)
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to connect to Redis, student cache disabled")
		return cache.NewStudentCache(nil, a.config.Redis.TTL, a.logger)
	}

	a.redisClient = client
	a.logger.Info().Dur("ttl", a.config.Redis.TTL).Msg("Student cache enabled")

	return cache.NewStudentCache(client, a.config.Redis.TTL, a.logger)
}

func (a *App) newPublisher() integration.EventPublisher {
	publisher, err := integration.NewRabbitMQClient(
		a.config.RabbitMQ.URL,
		a.config.RabbitMQ.Exchange,
		a.config.RabbitMQ.InactiveRoutingKey,
		a.logger,
	)
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to create RabbitMQ client, inactivity events disabled")
		return integration.NoopPublisher{}
	}
	return publisher
}

func (a *App) newStorage() storage.ObjectStorage {
	cfg := a.config.Storage
	if cfg.Endpoint == "" {
		a.logger.Info().Msg("Object storage not configured, export archiving disabled")
		return nil
	}

	s, err := storage.NewMinIOStorage(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.Bucket, cfg.Region, cfg.UseSSL, a.logger)
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to create MinIO client, export archiving disabled")
		return nil
	}
	return s
}

// startSyncWorker listens for externally scheduled sync requests. Without
// RabbitMQ, syncs can still be triggered over HTTP.
func (a *App) startSyncWorker(syncService service.SyncService) {
	cfg := a.config.RabbitMQ

	conn, err := rabbitmq.NewConnection(cfg.URL)
	if err != nil {
		a.logger.Error().Err(err).Msg("Sync request consumer disabled")
		return
	}

	channel, err := rabbitmq.NewChannel(conn)
	if err == nil {
		err = rabbitmq.DeclareExchange(channel, cfg.Exchange)
	}
	var queueName string
	if err == nil {
		queueName, err = rabbitmq.DeclareBoundQueue(channel, cfg.Exchange, cfg.SyncQueueName, cfg.SyncRoutingKey)
	}
	if err != nil {
		a.logger.Error().Err(err).Msg("Sync request consumer disabled")
		conn.Close()
		return
	}

	consumer := queue.NewRabbitMQConsumer(channel, queueName, cfg.ConsumerTag, a.logger)
	syncWorker := worker.NewSyncWorker(consumer, syncService, a.logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	if err := syncWorker.Start(workerCtx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to start sync worker")
		cancel()
		conn.Close()
		return
	}

	a.syncConn = conn
	a.syncWorker = syncWorker
	a.stopWorker = cancel
}

func (a *App) Run() error {
	a.logger.Info().Msgf("Starting tracker on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down tracker...")

	err := a.server.Shutdown(ctx)

	if a.syncWorker != nil {
		a.stopWorker()
		if err := a.syncWorker.Stop(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to stop sync worker")
		}
		if err := a.syncConn.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close sync consumer connection")
		}
	}

	if err := a.publisher.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close Redis connection")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	return err
}
