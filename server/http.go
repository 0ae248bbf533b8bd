package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"filmroom/config"
	"filmroom/constant"
	filmHandler "filmroom/handler"
	"filmroom/pkg/rabbitmq"
	"filmroom/repository"
	"filmroom/service"
)

// Exchange/queue wiring shared with the out-of-process analysis pipeline.
const (
	filmExchange      = "film_exchange"
	processRouteKey   = "film.process.request"
	statusQueue       = "film_status_queue"
	statusRouteKey    = "film.status.report"
	statusDLX         = "film_exchange_dlx"
	statusDLQ         = "film_status_queue_dlq"
	statusDLQRouteKey = "dlq.film.status.report"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("NewRabbitMQConn")
	}

	repo := repository.NewRepo(cfg.DB)
	store := service.NewMinioStore(cfg.Storage, cfg.MediaBucket)
	processQueue := rabbitmq.NewPublisher(conn, cfg.Queue, filmExchange, processRouteKey)

	serviceDeps := filmHandler.ServiceDependencies{
		FilmService:    service.NewFilmService(repo, store, processQueue),
		SegmentService: service.NewSegmentService(repo),
		ClipService:    service.NewClipService(repo),
		StreamService:  service.NewStreamService(store),
	}

	// Pipeline status reports come back over the queue.
	statusConsumer := rabbitmq.NewConsumer(conn, cfg.Queue, rabbitmq.QueueSpec{
		Exchange:      filmExchange,
		Queue:         statusQueue,
		RoutingKey:    statusRouteKey,
		DLX:           statusDLX,
		DLQ:           statusDLQ,
		DLQRoutingKey: statusDLQRouteKey,
	}, cfg.Server.Workers, filmHandler.FilmStatusHandler)
	go func() {
		if err := statusConsumer.Consume(ctx, serviceDeps); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("film status consumer error")
		}
	}()

	r := gin.Default()
	addHealth(r)
	filmHandler.NewFilmHandler(serviceDeps, cfg.App.APIToken).Register(r)

	handler := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start film api server")
		if err := handler.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := handler.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Msg("server shutdown")
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}
