package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/K-Gaydukov/marketplace/configs"
	"github.com/K-Gaydukov/marketplace/internal/adapter/cache"
	"github.com/K-Gaydukov/marketplace/internal/adapter/catalog"
	"github.com/K-Gaydukov/marketplace/internal/adapter/kafka"
	"github.com/K-Gaydukov/marketplace/internal/adapter/queue"
	"github.com/K-Gaydukov/marketplace/internal/adapter/repo"
	"github.com/K-Gaydukov/marketplace/internal/logging"
	"github.com/K-Gaydukov/marketplace/internal/security"
	"github.com/K-Gaydukov/marketplace/internal/usecase"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	orderhttp "github.com/K-Gaydukov/marketplace/internal/adapter/http"
	"github.com/K-Gaydukov/marketplace/internal/adapter/http/middleware"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logging.Init(cfg.App.Name, cfg.App.LogFile)
	log := logging.New("app")

	// init database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, nil, err
	}

	log.Info("order-api: starting up")

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, err
	}

	// init rabbitmq
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}
	producer, err := queue.NewRabbitProducer(ch)
	if err != nil {
		return nil, nil, err
	}

	// init kafka
	kp, err := kafka.NewSyncProducer(cfg.Kafka.Brokers)
	if err != nil {
		return nil, nil, err
	}
	stream := kafka.NewStatusProducer(kp, cfg.Kafka.TopicStatus)

	// token verification + service-token signing
	keys, err := security.LoadKeyMaterial(cfg)
	if err != nil {
		return nil, nil, err
	}
	tokens := security.NewTokenService(keys, cfg.Security.Issuer, cfg.Security.ServiceName, cfg.Security.TokenTTL)

	// catalog boundary
	catalogClient := catalog.NewClient(
		&http.Client{Timeout: cfg.Catalog.Timeout},
		cfg.Catalog.BaseURL,
		tokens,
	)

	// infra
	orderRepo := repo.NewMySQLOrderRepo(db)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	statusCache := cache.NewRedisCache(rdb, cfg.Cache.StatusTTL)

	// engine + handlers + router
	orders := usecase.NewOrderService(orderRepo, catalogClient, idem, statusCache, producer, stream)
	h := orderhttp.NewOrderHandler(orders)
	authn := middleware.NewAuthn(tokens)
	router := orderhttp.NewRouter(h, authn, logging.New("http"))

	cleanup := func() {
		_ = db.Close()
		_ = rdb.Close()
		_ = ch.Close()
		_ = conn.Close()
		_ = kp.Close()
	}

	return &App{Router: router}, cleanup, nil
}
