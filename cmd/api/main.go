package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-appointment-reservation/internal/api"
	"github.com/sanosuguru/go-appointment-reservation/internal/api/handler"
	apimiddleware "github.com/sanosuguru/go-appointment-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-appointment-reservation/internal/application"
	"github.com/sanosuguru/go-appointment-reservation/internal/config"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/resource"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-appointment-reservation/internal/gateway"
	"github.com/sanosuguru/go-appointment-reservation/internal/infrastructure/memory"
	"github.com/sanosuguru/go-appointment-reservation/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-appointment-reservation/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-appointment-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-appointment-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-appointment-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-appointment-reservation/internal/worker"
)

const availabilityCacheSize = 512

func main() {
	// .env ファイルがあれば読み込む（ローカル開発用）
	_ = godotenv.Load()

	cfg := config.Load()

	logger.Set(logger.NewLogger(os.Getenv("APP_ENV")))
	defer logger.Sync()

	m := metrics.Init()

	// ストアバックエンドの選択
	var (
		txManager       transaction.Manager
		reservationRepo reservation.Repository
		resourceRepo    resource.Repository
	)
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		db, err := postgres.NewConnection(&cfg.Database)
		if err != nil {
			logger.Fatal("データベース接続に失敗", zap.Error(err))
		}
		defer db.Close()

		if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
			logger.Fatal("マイグレーションに失敗", zap.Error(err))
		}

		txManager = postgres.NewTxManager(db)
		reservationRepo = postgres.NewReservationRepository(db)
		resourceRepo = postgres.NewResourceRepository(db)
		logger.Info("ストアバックエンド: postgres", zap.String("db", cfg.Database.DBName))
	case config.StoreBackendMemory:
		txManager = memory.NewTxManager()
		reservationRepo = memory.NewReservationRepository()
		resourceRepo = memory.NewResourceRepository()
		logger.Info("ストアバックエンド: memory")
	default:
		logger.Fatal("不明なストアバックエンド", zap.String("backend", string(cfg.Store.Backend)))
	}

	// Redis（分散ロック・受付ミラー）は任意
	var (
		slotLocks *redisinfra.SlotLockManager
		mirror    *redisinfra.ReceiptMirror
	)
	if cfg.Redis.Enabled {
		client := redisinfra.NewClient(&cfg.Redis)
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisinfra.Ping(ctx, client); err != nil {
			cancel()
			logger.Fatal("Redis接続に失敗", zap.Error(err))
		}
		cancel()

		slotLocks = redisinfra.NewSlotLockManager(client)
		mirror = redisinfra.NewReceiptMirror(client, 24*time.Hour)
		logger.Info("Redis有効", zap.String("addr", cfg.Redis.Addr()))
	}

	// 予約イベント発行（RabbitMQ）は任意
	var publisher application.EventPublisher
	if cfg.RabbitMQ.Enabled {
		p, err := rabbitmq.NewEventPublisher(&cfg.RabbitMQ)
		if err != nil {
			logger.Fatal("RabbitMQ接続に失敗", zap.Error(err))
		}
		defer p.Close()
		publisher = p
		logger.Info("イベント発行有効", zap.String("exchange", cfg.RabbitMQ.Exchange))
	}

	// 外部予約ゲートウェイは任意
	var gw *gateway.Client
	if cfg.Gateway.Enabled {
		gw = gateway.NewClient(&cfg.Gateway)
		logger.Info("予約ゲートウェイ有効", zap.String("base_url", cfg.Gateway.BaseURL))
	}

	// アプリケーションサービス
	cache, err := application.NewAvailabilityCache(availabilityCacheSize)
	if err != nil {
		logger.Fatal("空きキャッシュ初期化に失敗", zap.Error(err))
	}
	availabilityService := application.NewAvailabilityService(resourceRepo, reservationRepo, cache)
	bookingService := application.NewBookingService(
		txManager, reservationRepo, resourceRepo,
		availabilityService, slotLocks, mirror, publisher, gw,
	)
	resourceService := application.NewResourceService(resourceRepo, availabilityService)

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	apimiddleware.SetupMiddleware(e)
	e.Use(apimiddleware.PrometheusMiddleware(m))

	// ハンドラー
	healthHandler := handler.NewHealthHandler()
	resourceHandler := handler.NewResourceHandler(resourceService)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService)
	reservationHandler := handler.NewReservationHandler(bookingService)

	// ルーティング
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), apimiddleware.MetricsBasicAuth())

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/resources", resourceHandler.Create)
	v1.GET("/resources", resourceHandler.List)
	v1.GET("/resources/:id", resourceHandler.GetByID)
	v1.PUT("/resources/:id", resourceHandler.Update)
	v1.DELETE("/resources/:id", resourceHandler.Delete)

	v1.GET("/resources/:id/slots", availabilityHandler.Slots)
	v1.GET("/resources/:id/availability", availabilityHandler.Resolve)
	v1.GET("/resources/:id/reservations", reservationHandler.ListByResource)
	v1.GET("/resources/:id/reservations/last", reservationHandler.Last)

	v1.POST("/reservations", reservationHandler.Create)
	v1.GET("/reservations/:id", reservationHandler.GetByID)
	v1.POST("/reservations/:id/cancel", reservationHandler.Cancel)

	// 完了マーカーワーカー
	var marker *worker.CompletionMarker
	if cfg.Worker.Enabled {
		marker = worker.NewCompletionMarker(bookingService, cfg.Worker.Interval)
		go marker.Start(context.Background())
	}

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()
	logger.Info("サーバー起動", zap.String("port", cfg.Server.Port))

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	if marker != nil {
		marker.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
