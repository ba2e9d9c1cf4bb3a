package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	redisCache "github.com/ashutosh-187/Paper-Trading-platform-backend/cache/redis"
	redisProviders "github.com/ashutosh-187/Paper-Trading-platform-backend/cache/redis/providers"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/db/postgres"
	pgProviders "github.com/ashutosh-187/Paper-Trading-platform-backend/db/postgres/providers"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/handlers"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/marketdata"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/repository"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/routes"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/service"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/utils"
)

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	logger, err := utils.NewLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 1. Connect PostgreSQL
	postgresClient := postgres.ConnectDB()
	defer postgresClient.Stop()

	if err := postgresClient.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	dbHelper, err := pgProviders.NewDbProvider(postgresClient.PostgresClient)
	if err != nil {
		log.Fatalf("Failed to initialize DB helper: %v", err)
	}

	// 2. Connect Redis (live price snapshots)
	redisClient := redisCache.ConnectRedis()
	defer redisClient.Stop()

	redisHelper, err := redisProviders.NewRedisProvider(redisClient.RedisClient)
	if err != nil {
		log.Fatalf("Failed to initialize Redis helper: %v", err)
	}

	// 3. Repos, feed, engines
	tradeRepo := repository.NewTradeRepository(dbHelper)
	instrumentRepo := repository.NewInstrumentRepository(dbHelper)
	feed := marketdata.NewRedisSnapshot(redisHelper)
	locks := service.NewInstrumentLocks()

	orderSrv := service.NewOrderService(tradeRepo, feed, locks, logger)
	pnlSrv := service.NewPnLService(tradeRepo, feed)
	instrumentSrv := service.NewInstrumentService(instrumentRepo)
	stopLoss := service.NewStopLossEngine(tradeRepo, feed, locks, logger)

	alertLogPath := os.Getenv("ALERT_LOG_FILE")
	if alertLogPath == "" {
		alertLogPath = "loss_alerts.json"
	}
	threshold, _ := strconv.ParseFloat(os.Getenv("ALERT_THRESHOLD_PCT"), 64)
	alerts := service.NewAlertEngine(tradeRepo, feed, threshold, alertLogPath, logger)

	// 4. Tick simulator and WebSocket stream
	hub := marketdata.NewHub(logger)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	streamer := marketdata.NewStreamer(instrumentRepo, redisHelper, hub, rng, logger)

	// 5. Background loops
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx.Done())

	scheduler := service.NewScheduler(logger)
	scheduler.Every(ctx, "tick-simulator", envDuration("TICK_INTERVAL", time.Second), streamer.Cycle)
	scheduler.Every(ctx, "order-recheck", envDuration("RECHECK_INTERVAL", time.Second), func(ctx context.Context) error {
		_, err := orderSrv.RecheckPendingOrders(ctx)
		return err
	})
	scheduler.Every(ctx, "stop-loss", envDuration("STOPLOSS_INTERVAL", 5*time.Second), func(ctx context.Context) error {
		_, err := stopLoss.Sweep(ctx)
		return err
	})
	scheduler.Every(ctx, "loss-alerts", envDuration("ALERT_INTERVAL", 5*time.Second), func(ctx context.Context) error {
		_, err := alerts.Scan(ctx)
		return err
	})

	// 6. Gin router & handlers
	router := gin.Default()
	handler := handlers.NewHandler(orderSrv, pnlSrv, alerts, instrumentSrv, feed, hub)
	routes.RegisterRoutes(router, handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// 7. Run server in a goroutine so main thread stays non-blocking
	go func() {
		fmt.Printf("Paper trading REST API running on %s\n", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start Gin server: %v", err)
		}
	}()

	// 8. Wait for OS signal to shutdown gracefully
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received signal %s. Hence Gracefully Shutdown.", sig)

	// 9. Stop background loops, letting in-flight cycles complete
	cancel()
	scheduler.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("gracefully shutdown")
}
