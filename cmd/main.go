package main

import (
	"database/sql"
	"fmt"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
	"log"
	"os"
	"storefront-service/internal/api"
	"storefront-service/internal/auth"
	"storefront-service/internal/config"
	"storefront-service/internal/repository"
	"storefront-service/internal/service"
	"storefront-service/migrations"
	"time"
)

func connectDBEnv(host, port, user, pass, dbname string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Printf("✅ Connected to DB %s", dbname)
				return db, nil
			}
		}
		log.Printf("❌ Retry %d: Failed to connect to DB %s (%s:%s): %v", i+1, dbname, host, port, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s:%s after retries: %v", dbname, host, port, err)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	db, err := connectDBEnv(os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_USER"), os.Getenv("DB_PASS"), os.Getenv("DB_NAME"))
	if err != nil {
		panic(err)
	}

	err = migrations.AutoMigrateOrders(3, db)
	if err != nil {
		log.Fatalf("Failed to migrate orders table: %v", err)
	}
	err = migrations.AutoMigrateOrderItems(3, db)
	if err != nil {
		log.Fatalf("Failed to migrate order_items table: %v", err)
	}
	err = migrations.AutoMigratePayments(3, db)
	if err != nil {
		log.Fatalf("Failed to migrate payments table: %v", err)
	}
	err = migrations.AutoMigrateCustomerAddresses(3, db)
	if err != nil {
		log.Fatalf("Failed to migrate customer_addresses table: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: os.Getenv("REDIS_ADDR"),
	})

	kafkaWriter := config.NewKafkaWriter("storefront-topic")

	clientBaseURL := envOr("CLIENT_BASE_URL", "http://localhost:3000")
	catalogServiceURL := envOr("CATALOG_SERVICE_URL", "http://localhost:8081")
	jwtSecret := envOr("JWT_SECRET", "secret")
	gatewaySecret := os.Getenv("GATEWAY_SECRET")

	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	addressRepo := repository.NewAddressRepository(db)

	orderService := service.NewOrderService(*orderRepo, *paymentRepo, catalogServiceURL, kafkaWriter, rdb)
	paymentService := service.NewPaymentService(*paymentRepo, clientBaseURL, gatewaySecret, kafkaWriter, rdb)
	addressService := service.NewAddressService(*addressRepo, *orderRepo)

	orderHandler := api.NewOrderHandler(*orderService)
	paymentHandler := api.NewPaymentHandler(*paymentService)
	addressHandler := api.NewAddressHandler(*addressService)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: api.SkipGatewayCallbacks,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(1),
				Burst:     3,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	// Gateway callbacks: untrusted POSTs, no session, always a 303 back.
	e.POST("/payment/callback/success", paymentHandler.Success)
	e.POST("/payment/callback/fail", paymentHandler.Fail)
	e.POST("/payment/callback/cancel", paymentHandler.Cancel)

	// Checkout permits guests, so the session is optional there.
	e.POST("/checkout/orders", orderHandler.CreateOrder, auth.OptionalSession(jwtSecret))

	e.GET("/orders/:id/status", orderHandler.GetOrderStatus, auth.RequireSession(jwtSecret))
	e.GET("/orders", orderHandler.GetOrderHistory, auth.OptionalSession(jwtSecret))
	e.GET("/profile/address", addressHandler.GetAddress, auth.OptionalSession(jwtSecret))

	e.GET("/storefront/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "storefront-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.Logger.Fatal(e.Start(":8084"))
}
