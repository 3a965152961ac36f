// Command api serves the storefront HTTP API.
//
// @title                       Tienda API
// @version                     1.0
// @description                 Multi-seller storefront: catalog, cart, checkout and seller dashboard.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MikeMC777/tienda-ecom/internal/auth"
	"github.com/MikeMC777/tienda-ecom/internal/cart"
	"github.com/MikeMC777/tienda-ecom/internal/category"
	"github.com/MikeMC777/tienda-ecom/internal/checkout"
	"github.com/MikeMC777/tienda-ecom/internal/config"
	"github.com/MikeMC777/tienda-ecom/internal/db"
	"github.com/MikeMC777/tienda-ecom/internal/events"
	"github.com/MikeMC777/tienda-ecom/internal/httpx"
	"github.com/MikeMC777/tienda-ecom/internal/identity"
	"github.com/MikeMC777/tienda-ecom/internal/media"
	"github.com/MikeMC777/tienda-ecom/internal/order"
	"github.com/MikeMC777/tienda-ecom/internal/product"
	"github.com/MikeMC777/tienda-ecom/internal/user"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()
	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	ropts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis url: %v", err)
	}
	rdb := redis.NewClient(ropts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	var pub order.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.NewProducer(ctx, cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		defer producer.Close()
		pub = producer
	} else {
		log.Printf("[events] KAFKA_BROKERS not set, order events are dropped")
	}

	var uploader product.Uploader
	if cfg.S3Bucket != "" {
		up, err := media.NewS3Uploader(ctx, cfg.S3Bucket, cfg.MediaBaseURL)
		if err != nil {
			log.Fatalf("s3: %v", err)
		}
		uploader = up
	}

	tokens := auth.NewIssuer(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL, auth.NewRedisRevoker(rdb))
	var resolver httpx.PrincipalResolver = tokens
	if cfg.IdentityClientAddr != "" {
		client, err := identity.Dial(cfg.IdentityClientAddr)
		if err != nil {
			log.Fatalf("identity: %v", err)
		}
		defer client.Close()
		resolver = client
		log.Printf("[auth] resolving tokens through identity service at %s", cfg.IdentityClientAddr)
	}

	products := product.NewPGRepo(pool)
	categories := category.NewPGRepo(pool)
	r := newRouter(app{
		users:      user.NewService(user.NewPGRepo(pool)),
		tokens:     tokens,
		resolver:   resolver,
		products:   products,
		catalog:    product.NewService(products, categories, uploader),
		categories: categories,
		cart:       cart.NewService(cart.NewPGRepo(pool)),
		checkout:   checkout.NewService(checkout.NewPGStore(pool), pub),
		orders:     order.NewService(order.NewPGStore(pool), pub),
		origins:    cfg.CORSOrigins,
		ping:       pool.Ping,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Printf("api listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
