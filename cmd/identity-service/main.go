// Command identity-service resolves bearer tokens to principals over gRPC.
package main

import (
	"context"
	"log"
	"net"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MikeMC777/tienda-ecom/internal/auth"
	"github.com/MikeMC777/tienda-ecom/internal/config"
	"github.com/MikeMC777/tienda-ecom/internal/db"
	"github.com/MikeMC777/tienda-ecom/internal/identity"
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

	ropts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis url: %v", err)
	}
	rdb := redis.NewClient(ropts)
	defer rdb.Close()

	tokens := auth.NewIssuer(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL, auth.NewRedisRevoker(rdb))
	users := user.NewService(user.NewPGRepo(pool))

	l, err := net.Listen("tcp", cfg.IdentityAddr)
	if err != nil {
		log.Fatal(err)
	}

	s := grpc.NewServer(grpc.UnaryInterceptor(identity.LogUnary()))
	identity.RegisterIdentityServer(s, identity.NewServer(tokens, users))
	hs := health.NewServer()
	hs.SetServingStatus(identity.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	go func() {
		<-ctx.Done()
		hs.Shutdown()
		s.GracefulStop()
	}()

	log.Printf("identity-service listening on %s", cfg.IdentityAddr)
	if err := s.Serve(l); err != nil {
		log.Fatalf("grpc: %v", err)
	}
}
