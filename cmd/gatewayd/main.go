// Command gatewayd runs the WebSocket gateway: it subscribes to the bus
// and relays every quote to connected, subscribed clients.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/corraldata/rustlers/internal/bus"
	"github.com/corraldata/rustlers/internal/gateway"
	"github.com/corraldata/rustlers/internal/gatewayauth"
)

type config struct {
	Port        string
	RedisURL    string
	JWTSecret   string
	RequireAuth bool
}

func loadConfig() *config {
	return &config{
		Port:        getEnv("PORT", "8011"),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		RequireAuth: getEnv("REQUIRE_AUTH", "false") == "true",
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func main() {
	cfg := loadConfig()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	defer rdb.Close()

	subscriber := bus.NewSubscriber(rdb, nil)
	defer subscriber.Close()

	var handshake gateway.HandshakePredicate
	if cfg.RequireAuth {
		validator := gatewayauth.NewValidator(cfg.JWTSecret)
		handshake = func(r *http.Request) bool {
			_, err := validator.Check(r.Header.Get("Authorization"))
			return err == nil
		}
	}

	gw := gateway.NewServer(gateway.Config{Handshake: handshake})

	ctx, cancel := context.WithCancel(context.Background())
	go gw.ServeQuotes(ctx, subscriber)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: gw.Router()}
	go func() {
		log.Printf("gateway listening on %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down gateway")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("gateway shutdown error: %v", err)
	}
}
