// Command rustlerd runs the rustler supervisor: it loads the market
// catalog, schedules each market's rustler according to its trading
// calendar, and publishes every gathered quote to the bus.
package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/corraldata/rustlers/internal/bus"
	"github.com/corraldata/rustlers/internal/catalog"
	"github.com/corraldata/rustlers/internal/control"
	"github.com/corraldata/rustlers/internal/rustlerjar"
	"github.com/corraldata/rustlers/internal/rustlers/mockfeed"
	"github.com/corraldata/rustlers/internal/rustlers/wsfeed"
	"github.com/corraldata/rustlers/internal/rustlersvc"
	"github.com/corraldata/rustlers/pkg/breaker"
)

type config struct {
	Port          string
	DatabaseURL   string
	RedisURL      string
	NATSURL       string
	RustlerKind   string
	RustlerMarkets []string
	WSFeedURL     string

	CircuitMaxFailures int
	CircuitTimeout     time.Duration
	CircuitHalfOpenMax int
}

func loadConfig() *config {
	markets := getEnv("RUSTLER_MARKETS", "BINANCE")

	return &config{
		Port:               getEnv("PORT", "8010"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", "localhost:6379"),
		NATSURL:            getEnv("NATS_URL", ""),
		RustlerKind:        getEnv("RUSTLER_KIND", "mock"),
		RustlerMarkets:     strings.Split(markets, ","),
		WSFeedURL:          getEnv("WSFEED_URL", ""),
		CircuitMaxFailures: getEnvInt("CIRCUIT_MAX_FAILURES", 5),
		CircuitTimeout:     getEnvDuration("CIRCUIT_TIMEOUT", 30*time.Second),
		CircuitHalfOpenMax: getEnvInt("CIRCUIT_HALF_OPEN_MAX", 1),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func main() {
	cfg := loadConfig()
	logger := slog.Default()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	defer rdb.Close()

	publisher := bus.NewPublisher(rdb)

	jar := buildRustlerJar(cfg)

	cb := breaker.NewBreaker(breaker.Config{
		Name:        "quote-publish",
		MaxFailures: cfg.CircuitMaxFailures,
		Timeout:     cfg.CircuitTimeout,
		HalfOpenMax: cfg.CircuitHalfOpenMax,
		OnStateChange: func(from, to breaker.State) {
			logger.Warn("quote publish circuit changed state", "from", from, "to", to)
		},
	})

	svcCfg := rustlersvc.Config{
		Catalog:   catalog.NewPostgresReader(db),
		Rustlers:  jar,
		Publisher: publisher,
		Breaker:   cb,
		Logger:    logger,
	}

	if cfg.NATSURL != "" {
		controlBus, err := control.Connect(control.Config{
			URL:            cfg.NATSURL,
			Name:           "rustlerd",
			ReconnectWait:  time.Second,
			MaxReconnects:  60,
			ConnectTimeout: 10 * time.Second,
		})
		if err != nil {
			logger.Warn("failed to connect to control bus, catalog changes won't be picked up live", "error", err)
		} else {
			defer controlBus.Close()
			svcCfg.Control = controlBus
		}
	}

	svc := rustlersvc.New(svcCfg)

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Start(ctx) }()

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutting down rustlerd")
	case err := <-errCh:
		logger.Error("rustlers service stopped unexpectedly", "error", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("health server shutdown error: %v", err)
	}
}

func buildRustlerJar(cfg *config) *rustlerjar.Jar {
	builder := rustlerjar.NewBuilder()

	switch cfg.RustlerKind {
	case "ws":
		// FrameParser is left nil here: the wire protocol of any specific
		// exchange isn't something a generic binary can configure from
		// the environment. A deployment targeting a real upstream should
		// fork this wiring and supply its own wsfeed.Config.FrameParser.
		r := wsfeed.New(wsfeed.Config{
			Name: "wsfeed-" + strings.Join(cfg.RustlerMarkets, "-"),
			URL:  cfg.WSFeedURL,
		})
		builder.Register(r, cfg.RustlerMarkets...)
	default:
		r := mockfeed.New(mockfeed.Config{Name: "mockfeed-" + strings.Join(cfg.RustlerMarkets, "-")})
		builder.Register(r, cfg.RustlerMarkets...)
	}

	return builder.Build()
}
