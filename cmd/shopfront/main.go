package main

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"ShopFront/internal/cart"
	"ShopFront/internal/session"
	"ShopFront/internal/store"
	"ShopFront/internal/web"
	"ShopFront/pkg/kit"
)

const (
	service = "shopfront"

	// PORT is read and logged but the listener always binds 5001.
	listenAddr = ":5001"

	defaultSessionSecret = "change-this-key"
)

func main() {
	_ = godotenv.Load()

	log := kit.NewLogger(service, getenv("LOG_LEVEL", "info"))
	defer func() { _ = log.Sync() }()

	if port := os.Getenv("PORT"); port != "" {
		log.Info("PORT is set but the listen address is fixed",
			zap.String("port", port), zap.String("addr", listenAddr))
	}

	secret := getenv("SESSION_SECRET", defaultSessionSecret)
	if secret == defaultSessionSecret {
		log.Warn("using the default session secret; set SESSION_SECRET in production")
	}

	users, products := buildStores(log)
	sessions := session.NewManager(buildSessionStore(log), session.NewTokenMaker(secret), log)
	publisher := buildPublisher(log)

	reg := prometheus.NewRegistry()
	h := web.NewHandler(web.Deps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: os.Getenv("METRICS_ENABLED") == "true",
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
		Users:          users,
		Products:       products,
		Sessions:       sessions,
		Publisher:      publisher,
	})

	if err := kit.RunHTTPServer(listenAddr, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func buildStores(log *zap.Logger) (store.UserStore, store.ProductStore) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			log.Fatal("open database failed", zap.Error(err))
		}
		log.Info("using postgres record store")
		return store.NewPostgresUserStore(db), store.NewPostgresProductStore(db)
	}

	dataDir := getenv("DATA_DIR", "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal("create data dir failed", zap.Error(err), zap.String("dir", dataDir))
	}

	log.Info("using flat-file record store", zap.String("dir", dataDir))
	return store.NewCSVUserStore(filepath.Join(dataDir, "users.csv")),
		store.NewCSVProductStore(filepath.Join(dataDir, "products.csv"))
}

func buildSessionStore(log *zap.Logger) session.Store {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return session.NewMemStore()
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	log.Info("using redis session store", zap.String("addr", addr))
	return session.NewRedisStore(client, session.DefaultTTL)
}

func buildPublisher(log *zap.Logger) *cart.Publisher {
	uri := os.Getenv("AMQP_URL")
	if uri == "" {
		return nil
	}

	conn, err := amqp.Dial(uri)
	if err != nil {
		log.Fatal("amqp dial failed", zap.Error(err))
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("amqp channel failed", zap.Error(err))
	}

	queue := getenv("AMQP_QUEUE", "orders")
	pub, err := cart.NewPublisher(ch, queue)
	if err != nil {
		log.Fatal("declare order queue failed", zap.Error(err), zap.String("queue", queue))
	}

	log.Info("publishing order events", zap.String("queue", queue))
	return pub
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
