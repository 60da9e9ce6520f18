package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/infra"
	"storefront/internal/infra/kafka"
	mmongo "storefront/internal/infra/mongo"
	mmysql "storefront/internal/infra/mysql"
	"storefront/internal/infra/notify"
	"storefront/internal/infra/rabbitmq"
	rcache "storefront/internal/infra/redis"
	"storefront/internal/repository"
	"storefront/internal/repository/memory"
	mongorepo "storefront/internal/repository/mongo"
	mysqlrepo "storefront/internal/repository/mysql"
	"storefront/internal/services"

	"github.com/go-redis/redis/v8"
)

type stores struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := mmongo.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return &stores{
			products: mongorepo.NewProductRepository(db),
			orders:   mongorepo.NewOrderRepository(db),
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Disconnect(ctx)
			},
		}, nil
	case config.StoreMySQL:
		db, err := mmysql.Open(cfg.MySQL)
		if err != nil {
			return nil, fmt.Errorf("db: connect: %w", err)
		}
		return &stores{
			products: mysqlrepo.NewProductRepository(db),
			orders:   mysqlrepo.NewOrderRepository(db),
			close: func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil
	case config.StoreMemory:
		slog.Warn("using in-memory store; orders are lost on restart")
		s := memory.NewStore()
		return &stores{products: s.Products(), orders: s.Orders(), close: func() {}}, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func newRedisClient(cfg *config.Config) *redis.Client {
	if cfg.RedisHost == "" {
		return nil
	}
	addr := cfg.RedisHost
	if !strings.Contains(addr, ":") {
		addr += ":6379"
	}
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           cfg.RedisDB,
		PoolSize:     200,
		MinIdleConns: 20,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
}

func newProductCache(rdb *redis.Client) infra.ProductCache {
	if rdb == nil {
		return nil
	}
	return rcache.NewProductCache(rdb)
}

func newCartStore(cfg *config.Config, rdb *redis.Client) cart.Store {
	if rdb == nil {
		return cart.NewMemoryStore(cfg.CartSessionTTL)
	}
	return rcache.NewCartStore(rdb, cfg.CartSessionTTL)
}

func seedCatalog(ctx context.Context, catalog *services.CatalogService, path string) error {
	products, err := services.LoadCatalogSeed(path)
	if err != nil {
		return err
	}
	if err := catalog.SeedCatalog(ctx, products); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	slog.Info("catalog seeded", "path", path, "products", len(products))
	return nil
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (infra.PublisherInterface, func(), error) {
	switch cfg.NotifyDriver {
	case config.NotifyRabbitMQ:
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init publisher: %w", err)
		}
		return p, p.Close, nil
	case config.NotifyKafka:
		p := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		return p, func() {
			if err := p.Close(); err != nil {
				slog.Warn("kafka writer close failed", "error", err)
			}
		}, nil
	case config.NotifyLog:
		return notify.NewLogPublisher(logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown NOTIFY_DRIVER %q", cfg.NotifyDriver)
	}
}
