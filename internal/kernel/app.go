// Package kernel assembles shopfront from configuration: it picks the
// record store, queue, notification and storage drivers, builds the
// services on top of them and exposes the HTTP handler.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/pkg/database"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/notification"
	"github.com/shashiranjanraj/shopfront/pkg/queue"
	"github.com/shashiranjanraj/shopfront/pkg/recordstore"
	"github.com/shashiranjanraj/shopfront/pkg/storage"
)

// App holds the configured drivers and the services built on them.
type App struct {
	DB        *gorm.DB // nil unless a SQL database is in use
	Redis     *redis.Client
	Store     recordstore.Store
	Queue     queue.Driver
	Publisher notification.Publisher
	Disk      storage.Disk // nil when no import storage is configured
	Failed    queue.FailedStore

	Products *services.ProductService
	Stock    *services.StockService
	Import   *services.ImportService
	Catalog  *services.CatalogBatchService
}

// Boot reads configuration and connects every driver.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("kernel: load config: %w", err)
	}
	a := &App{}

	if err := a.connectDatabase(); err != nil {
		return nil, err
	}

	store, err := a.newRecordStore(ctx)
	if err != nil {
		return nil, err
	}
	a.Store = store

	if a.Queue, err = a.newQueue(ctx); err != nil {
		return nil, err
	}

	if a.Publisher, err = notification.New(ctx, config.NotificationDriver(), config.WebhookURL()); err != nil {
		return nil, fmt.Errorf("kernel: notifications: %w", err)
	}

	storage.Connect(ctx)
	if d, err := storage.Use(config.StorageDisk()); err != nil {
		logger.Warn("kernel: import storage unavailable", "disk", config.StorageDisk(), "error", err)
	} else {
		a.Disk = d
	}

	a.Failed = queue.NewMemoryFailedStore()
	if a.DB != nil {
		fs, err := queue.NewGormFailedStore(a.DB)
		if err != nil {
			return nil, fmt.Errorf("kernel: failed batch table: %w", err)
		}
		a.Failed = fs
	}

	a.wire()
	logger.Info("kernel: booted",
		"record_store", config.RecordStoreDriver(),
		"queue", a.Queue.Name(),
		"notify", config.NotificationDriver(),
		"disk", config.StorageDisk())
	return a, nil
}

// NewWith builds an App from drivers the caller already has. Tests and the
// Lambda entry point use it.
func NewWith(store recordstore.Store, q queue.Driver, pub notification.Publisher, disk storage.Disk) *App {
	a := &App{Store: store, Queue: q, Publisher: pub, Disk: disk, Failed: queue.NewMemoryFailedStore()}
	a.wire()
	return a
}

func (a *App) wire() {
	products := repositories.NewProductRepository(a.Store, config.ProductsTable())
	stock := repositories.NewStockRepository(a.Store, config.StockTable())

	a.Products = services.NewProductService(products, stock)
	a.Stock = services.NewStockService(products, stock)
	a.Import = services.NewImportService(a.Disk, a.Queue, config.UploadURLTTL())
	a.Catalog = services.NewCatalogBatchService(products, stock, a.Publisher, config.TopicARN())
}

// connectDatabase opens the SQL database when the sql record store is
// selected or a DSN is configured for the failed batch log.
func (a *App) connectDatabase() error {
	if config.RecordStoreDriver() != "sql" && config.Get("DATABASE_DSN", "") == "" {
		return nil
	}
	if err := database.Connect(); err != nil {
		return err
	}
	a.DB = database.DB
	return nil
}

func (a *App) newRecordStore(ctx context.Context) (recordstore.Store, error) {
	schema := recordstore.DefaultSchema()

	switch config.RecordStoreDriver() {
	case "sql":
		s := recordstore.NewSQLStore(a.DB, schema)
		if err := s.Migrate(); err != nil {
			return nil, fmt.Errorf("kernel: migrate records: %w", err)
		}
		return s, nil
	case "memory":
		return recordstore.NewMemoryStore(schema), nil
	default:
		return recordstore.NewDynamoStore(ctx, schema)
	}
}

func (a *App) newQueue(ctx context.Context) (queue.Driver, error) {
	switch config.QueueDriver() {
	case "redis":
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr(),
			Password: config.RedisPassword(),
		})
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("kernel: redis ping: %w", err)
		}
		wait := time.Duration(config.QueueWaitTime()) * time.Second
		return queue.NewRedisDriver(a.Redis, config.QueueRedisKey(), wait), nil
	case "memory":
		return queue.NewMemoryDriver(time.Second), nil
	default:
		if config.QueueURL() == "" {
			return nil, errors.New("kernel: SQS_QUEUE_URL is required for the sqs queue driver")
		}
		return queue.NewSQSDriver(ctx, config.QueueURL(), config.QueueWaitTime())
	}
}

// Consumer returns the queue worker that feeds batches to the catalog
// batch service.
func (a *App) Consumer() *queue.Consumer {
	return queue.NewConsumer(a.Queue, a.Catalog.Handle,
		queue.WithBatchSize(config.QueueBatchSize()),
		queue.WithWorkers(config.QueueWorkers()),
		queue.WithFailedStore(a.Failed),
	)
}

// Close releases connections opened by Boot.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
