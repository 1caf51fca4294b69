package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/bmaxtar/storefront/internal/domain"
	"github.com/bmaxtar/storefront/internal/health"
	"github.com/bmaxtar/storefront/internal/messaging/kafka"
	"github.com/bmaxtar/storefront/internal/metrics"
	"github.com/bmaxtar/storefront/internal/service/showcase"
	"github.com/bmaxtar/storefront/internal/storage/memory"
	"github.com/bmaxtar/storefront/internal/storage/postgres"
	"github.com/bmaxtar/storefront/internal/version"
)

// Dependencies собирает все зависимости приложения под выбранный бэкенд.
type Dependencies struct {
	Repos   showcase.Repositories
	Outbox  domain.OutboxRepository
	Raw     showcase.RawAccess
	Metrics *metrics.StorefrontMetrics
	Health  *health.Handler

	pg       *postgres.Store
	producer *kafka.Producer
	logger   *log.Entry
}

// NewDependencies инициализирует хранилище, метрики и health-чекеры
// согласно конфигурации.
func NewDependencies(ctx context.Context, cfg Config) (*Dependencies, error) {
	logger := log.WithField("component", "app")

	deps := &Dependencies{
		Metrics: metrics.NewStorefrontMetrics(),
		Health:  health.NewHandler(version.GetVersion()),
		logger:  logger,
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}

		deps.pg = store
		deps.Repos = showcase.Repositories{
			Products:    postgres.NewProductRepository(store),
			Customers:   postgres.NewCustomerRepository(store),
			Orders:      postgres.NewOrderRepository(store),
			Collections: postgres.NewCollectionRepository(store),
			Tags:        postgres.NewTagRepository(store),
		}
		deps.Outbox = postgres.NewOutboxRepository(store)
		deps.Raw = postgres.NewRaw(store)

		deps.Health.RegisterChecker("postgres", health.NewCheckerFunc("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return store.Ping(pingCtx)
		}))
		logger.Info("postgres storage initialized")

	case StorageDriverMemory:
		store := memory.NewStore()
		SeedDemoData(store)

		deps.Repos = showcase.Repositories{
			Products:    memory.NewProductRepository(store),
			Customers:   memory.NewCustomerRepository(store),
			Orders:      memory.NewOrderRepository(store),
			Collections: memory.NewCollectionRepository(store),
			Tags:        memory.NewTagRepository(store),
		}
		deps.Outbox = memory.NewOutboxRepository(store)

		deps.Health.RegisterChecker("memory", health.NewCheckerFunc("memory", func() error {
			return nil
		}))
		logger.Info("in-memory storage initialized")

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}

	if cfg.KafkaBrokers != "" {
		producer, err := initKafkaProducer(cfg.KafkaBrokers)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("init kafka producer: %w", err)
		}
		deps.producer = producer
		logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
	}

	return deps, nil
}

// Publisher возвращает outbox-паблишер или nil, если Kafka не настроена.
func (d *Dependencies) Publisher(topic string) domain.OutboxPublisher {
	if d.producer == nil {
		return nil
	}
	return kafka.NewOutboxPublisher(d.producer, topic)
}

// Close освобождает ресурсы в обратном порядке инициализации.
func (d *Dependencies) Close() {
	if d.producer != nil {
		if err := d.producer.Close(); err != nil {
			d.logger.WithError(err).Warn("failed to close kafka producer")
		}
		d.producer = nil
	}
	if d.pg != nil {
		if err := d.pg.Close(); err != nil {
			d.logger.WithError(err).Warn("failed to close postgres store")
		}
		d.pg = nil
	}
}

func initKafkaProducer(brokers string) (*kafka.Producer, error) {
	var list []string
	for _, broker := range strings.Split(brokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			list = append(list, broker)
		}
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	return kafka.NewProducer(list)
}

// SeedDemoData наполняет in-memory хранилище небольшим каталогом,
// чтобы витрина и HTTP-ручки было на чем показывать.
func SeedDemoData(store *memory.Store) {
	beverages := store.AddCollection(domain.Collection{Title: "Beverages"})
	cleaning := store.AddCollection(domain.Collection{Title: "Cleaning"})
	grains := store.AddCollection(domain.Collection{Title: "Grains"})

	coffee := store.AddProduct(domain.Product{
		Title:        "Coffee Beans",
		Description:  "Dark roast arabica",
		UnitPrice:    decimal.RequireFromString("15.00"),
		Inventory:    5,
		CollectionID: beverages.ID,
	})
	store.AddProduct(domain.Product{
		Title:        "Instant Coffee",
		UnitPrice:    decimal.RequireFromString("7.50"),
		Inventory:    50,
		CollectionID: beverages.ID,
	})
	tea := store.AddProduct(domain.Product{
		Title:        "Green Tea",
		UnitPrice:    decimal.RequireFromString("25.00"),
		Inventory:    3,
		CollectionID: beverages.ID,
	})
	store.AddProduct(domain.Product{
		Title:        "Dish Soap",
		UnitPrice:    decimal.RequireFromString("4.00"),
		Inventory:    4,
		CollectionID: cleaning.ID,
	})
	store.AddProduct(domain.Product{
		Title:        "Basmati Rice",
		UnitPrice:    decimal.RequireFromString("9.90"),
		Inventory:    30,
		CollectionID: grains.ID,
	})

	promo := store.AddPromotion(domain.Promotion{Description: "Autumn sale", Discount: 0.2})
	store.PromoteProduct(coffee.ID, promo.ID)

	arabica := store.AddTag(domain.Tag{Label: "arabica"})
	organic := store.AddTag(domain.Tag{Label: "organic"})
	_ = store.TagObject(domain.ModelProduct, coffee.ID, arabica.ID)
	_ = store.TagObject(domain.ModelProduct, tea.ID, organic.ID)

	max := store.AddCustomer(domain.Customer{FirstName: "Max", LastName: "Tar", Email: "max@example.com", Membership: domain.MembershipGold})
	anna := store.AddCustomer(domain.Customer{FirstName: "Anna", LastName: "Ray", Email: "anna@example.com"})

	store.AddOrder(domain.Order{
		CustomerID: max.ID,
		Items: []domain.OrderItem{
			{ProductID: coffee.ID, Quantity: 2, UnitPrice: coffee.UnitPrice},
			{ProductID: tea.ID, Quantity: 1, UnitPrice: tea.UnitPrice},
		},
	})
	store.AddOrder(domain.Order{
		CustomerID: anna.ID,
		Items: []domain.OrderItem{
			{ProductID: tea.ID, Quantity: 1, UnitPrice: tea.UnitPrice},
		},
	})
}
