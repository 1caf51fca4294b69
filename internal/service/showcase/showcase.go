package showcase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/bmaxtar/storefront/internal/domain"
	"github.com/bmaxtar/storefront/internal/metrics"
)

// RawAccess — низкоуровневый SQL-доступ для демонстраций в обход репозиториев.
// Реализуется PostgreSQL-хранилищем; при работе в памяти отсутствует.
type RawAccess interface {
	Query(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error)
	GetCustomers(ctx context.Context, ids ...int64) ([]domain.Customer, error)
}

// Repositories — набор репозиториев, по которым проходит витрина запросов.
type Repositories struct {
	Products    domain.ProductRepository
	Customers   domain.CustomerRepository
	Orders      domain.OrderRepository
	Collections domain.CollectionRepository
	Tags        domain.TagRepository
}

// Showcase прогоняет набор демонстрационных сценариев по слою запросов
// и пишет результаты в лог.
type Showcase struct {
	repos   Repositories
	raw     RawAccess
	metrics *metrics.StorefrontMetrics
	logger  *log.Entry
}

// New создаёт витрину запросов. raw может быть nil,
// тогда сценарии сырого SQL пропускаются; m может быть nil,
// тогда длительности сценариев не записываются.
func New(repos Repositories, raw RawAccess, m *metrics.StorefrontMetrics, logger *log.Entry) *Showcase {
	if logger == nil {
		logger = log.WithField("component", "showcase")
	}
	return &Showcase{
		repos:   repos,
		raw:     raw,
		metrics: m,
		logger:  logger,
	}
}

type step struct {
	name string
	fn   func(context.Context) error
}

func (s *Showcase) steps() []step {
	return []step{
		{"browse catalog", s.BrowseCatalog},
		{"filter combinators", s.FilterCombinators},
		{"sort and pick extremes", s.SortAndPickExtremes},
		{"projections", s.Projections},
		{"related objects", s.RelatedObjects},
		{"aggregates", s.Aggregates},
		{"annotations", s.Annotations},
		{"tags", s.Tags},
		{"edit collections", s.EditCollections},
		{"delete collections", s.DeleteCollections},
		{"place order with rollback", s.PlaceOrderWithRollback},
		{"raw sql", s.RawSQL},
	}
}

// StepNames возвращает имена сценариев в порядке выполнения.
func (s *Showcase) StepNames() []string {
	steps := s.steps()
	names := make([]string, 0, len(steps))
	for _, step := range steps {
		names = append(names, step.name)
	}
	return names
}

// Run выполняет все сценарии по порядку. Первая ошибка прерывает прогон.
func (s *Showcase) Run(ctx context.Context) error {
	for _, step := range s.steps() {
		if err := s.runStep(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

// RunStep выполняет один сценарий по имени.
func (s *Showcase) RunStep(ctx context.Context, name string) error {
	for _, step := range s.steps() {
		if step.name == name {
			return s.runStep(ctx, step)
		}
	}
	return fmt.Errorf("unknown showcase step %q", name)
}

func (s *Showcase) runStep(ctx context.Context, st step) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	if err := st.fn(ctx); err != nil {
		return fmt.Errorf("showcase step %q: %w", st.name, err)
	}
	if s.metrics != nil {
		s.metrics.RecordQueryDuration(st.name, time.Since(start))
	}
	s.logger.WithField("step", st.name).Info("showcase step finished")
	return nil
}

// BrowseCatalog — полная выборка, проверка существования и поиск по подстроке.
func (s *Showcase) BrowseCatalog(_ context.Context) error {
	products, err := s.repos.Products.All()
	if err != nil {
		return err
	}
	s.logger.WithField("count", len(products)).Info("catalog loaded")

	if len(products) > 0 {
		exists, err := s.repos.Products.Exists(products[0].ID)
		if err != nil {
			return err
		}
		s.logger.WithFields(log.Fields{
			"product_id": products[0].ID,
			"exists":     exists,
		}).Info("existence check")
	}

	found, err := s.repos.Products.SearchTitle("coffee")
	if err != nil {
		return err
	}
	for _, p := range found {
		s.logger.WithFields(log.Fields{
			"product_id": p.ID,
			"title":      p.Title,
		}).Info("title search hit")
	}

	return nil
}

// FilterCombinators — условия И / ИЛИ / И-НЕ и сравнение поля с полем.
func (s *Showcase) FilterCombinators(_ context.Context) error {
	maxInventory := int32(10)
	maxPrice := decimal.RequireFromString("20.00")

	both, err := s.repos.Products.LowStockCheap(maxInventory, maxPrice)
	if err != nil {
		return err
	}
	either, err := s.repos.Products.LowStockOrCheap(maxInventory, maxPrice)
	if err != nil {
		return err
	}
	notCheap, err := s.repos.Products.LowStockNotCheap(maxInventory, maxPrice)
	if err != nil {
		return err
	}
	equal, err := s.repos.Products.InventoryEqualsPrice()
	if err != nil {
		return err
	}

	s.logger.WithFields(log.Fields{
		"low_stock_and_cheap":    len(both),
		"low_stock_or_cheap":     len(either),
		"low_stock_not_cheap":    len(notCheap),
		"inventory_equals_price": len(equal),
	}).Info("filter combinators")

	return nil
}

// SortAndPickExtremes — сортировка и выбор крайних записей.
func (s *Showcase) SortAndPickExtremes(_ context.Context) error {
	cheapest, err := s.repos.Products.Cheapest()
	if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
		return err
	}
	expensive, err := s.repos.Products.MostExpensive()
	if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
		return err
	}

	s.logger.WithFields(log.Fields{
		"cheapest":       cheapest.Title,
		"most_expensive": expensive.Title,
	}).Info("price extremes")

	return nil
}

// Projections — узкие проекции и подзапрос по заказанным товарам.
func (s *Showcase) Projections(_ context.Context) error {
	refs, err := s.repos.Products.Refs()
	if err != nil {
		return err
	}
	for _, ref := range refs {
		s.logger.WithFields(log.Fields{
			"product_id": ref.ID,
			"title":      ref.Title,
			"collection": ref.CollectionTitle,
		}).Info("product ref")
	}

	ordered, err := s.repos.Products.Ordered()
	if err != nil {
		return err
	}
	s.logger.WithField("count", len(ordered)).Info("products ever ordered")

	return nil
}

// RelatedObjects — выборки со связанными записями одним-двумя запросами.
func (s *Showcase) RelatedObjects(_ context.Context) error {
	withCollections, err := s.repos.Products.AllWithCollections()
	if err != nil {
		return err
	}
	s.logger.WithField("count", len(withCollections)).Info("products with collections")

	withPromotions, err := s.repos.Products.AllWithPromotions()
	if err != nil {
		return err
	}
	promoted := 0
	for _, p := range withPromotions {
		if len(p.Promotions) > 0 {
			promoted++
		}
	}
	s.logger.WithField("promoted", promoted).Info("products with promotions")

	recent, err := s.repos.Orders.Recent(5)
	if err != nil {
		return err
	}
	for _, order := range recent {
		entry := s.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"items":    len(order.Items),
			"total":    order.Total().StringFixed(2),
		})
		if order.Customer != nil {
			entry = entry.WithField("customer", order.Customer.Email)
		}
		entry.Info("recent order")
	}

	return nil
}

// Aggregates — count/min/max/avg/sum по каталогу и в пределах коллекции.
func (s *Showcase) Aggregates(_ context.Context) error {
	stats, err := s.repos.Products.Stats()
	if err != nil {
		return err
	}
	s.logger.WithFields(log.Fields{
		"count":         stats.Count,
		"min_price":     stats.MinPrice.StringFixed(2),
		"max_price":     stats.MaxPrice.StringFixed(2),
		"avg_price":     stats.AvgPrice.StringFixed(2),
		"sum_inventory": stats.SumInventory,
	}).Info("catalog stats")

	collStats, err := s.repos.Products.CollectionStats(1)
	if err != nil {
		return err
	}
	s.logger.WithFields(log.Fields{
		"collection_id": 1,
		"count":         collStats.Count,
	}).Info("collection stats")

	return nil
}

// Annotations — вычисляемые колонки: полное имя, число заказов, цена со скидкой.
func (s *Showcase) Annotations(_ context.Context) error {
	named, err := s.repos.Customers.WithFullName()
	if err != nil {
		return err
	}
	for _, c := range named {
		s.logger.WithFields(log.Fields{
			"customer_id": c.ID,
			"full_name":   c.FullName,
		}).Info("customer full name")
	}

	counts, err := s.repos.Customers.WithOrderCounts()
	if err != nil {
		return err
	}
	for _, c := range counts {
		s.logger.WithFields(log.Fields{
			"customer_id":  c.ID,
			"orders_count": c.OrdersCount,
		}).Info("customer order count")
	}

	discounted, err := s.repos.Products.WithDiscount(decimal.RequireFromString("0.8"))
	if err != nil {
		return err
	}
	for _, p := range discounted {
		s.logger.WithFields(log.Fields{
			"product_id":       p.ID,
			"unit_price":       p.UnitPrice.StringFixed(2),
			"discounted_price": p.DiscountedPrice.StringFixed(2),
		}).Info("discounted price")
	}

	return nil
}

// Tags — выборка меток товара через content types.
func (s *Showcase) Tags(_ context.Context) error {
	items, err := s.repos.Tags.TagsFor(domain.ModelProduct, 1)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.Tag != nil {
			s.logger.WithFields(log.Fields{
				"product_id": item.ObjectID,
				"tag":        item.Tag.Label,
			}).Info("product tag")
		}
	}
	return nil
}

// EditCollections — обновление через выборку и массовое обновление без неё.
func (s *Showcase) EditCollections(_ context.Context) error {
	collection, err := s.repos.Collections.Get(1)
	if err != nil {
		if errors.Is(err, domain.ErrCollectionNotFound) {
			s.logger.Info("no collection to edit, skipping")
			return nil
		}
		return err
	}

	collection.FeaturedProductID = nil
	if err := s.repos.Collections.Save(collection); err != nil {
		return err
	}
	s.logger.WithField("collection_id", collection.ID).Info("collection saved")

	affected, err := s.repos.Collections.ClearFeatured(collection.ID)
	if err != nil {
		return err
	}
	s.logger.WithFields(log.Fields{
		"collection_id": collection.ID,
		"affected":      affected,
	}).Info("featured product cleared in bulk")

	return nil
}

// DeleteCollections — удаление одной коллекции по ID и массовое удаление
// всех коллекций выше порога. Коллекции с товарами защищены внешним ключом
// и остаются на месте.
func (s *Showcase) DeleteCollections(_ context.Context) error {
	const doomedID = 11

	switch err := s.repos.Collections.Delete(doomedID); {
	case err == nil:
		s.logger.WithField("collection_id", doomedID).Info("collection deleted")
	case errors.Is(err, domain.ErrCollectionNotFound):
		s.logger.WithField("collection_id", doomedID).Info("no collection to delete")
	case errors.Is(err, domain.ErrForeignKeyViolation):
		s.logger.WithField("collection_id", doomedID).Info("collection still has products, kept")
	default:
		return err
	}

	const threshold = 5
	affected, err := s.repos.Collections.DeleteAbove(threshold)
	if err != nil {
		if errors.Is(err, domain.ErrForeignKeyViolation) {
			s.logger.WithField("threshold", threshold).Info("collections above threshold still have products, kept")
			return nil
		}
		return err
	}
	s.logger.WithFields(log.Fields{
		"threshold": threshold,
		"affected":  affected,
	}).Info("collections deleted in bulk")

	return nil
}

// PlaceOrderWithRollback оформляет заказ, а затем демонстрирует откат
// транзакции на позиции с несуществующим товаром.
func (s *Showcase) PlaceOrderWithRollback(_ context.Context) error {
	customers, err := s.repos.Customers.WithFullName()
	if err != nil {
		return err
	}
	products, err := s.repos.Products.All()
	if err != nil {
		return err
	}
	if len(customers) == 0 || len(products) == 0 {
		s.logger.Info("no customers or products, skipping order demo")
		return nil
	}

	placed, err := s.repos.Orders.Place(domain.Order{
		CustomerID: customers[0].ID,
		Items: []domain.OrderItem{
			{ProductID: products[0].ID, Quantity: 1, UnitPrice: products[0].UnitPrice},
		},
	})
	if err != nil {
		return err
	}
	s.logger.WithFields(log.Fields{
		"order_id": placed.ID,
		"total":    placed.Total().StringFixed(2),
	}).Info("order placed")

	// Позиция со ссылкой на несуществующий товар: заказ не сохраняется вовсе.
	_, err = s.repos.Orders.Place(domain.Order{
		CustomerID: customers[0].ID,
		Items: []domain.OrderItem{
			{ProductID: products[0].ID, Quantity: 1, UnitPrice: products[0].UnitPrice},
			{ProductID: -1, Quantity: 1, UnitPrice: decimal.RequireFromString("1.00")},
		},
	})
	if !errors.Is(err, domain.ErrForeignKeyViolation) {
		return fmt.Errorf("expected rollback on invalid product, got %w", err)
	}
	s.logger.Info("invalid order rolled back")

	return nil
}

// RawSQL — произвольный SELECT и вызов хранимой функции.
func (s *Showcase) RawSQL(ctx context.Context) error {
	if s.raw == nil {
		s.logger.Info("raw access is not available, skipping")
		return nil
	}

	rows, err := s.raw.Query(ctx, `SELECT id, title FROM products ORDER BY id LIMIT $1`, 5)
	if err != nil {
		return err
	}
	for _, row := range rows {
		s.logger.WithFields(log.Fields{
			"id":    row["id"],
			"title": row["title"],
		}).Info("raw query row")
	}

	customers, err := s.raw.GetCustomers(ctx, 1, 2)
	if err != nil {
		return err
	}
	s.logger.WithField("count", len(customers)).Info("customers from stored function")

	return nil
}
