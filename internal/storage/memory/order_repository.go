package memory

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bmaxtar/storefront/internal/domain"
)

type orderRepositoryInMemory struct {
	store *Store
}

// NewOrderRepository создаёт in-memory реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepositoryInMemory{store: store}
}

func (r *orderRepositoryInMemory) Get(id int64) (domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	order, ok := r.store.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	order = cloneOrder(order)
	r.attachProducts(&order)
	return order, nil
}

func (r *orderRepositoryInMemory) Recent(limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 5
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	orders := make([]domain.Order, 0, len(r.store.orders))
	for _, order := range r.store.orders {
		orders = append(orders, cloneOrder(order))
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].PlacedAt.Equal(orders[j].PlacedAt) {
			return orders[i].PlacedAt.After(orders[j].PlacedAt)
		}
		return orders[i].ID > orders[j].ID
	})
	if len(orders) > limit {
		orders = orders[:limit]
	}

	for i := range orders {
		if c, ok := r.store.customers[orders[i].CustomerID]; ok {
			customer := c
			orders[i].Customer = &customer
		}
		r.attachProducts(&orders[i])
	}

	return orders, nil
}

// Place повторяет транзакционную семантику PostgreSQL-реализации:
// ссылка на несуществующего клиента или товар отменяет заказ целиком,
// никаких частичных записей не остаётся.
func (r *orderRepositoryInMemory) Place(order domain.Order) (domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.customers[order.CustomerID]; !ok {
		return domain.Order{}, fmt.Errorf("insert order: %w", domain.ErrForeignKeyViolation)
	}
	for _, item := range order.Items {
		if _, ok := r.store.products[item.ProductID]; !ok {
			return domain.Order{}, fmt.Errorf("insert order item: %w", domain.ErrForeignKeyViolation)
		}
	}

	if order.PlacedAt.IsZero() {
		order.PlacedAt = time.Now().UTC()
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = domain.PaymentStatusPending
	}

	r.store.nextOrderID++
	order.ID = r.store.nextOrderID
	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	for i := range items {
		r.store.nextOrderItemID++
		items[i].ID = r.store.nextOrderItemID
		items[i].OrderID = order.ID
		items[i].Product = nil
	}
	order.Items = items
	order.Customer = nil

	payload, err := json.Marshal(struct {
		OrderID    int64  `json:"order_id"`
		CustomerID int64  `json:"customer_id"`
		Total      string `json:"total"`
		ItemsCount int    `json:"items_count"`
	}{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Total:      order.Total().StringFixed(2),
		ItemsCount: len(order.Items),
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("marshal order placed event: %w", err)
	}

	r.store.orders[order.ID] = cloneOrder(order)
	r.store.outbox = append(r.store.outbox, domain.OutboxMessage{
		ID:            uuid.NewString(),
		AggregateType: "order",
		AggregateID:   fmt.Sprintf("%d", order.ID),
		EventType:     "order.placed",
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	})

	return order, nil
}

// attachProducts заполняет Product в позициях. Вызывается под мьютексом Store.
func (r *orderRepositoryInMemory) attachProducts(order *domain.Order) {
	for i := range order.Items {
		if p, ok := r.store.products[order.Items[i].ProductID]; ok {
			product := cloneProduct(p)
			order.Items[i].Product = &product
		}
	}
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
