package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bmaxtar/storefront/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Get(id int64) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var order domain.Order
	var status string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, placed_at, payment_status, customer_id
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.PlacedAt, &status, &order.CustomerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	order.PaymentStatus = domain.PaymentStatus(status)

	items, err := r.loadItems(ctx, []int64{order.ID})
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items[order.ID]

	return order, nil
}

// Recent возвращает последние заказы: клиент подтягивается через JOIN,
// позиции с товарами — одним дополнительным запросом на всю выборку.
func (r *orderRepository) Recent(limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 5
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.placed_at, o.payment_status, o.customer_id,
		       c.id, c.first_name, c.last_name, c.email, c.phone, c.birth_date, c.membership
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		ORDER BY o.placed_at DESC, o.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("select recent orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, limit)
	orderIDs := make([]int64, 0, limit)
	for rows.Next() {
		var (
			order      domain.Order
			customer   domain.Customer
			status     string
			membership string
		)
		if err := rows.Scan(
			&order.ID, &order.PlacedAt, &status, &order.CustomerID,
			&customer.ID, &customer.FirstName, &customer.LastName, &customer.Email,
			&customer.Phone, &customer.BirthDate, &membership,
		); err != nil {
			return nil, fmt.Errorf("scan recent order: %w", err)
		}
		order.PaymentStatus = domain.PaymentStatus(status)
		customer.Membership = domain.Membership(membership)
		order.Customer = &customer
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent orders: %w", err)
	}

	items, err := r.loadItems(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}

// Place атомарно сохраняет заказ, его позиции и outbox-событие.
// Любая ошибка, включая ссылку на несуществующий товар,
// откатывает транзакцию целиком: частично оформленных заказов не бывает.
func (r *orderRepository) Place(order domain.Order) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if order.PlacedAt.IsZero() {
		order.PlacedAt = time.Now().UTC()
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = domain.PaymentStatusPending
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (placed_at, payment_status, customer_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`, order.PlacedAt, string(order.PaymentStatus), order.CustomerID).Scan(&order.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			err = fmt.Errorf("insert order: %w", domain.ErrForeignKeyViolation)
			return domain.Order{}, err
		}
		err = fmt.Errorf("insert order: %w", err)
		return domain.Order{}, err
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice).Scan(&item.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				err = fmt.Errorf("insert order item: %w", domain.ErrForeignKeyViolation)
				return domain.Order{}, err
			}
			err = fmt.Errorf("insert order item: %w", err)
			return domain.Order{}, err
		}
	}

	if err = insertPlacedEvent(ctx, tx, order); err != nil {
		return domain.Order{}, err
	}

	if err = tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit place order: %w", err)
	}

	return order, nil
}

// insertPlacedEvent пишет событие оформления в outbox той же транзакцией.
func insertPlacedEvent(ctx context.Context, tx *sql.Tx, order domain.Order) error {
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
		return fmt.Errorf("marshal order placed event: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO outbox_messages (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.NewString(), "order", fmt.Sprintf("%d", order.ID),
		"order.placed", payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}

	return nil
}

// loadItems дочитывает позиции с товарами для набора заказов одним запросом.
func (r *orderRepository) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	result := make(map[int64][]domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(orderIDs))
	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT i.id, i.order_id, i.product_id, i.quantity, i.unit_price,
		       p.id, p.title, p.slug, p.description, p.unit_price, p.inventory,
		       p.collection_id, p.last_update
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id IN (%s)
		ORDER BY i.order_id, i.id
	`, strings.Join(placeholders, ", ")), args...)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item    domain.OrderItem
			product domain.Product
		)
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice,
			&product.ID, &product.Title, &product.Slug, &product.Description,
			&product.UnitPrice, &product.Inventory, &product.CollectionID, &product.LastUpdate,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.Product = &product
		result[item.OrderID] = append(result[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return result, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
