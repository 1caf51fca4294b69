package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bmaxtar/storefront/internal/domain"
	"github.com/bmaxtar/storefront/internal/query"
)

const customerColumns = "id, first_name, last_name, email, phone, birth_date, membership"

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository создаёт PostgreSQL-реализацию CustomerRepository.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepository{db: store.DB()}
}

func (r *customerRepository) Get(id int64) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var c domain.Customer
	var membership string
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM customers WHERE id = $1
	`, customerColumns), id).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.BirthDate, &membership,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	c.Membership = domain.Membership(membership)

	return c, nil
}

func (r *customerRepository) WithFullName() ([]domain.NamedCustomer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	fullName, args := query.Concat(
		query.F("first_name"), query.V(" "), query.F("last_name"),
	).Expr(0)

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s, %s AS full_name
		FROM customers
		ORDER BY id
	`, customerColumns, fullName), args...)
	if err != nil {
		return nil, fmt.Errorf("select customers with full name: %w", err)
	}
	defer rows.Close()

	result := make([]domain.NamedCustomer, 0)
	for rows.Next() {
		var c domain.NamedCustomer
		var membership string
		if err := rows.Scan(
			&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.BirthDate,
			&membership, &c.FullName,
		); err != nil {
			return nil, fmt.Errorf("scan named customer: %w", err)
		}
		c.Membership = domain.Membership(membership)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate named customers: %w", err)
	}

	return result, nil
}

func (r *customerRepository) WithOrderCounts() ([]domain.CustomerOrderCount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	// LEFT JOIN, чтобы клиенты без заказов получили счётчик 0,
	// а не выпали из выборки.
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.first_name, c.last_name, c.email, c.phone, c.birth_date,
		       c.membership, COUNT(o.id) AS orders_count
		FROM customers c
		LEFT JOIN orders o ON o.customer_id = c.id
		GROUP BY c.id
		ORDER BY c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("select customers with order counts: %w", err)
	}
	defer rows.Close()

	result := make([]domain.CustomerOrderCount, 0)
	for rows.Next() {
		var c domain.CustomerOrderCount
		var membership string
		if err := rows.Scan(
			&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.BirthDate,
			&membership, &c.OrdersCount,
		); err != nil {
			return nil, fmt.Errorf("scan customer order count: %w", err)
		}
		c.Membership = domain.Membership(membership)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer order counts: %w", err)
	}

	return result, nil
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
