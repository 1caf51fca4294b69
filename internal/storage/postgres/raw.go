package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bmaxtar/storefront/internal/domain"
)

// Raw — низкоуровневый доступ в обход репозиториев: произвольные
// SQL-выражения и вызов хранимых функций.
type Raw struct {
	db *sql.DB
}

// NewRaw создаёт обёртку низкоуровневого доступа поверх общего пула.
func NewRaw(store *Store) *Raw {
	return &Raw{db: store.DB()}
}

// Query выполняет произвольный SELECT и возвращает строки как словари
// колонка→значение: структура результата заранее не известна.
func (r *Raw) Query(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(queryCtx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("raw query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("raw query columns: %w", err)
	}

	result := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("raw query scan: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			value := values[i]
			// Байтовые колонки приводятся к строке для удобства вывода.
			if b, ok := value.([]byte); ok {
				value = string(b)
			}
			row[column] = value
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("raw query iterate: %w", err)
	}

	return result, nil
}

// Exec выполняет выражение без результата (DDL, хранимые процедуры через CALL).
func (r *Raw) Exec(ctx context.Context, sqlText string, args ...any) (int64, error) {
	execCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(execCtx, sqlText, args...)
	if err != nil {
		return 0, fmt.Errorf("raw exec: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("raw exec rows affected: %w", err)
	}
	return affected, nil
}

// GetCustomers вызывает хранимую функцию get_customers(ids) и
// возвращает найденных клиентов.
func (r *Raw) GetCustomers(ctx context.Context, ids ...int64) ([]domain.Customer, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// database/sql не умеет callproc; set-returning функция
	// вызывается обычным SELECT.
	rows, err := r.db.QueryContext(queryCtx,
		`SELECT id, first_name, last_name, email, phone, birth_date, membership
		 FROM get_customers($1)`,
		int64Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("call get_customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, len(ids))
	for rows.Next() {
		var c domain.Customer
		var membership string
		if err := rows.Scan(
			&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.BirthDate, &membership,
		); err != nil {
			return nil, fmt.Errorf("scan get_customers row: %w", err)
		}
		c.Membership = domain.Membership(membership)
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate get_customers rows: %w", err)
	}

	return customers, nil
}

// int64Array рендерит массив для параметра bigint[].
func int64Array(ids []int64) string {
	out := "{"
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%d", id)
	}
	return out + "}"
}
