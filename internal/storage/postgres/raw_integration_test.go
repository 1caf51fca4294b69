package postgres

import (
	"context"
	"testing"
)

func TestRaw_Query(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	raw := NewRaw(store)

	collectionID := seedCollection(t, store, "Beverages")
	seedProduct(t, store, "Coffee Beans", "15.00", 5, collectionID)
	seedProduct(t, store, "Green Tea", "25.00", 3, collectionID)

	rows, err := raw.Query(context.Background(),
		`SELECT title, inventory FROM products WHERE inventory < $1 ORDER BY title`, 4,
	)
	if err != nil {
		t.Fatalf("raw query: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["title"] != "Green Tea" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestRaw_Exec(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	raw := NewRaw(store)

	collectionID := seedCollection(t, store, "Beverages")
	seedProduct(t, store, "Coffee Beans", "15.00", 5, collectionID)
	seedProduct(t, store, "Green Tea", "25.00", 3, collectionID)

	affected, err := raw.Exec(context.Background(),
		`UPDATE products SET inventory = inventory + $1`, 10,
	)
	if err != nil {
		t.Fatalf("raw exec: %v", err)
	}
	if affected != 2 {
		t.Fatalf("expected 2 affected rows, got %d", affected)
	}
}

func TestRaw_GetCustomers(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	raw := NewRaw(store)

	first := seedCustomer(t, store, "Max", "Tar", "max@example.com")
	seedCustomer(t, store, "Anna", "Ray", "anna@example.com")
	third := seedCustomer(t, store, "Ivan", "Lee", "ivan@example.com")

	customers, err := raw.GetCustomers(context.Background(), first, third)
	if err != nil {
		t.Fatalf("get customers: %v", err)
	}
	if len(customers) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(customers))
	}

	emails := map[string]struct{}{}
	for _, c := range customers {
		emails[c.Email] = struct{}{}
	}
	if _, ok := emails["max@example.com"]; !ok {
		t.Fatalf("expected max@example.com in result: %+v", customers)
	}
	if _, ok := emails["ivan@example.com"]; !ok {
		t.Fatalf("expected ivan@example.com in result: %+v", customers)
	}
}

func TestRaw_GetCustomersEmpty(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	raw := NewRaw(store)

	customers, err := raw.GetCustomers(context.Background(), 999999)
	if err != nil {
		t.Fatalf("get customers: %v", err)
	}
	if len(customers) != 0 {
		t.Fatalf("expected no customers, got %d", len(customers))
	}
}
