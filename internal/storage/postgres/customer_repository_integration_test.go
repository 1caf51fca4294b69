package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/bmaxtar/storefront/internal/domain"
)

func TestCustomerRepository_Get(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCustomerRepository(store)

	id := seedCustomer(t, store, "Max", "Tar", "max@example.com")

	c, err := repo.Get(id)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if c.Email != "max@example.com" {
		t.Fatalf("unexpected customer: %+v", c)
	}
	if c.Membership != domain.MembershipBronze {
		t.Fatalf("expected default bronze membership, got %s", c.Membership)
	}

	_, err = repo.Get(999999)
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestCustomerRepository_WithFullName(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCustomerRepository(store)

	seedCustomer(t, store, "Max", "Tar", "max@example.com")
	seedCustomer(t, store, "Anna", "Ray", "anna@example.com")

	named, err := repo.WithFullName()
	if err != nil {
		t.Fatalf("customers with full name: %v", err)
	}
	if len(named) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(named))
	}
	if named[0].FullName != "Max Tar" || named[1].FullName != "Anna Ray" {
		t.Fatalf("unexpected full names: %+v", named)
	}
}

func TestCustomerRepository_WithOrderCounts(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCustomerRepository(store)

	buyer := seedCustomer(t, store, "Max", "Tar", "max@example.com")
	idle := seedCustomer(t, store, "Anna", "Ray", "anna@example.com")

	now := time.Now().UTC()
	seedOrder(t, store, buyer, now.Add(-time.Hour))
	seedOrder(t, store, buyer, now)

	counts, err := repo.WithOrderCounts()
	if err != nil {
		t.Fatalf("customers with order counts: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(counts))
	}

	byID := map[int64]int64{}
	for _, c := range counts {
		byID[c.ID] = c.OrdersCount
	}
	if byID[buyer] != 2 {
		t.Fatalf("expected 2 orders for buyer, got %d", byID[buyer])
	}
	// Клиент без заказов не должен выпасть из выборки.
	if got, ok := byID[idle]; !ok || got != 0 {
		t.Fatalf("expected zero-count row for idle customer, got %d (present=%v)", got, ok)
	}
}
