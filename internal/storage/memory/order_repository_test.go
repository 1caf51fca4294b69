package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/bmaxtar/storefront/internal/domain"
	"github.com/bmaxtar/storefront/internal/storage/memory"
)

func TestOrderRepository_PlaceAndGet(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(store)
	repo := memory.NewOrderRepository(store)

	customer := store.AddCustomer(domain.Customer{FirstName: "Max", LastName: "Tar", Email: "max@example.com"})

	placed, err := repo.Place(domain.Order{
		CustomerID: customer.ID,
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 2, UnitPrice: price("15.00")},
			{ProductID: 2, Quantity: 1, UnitPrice: price("7.50")},
		},
	})
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	if placed.ID == 0 {
		t.Fatal("expected assigned order id")
	}
	for _, item := range placed.Items {
		if item.ID == 0 || item.OrderID != placed.ID {
			t.Fatalf("expected assigned item ids: %+v", item)
		}
	}

	got, err := repo.Get(placed.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("expected pending status, got %s", got.PaymentStatus)
	}
	if !got.Total().Equal(price("37.50")) {
		t.Fatalf("unexpected total: %s", got.Total())
	}
	if got.Items[0].Product == nil || got.Items[0].Product.Title != "Coffee Beans" {
		t.Fatalf("expected prefetched product, got %+v", got.Items[0].Product)
	}
}

func TestOrderRepository_PlaceWritesOutboxMessage(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(store)
	repo := memory.NewOrderRepository(store)

	customer := store.AddCustomer(domain.Customer{FirstName: "Max", LastName: "Tar", Email: "max@example.com"})
	if _, err := repo.Place(domain.Order{
		CustomerID: customer.ID,
		Items:      []domain.OrderItem{{ProductID: 1, Quantity: 1, UnitPrice: price("15.00")}},
	}); err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	pending, err := memory.NewOutboxRepository(store).PullPending(10)
	if err != nil {
		t.Fatalf("PullPending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 outbox message, got %d", len(pending))
	}
	if pending[0].EventType != "order.placed" || pending[0].AggregateType != "order" {
		t.Fatalf("unexpected outbox message: %+v", pending[0])
	}
}

func TestOrderRepository_PlaceRejectsUnknownReferences(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(store)
	repo := memory.NewOrderRepository(store)

	customer := store.AddCustomer(domain.Customer{FirstName: "Max", LastName: "Tar", Email: "max@example.com"})

	_, err := repo.Place(domain.Order{
		CustomerID: 999,
		Items:      []domain.OrderItem{{ProductID: 1, Quantity: 1, UnitPrice: price("15.00")}},
	})
	if !errors.Is(err, domain.ErrForeignKeyViolation) {
		t.Fatalf("expected foreign key violation for customer, got %v", err)
	}

	_, err = repo.Place(domain.Order{
		CustomerID: customer.ID,
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 1, UnitPrice: price("15.00")},
			{ProductID: 999, Quantity: 1, UnitPrice: price("10.00")},
		},
	})
	if !errors.Is(err, domain.ErrForeignKeyViolation) {
		t.Fatalf("expected foreign key violation for product, got %v", err)
	}

	// Частично оформленных заказов не остаётся.
	orders, err := repo.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected no orders after failed placements, got %d", len(orders))
	}
	pending, err := memory.NewOutboxRepository(store).PullPending(10)
	if err != nil {
		t.Fatalf("PullPending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no outbox messages, got %d", len(pending))
	}
}

func TestOrderRepository_Recent(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(store)
	repo := memory.NewOrderRepository(store)

	customer := store.AddCustomer(domain.Customer{FirstName: "Max", LastName: "Tar", Email: "max@example.com"})
	now := time.Now().UTC()
	store.AddOrder(domain.Order{
		CustomerID: customer.ID,
		PlacedAt:   now.Add(-time.Hour),
		Items:      []domain.OrderItem{{ProductID: 1, Quantity: 1, UnitPrice: price("15.00")}},
	})
	fresh := store.AddOrder(domain.Order{
		CustomerID: customer.ID,
		PlacedAt:   now,
		Items:      []domain.OrderItem{{ProductID: 2, Quantity: 3, UnitPrice: price("7.50")}},
	})

	recent, err := repo.Recent(1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != fresh.ID {
		t.Fatalf("expected only the freshest order, got %+v", recent)
	}
	if recent[0].Customer == nil || recent[0].Customer.Email != "max@example.com" {
		t.Fatalf("expected joined customer, got %+v", recent[0].Customer)
	}
	if len(recent[0].Items) != 1 || recent[0].Items[0].Product == nil {
		t.Fatalf("expected prefetched items, got %+v", recent[0].Items)
	}
	if recent[0].Items[0].Product.Title != "Instant Coffee" {
		t.Fatalf("unexpected item product: %s", recent[0].Items[0].Product.Title)
	}
}

func TestOrderRepository_GetMissing(t *testing.T) {
	repo := memory.NewOrderRepository(memory.NewStore())

	if _, err := repo.Get(42); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOutboxRepository_MarkPublished(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(store)

	customer := store.AddCustomer(domain.Customer{FirstName: "Max", LastName: "Tar", Email: "max@example.com"})
	if _, err := memory.NewOrderRepository(store).Place(domain.Order{
		CustomerID: customer.ID,
		Items:      []domain.OrderItem{{ProductID: 1, Quantity: 1, UnitPrice: price("15.00")}},
	}); err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	outbox := memory.NewOutboxRepository(store)
	pending, err := outbox.PullPending(10)
	if err != nil {
		t.Fatalf("PullPending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending message, got %d", len(pending))
	}

	if err := outbox.MarkPublished(pending[0].ID); err != nil {
		t.Fatalf("MarkPublished failed: %v", err)
	}

	pending, err = outbox.PullPending(10)
	if err != nil {
		t.Fatalf("PullPending after mark failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending messages, got %d", len(pending))
	}
}
