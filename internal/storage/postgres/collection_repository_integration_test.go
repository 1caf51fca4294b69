package postgres

import (
	"errors"
	"testing"

	"github.com/bmaxtar/storefront/internal/domain"
)

func TestCollectionRepository_GetSave(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCollectionRepository(store)

	collectionID := seedCollection(t, store, "Beverages")
	productID := seedProduct(t, store, "Coffee Beans", "15.00", 5, collectionID)

	_, err := store.DB().Exec(
		`UPDATE collections SET featured_product_id = $1 WHERE id = $2`,
		productID, collectionID,
	)
	if err != nil {
		t.Fatalf("set featured product: %v", err)
	}

	c, err := repo.Get(collectionID)
	if err != nil {
		t.Fatalf("get collection: %v", err)
	}
	if c.FeaturedProductID == nil || *c.FeaturedProductID != productID {
		t.Fatalf("expected featured product %d, got %+v", productID, c.FeaturedProductID)
	}

	// Вариант через выборку и сохранение.
	c.FeaturedProductID = nil
	if err := repo.Save(c); err != nil {
		t.Fatalf("save collection: %v", err)
	}

	c, err = repo.Get(collectionID)
	if err != nil {
		t.Fatalf("get collection after save: %v", err)
	}
	if c.FeaturedProductID != nil {
		t.Fatalf("expected cleared featured product, got %v", *c.FeaturedProductID)
	}
}

func TestCollectionRepository_ClearFeatured(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCollectionRepository(store)

	collectionID := seedCollection(t, store, "Beverages")
	productID := seedProduct(t, store, "Coffee Beans", "15.00", 5, collectionID)
	if _, err := store.DB().Exec(
		`UPDATE collections SET featured_product_id = $1 WHERE id = $2`,
		productID, collectionID,
	); err != nil {
		t.Fatalf("set featured product: %v", err)
	}

	// Массовый вариант: один UPDATE без выборки.
	affected, err := repo.ClearFeatured(collectionID)
	if err != nil {
		t.Fatalf("clear featured: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 affected row, got %d", affected)
	}

	affected, err = repo.ClearFeatured(999999)
	if err != nil {
		t.Fatalf("clear featured missing: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 affected rows, got %d", affected)
	}
}

func TestCollectionRepository_Delete(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCollectionRepository(store)

	collectionID := seedCollection(t, store, "Temporary")
	if err := repo.Delete(collectionID); err != nil {
		t.Fatalf("delete collection: %v", err)
	}

	if err := repo.Delete(collectionID); !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestCollectionRepository_DeleteAbove(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCollectionRepository(store)

	keep := seedCollection(t, store, "Keep")
	seedCollection(t, store, "Drop 1")
	seedCollection(t, store, "Drop 2")

	deleted, err := repo.DeleteAbove(keep)
	if err != nil {
		t.Fatalf("delete above: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted collections, got %d", deleted)
	}

	if _, err := repo.Get(keep); err != nil {
		t.Fatalf("kept collection must survive: %v", err)
	}
}

func TestCollectionRepository_DeleteRestrictedByProducts(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCollectionRepository(store)

	collectionID := seedCollection(t, store, "Beverages")
	seedProduct(t, store, "Coffee Beans", "15.00", 5, collectionID)

	// Коллекцию с товарами удалить нельзя: FK с ON DELETE RESTRICT.
	err := repo.Delete(collectionID)
	if !errors.Is(err, domain.ErrForeignKeyViolation) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}
