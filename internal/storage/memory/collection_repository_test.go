package memory_test

import (
	"errors"
	"testing"

	"github.com/bmaxtar/storefront/internal/domain"
	"github.com/bmaxtar/storefront/internal/storage/memory"
)

func TestCollectionRepository_GetSaveClear(t *testing.T) {
	store := memory.NewStore()
	collection := store.AddCollection(domain.Collection{Title: "Beverages"})
	product := store.AddProduct(domain.Product{Title: "Coffee Beans", UnitPrice: price("15.00"), Inventory: 5, CollectionID: collection.ID})
	repo := memory.NewCollectionRepository(store)

	collection.FeaturedProductID = &product.ID
	if err := repo.Save(collection); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Get(collection.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.FeaturedProductID == nil || *got.FeaturedProductID != product.ID {
		t.Fatalf("expected featured product %d, got %+v", product.ID, got.FeaturedProductID)
	}

	affected, err := repo.ClearFeatured(collection.ID)
	if err != nil {
		t.Fatalf("ClearFeatured failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 affected row, got %d", affected)
	}

	got, err = repo.Get(collection.ID)
	if err != nil {
		t.Fatalf("Get after clear failed: %v", err)
	}
	if got.FeaturedProductID != nil {
		t.Fatalf("expected cleared featured product, got %v", *got.FeaturedProductID)
	}

	affected, err = repo.ClearFeatured(999)
	if err != nil {
		t.Fatalf("ClearFeatured missing failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 affected rows, got %d", affected)
	}
}

func TestCollectionRepository_SaveMissing(t *testing.T) {
	repo := memory.NewCollectionRepository(memory.NewStore())

	err := repo.Save(domain.Collection{ID: 42, Title: "Ghost"})
	if !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestCollectionRepository_Delete(t *testing.T) {
	store := memory.NewStore()
	collection := store.AddCollection(domain.Collection{Title: "Temporary"})
	repo := memory.NewCollectionRepository(store)

	if err := repo.Delete(collection.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repo.Delete(collection.ID); !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestCollectionRepository_DeleteRestrictedByProducts(t *testing.T) {
	store := memory.NewStore()
	collection := store.AddCollection(domain.Collection{Title: "Beverages"})
	store.AddProduct(domain.Product{Title: "Coffee Beans", UnitPrice: price("15.00"), Inventory: 5, CollectionID: collection.ID})
	repo := memory.NewCollectionRepository(store)

	err := repo.Delete(collection.ID)
	if !errors.Is(err, domain.ErrForeignKeyViolation) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}

func TestCollectionRepository_DeleteAbove(t *testing.T) {
	store := memory.NewStore()
	keep := store.AddCollection(domain.Collection{Title: "Keep"})
	store.AddCollection(domain.Collection{Title: "Drop 1"})
	store.AddCollection(domain.Collection{Title: "Drop 2"})
	repo := memory.NewCollectionRepository(store)

	deleted, err := repo.DeleteAbove(keep.ID)
	if err != nil {
		t.Fatalf("DeleteAbove failed: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted collections, got %d", deleted)
	}
	if _, err := repo.Get(keep.ID); err != nil {
		t.Fatalf("kept collection must survive: %v", err)
	}
}
