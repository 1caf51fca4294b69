package memory

import (
	"fmt"
	"sort"

	"github.com/bmaxtar/storefront/internal/domain"
)

type collectionRepositoryInMemory struct {
	store *Store
}

// NewCollectionRepository создаёт in-memory реализацию CollectionRepository.
func NewCollectionRepository(store *Store) domain.CollectionRepository {
	return &collectionRepositoryInMemory{store: store}
}

func (r *collectionRepositoryInMemory) Get(id int64) (domain.Collection, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.collections[id]
	if !ok {
		return domain.Collection{}, domain.ErrCollectionNotFound
	}
	return c, nil
}

func (r *collectionRepositoryInMemory) Save(c domain.Collection) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.collections[c.ID]; !ok {
		return domain.ErrCollectionNotFound
	}
	r.store.collections[c.ID] = c
	return nil
}

func (r *collectionRepositoryInMemory) ClearFeatured(id int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c, ok := r.store.collections[id]
	if !ok {
		return 0, nil
	}
	c.FeaturedProductID = nil
	r.store.collections[id] = c
	return 1, nil
}

func (r *collectionRepositoryInMemory) Delete(id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.collections[id]; !ok {
		return domain.ErrCollectionNotFound
	}
	if r.hasProducts(id) {
		return fmt.Errorf("delete collection: %w", domain.ErrForeignKeyViolation)
	}
	delete(r.store.collections, id)
	return nil
}

func (r *collectionRepositoryInMemory) DeleteAbove(id int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	victims := make([]int64, 0)
	for collectionID := range r.store.collections {
		if collectionID > id {
			victims = append(victims, collectionID)
		}
	}
	// Удаление, как и в PostgreSQL, атомарно: одна коллекция с товарами
	// отменяет всю пачку.
	for _, victim := range victims {
		if r.hasProducts(victim) {
			return 0, fmt.Errorf("delete collections: %w", domain.ErrForeignKeyViolation)
		}
	}

	sort.Slice(victims, func(i, j int) bool { return victims[i] < victims[j] })
	for _, victim := range victims {
		delete(r.store.collections, victim)
	}
	return int64(len(victims)), nil
}

// hasProducts проверяет наличие товаров в коллекции. Вызывается под мьютексом.
func (r *collectionRepositoryInMemory) hasProducts(collectionID int64) bool {
	for _, p := range r.store.products {
		if p.CollectionID == collectionID {
			return true
		}
	}
	return false
}

var _ domain.CollectionRepository = (*collectionRepositoryInMemory)(nil)
