package memory

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bmaxtar/storefront/internal/domain"
)

type productRepositoryInMemory struct {
	store *Store
}

// NewProductRepository создаёт in-memory реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepositoryInMemory{store: store}
}

// selectProducts собирает товары по предикату. Аналог общей выборки
// с деревом условий в PostgreSQL-реализации.
func (r *productRepositoryInMemory) selectProducts(match func(domain.Product) bool) []domain.Product {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	products := make([]domain.Product, 0)
	for _, p := range r.store.products {
		if match == nil || match(p) {
			products = append(products, cloneProduct(p))
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

func (r *productRepositoryInMemory) All() ([]domain.Product, error) {
	return r.selectProducts(nil), nil
}

func (r *productRepositoryInMemory) Exists(id int64) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.products[id]
	return ok, nil
}

func (r *productRepositoryInMemory) SearchTitle(needle string) ([]domain.Product, error) {
	needle = strings.ToLower(needle)
	products := r.selectProducts(func(p domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Title), needle)
	})
	sort.Slice(products, func(i, j int) bool { return products[i].Title < products[j].Title })
	return products, nil
}

func (r *productRepositoryInMemory) LowStockCheap(maxInventory int32, maxPrice decimal.Decimal) ([]domain.Product, error) {
	return r.selectProducts(func(p domain.Product) bool {
		return p.Inventory < maxInventory && p.UnitPrice.LessThan(maxPrice)
	}), nil
}

func (r *productRepositoryInMemory) LowStockOrCheap(maxInventory int32, maxPrice decimal.Decimal) ([]domain.Product, error) {
	return r.selectProducts(func(p domain.Product) bool {
		return p.Inventory < maxInventory || p.UnitPrice.LessThan(maxPrice)
	}), nil
}

func (r *productRepositoryInMemory) LowStockNotCheap(maxInventory int32, maxPrice decimal.Decimal) ([]domain.Product, error) {
	return r.selectProducts(func(p domain.Product) bool {
		return p.Inventory < maxInventory && !p.UnitPrice.LessThan(maxPrice)
	}), nil
}

func (r *productRepositoryInMemory) InventoryEqualsPrice() ([]domain.Product, error) {
	return r.selectProducts(func(p domain.Product) bool {
		return decimal.NewFromInt32(p.Inventory).Equal(p.UnitPrice)
	}), nil
}

func (r *productRepositoryInMemory) Cheapest() (domain.Product, error) {
	products := r.selectProducts(nil)
	if len(products) == 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}
	sort.Slice(products, func(i, j int) bool {
		if !products[i].UnitPrice.Equal(products[j].UnitPrice) {
			return products[i].UnitPrice.LessThan(products[j].UnitPrice)
		}
		return products[i].ID < products[j].ID
	})
	return products[0], nil
}

func (r *productRepositoryInMemory) MostExpensive() (domain.Product, error) {
	products := r.selectProducts(nil)
	if len(products) == 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}
	sort.Slice(products, func(i, j int) bool {
		if !products[i].UnitPrice.Equal(products[j].UnitPrice) {
			return products[i].UnitPrice.GreaterThan(products[j].UnitPrice)
		}
		return products[i].ID < products[j].ID
	})
	return products[0], nil
}

func (r *productRepositoryInMemory) Refs() ([]domain.ProductRef, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	refs := make([]domain.ProductRef, 0, len(r.store.products))
	for _, p := range r.store.products {
		refs = append(refs, domain.ProductRef{
			ID:              p.ID,
			Title:           p.Title,
			CollectionTitle: r.store.collections[p.CollectionID].Title,
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}

func (r *productRepositoryInMemory) Ordered() ([]domain.Product, error) {
	r.store.mu.RLock()
	orderedIDs := make(map[int64]bool)
	for _, order := range r.store.orders {
		for _, item := range order.Items {
			orderedIDs[item.ProductID] = true
		}
	}
	r.store.mu.RUnlock()

	products := r.selectProducts(func(p domain.Product) bool {
		return orderedIDs[p.ID]
	})
	sort.Slice(products, func(i, j int) bool { return products[i].Title < products[j].Title })
	return products, nil
}

func (r *productRepositoryInMemory) AllWithCollections() ([]domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	products := make([]domain.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		p = cloneProduct(p)
		if c, ok := r.store.collections[p.CollectionID]; ok {
			collection := c
			p.Collection = &collection
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (r *productRepositoryInMemory) AllWithPromotions() ([]domain.Product, error) {
	products, err := r.AllWithCollections()
	if err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for i := range products {
		promoIDs := r.store.productPromotions[products[i].ID]
		if len(promoIDs) == 0 {
			continue
		}
		promos := make([]domain.Promotion, 0, len(promoIDs))
		for _, id := range promoIDs {
			if promo, ok := r.store.promotions[id]; ok {
				promos = append(promos, promo)
			}
		}
		sort.Slice(promos, func(a, b int) bool { return promos[a].ID < promos[b].ID })
		products[i].Promotions = promos
	}

	return products, nil
}

func (r *productRepositoryInMemory) Stats() (domain.ProductStats, error) {
	return r.stats(nil), nil
}

func (r *productRepositoryInMemory) CollectionStats(collectionID int64) (domain.ProductStats, error) {
	return r.stats(func(p domain.Product) bool {
		return p.CollectionID == collectionID
	}), nil
}

func (r *productRepositoryInMemory) stats(match func(domain.Product) bool) domain.ProductStats {
	products := r.selectProducts(match)
	if len(products) == 0 {
		return domain.ProductStats{}
	}

	stats := domain.ProductStats{
		Count:    int64(len(products)),
		MinPrice: products[0].UnitPrice,
		MaxPrice: products[0].UnitPrice,
	}
	sum := decimal.Zero
	for _, p := range products {
		if p.UnitPrice.LessThan(stats.MinPrice) {
			stats.MinPrice = p.UnitPrice
		}
		if p.UnitPrice.GreaterThan(stats.MaxPrice) {
			stats.MaxPrice = p.UnitPrice
		}
		sum = sum.Add(p.UnitPrice)
		stats.SumInventory += int64(p.Inventory)
	}
	stats.AvgPrice = sum.Div(decimal.NewFromInt(stats.Count))

	return stats
}

func (r *productRepositoryInMemory) WithDiscount(factor decimal.Decimal) ([]domain.PricedProduct, error) {
	products := r.selectProducts(nil)

	result := make([]domain.PricedProduct, 0, len(products))
	for _, p := range products {
		result = append(result, domain.PricedProduct{
			Product:         p,
			DiscountedPrice: p.UnitPrice.Mul(factor).Round(2),
		})
	}
	return result, nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
