package memory

import (
	"sort"

	"github.com/bmaxtar/storefront/internal/domain"
)

type customerRepositoryInMemory struct {
	store *Store
}

// NewCustomerRepository создаёт in-memory реализацию CustomerRepository.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepositoryInMemory{store: store}
}

func (r *customerRepositoryInMemory) Get(id int64) (domain.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return c, nil
}

func (r *customerRepositoryInMemory) WithFullName() ([]domain.NamedCustomer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.NamedCustomer, 0, len(r.store.customers))
	for _, c := range r.store.customers {
		result = append(result, domain.NamedCustomer{
			Customer: c,
			FullName: c.FirstName + " " + c.LastName,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *customerRepositoryInMemory) WithOrderCounts() ([]domain.CustomerOrderCount, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	counts := make(map[int64]int64, len(r.store.customers))
	for _, order := range r.store.orders {
		counts[order.CustomerID]++
	}

	result := make([]domain.CustomerOrderCount, 0, len(r.store.customers))
	for _, c := range r.store.customers {
		result = append(result, domain.CustomerOrderCount{
			Customer:    c,
			OrdersCount: counts[c.ID],
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

var _ domain.CustomerRepository = (*customerRepositoryInMemory)(nil)
