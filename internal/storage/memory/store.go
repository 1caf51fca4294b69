package memory

import (
	"sync"
	"time"

	"github.com/bmaxtar/storefront/internal/domain"
)

// Store хранит все данные витрины в памяти. Используется в юнит-тестах
// и в демонстрационных сценариях, где PostgreSQL не нужен.
// Репозитории делят один Store и один мьютекс.
type Store struct {
	mu sync.RWMutex

	collections       map[int64]domain.Collection
	products          map[int64]domain.Product
	promotions        map[int64]domain.Promotion
	productPromotions map[int64][]int64
	customers         map[int64]domain.Customer
	orders            map[int64]domain.Order
	tags              map[int64]domain.Tag
	contentTypes      map[string]int64
	taggedItems       []domain.TaggedItem
	outbox            []domain.OutboxMessage

	nextCollectionID int64
	nextProductID    int64
	nextPromotionID  int64
	nextCustomerID   int64
	nextOrderID      int64
	nextOrderItemID  int64
	nextTagID        int64
	nextTaggedItemID int64
}

// NewStore создаёт пустое in-memory хранилище с предзаполненным
// справочником content types.
func NewStore() *Store {
	return &Store{
		collections:       make(map[int64]domain.Collection),
		products:          make(map[int64]domain.Product),
		promotions:        make(map[int64]domain.Promotion),
		productPromotions: make(map[int64][]int64),
		customers:         make(map[int64]domain.Customer),
		orders:            make(map[int64]domain.Order),
		tags:              make(map[int64]domain.Tag),
		contentTypes: map[string]int64{
			domain.ModelProduct:    1,
			domain.ModelCollection: 2,
			domain.ModelCustomer:   3,
		},
	}
}

// AddCollection сохраняет коллекцию и возвращает её с присвоенным ID.
func (s *Store) AddCollection(c domain.Collection) domain.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCollectionID++
	c.ID = s.nextCollectionID
	s.collections[c.ID] = c
	return c
}

// AddProduct сохраняет товар и возвращает его с присвоенным ID.
func (s *Store) AddProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProductID++
	p.ID = s.nextProductID
	if p.LastUpdate.IsZero() {
		p.LastUpdate = time.Now().UTC()
	}
	p.Collection = nil
	p.Promotions = nil
	s.products[p.ID] = p
	return p
}

// AddPromotion сохраняет акцию и возвращает её с присвоенным ID.
func (s *Store) AddPromotion(p domain.Promotion) domain.Promotion {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPromotionID++
	p.ID = s.nextPromotionID
	s.promotions[p.ID] = p
	return p
}

// PromoteProduct привязывает акцию к товару.
func (s *Store) PromoteProduct(productID, promotionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.productPromotions[productID] = append(s.productPromotions[productID], promotionID)
}

// AddCustomer сохраняет клиента и возвращает его с присвоенным ID.
func (s *Store) AddCustomer(c domain.Customer) domain.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCustomerID++
	c.ID = s.nextCustomerID
	if c.Membership == "" {
		c.Membership = domain.MembershipBronze
	}
	s.customers[c.ID] = c
	return c
}

// AddOrder сохраняет заказ с позициями, присваивая все ID.
// Для оформления новых заказов используется OrderRepository.Place.
func (s *Store) AddOrder(o domain.Order) domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextOrderID++
	o.ID = s.nextOrderID
	if o.PlacedAt.IsZero() {
		o.PlacedAt = time.Now().UTC()
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = domain.PaymentStatusPending
	}
	o.Customer = nil
	for i := range o.Items {
		s.nextOrderItemID++
		o.Items[i].ID = s.nextOrderItemID
		o.Items[i].OrderID = o.ID
		o.Items[i].Product = nil
	}
	s.orders[o.ID] = cloneOrder(o)
	return o
}

// AddTag сохраняет метку и возвращает её с присвоенным ID.
func (s *Store) AddTag(t domain.Tag) domain.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTagID++
	t.ID = s.nextTagID
	s.tags[t.ID] = t
	return t
}

// TagObject навешивает метку на объект модели.
// Неизвестная модель возвращает ErrUnknownContentType.
func (s *Store) TagObject(model string, objectID, tagID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contentTypeID, ok := s.contentTypes[model]
	if !ok {
		return domain.ErrUnknownContentType
	}

	s.nextTaggedItemID++
	s.taggedItems = append(s.taggedItems, domain.TaggedItem{
		ID:            s.nextTaggedItemID,
		TagID:         tagID,
		ContentTypeID: contentTypeID,
		ObjectID:      objectID,
	})
	return nil
}

func cloneOrder(o domain.Order) domain.Order {
	items := make([]domain.OrderItem, len(o.Items))
	copy(items, o.Items)
	for i := range items {
		items[i].Product = nil
	}
	o.Items = items
	o.Customer = nil
	return o
}

func cloneProduct(p domain.Product) domain.Product {
	p.Collection = nil
	p.Promotions = nil
	return p
}
