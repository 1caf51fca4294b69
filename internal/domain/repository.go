package domain

import "github.com/shopspring/decimal"

// ProductRepository описывает выборки по каталогу товаров.
// Каждый метод соответствует одному приёму работы с запросами.
type ProductRepository interface {
	// All возвращает все товары каталога.
	All() ([]Product, error)
	// Exists сообщает, есть ли товар с данным ID.
	Exists(id int64) (bool, error)
	// SearchTitle ищет по подстроке заголовка без учёта регистра.
	SearchTitle(needle string) ([]Product, error)
	// LowStockCheap — товары с остатком ниже maxInventory И ценой ниже maxPrice.
	LowStockCheap(maxInventory int32, maxPrice decimal.Decimal) ([]Product, error)
	// LowStockOrCheap — остаток ниже maxInventory ИЛИ цена ниже maxPrice.
	LowStockOrCheap(maxInventory int32, maxPrice decimal.Decimal) ([]Product, error)
	// LowStockNotCheap — остаток ниже maxInventory И НЕ цена ниже maxPrice.
	LowStockNotCheap(maxInventory int32, maxPrice decimal.Decimal) ([]Product, error)
	// InventoryEqualsPrice — товары, у которых остаток численно равен цене
	// (сравнение поля с полем).
	InventoryEqualsPrice() ([]Product, error)
	// Cheapest возвращает самый дешёвый товар или ErrProductNotFound.
	Cheapest() (Product, error)
	// MostExpensive возвращает самый дорогой товар или ErrProductNotFound.
	MostExpensive() (Product, error)
	// Refs возвращает проекцию (id, title, collection title).
	Refs() ([]ProductRef, error)
	// Ordered — товары, встречающиеся в позициях заказов, без дублей, по заголовку.
	Ordered() ([]Product, error)
	// AllWithCollections возвращает товары с заполненной коллекцией одним запросом.
	AllWithCollections() ([]Product, error)
	// AllWithPromotions дополнительно подтягивает акции по join-таблице.
	AllWithPromotions() ([]Product, error)
	// Stats считает count/min/max/avg/sum по всему каталогу.
	Stats() (ProductStats, error)
	// CollectionStats — та же статистика в пределах одной коллекции.
	CollectionStats(collectionID int64) (ProductStats, error)
	// WithDiscount аннотирует товары ценой, умноженной на factor.
	WithDiscount(factor decimal.Decimal) ([]PricedProduct, error)
}

// CustomerRepository описывает выборки по клиентам.
type CustomerRepository interface {
	// Get возвращает клиента или ErrCustomerNotFound.
	Get(id int64) (Customer, error)
	// WithFullName аннотирует клиентов вычисленным полным именем.
	WithFullName() ([]NamedCustomer, error)
	// WithOrderCounts аннотирует клиентов числом их заказов;
	// клиенты без заказов тоже попадают в результат.
	WithOrderCounts() ([]CustomerOrderCount, error)
}

// OrderRepository описывает работу с заказами.
type OrderRepository interface {
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(id int64) (Order, error)
	// Recent возвращает последние заказы с клиентом и позициями с товарами.
	Recent(limit int) ([]Order, error)
	// Place атомарно сохраняет заказ, его позиции и outbox-событие.
	// Любая ошибка откатывает всю транзакцию целиком.
	Place(order Order) (Order, error)
}

// CollectionRepository описывает работу с коллекциями.
type CollectionRepository interface {
	// Get возвращает коллекцию или ErrCollectionNotFound.
	Get(id int64) (Collection, error)
	// Save перезаписывает изменяемые поля коллекции.
	Save(c Collection) error
	// ClearFeatured сбрасывает featured-товар без предварительной выборки.
	// Возвращает число затронутых строк.
	ClearFeatured(id int64) (int64, error)
	// Delete удаляет одну коллекцию.
	Delete(id int64) error
	// DeleteAbove удаляет коллекции с ID больше порога, возвращает число удалённых.
	DeleteAbove(id int64) (int64, error)
}

// TagRepository описывает выборку меток через content types.
type TagRepository interface {
	// TagsFor возвращает метки объекта данной модели.
	TagsFor(model string, objectID int64) ([]TaggedItem, error)
}
