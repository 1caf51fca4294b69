package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Collection группирует товары каталога. FeaturedProductID может быть пустым.
type Collection struct {
	ID                int64
	Title             string
	FeaturedProductID *int64
}

// Promotion описывает акцию, привязанную к товарам через join-таблицу.
type Promotion struct {
	ID          int64
	Description string
	// Discount — доля скидки (0.2 == минус 20%).
	Discount float64
}

// Product — товар каталога.
type Product struct {
	ID          int64
	Title       string
	Slug        string
	Description string
	// UnitPrice хранится в NUMERIC(10,2); decimal исключает накопление ошибок float.
	UnitPrice    decimal.Decimal
	Inventory    int32
	CollectionID int64
	LastUpdate   time.Time

	// Collection заполняется запросами с JOIN (аналог select_related).
	Collection *Collection
	// Promotions заполняется отдельной выборкой по join-таблице (аналог prefetch_related).
	Promotions []Promotion
}

// ProductRef — узкая проекция товара: id, заголовок и заголовок коллекции.
type ProductRef struct {
	ID              int64
	Title           string
	CollectionTitle string
}

// ProductStats — результат агрегирующего запроса по каталогу.
type ProductStats struct {
	Count        int64
	MinPrice     decimal.Decimal
	MaxPrice     decimal.Decimal
	AvgPrice     decimal.Decimal
	SumInventory int64
}

// PricedProduct — товар с вычисленной (аннотированной) ценой со скидкой.
type PricedProduct struct {
	Product
	DiscountedPrice decimal.Decimal
}

// ValidateInvariants проверяет базовые инварианты товара.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Title == "" {
		errs = append(errs, ErrProductTitleRequired)
	}
	if p.UnitPrice.IsNegative() {
		errs = append(errs, ErrPriceNegative)
	}
	if p.Inventory < 0 {
		errs = append(errs, ErrInventoryNegative)
	}
	if p.CollectionID <= 0 {
		errs = append(errs, ErrCollectionRequired)
	}

	return errs
}
