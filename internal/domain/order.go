package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus описывает состояние оплаты заказа.
type PaymentStatus string

const (
	// PaymentStatusPending — оплата ещё не подтверждена.
	PaymentStatusPending PaymentStatus = "P"
	// PaymentStatusComplete — оплата прошла успешно.
	PaymentStatusComplete PaymentStatus = "C"
	// PaymentStatusFailed — оплата завершилась ошибкой.
	PaymentStatusFailed PaymentStatus = "F"
)

// OrderItem — одна позиция заказа.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int32
	// UnitPrice фиксирует цену на момент оформления, независимо от каталога.
	UnitPrice decimal.Decimal

	// Product заполняется выборками с prefetch по позициям.
	Product *Product
}

// Order агрегирует заказ и его позиции.
type Order struct {
	ID            int64
	PlacedAt      time.Time
	PaymentStatus PaymentStatus
	CustomerID    int64
	Items         []OrderItem

	// Customer заполняется запросами с JOIN (аналог select_related).
	Customer *Customer
}

// Total возвращает сумму заказа по позициям: qty * price.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	return total
}

// ValidateInvariants проверяет заказ перед оформлением.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID <= 0 {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrEmptyOrder)
	}
	for _, item := range o.Items {
		if item.ProductID <= 0 {
			errs = append(errs, ErrProductRequired)
		}
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.UnitPrice.IsNegative() {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}

	return errs
}
