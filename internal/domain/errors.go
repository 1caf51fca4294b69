package domain

import "errors"

var (
	// Ошибка отсутствующего заголовка товара.
	ErrProductTitleRequired = errors.New("product title is required")
	// Ошибка отрицательной цены товара.
	ErrPriceNegative = errors.New("unit_price must be non-negative")
	// Ошибка отрицательного остатка на складе.
	ErrInventoryNegative = errors.New("inventory must be non-negative")
	// Ошибка отсутствующей коллекции у товара.
	ErrCollectionRequired = errors.New("collection_id is required")
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrEmptyOrder = errors.New("order must contain at least one item")
	// Ошибка отсутствующего товара в позиции заказа.
	ErrProductRequired = errors.New("item product_id is required")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item unit_price must be non-negative")
	// ErrProductNotFound возвращается, если товар не найден в репозитории.
	ErrProductNotFound = errors.New("product not found")
	// ErrCollectionNotFound возвращается, если коллекция не найдена.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrCustomerNotFound возвращается, если клиент не найден.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrOrderNotFound возвращается, если заказ не найден.
	ErrOrderNotFound = errors.New("order not found")
	// ErrUnknownContentType — для модели не заведён content type.
	ErrUnknownContentType = errors.New("unknown content type")
	// ErrForeignKeyViolation — вставка/обновление ссылается на несуществующую запись.
	ErrForeignKeyViolation = errors.New("foreign key violation")
	// ErrDuplicate — нарушение уникального ограничения.
	ErrDuplicate = errors.New("duplicate record")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsNotFound проверяет, является ли ошибка любым из вариантов "запись не найдена".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCollectionNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}
