package kafka

// EventType определяет тип события витрины.
type EventType string

// EventTypeOrderPlaced — заказ оформлен. Единственное событие,
// которое пишет транзакция оформления.
const EventTypeOrderPlaced EventType = "order.placed"

// TopicOrderEvents — topic событий заказов.
const TopicOrderEvents = "storefront.order.events"

// OrderEvent — форма payload outbox-сообщения о заказе.
// Репозитории сериализуют событие оформления именно в эти поля.
type OrderEvent struct {
	OrderID    int64  `json:"order_id"`
	CustomerID int64  `json:"customer_id"`
	Total      string `json:"total"`
	ItemsCount int    `json:"items_count"`
}
