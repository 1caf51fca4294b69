package integration

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/bmaxtar/storefront/internal/domain"
	"github.com/bmaxtar/storefront/internal/messaging/kafka"
	"github.com/bmaxtar/storefront/internal/service/checkout"
	"github.com/bmaxtar/storefront/internal/storage/memory"
)

// capturePublisher собирает опубликованные outbox-сообщения.
type capturePublisher struct {
	mu        sync.Mutex
	published []domain.OutboxMessage
	failNext  int
}

func (p *capturePublisher) Publish(event domain.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failNext > 0 {
		p.failNext--
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

func (p *capturePublisher) events() []domain.OutboxMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.OutboxMessage(nil), p.published...)
}

// OrderLifecycleTestSuite тестирует оформление заказа от репозитория
// до публикации события из outbox.
type OrderLifecycleTestSuite struct {
	suite.Suite
	store     *memory.Store
	checkout  *checkout.Service
	outbox    domain.OutboxRepository
	publisher *capturePublisher
	relay     *checkout.Relay

	customer domain.Customer
	product  domain.Product
}

func (suite *OrderLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	suite.store = memory.NewStore()
	orders := memory.NewOrderRepository(suite.store)
	suite.outbox = memory.NewOutboxRepository(suite.store)
	suite.publisher = &capturePublisher{}

	suite.checkout = checkout.NewService(orders, nil, logger)
	suite.relay = checkout.NewRelay(suite.outbox, suite.publisher,
		checkout.WithLogger(logger),
		checkout.WithRetryBaseDelay(0),
	)

	collection := suite.store.AddCollection(domain.Collection{Title: "Beverages"})
	suite.product = suite.store.AddProduct(domain.Product{
		Title:        "Coffee Beans",
		UnitPrice:    decimal.RequireFromString("15.00"),
		Inventory:    10,
		CollectionID: collection.ID,
	})
	suite.customer = suite.store.AddCustomer(domain.Customer{
		FirstName: "Max",
		LastName:  "Tar",
		Email:     "max@example.com",
	})
}

func (suite *OrderLifecycleTestSuite) TestPlaceOrderPublishesEvent() {
	// 1. Оформляем заказ
	placed, err := suite.checkout.PlaceOrder(domain.Order{
		CustomerID: suite.customer.ID,
		Items: []domain.OrderItem{
			{ProductID: suite.product.ID, Quantity: 2, UnitPrice: suite.product.UnitPrice},
		},
	})
	require.NoError(suite.T(), err)
	require.NotZero(suite.T(), placed.ID)
	require.Equal(suite.T(), "30.00", placed.Total().StringFixed(2))

	// 2. Событие лежит в outbox до прохода relay
	pending, err := suite.outbox.PullPending(10)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), pending, 1)
	require.Equal(suite.T(), string(kafka.EventTypeOrderPlaced), pending[0].EventType)

	// 3. Relay публикует и помечает сообщение
	suite.relay.ProcessOnce(context.Background())

	events := suite.publisher.events()
	require.Len(suite.T(), events, 1)

	var payload kafka.OrderEvent
	require.NoError(suite.T(), json.Unmarshal(events[0].Payload, &payload))
	require.Equal(suite.T(), placed.ID, payload.OrderID)
	require.Equal(suite.T(), suite.customer.ID, payload.CustomerID)
	require.Equal(suite.T(), "30.00", payload.Total)
	require.Equal(suite.T(), 1, payload.ItemsCount)

	// 4. Outbox пуст после публикации
	pending, err = suite.outbox.PullPending(10)
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), pending)
}

func (suite *OrderLifecycleTestSuite) TestInvalidOrderLeavesNoTrace() {
	_, err := suite.checkout.PlaceOrder(domain.Order{
		CustomerID: suite.customer.ID,
	})
	require.ErrorIs(suite.T(), err, domain.ErrEmptyOrder)

	pending, err := suite.outbox.PullPending(10)
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), pending)
}

func (suite *OrderLifecycleTestSuite) TestUnknownProductRollsBack() {
	_, err := suite.checkout.PlaceOrder(domain.Order{
		CustomerID: suite.customer.ID,
		Items: []domain.OrderItem{
			{ProductID: suite.product.ID, Quantity: 1, UnitPrice: suite.product.UnitPrice},
			{ProductID: 9999, Quantity: 1, UnitPrice: decimal.RequireFromString("1.00")},
		},
	})
	require.ErrorIs(suite.T(), err, domain.ErrForeignKeyViolation)

	// Заказ не сохранён, событие не создано
	orders, err := memory.NewOrderRepository(suite.store).Recent(10)
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), orders)

	pending, err := suite.outbox.PullPending(10)
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), pending)
}

func (suite *OrderLifecycleTestSuite) TestRelaySurvivesTransientBrokerFailure() {
	_, err := suite.checkout.PlaceOrder(domain.Order{
		CustomerID: suite.customer.ID,
		Items: []domain.OrderItem{
			{ProductID: suite.product.ID, Quantity: 1, UnitPrice: suite.product.UnitPrice},
		},
	})
	require.NoError(suite.T(), err)

	// Первая попытка падает, повтор в том же цикле успешен
	suite.publisher.failNext = 1
	suite.relay.ProcessOnce(context.Background())

	require.Len(suite.T(), suite.publisher.events(), 1)

	pending, err := suite.outbox.PullPending(10)
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), pending)
}

func TestOrderLifecycle(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}
