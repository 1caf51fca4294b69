package checkout

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bmaxtar/storefront/internal/domain"
	"github.com/bmaxtar/storefront/internal/metrics"
)

// Service оформляет заказы поверх OrderRepository.
type Service struct {
	orders  domain.OrderRepository
	metrics *metrics.StorefrontMetrics
	logger  *log.Entry
}

// NewService создаёт сервис оформления заказов.
// metrics может быть nil, тогда счётчики не пишутся.
func NewService(orders domain.OrderRepository, m *metrics.StorefrontMetrics, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "checkout")
	}
	return &Service{
		orders:  orders,
		metrics: m,
		logger:  logger,
	}
}

// PlaceOrder валидирует и атомарно сохраняет заказ вместе с outbox-событием.
func (s *Service) PlaceOrder(order domain.Order) (domain.Order, error) {
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		if s.metrics != nil {
			s.metrics.RecordOrderFailed()
		}
		return domain.Order{}, fmt.Errorf("validate order: %w", errors.Join(errs...))
	}

	start := time.Now()
	placed, err := s.orders.Place(order)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordOrderFailed()
		}
		s.logger.WithError(err).WithField("customer_id", order.CustomerID).Error("order placement failed")
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordQueryDuration("place_order", time.Since(start))
		s.metrics.RecordOrderPlaced()
		if total, err := strconv.ParseFloat(placed.Total().StringFixed(2), 64); err == nil {
			s.metrics.RecordOrderValue(total)
		}
	}
	s.logger.WithFields(log.Fields{
		"order_id":    placed.ID,
		"customer_id": placed.CustomerID,
		"total":       placed.Total().StringFixed(2),
		"items":       len(placed.Items),
	}).Info("order placed")

	return placed, nil
}
