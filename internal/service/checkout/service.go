package checkout

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// Service реализует пайплайн оформления заказа: проверка клиента, сверка
// запрошенных позиций с каталогом, цепочка валидационных ворот и атомарное
// (с точки зрения пайплайна) создание заказа со списанием остатков.
//
// Пайплайн линейный, без внутреннего параллелизма: каждая проверка либо
// пропускает запрос дальше, либо завершает обработку первым же отказом.
type Service struct {
	customers domain.CustomerDirectory
	catalog   domain.ProductCatalog
	orders    domain.OrderRepository
	logger    *log.Entry
	metrics   *metrics.CheckoutMetrics
	producer  *kafka.Producer // опциональный Kafka producer для событий заказов
}

// NewService создаёт рабочий экземпляр пайплайна оформления.
func NewService(
	customers domain.CustomerDirectory,
	catalog domain.ProductCatalog,
	orders domain.OrderRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Service{
		customers: customers,
		catalog:   catalog,
		orders:    orders,
		logger:    logger,
		metrics:   metrics.NewCheckoutMetrics(),
	}
}

// NewServiceWithKafka создаёт пайплайн с Kafka producer для публикации событий.
func NewServiceWithKafka(
	customers domain.CustomerDirectory,
	catalog domain.ProductCatalog,
	orders domain.OrderRepository,
	producer *kafka.Producer,
	logger *log.Entry,
) *Service {
	svc := NewService(customers, catalog, orders, logger)
	svc.producer = producer
	return svc
}

// NewServiceWithoutMetrics создаёт пайплайн без метрик (для тестов).
func NewServiceWithoutMetrics(
	customers domain.CustomerDirectory,
	catalog domain.ProductCatalog,
	orders domain.OrderRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Service{
		customers: customers,
		catalog:   catalog,
		orders:    orders,
		logger:    logger,
		metrics:   nil, // Отключаем метрики для тестов
	}
}

// PlaceOrder проводит запрос через цепочку проверок и, если все они пройдены,
// создаёт заказ и списывает остатки. Возвращает созданный заказ.
//
// Запись заказа и обновление остатков выполняются последовательно, без общей
// транзакции: если запись заказа прошла, а обновление остатков упало, в
// хранилище остаётся заказ с несписанным стоком. Это осознанная модель отказов,
// менять её можно только вместе с контрактом ProductCatalog.
func (s *Service) PlaceOrder(req domain.PlaceOrderRequest) (domain.Order, error) {
	start := time.Now()
	if s.metrics != nil {
		defer func() {
			s.metrics.RecordPlacementDuration(time.Since(start))
		}()
	}

	customer, err := s.customers.FindByID(req.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return s.reject(req, domain.ErrCustomerNotFound)
		}
		return domain.Order{}, fmt.Errorf("lookup customer: %w", err)
	}

	found, err := s.catalog.FindAllByID(req.Items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("lookup products: %w", err)
	}

	if len(found) == 0 {
		return s.reject(req, domain.ErrNoProductsFound)
	}

	// Пропавшие id собираются в порядке следования по запросу, дубликаты
	// в запросе дают дубликаты в списке.
	foundByID := make(map[string]domain.Product, len(found))
	for _, product := range found {
		foundByID[product.ID] = product
	}

	var missing []string
	for _, item := range req.Items {
		if _, ok := foundByID[item.ProductID]; !ok {
			missing = append(missing, item.ProductID)
		}
	}
	if len(missing) > 0 {
		return s.reject(req, &domain.ProductsNotFoundError{IDs: missing})
	}

	// Нулевой остаток проверяется только по найденным товарам:
	// отсутствующие уже отсеяны предыдущей проверкой.
	var soldOut []string
	for _, product := range found {
		if product.Quantity == 0 {
			soldOut = append(soldOut, product.ID)
		}
	}
	if len(soldOut) > 0 {
		return s.reject(req, &domain.ProductsSoldOutError{IDs: soldOut})
	}

	var shortages []domain.StockShortage
	for _, product := range found {
		item, ok := requestedItem(req.Items, product.ID)
		if !ok {
			// Товар без парной позиции в запросе проверку проходит.
			continue
		}
		if product.Quantity < item.Quantity {
			shortages = append(shortages, domain.StockShortage{
				ProductID: product.ID,
				Available: product.Quantity,
			})
		}
	}
	if len(shortages) > 0 {
		return s.reject(req, &domain.InsufficientStockError{Shortages: shortages})
	}

	// Разрешение позиций: запрошенные позиции обходятся в исходном порядке и
	// без дедупликации. Дубликат product id даёт отдельную позицию заказа и
	// отдельную запись списания, обе считаются от исходного снимка остатка,
	// а не от нарастающего итога.
	now := time.Now().UTC()
	items := make([]domain.OrderItem, 0, len(req.Items))
	adjustments := make([]domain.StockAdjustment, 0, len(req.Items))
	var total float64

	for _, item := range req.Items {
		product, ok := lookupProduct(foundByID, item.ProductID)
		if !ok {
			// После валидации недостижимо; нулевая цена и нулевой снимок
			// остатка — явная политика отката.
			s.logger.WithField("product_id", item.ProductID).
				Warn("resolved item missing from catalog snapshot, defaulting price to 0")
		}

		items = append(items, domain.OrderItem{
			ID:        uuid.NewString(),
			ProductID: item.ProductID,
			Qty:       item.Quantity,
			Price:     product.Price,
			CreatedAt: now,
		})
		adjustments = append(adjustments, domain.StockAdjustment{
			ProductID: item.ProductID,
			Quantity:  product.Quantity - item.Quantity,
		})
		total += float64(item.Quantity) * product.Price
	}

	order := domain.Order{
		ID:        uuid.NewString(),
		Customer:  customer,
		Items:     items,
		Total:     total,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		// Инварианты здесь информационные: количества пришли из запроса и
		// валидируются только против остатков.
		s.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"issues":   joinErrors(errs),
		}).Warn("order invariants violated")
	}

	if err := s.orders.Create(order); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	if err := s.catalog.UpdateQuantity(adjustments); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).
			Error("stock update failed after order creation, stock left unadjusted")
		return domain.Order{}, fmt.Errorf("update stock: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced()
		s.metrics.RecordStockAdjustments(len(adjustments))
	}

	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": customer.ID,
		"items":       len(order.Items),
		"total":       order.Total,
	}).Info("order placed")

	s.publishOrderEvent(kafka.EventTypeOrderPlaced, order.ID, customer.ID, map[string]interface{}{
		"items": len(order.Items),
		"total": order.Total,
	})

	return order, nil
}

// reject завершает пайплайн отказом: фиксирует метрику и событие, возвращает
// доменную ошибку вызывающей стороне без повторных попыток.
func (s *Service) reject(req domain.PlaceOrderRequest, cause error) (domain.Order, error) {
	reason, _ := domain.RejectionReason(cause)
	if s.metrics != nil {
		s.metrics.RecordOrderRejected(reason)
	}

	s.logger.WithFields(log.Fields{
		"customer_id": req.CustomerID,
		"items":       len(req.Items),
		"reason":      reason,
	}).Warn("order placement rejected")

	s.publishOrderEvent(kafka.EventTypeOrderRejected, "", req.CustomerID, map[string]interface{}{
		"reason":  reason,
		"message": cause.Error(),
	})

	return domain.Order{}, cause
}

// requestedItem ищет запрошенную позицию по id товара. Явный результат
// found/not-found вместо неявного нуля.
func requestedItem(items []domain.RequestedItem, productID string) (domain.RequestedItem, bool) {
	for _, item := range items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return domain.RequestedItem{}, false
}

// lookupProduct возвращает товар из снимка каталога. При промахе возвращается
// нулевой Product: цена 0 — задокументированный fallback.
func lookupProduct(snapshot map[string]domain.Product, productID string) (domain.Product, bool) {
	product, ok := snapshot[productID]
	return product, ok
}

func (s *Service) publishOrderEvent(eventType kafka.EventType, orderID, customerID string, metadata map[string]interface{}) {
	if s.producer == nil {
		return // Kafka не настроен, пропускаем
	}

	event := kafka.NewOrderEvent(eventType, orderID, customerID, metadata)
	key := orderID
	if key == "" {
		key = customerID
	}
	if err := s.producer.PublishEvent(kafka.TopicOrderEvents, key, event); err != nil {
		// Логируем ошибку, но не прерываем оформление — Kafka опциональный.
		s.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"order_id":   orderID,
		}).Warn("failed to publish order event to kafka")
	}
}

func joinErrors(errs []error) string {
	parts := ""
	for i, err := range errs {
		if i > 0 {
			parts += "; "
		}
		parts += err.Error()
	}
	return parts
}
