package checkout

import (
	"errors"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

type stubDirectory struct {
	customer domain.Customer
	err      error
	findCnt  int
}

func (s *stubDirectory) FindByID(id string) (domain.Customer, error) {
	s.findCnt++
	if s.err != nil {
		return domain.Customer{}, s.err
	}
	if s.customer.ID != id {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return s.customer, nil
}

func (s *stubDirectory) Create(domain.Customer) error { return nil }

type stubCatalog struct {
	mu          sync.Mutex
	products    []domain.Product
	findErr     error
	updateErr   error
	findCnt     int
	updateCalls [][]domain.StockAdjustment
}

func (s *stubCatalog) FindByID(id string) (domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

func (s *stubCatalog) FindAllByID(items []domain.RequestedItem) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCnt++
	if s.findErr != nil {
		return nil, s.findErr
	}

	// Возвращаем найденные товары по одному на уникальный id, как каталог.
	seen := make(map[string]bool, len(items))
	var found []domain.Product
	for _, item := range items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true
		for _, p := range s.products {
			if p.ID == item.ProductID {
				found = append(found, p)
				break
			}
		}
	}
	return found, nil
}

func (s *stubCatalog) UpdateQuantity(adjustments []domain.StockAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]domain.StockAdjustment, len(adjustments))
	copy(copied, adjustments)
	s.updateCalls = append(s.updateCalls, copied)
	return s.updateErr
}

func (s *stubCatalog) Create(domain.Product) error { return nil }

func (s *stubCatalog) List(int) ([]domain.Product, error) {
	return s.products, nil
}

func testCustomer() domain.Customer {
	return domain.Customer{ID: "customer-1", Name: "Alice", Email: "alice@example.com"}
}

func testProduct(id string, qty int, price float64) domain.Product {
	now := time.Now().UTC()
	return domain.Product{
		ID:        id,
		Name:      "product " + id,
		Price:     price,
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTestService(dir *stubDirectory, catalog *stubCatalog, orders domain.OrderRepository) *Service {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	return NewServiceWithoutMetrics(dir, catalog, orders, logger.WithField("test", "checkout"))
}

func TestPlaceOrder_Success(t *testing.T) {
	dir := &stubDirectory{customer: testCustomer()}
	catalog := &stubCatalog{products: []domain.Product{testProduct("P1", 10, 5.0)}}
	orders := memory.NewOrderRepository()

	svc := newTestService(dir, catalog, orders)

	order, err := svc.PlaceOrder(domain.PlaceOrderRequest{
		CustomerID: "customer-1",
		Items:      []domain.RequestedItem{{ProductID: "P1", Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if order.ID == "" {
		t.Fatal("expected generated order id")
	}
	if order.Customer.ID != "customer-1" {
		t.Fatalf("expected customer-1, got %s", order.Customer.ID)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(order.Items))
	}
	item := order.Items[0]
	if item.ProductID != "P1" || item.Qty != 3 || item.Price != 5.0 {
		t.Fatalf("unexpected item: %+v", item)
	}
	if order.Total != 15.0 {
		t.Fatalf("expected total 15.0, got %v", order.Total)
	}

	// Заказ должен быть сохранён в репозитории.
	stored, err := orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get stored order: %v", err)
	}
	if stored.Total != order.Total {
		t.Fatalf("stored total mismatch: %v != %v", stored.Total, order.Total)
	}

	// Списание: один вызов, итоговый остаток 10-3=7.
	if len(catalog.updateCalls) != 1 {
		t.Fatalf("expected 1 update call, got %d", len(catalog.updateCalls))
	}
	adj := catalog.updateCalls[0]
	if len(adj) != 1 || adj[0].ProductID != "P1" || adj[0].Quantity != 7 {
		t.Fatalf("unexpected adjustments: %+v", adj)
	}
}

func TestPlaceOrder_CustomerNotFound(t *testing.T) {
	dir := &stubDirectory{}
	catalog := &stubCatalog{products: []domain.Product{testProduct("P1", 10, 5.0)}}
	orders := memory.NewOrderRepository()

	svc := newTestService(dir, catalog, orders)

	_, err := svc.PlaceOrder(domain.PlaceOrderRequest{
		CustomerID: "ghost",
		Items:      []domain.RequestedItem{{ProductID: "P1", Quantity: 1}},
	})
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if err.Error() != "customer does not exist" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	// Каталог не должен опрашиваться: пайплайн остановился на первой проверке.
	if catalog.findCnt != 0 {
		t.Fatalf("expected no catalog lookups, got %d", catalog.findCnt)
	}
	if len(catalog.updateCalls) != 0 {
		t.Fatalf("expected no stock updates, got %d", len(catalog.updateCalls))
	}
}

func TestPlaceOrder_CustomerLookupFailure(t *testing.T) {
	infraErr := errors.New("directory unavailable")
	dir := &stubDirectory{err: infraErr}
	catalog := &stubCatalog{}
	svc := newTestService(dir, catalog, memory.NewOrderRepository())

	_, err := svc.PlaceOrder(domain.PlaceOrderRequest{
		CustomerID: "customer-1",
		Items:      []domain.RequestedItem{{ProductID: "P1", Quantity: 1}},
	})
	if !errors.Is(err, infraErr) {
		t.Fatalf("expected wrapped infra error, got %v", err)
	}
	if domain.IsPlacementRejected(err) {
		t.Fatal("infra error must not look like a validation rejection")
	}
}

func TestPlaceOrder_NoProductsFound(t *testing.T) {
	dir := &stubDirectory{customer: testCustomer()}
	catalog := &stubCatalog{} // пустой каталог
	svc := newTestService(dir, catalog, memory.NewOrderRepository())

	_, err := svc.PlaceOrder(domain.PlaceOrderRequest{
		CustomerID: "customer-1",
		Items:      []domain.RequestedItem{{ProductID: "P1", Quantity: 1}, {ProductID: "P2", Quantity: 2}},
	})
	if !errors.Is(err, domain.ErrNoProductsFound) {
		t.Fatalf("expected ErrNoProductsFound, got %v", err)
	}
	if err.Error() != "none product was found" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestPlaceOrder_SomeProductsMissing(t *testing.T) {
	dir := &stubDirectory{customer: testCustomer()}
	catalog := &stubCatalog{products: []domain.Product{testProduct("P1", 10, 5.0)}}
	svc := newTestService(dir, catalog, memory.NewOrderRepository())

	_, err := svc.PlaceOrder(domain.PlaceOrderRequest{
		CustomerID: "customer-1",
		Items: []domain.RequestedItem{
			{ProductID: "P1", Quantity: 1},
			{ProductID: "P2", Quantity: 2},
			{ProductID: "P3", Quantity: 3},
		},
	})

	var notFound *domain.ProductsNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ProductsNotFoundError, got %v", err)
	}
	if len(notFound.IDs) != 2 || notFound.IDs[0] != "P2" || notFound.IDs[1] != "P3" {
		t.Fatalf("unexpected missing ids: %v", notFound.IDs)
	}
	if err.Error() != "the following products were not found [P2], [P3]" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestPlaceOrder_MissingWinsOverSoldOut(t *testing.T) {
	// P1 найден с нулевым остатком, P2 отсутствует: отказ по отсутствию,
	// проверка sold out до неё не доходит.
	dir := &stubDirectory{customer: testCustomer()}
	catalog := &stubCatalog{products: []domain.Product{testProduct("P1", 0, 5.0)}}
	svc := newTestService(dir, catalog, memory.NewOrderRepository())

	_, err := svc.PlaceOrder(domain.PlaceOrderRequest{
		CustomerID: "customer-1",
		Items: []domain.RequestedItem{
			{ProductID: "P1", Quantity: 1},
			{ProductID: "P2", Quantity: 1},
		},
	})

	var notFound *domain.ProductsNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ProductsNotFoundError, got %v", err)
	}
	if len(notFound.IDs) != 1 || notFound.IDs[0] != "P2" {
		t.Fatalf("unexpected missing ids: %v", notFound.IDs)
	}
}

func TestPlaceOrder_SoldOut(t *testing.T) {
	dir := &stubDirectory{customer: testCustomer()}
	catalog := &stubCatalog{products: []domain.Product{
		testProduct("P1", 0, 5.0),
		testProduct("P2", 4, 2.0),
	}}
	svc := newTestService(dir, catalog, memory.NewOrderRepository())

	_, err := svc.PlaceOrder(domain.PlaceOrderRequest{
		CustomerID: "customer-1",
		Items: []domain.RequestedItem{
			{ProductID: "P1", Quantity: 1},
			{ProductID: "P2", Quantity: 1},
		},
	})

	var soldOut *domain.ProductsSoldOutError
	if !errors.As(err, &soldOut) {
		t.Fatalf("expected ProductsSoldOutError, got %v", err)
	}
	if err.Error() != "the following products were sold out [P1]" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	dir := &stubDirectory{customer: testCustomer()}
	catalog := &stubCatalog{products: []domain.Product{testProduct("P1", 2, 5.0)}}
	orders := memory.NewOrderRepository()
	svc := newTestService(dir, catalog, orders)

	_, err := svc.PlaceOrder(domain.PlaceOrderRequest{
		CustomerID: "customer-1",
		Items:      []domain.RequestedItem{{ProductID: "P1", Quantity: 5}},
	})

	var insufficient *domain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if len(insufficient.Shortages) != 1 {
		t.Fatalf("expected 1 shortage, got %d", len(insufficient.Shortages))
	}
	sh := insufficient.Shortages[0]
	if sh.ProductID != "P1" || sh.Available != 2 {
		t.Fatalf("unexpected shortage: %+v", sh)
	}
	// В сообщении доступный остаток, а не размер недостачи.
	if err.Error() != "the following products are out of stock [P1: 2]" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if len(catalog.updateCalls) != 0 {
		t.Fatalf("expected no stock updates, got %d", len(catalog.updateCalls))
	}
}

func TestPlaceOrder_ExactStockAccepted(t *testing.T) {
	dir := &stubDirectory{customer: testCustomer()}
	catalog := &stubCatalog{products: []domain.Product{testProduct("P1", 3, 1.5)}}
	svc := newTestService(dir, catalog, memory.NewOrderRepository())

	order, err := svc.PlaceOrder(domain.PlaceOrderRequest{
		CustomerID: "customer-1",
		Items:      []domain.RequestedItem{{ProductID: "P1", Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	// Остаток списывается до нуля.
	adj := catalog.updateCalls[0]
	if adj[0].Quantity != 0 {
		t.Fatalf("expected final quantity 0, got %d", adj[0].Quantity)
	}
	if order.Total != 4.5 {
		t.Fatalf("expected total 4.5, got %v", order.Total)
	}
}

func TestPlaceOrder_DuplicateProductIDs(t *testing.T) {
	// Дубликаты в запросе не схлопываются: каждая позиция даёт отдельную
	// строку заказа и отдельную запись списания, обе считаются от исходного
	// снимка остатка.
	dir := &stubDirectory{customer: testCustomer()}
	catalog := &stubCatalog{products: []domain.Product{testProduct("P1", 10, 5.0)}}
	svc := newTestService(dir, catalog, memory.NewOrderRepository())

	order, err := svc.PlaceOrder(domain.PlaceOrderRequest{
		CustomerID: "customer-1",
		Items: []domain.RequestedItem{
			{ProductID: "P1", Quantity: 3},
			{ProductID: "P1", Quantity: 4},
		},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	if order.Items[0].Qty != 3 || order.Items[1].Qty != 4 {
		t.Fatalf("unexpected quantities: %d, %d", order.Items[0].Qty, order.Items[1].Qty)
	}
	if order.Total != 35.0 {
		t.Fatalf("expected total 35.0, got %v", order.Total)
	}

	adj := catalog.updateCalls[0]
	if len(adj) != 2 {
		t.Fatalf("expected 2 adjustments, got %d", len(adj))
	}
	// Обе записи от снимка 10, не от нарастающего итога.
	if adj[0].Quantity != 7 || adj[1].Quantity != 6 {
		t.Fatalf("unexpected adjustment quantities: %d, %d", adj[0].Quantity, adj[1].Quantity)
	}
}

func TestPlaceOrder_StockUpdateFailureLeavesOrder(t *testing.T) {
	dir := &stubDirectory{customer: testCustomer()}
	catalog := &stubCatalog{
		products:  []domain.Product{testProduct("P1", 10, 5.0)},
		updateErr: errors.New("catalog unavailable"),
	}
	orders := memory.NewOrderRepository()
	svc := newTestService(dir, catalog, orders)

	_, err := svc.PlaceOrder(domain.PlaceOrderRequest{
		CustomerID: "customer-1",
		Items:      []domain.RequestedItem{{ProductID: "P1", Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected error from stock update")
	}

	// Заказ пишется до списания остатков и при сбое списания остаётся.
	stored, listErr := orders.ListByCustomer("customer-1", 0)
	if listErr != nil {
		t.Fatalf("list orders: %v", listErr)
	}
	if len(stored) != 1 {
		t.Fatalf("expected order to remain after failed stock update, got %d", len(stored))
	}
}

func TestPlaceOrder_OrderCreateFailureSkipsStockUpdate(t *testing.T) {
	dir := &stubDirectory{customer: testCustomer()}
	catalog := &stubCatalog{products: []domain.Product{testProduct("P1", 10, 5.0)}}
	orders := &failingOrderRepository{err: errors.New("storage down")}
	svc := newTestService(dir, catalog, orders)

	_, err := svc.PlaceOrder(domain.PlaceOrderRequest{
		CustomerID: "customer-1",
		Items:      []domain.RequestedItem{{ProductID: "P1", Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected error from order create")
	}
	if len(catalog.updateCalls) != 0 {
		t.Fatalf("stock must not be adjusted when order create fails, got %d calls", len(catalog.updateCalls))
	}
}

type failingOrderRepository struct {
	err error
}

func (r *failingOrderRepository) Create(domain.Order) error { return r.err }

func (r *failingOrderRepository) Get(string) (domain.Order, error) {
	return domain.Order{}, domain.ErrOrderNotFound
}

func (r *failingOrderRepository) ListByCustomer(string, int) ([]domain.Order, error) {
	return nil, nil
}
