package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/cache"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
)

const (
	defaultListLimit    = 100
	productCacheTTL     = 5 * time.Minute
	maxRequestBodyBytes = 1 << 20
)

// Handler обрабатывает HTTP-запросы витрины и оформления заказов.
type Handler struct {
	checkout  *checkout.Service
	customers domain.CustomerDirectory
	catalog   domain.ProductCatalog
	orders    domain.OrderRepository
	idem      domain.IdempotencyRepository // nil-safe: идемпотентность выключена, если nil
	cache     cache.Cache                  // nil-safe: кэш выключен, если nil
	logger    *log.Entry
}

// NewHandler конструирует Handler с зависимостями.
// idem и productCache опциональны.
func NewHandler(
	checkoutSvc *checkout.Service,
	customers domain.CustomerDirectory,
	catalog domain.ProductCatalog,
	orders domain.OrderRepository,
	idem domain.IdempotencyRepository,
	productCache cache.Cache,
	logger *log.Entry,
) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "httpapi")
	}
	return &Handler{
		checkout:  checkoutSvc,
		customers: customers,
		catalog:   catalog,
		orders:    orders,
		idem:      idem,
		cache:     productCache,
		logger:    logger,
	}
}

// PlaceOrder принимает запрос оформления и проводит его через пайплайн.
// При наличии заголовка Idempotency-Key повторные запросы с тем же ключом
// получают сохранённый ответ.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	h.withIdempotency(w, r, body, func() (int, any) {
		return h.placeOrder(body)
	})
}

func (h *Handler) placeOrder(body []byte) (int, any) {
	var req PlaceOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return http.StatusBadRequest, ErrorResponse{Error: "invalid_json", Message: err.Error()}
	}
	if req.CustomerID == "" || len(req.Items) == 0 {
		return http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "customer_id and items are required",
		}
	}

	items := make([]domain.RequestedItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID == "" {
			return http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_item",
				Message: "product_id is required",
			}
		}
		items = append(items, domain.RequestedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.checkout.PlaceOrder(domain.PlaceOrderRequest{
		CustomerID: req.CustomerID,
		Items:      items,
	})
	if err != nil {
		status, code := placementStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).Error("order placement failed")
			return status, ErrorResponse{Error: code, Message: "failed to place order"}
		}
		return status, ErrorResponse{Error: code, Message: err.Error()}
	}

	return http.StatusCreated, toOrderResponse(order)
}

// GetOrder возвращает заказ по идентификатору.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "order_id_required", "")
		return
	}

	order, err := h.orders.Get(orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "order_not_found", "")
			return
		}
		h.logger.WithError(err).WithField("order_id", orderID).Error("failed to load order")
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// CreateCustomer регистрирует нового клиента.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name and email are required")
		return
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.customers.Create(customer); err != nil {
		h.logger.WithError(err).Error("failed to create customer")
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	writeJSON(w, http.StatusCreated, toCustomerResponse(customer))
}

// GetCustomer возвращает клиента по идентификатору.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "id")

	customer, err := h.customers.FindByID(customerID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			writeError(w, http.StatusNotFound, "customer_not_found", "")
			return
		}
		h.logger.WithError(err).WithField("customer_id", customerID).Error("failed to load customer")
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}

// ListCustomerOrders возвращает заказы клиента, свежие первыми.
func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "id")

	orders, err := h.orders.ListByCustomer(customerID, defaultListLimit)
	if err != nil {
		h.logger.WithError(err).WithField("customer_id", customerID).Error("failed to list orders")
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	result := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		result = append(result, toOrderResponse(order))
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateProduct добавляет товар в каталог.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Name == "" || req.Price < 0 || req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required, price and quantity must be non-negative")
		return
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Price:     req.Price,
		Quantity:  req.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.catalog.Create(product); err != nil {
		h.logger.WithError(err).Error("failed to create product")
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

// ListProducts возвращает товары каталога.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(defaultListLimit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list products")
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	result := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		result = append(result, toProductResponse(product))
	}
	writeJSON(w, http.StatusOK, result)
}

// GetProduct возвращает товар, используя read-through кэш, если он настроен.
// Пайплайн оформления кэш не использует и всегда читает каталог напрямую.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	cacheKey := ""
	if h.cache != nil {
		cacheKey = h.cache.GenerateKey("product", productID)
		cached, err := h.cache.Get(r.Context(), cacheKey)
		if err != nil {
			h.logger.WithError(err).Warn("product cache read failed")
		} else if cached != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(cached))
			return
		}
	}

	product, err := h.catalog.FindByID(productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product_not_found", "")
			return
		}
		h.logger.WithError(err).WithField("product_id", productID).Error("failed to load product")
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	response := toProductResponse(product)
	if h.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := h.cache.Set(r.Context(), cacheKey, string(payload), productCacheTTL); err != nil {
				h.logger.WithError(err).Warn("product cache write failed")
			}
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// placementStatus переводит отказ пайплайна в HTTP-статус и машинный код.
// Отсутствие клиентов/товаров — 404, нехватка остатков — 409.
func placementStatus(err error) (int, string) {
	reason, ok := domain.RejectionReason(err)
	if !ok {
		return http.StatusInternalServerError, "internal_error"
	}

	switch reason {
	case "customer_not_found", "no_products_found", "products_not_found":
		return http.StatusNotFound, reason
	default:
		return http.StatusConflict, reason
	}
}

func toOrderResponse(order domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Qty,
			Price:     item.Price,
		})
	}

	return OrderResponse{
		ID:        order.ID,
		Customer:  toCustomerResponse(order.Customer),
		Items:     items,
		Total:     order.Total,
		CreatedAt: order.CreatedAt,
	}
}

func toCustomerResponse(customer domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		Email:     customer.Email,
		CreatedAt: customer.CreatedAt,
	}
}

func toProductResponse(product domain.Product) ProductResponse {
	return ProductResponse{
		ID:        product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  product.Quantity,
		UpdatedAt: product.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
