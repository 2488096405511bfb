package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Ошибка отсутствующего клиента в заказе.
	ErrCustomerRequired = errors.New("customer is required")
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrTotalNegative = errors.New("order total must be non-negative")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrTotalMismatch = errors.New("order total does not match items sum")

	// ErrCustomerNotFound возвращается, когда клиент не найден в справочнике.
	ErrCustomerNotFound = errors.New("customer does not exist")
	// ErrNoProductsFound возвращается, когда ни один запрошенный товар
	// не найден в каталоге.
	ErrNoProductsFound = errors.New("none product was found")
	// ErrProductNotFound возвращается при точечном поиске товара по id.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrCustomerAlreadyExists сигнализирует о конфликте id при создании клиента.
	ErrCustomerAlreadyExists = errors.New("customer already exists")
	// ErrProductAlreadyExists сигнализирует о конфликте id при создании товара.
	ErrProductAlreadyExists = errors.New("product already exists")
	// ErrOrderAlreadyExists сигнализирует о конфликте id при создании заказа.
	ErrOrderAlreadyExists = errors.New("order already exists")

	// Ошибки обработки idempotency-ключей.
	ErrIdempotencyKeyRequired         = errors.New("idempotency key is required")
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	ErrIdempotencyKeyNotFound         = errors.New("idempotency key not found")
	ErrIdempotencyKeyAlreadyExists    = errors.New("idempotency key already exists")
	ErrIdempotencyHashMismatch        = errors.New("idempotency key is used with different request payload")
)

// ProductsNotFoundError возвращается, когда часть запрошенных товаров
// отсутствует в каталоге. IDs перечислены в порядке обнаружения по запросу,
// без дедупликации.
type ProductsNotFoundError struct {
	IDs []string
}

func (e *ProductsNotFoundError) Error() string {
	return fmt.Sprintf("the following products were not found [%s]", strings.Join(e.IDs, "], ["))
}

// ProductsSoldOutError возвращается, когда среди найденных товаров есть
// позиции с нулевым остатком.
type ProductsSoldOutError struct {
	IDs []string
}

func (e *ProductsSoldOutError) Error() string {
	return fmt.Sprintf("the following products were sold out [%s]", strings.Join(e.IDs, "], ["))
}

// StockShortage описывает товар, остатка которого не хватает под запрос.
// Available — остаток по каталогу, а не размер недостачи.
type StockShortage struct {
	ProductID string
	Available int
}

// InsufficientStockError возвращается, когда остаток найденного товара
// меньше запрошенного количества.
type InsufficientStockError struct {
	Shortages []StockShortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("[%s: %d]", s.ProductID, s.Available))
	}
	return "the following products are out of stock " + strings.Join(parts, ", ")
}

// IsPlacementRejected проверяет, относится ли ошибка к отказам валидации
// оформления заказа. Такие ошибки адресованы пользователю и не являются
// сбоями системы.
func IsPlacementRejected(err error) bool {
	_, ok := RejectionReason(err)
	return ok
}

// RejectionReason возвращает машинное имя причины отказа для метрик,
// событий и HTTP-ответов.
func RejectionReason(err error) (string, bool) {
	var (
		notFound     *ProductsNotFoundError
		soldOut      *ProductsSoldOutError
		insufficient *InsufficientStockError
	)

	switch {
	case errors.Is(err, ErrCustomerNotFound):
		return "customer_not_found", true
	case errors.Is(err, ErrNoProductsFound):
		return "no_products_found", true
	case errors.As(err, &notFound):
		return "products_not_found", true
	case errors.As(err, &soldOut):
		return "products_sold_out", true
	case errors.As(err, &insufficient):
		return "insufficient_stock", true
	default:
		return "", false
	}
}
