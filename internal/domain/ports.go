package domain

import "time"

// CustomerDirectory описывает справочник клиентов.
type CustomerDirectory interface {
	// FindByID возвращает клиента или ErrCustomerNotFound, если его нет.
	FindByID(id string) (Customer, error)
	// Create сохраняет нового клиента. Возвращает ошибку, если id уже занят.
	Create(customer Customer) error
}

// ProductCatalog описывает каталог товаров с остатками.
type ProductCatalog interface {
	// FindByID возвращает товар или ErrProductNotFound, если его нет.
	FindByID(id string) (Product, error)
	// FindAllByID возвращает подмножество каталога, соответствующее
	// запрошенным позициям. Возвращаются только найденные товары, по одному
	// на id; порядок контрактом не фиксируется.
	FindAllByID(items []RequestedItem) ([]Product, error)
	// UpdateQuantity перезаписывает остаток каждого товара новым значением.
	UpdateQuantity(adjustments []StockAdjustment) error
	// Create сохраняет новый товар. Возвращает ошибку, если id уже занят.
	Create(product Product) error
	// List возвращает товары каталога с опциональным ограничением на количество.
	List(limit int) ([]Product, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ошибку, если запись с таким ID уже существует.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
	// ListByCustomer возвращает заказы клиента с опциональным ограничением на количество.
	ListByCustomer(customerID string, limit int) ([]Order, error)
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, httpStatus int) error
	MarkFailed(key string, responseBody []byte, httpStatus int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}
