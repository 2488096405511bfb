package domain

import "time"

// OrderItem представляет одну разрешённую позицию заказа.
// Цена копируется из каталога в момент оформления и дальше не пересчитывается.
type OrderItem struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// ProductID — идентификатор товара в каталоге.
	ProductID string
	// Qty — количество единиц товара.
	Qty int
	// Price — цена за единицу на момент оформления заказа.
	Price float64
	// CreatedAt фиксирует момент добавления позиции в заказ.
	CreatedAt time.Time
}

// Order агрегирует оформленный заказ. Заказ создаётся один раз и после
// сохранения не мутируется.
type Order struct {
	ID string
	// Customer — полная ссылка на клиента, а не только идентификатор.
	Customer Customer
	Items    []OrderItem
	// Total — сумма qty*price по всем позициям.
	Total     float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RequestedItem — одна запрошенная позиция до сверки с каталогом.
type RequestedItem struct {
	ProductID string
	Quantity  int
}

// PlaceOrderRequest описывает входной запрос на оформление заказа.
// Позиции принимаются как есть: дедупликация по ProductID не выполняется.
type PlaceOrderRequest struct {
	CustomerID string
	Items      []RequestedItem
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.Customer.ID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.Total < 0 {
		errs = append(errs, ErrTotalNegative)
	}

	// Сверяем сумму заказа с суммой позиций: qty * price.
	var calc float64
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.Price < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		calc += float64(item.Qty) * item.Price
	}
	if calc != o.Total {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}
