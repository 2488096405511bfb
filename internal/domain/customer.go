package domain

import "time"

// Customer описывает покупателя магазина.
// Для пайплайна оформления заказа важен сам факт существования клиента,
// остальные поля нужны API и витрине.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
