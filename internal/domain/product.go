package domain

import "time"

// Product описывает позицию каталога с конечным остатком на складе.
type Product struct {
	ID string
	// Name — человекочитаемое название товара.
	Name string
	// Price — цена за единицу, неотрицательная.
	Price float64
	// Quantity — доступный остаток, неотрицательный.
	Quantity int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StockAdjustment задаёт новое значение остатка товара после продажи.
// Quantity — это итоговый остаток (снимок на момент чтения каталога минус
// запрошенное количество), а не дельта.
type StockAdjustment struct {
	ProductID string
	Quantity  int
}
