package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// productCatalogInMemory — простая in-memory реализация ProductCatalog.
type productCatalogInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductCatalog возвращает in-memory каталог товаров для локальной
// разработки и тестов.
func NewProductCatalog() domain.ProductCatalog {
	return &productCatalogInMemory{
		items: make(map[string]domain.Product),
	}
}

// FindByID возвращает товар или ErrProductNotFound, если его нет.
func (r *productCatalogInMemory) FindByID(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// FindAllByID возвращает найденные товары по одному на id. Порядок — по
// первому вхождению id в запрос; контрактом порядок не гарантируется.
func (r *productCatalogInMemory) FindAllByID(items []domain.RequestedItem) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(items))
	result := make([]domain.Product, 0, len(items))
	for _, item := range items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true
		if product, ok := r.items[item.ProductID]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

// UpdateQuantity перезаписывает остаток каждого товара новым значением.
// Неизвестные id пропускаются.
func (r *productCatalogInMemory) UpdateQuantity(adjustments []domain.StockAdjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, adj := range adjustments {
		product, ok := r.items[adj.ProductID]
		if !ok {
			continue
		}
		product.Quantity = adj.Quantity
		product.UpdatedAt = now
		r.items[adj.ProductID] = product
	}
	return nil
}

// Create сохраняет новый товар, если ID ещё не занят.
func (r *productCatalogInMemory) Create(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; exists {
		return domain.ErrProductAlreadyExists
	}
	r.items[product.ID] = product
	return nil
}

// List возвращает товары каталога, ограничивая выборку limit (если >0).
func (r *productCatalogInMemory) List(limit int) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		result = append(result, product)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

var _ domain.ProductCatalog = (*productCatalogInMemory)(nil)
