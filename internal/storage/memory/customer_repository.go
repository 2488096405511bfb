package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// customerDirectoryInMemory — простая in-memory реализация CustomerDirectory.
type customerDirectoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Customer
}

// NewCustomerDirectory возвращает in-memory справочник клиентов для локальной
// разработки и тестов.
func NewCustomerDirectory() domain.CustomerDirectory {
	return &customerDirectoryInMemory{
		items: make(map[string]domain.Customer),
	}
}

// FindByID возвращает клиента или ErrCustomerNotFound, если его нет.
func (r *customerDirectoryInMemory) FindByID(id string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

// Create сохраняет нового клиента, если ID ещё не занят.
func (r *customerDirectoryInMemory) Create(customer domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[customer.ID]; exists {
		return domain.ErrCustomerAlreadyExists
	}
	r.items[customer.ID] = customer
	return nil
}

var _ domain.CustomerDirectory = (*customerDirectoryInMemory)(nil)
