package memory

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestCustomerDirectory_FindByID(t *testing.T) {
	dir := NewCustomerDirectory()

	customer := domain.Customer{ID: "customer-1", Name: "Alice", Email: "alice@example.com"}
	if err := dir.Create(customer); err != nil {
		t.Fatalf("create customer: %v", err)
	}

	found, err := dir.FindByID("customer-1")
	if err != nil {
		t.Fatalf("find customer: %v", err)
	}
	if found.Email != "alice@example.com" {
		t.Fatalf("unexpected customer: %+v", found)
	}

	if _, err := dir.FindByID("ghost"); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestCustomerDirectory_CreateDuplicate(t *testing.T) {
	dir := NewCustomerDirectory()

	if err := dir.Create(domain.Customer{ID: "customer-1"}); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if err := dir.Create(domain.Customer{ID: "customer-1"}); !errors.Is(err, domain.ErrCustomerAlreadyExists) {
		t.Fatalf("expected ErrCustomerAlreadyExists, got %v", err)
	}
}
