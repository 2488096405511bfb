package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestNewDependencies_InMemory(t *testing.T) {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)

	deps, err := NewDependencies(context.Background(), DefaultConfig(), logger.WithField("test", "deps"))
	if err != nil {
		t.Fatalf("new dependencies: %v", err)
	}
	defer deps.Close()

	if deps.Customers == nil || deps.Catalog == nil || deps.Orders == nil || deps.Idempotency == nil {
		t.Fatal("all repositories must be initialized")
	}
	if deps.Store != nil {
		t.Fatal("store must be nil without a postgres DSN")
	}
	if deps.ProductCache != nil {
		t.Fatal("cache must be nil without a redis address")
	}
}

func TestNewDependencies_NilLogger(t *testing.T) {
	deps, err := NewDependencies(context.Background(), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("new dependencies: %v", err)
	}
	defer deps.Close()

	if deps.Logger == nil {
		t.Fatal("logger must be defaulted")
	}
}

func TestCreateCheckoutService(t *testing.T) {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)

	deps, err := NewDependencies(context.Background(), DefaultConfig(), logger.WithField("test", "factory"))
	if err != nil {
		t.Fatalf("new dependencies: %v", err)
	}
	defer deps.Close()

	if svc := createCheckoutService(deps, nil); svc == nil {
		t.Fatal("expected checkout service without kafka")
	}
}
