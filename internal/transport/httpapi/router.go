package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter собирает маршруты API поверх Handler.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/orders", handler.PlaceOrder)
	r.Get("/orders/{id}", handler.GetOrder)

	r.Post("/customers", handler.CreateCustomer)
	r.Get("/customers/{id}", handler.GetCustomer)
	r.Get("/customers/{id}/orders", handler.ListCustomerOrders)

	r.Post("/products", handler.CreateProduct)
	r.Get("/products", handler.ListProducts)
	r.Get("/products/{id}", handler.GetProduct)

	return r
}
