package app

import (
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
)

// createCheckoutService создаёт пайплайн оформления с или без Kafka в
// зависимости от наличия kafka producer.
func createCheckoutService(deps *Dependencies, kafkaProducer *kafka.Producer) *checkout.Service {
	if kafkaProducer != nil {
		return checkout.NewServiceWithKafka(
			deps.Customers,
			deps.Catalog,
			deps.Orders,
			kafkaProducer,
			deps.Logger,
		)
	}

	return checkout.NewService(
		deps.Customers,
		deps.Catalog,
		deps.Orders,
		deps.Logger,
	)
}
