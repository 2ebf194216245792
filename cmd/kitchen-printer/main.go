package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"kot-system/internal/cashier/kafka"
	"kot-system/internal/cashier/kot"
	"kot-system/internal/config"
	"kot-system/internal/logger"
	"kot-system/internal/models"
)

// The kitchen printer consumes paid orders off Kafka and prints a ticket for
// each kitchen section. Running it as its own process keeps the cashier
// endpoint fast when the printer is slow or jammed.

func main() {
	log := logger.NewLogger("kitchen-printer")
	defer log.Close()

	log.Info("APP", "Starting Kitchen Printer initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}

	cfg := config.Load()
	if !cfg.Kafka.Enabled {
		log.Fatal("CONFIG", "Kafka is disabled, the kitchen printer has nothing to consume")
	}

	consumer := kafka.NewConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.Topics.OrderPaid,
		cfg.Kafka.GroupID+"-printer",
		log,
	)
	defer consumer.Close()
	log.Info("KAFKA", fmt.Sprintf("Consuming paid orders from %s", cfg.Kafka.Topics.OrderPaid))

	printer := kot.NewPrinter(os.Stdout, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer.Start(ctx, func(event models.OrderEvent) {
		if event.Order == nil {
			log.Warn("PRINT", "order event without an order payload, skipping")
			return
		}
		if err := printer.PrintPaidOrder(event.Order); err != nil {
			log.Error("PRINT", fmt.Sprintf("print order %d: %v", event.Order.OrderID, err))
		}
	})

	log.Info("APP", "Kitchen Printer shutdown complete")
}
