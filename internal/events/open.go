package events

import (
	"fmt"

	"virtualvault/internal/config"
	"virtualvault/pkg/natsbus"
	"virtualvault/pkg/rabbitmq"

	"go.uber.org/zap"
)

// Open connects the bus selected by cfg.EventsDriver.
func Open(cfg *config.Config, logger *zap.Logger) (Bus, error) {
	logger = logger.Named("events")
	switch cfg.EventsDriver {
	case config.EventsAMQP:
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, logger)
		if err != nil {
			return nil, err
		}
		return NewBus(client, logger), nil
	case config.EventsNATS:
		client, err := natsbus.Connect(natsbus.Config{URL: cfg.NATSURL, Subject: cfg.NATSSubject}, logger)
		if err != nil {
			return nil, err
		}
		return NewBus(client, logger), nil
	case config.EventsNone, "":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unsupported events driver %q", cfg.EventsDriver)
	}
}
