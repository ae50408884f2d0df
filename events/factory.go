package events

import (
	"context"
	"fmt"
	"time"

	"github.com/raseen-shahil/Med-App-sub000/config"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 5 * time.Second

// New builds the publisher selected by EVENTS_DRIVER.
func New(cfg *config.Config) (Publisher, error) {
	switch cfg.EventsDriver {
	case "kafka":
		log.Info().Strs("brokers", cfg.Brokers()).Msg("publishing events to kafka")
		return NewKafka(cfg.Brokers()), nil
	case "amqp":
		p, err := DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, err
		}
		log.Info().Str("exchange", cfg.AMQPExchange).Msg("publishing events to rabbitmq")
		return p, nil
	case "none", "":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.EventsDriver)
	}
}

// Emit publishes an event and only logs failures. Callers use it once their
// transaction has committed, so a broker outage never undoes a write.
func Emit(ctx context.Context, p Publisher, topic, key string, payload any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, topic, key, payload); err != nil {
		log.Error().Err(err).Str("topic", topic).Str("key", key).Msg("publish event")
	}
}
