package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/barbershop-manager/internal/lib/sl"
)

// prefetch ограничивает и QoS канала, и число одновременно обрабатываемых сообщений.
const prefetch = 10

// ErrReject оборачивается обработчиком, когда сообщение не имеет смысла повторять.
// Такое сообщение отклоняется без возврата в очередь и попадает в dead-letter очередь.
var ErrReject = errors.New("message rejected")

// Handler обрабатывает тело одного сообщения.
type Handler func(ctx context.Context, body []byte) error

// ConsumerMessage запускает потребителя очереди. nil от handler подтверждает сообщение,
// ошибка с ErrReject отклоняет его, любая другая ошибка возвращает его в очередь.
// Потребитель останавливается вместе с ctx.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler Handler) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("queue", queueName))
	sem := make(chan struct{}, prefetch)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					settle(ctx, log, d, handler)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func settle(ctx context.Context, log *slog.Logger, d amqp.Delivery, handler Handler) {
	log = log.With(slog.String("message_id", d.MessageId))
	err := handler(ctx, d.Body)
	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
	case errors.Is(err, ErrReject):
		log.Warn("message rejected, dead-lettering", sl.Err(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("failed to reject message", sl.Err(nackErr))
		}
	default:
		log.Warn("message handler failed, requeueing", sl.Err(err))
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
	}
}
