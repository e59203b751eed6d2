// Package rabbitmq содержит подключение к RabbitMQ, топологию очередей уведомлений,
// публикацию JSON-сообщений и конкурентного потребителя.
package rabbitmq

import "github.com/streadway/amqp"

// Топология уведомлений. Отклонённые сообщения уходят в ExchangeDeadLetter
// с тем же ключом маршрутизации.
const (
	ExchangeNotifications = "notifications"
	ExchangeDeadLetter    = "notifications.dlx"
	RoutingKeyTrialPrompt = "trial_prompt"
	QueueTrialPrompt      = "notifications.trial_prompt"
	QueueTrialPromptDead  = "notifications.trial_prompt.dead"
)

// QueueConfig очередь, ключ привязки к exchange и очередь для отклонённых сообщений.
// Пустой DeadLetterQueue значит, что отклонённые сообщения отбрасываются брокером.
type QueueConfig struct {
	QueueName       string
	RoutingKey      string
	DeadLetterQueue string
}

// Args аргументы x-* для QueueDeclare.
func (q QueueConfig) Args() amqp.Table {
	if q.DeadLetterQueue == "" {
		return nil
	}
	return amqp.Table{
		"x-dead-letter-exchange":    ExchangeDeadLetter,
		"x-dead-letter-routing-key": q.RoutingKey,
	}
}

// GetNotificationQueues очереди, которые нужны воркерам уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueTrialPrompt, RoutingKey: RoutingKeyTrialPrompt, DeadLetterQueue: QueueTrialPromptDead},
	}
}
