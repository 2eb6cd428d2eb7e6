package rabbitmq

// Exchange is the notification exchange shared by API and notifier.
const Exchange = "notifications"

// Queue and routing key for broadcast media announcements.
const (
	BroadcastQueue      = "media.broadcast"
	BroadcastRoutingKey = "broadcast"
)

// QueueConfig pairs a queue with its routing key on the exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues lists the queues the notifier consumes.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: BroadcastQueue, RoutingKey: BroadcastRoutingKey},
	}
}
