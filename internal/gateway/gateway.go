package gateway

import (
	"context"
	"math"

	"github.com/busview/busview/internal/core/models"
	"github.com/busview/busview/internal/core/options"
)

// MaxPeekCount is the effective bound when a peek count is omitted: fetch
// everything currently available. Every peek path uses this same default.
const MaxPeekCount = math.MaxInt32

// DeadLetterSuffix is the reserved path segment of an entity's dead-letter
// sub-queue.
const DeadLetterSuffix = "$deadletterqueue"

// QueueDeadLetterPath addresses a queue's dead-letter sub-queue.
func QueueDeadLetterPath(queue string) string {
	return queue + "/" + DeadLetterSuffix
}

// SubscriptionDeadLetterPath addresses a subscription's dead-letter
// sub-queue. The composition is always explicit (topic, subscription,
// suffix); the subscription name is never passed where a topic is expected.
func SubscriptionDeadLetterPath(topic, subscription string) string {
	return topic + "/subscriptions/" + subscription + "/" + DeadLetterSuffix
}

// Gateway is the thin async facade over the vendor broker client. Every call
// is a single logical operation that may fail with a transport, authorization
// or not-found error; failures are non-retryable for that operation and the
// caller commits no local state on failure.
type Gateway interface {
	/* Queues */

	ListQueues(ctx context.Context) ([]models.Queue, error)
	GetQueue(ctx context.Context, name string) (models.Queue, error)
	CreateQueue(ctx context.Context, name string, opts options.Values) (models.Queue, error)
	DeleteQueue(ctx context.Context, name string) error

	/* Topics */

	ListTopics(ctx context.Context) ([]models.Topic, error)
	GetTopic(ctx context.Context, name string) (models.Topic, error)
	CreateTopic(ctx context.Context, name string, opts options.Values) (models.Topic, error)
	DeleteTopic(ctx context.Context, name string) error

	/* Subscriptions */

	ListSubscriptions(ctx context.Context, topic string) ([]models.Subscription, error)
	GetSubscription(ctx context.Context, topic, name string) (models.Subscription, error)
	CreateSubscription(ctx context.Context, topic, name string, opts options.Values) (models.Subscription, error)
	DeleteSubscription(ctx context.Context, topic, name string) error

	/* Rules */

	ListRules(ctx context.Context, topic, subscription string) ([]models.Rule, error)
	GetRule(ctx context.Context, topic, subscription, name string) (models.Rule, error)
	CreateRule(ctx context.Context, topic, subscription, name string, opts options.Values) (models.Rule, error)
	DeleteRule(ctx context.Context, topic, subscription, name string) error

	/* Messages */

	SendToQueue(ctx context.Context, queue string, msg models.Message) error
	SendToTopic(ctx context.Context, topic string, msg models.Message) error

	PeekQueue(ctx context.Context, queue string, count int) ([]models.Message, error)
	PeekQueueDeadLetter(ctx context.Context, queue string, count int) ([]models.Message, error)
	PeekSubscription(ctx context.Context, topic, subscription string, count int) ([]models.Message, error)
	PeekSubscriptionDeadLetter(ctx context.Context, topic, subscription string, count int) ([]models.Message, error)

	PurgeQueue(ctx context.Context, queue string) (int, error)
	PurgeQueueDeadLetter(ctx context.Context, queue string) (int, error)
	PurgeSubscription(ctx context.Context, topic, subscription string) (int, error)
	PurgeSubscriptionDeadLetter(ctx context.Context, topic, subscription string) (int, error)

	Close() error
}

// Factory builds a gateway from a connection descriptor. The coordinator
// uses it when the operator changes the connection.
type Factory func(connectionString string) (Gateway, error)

// EffectivePeekCount normalizes an omitted or non-positive count to the
// documented "everything available" default.
func EffectivePeekCount(count int) int {
	if count <= 0 {
		return MaxPeekCount
	}
	return count
}
