package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePeekCount(t *testing.T) {
	assert.Equal(t, MaxPeekCount, EffectivePeekCount(0))
	assert.Equal(t, MaxPeekCount, EffectivePeekCount(-5))
	assert.Equal(t, 1, EffectivePeekCount(1))
	assert.Equal(t, 500, EffectivePeekCount(500))
}

func TestDeadLetterPaths_ExplicitComposition(t *testing.T) {
	assert.Equal(t, "orders/$deadletterqueue", QueueDeadLetterPath("orders"))

	// The topic and subscription segments must both appear; the subscription
	// name alone never stands in for the topic.
	path := SubscriptionDeadLetterPath("events", "audit")
	assert.Equal(t, "events/subscriptions/audit/$deadletterqueue", path)
}
