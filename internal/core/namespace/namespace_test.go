package namespace

import (
	"testing"

	"github.com/busview/busview/internal/core/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queue(name string, count int64) models.Queue {
	return models.Queue{Name: name, MessageCount: count}
}

func sub(topic, name string) models.Subscription {
	return models.Subscription{TopicName: topic, Name: name}
}

func rule(topic, subName, name string) models.Rule {
	return models.Rule{TopicName: topic, SubscriptionName: subName, Name: name}
}

func TestUpsertQueue_ReplacesInPlace(t *testing.T) {
	ns := New("test")
	ns.ReplaceQueues([]models.Queue{queue("alpha", 1), queue("beta", 2), queue("gamma", 3)})

	// Refresh the middle queue
	ns.UpsertQueue(queue("beta", 99))

	require.Len(t, ns.Queues, 3)
	assert.Equal(t, "beta", ns.Queues[1].Name, "position must be preserved")
	assert.Equal(t, int64(99), ns.Queues[1].MessageCount)
}

func TestUpsertQueue_AppendsWhenMissing(t *testing.T) {
	ns := New("test")
	ns.UpsertQueue(queue("orders", 0))

	require.Len(t, ns.Queues, 1)
	assert.Equal(t, "orders", ns.Queues[0].Name)
}

func TestRemoveQueue_AbsentIsNoOp(t *testing.T) {
	ns := New("test")
	ns.ReplaceQueues([]models.Queue{queue("orders", 0)})

	ns.RemoveQueue("missing")

	assert.Len(t, ns.Queues, 1)
}

func TestRemoveTopic_CascadesToSubscriptionsAndRules(t *testing.T) {
	ns := New("test")
	ns.ReplaceTopics([]models.Topic{{Name: "events"}, {Name: "audit"}})
	ns.ReplaceSubscriptions("events", []models.Subscription{sub("events", "s1"), sub("events", "s2")})
	ns.ReplaceSubscriptions("audit", []models.Subscription{sub("audit", "s1")})
	ns.ReplaceRules("events", "s1", []models.Rule{rule("events", "s1", "r1"), rule("events", "s1", "r2")})
	ns.ReplaceRules("audit", "s1", []models.Rule{rule("audit", "s1", "r1")})

	ns.RemoveTopic("events")

	require.Len(t, ns.Topics, 1)
	assert.Equal(t, "audit", ns.Topics[0].Name)

	// No orphans remain
	for _, s := range ns.Subscriptions {
		assert.NotEqual(t, "events", s.TopicName)
	}
	for _, r := range ns.Rules {
		assert.NotEqual(t, "events", r.TopicName)
	}
	assert.Len(t, ns.Subscriptions, 1)
	assert.Len(t, ns.Rules, 1)
}

func TestRemoveSubscription_CascadesToRules(t *testing.T) {
	ns := New("test")
	ns.ReplaceSubscriptions("events", []models.Subscription{sub("events", "s1"), sub("events", "s2")})
	ns.ReplaceRules("events", "s1", []models.Rule{rule("events", "s1", "r1")})
	ns.ReplaceRules("events", "s2", []models.Rule{rule("events", "s2", "r1")})

	ns.RemoveSubscription("events", "s1")

	require.Len(t, ns.Subscriptions, 1)
	require.Len(t, ns.Rules, 1)
	assert.Equal(t, "s2", ns.Rules[0].SubscriptionName)
}

func TestReplaceSubscriptions_KeepsOtherTopics(t *testing.T) {
	ns := New("test")
	ns.ReplaceSubscriptions("events", []models.Subscription{sub("events", "old")})
	ns.ReplaceSubscriptions("audit", []models.Subscription{sub("audit", "keep")})

	ns.ReplaceSubscriptions("events", []models.Subscription{sub("events", "new1"), sub("events", "new2")})

	require.Len(t, ns.Subscriptions, 3)
	_, ok := ns.SubscriptionByKey("audit", "keep")
	assert.True(t, ok)
	_, ok = ns.SubscriptionByKey("events", "old")
	assert.False(t, ok)
}

func TestReplaceSubscriptions_PrunesOrphanedRules(t *testing.T) {
	ns := New("test")
	ns.ReplaceSubscriptions("events", []models.Subscription{sub("events", "s1")})
	ns.ReplaceRules("events", "s1", []models.Rule{rule("events", "s1", "r1")})

	// s1 vanished server-side between listings
	ns.ReplaceSubscriptions("events", []models.Subscription{sub("events", "s2")})

	assert.Empty(t, ns.RulesOf("events", "s1"))
}

func TestReplaceTopics_PrunesVanishedChildren(t *testing.T) {
	ns := New("test")
	ns.ReplaceTopics([]models.Topic{{Name: "events"}})
	ns.ReplaceSubscriptions("events", []models.Subscription{sub("events", "s1")})
	ns.ReplaceRules("events", "s1", []models.Rule{rule("events", "s1", "r1")})

	ns.ReplaceTopics([]models.Topic{{Name: "other"}})

	assert.Empty(t, ns.Subscriptions)
	assert.Empty(t, ns.Rules)
}

func TestListReplaceThenUpsert_LengthUnchanged(t *testing.T) {
	ns := New("test")
	ns.ReplaceQueues([]models.Queue{queue("a", 0), queue("b", 0)})

	for i := 0; i < 5; i++ {
		ns.UpsertQueue(queue("a", int64(i)))
		ns.UpsertQueue(queue("b", int64(i)))
	}

	require.Len(t, ns.Queues, 2)
	assert.Equal(t, "a", ns.Queues[0].Name)
	assert.Equal(t, "b", ns.Queues[1].Name)
}

func TestHasSibling_CaseInsensitive(t *testing.T) {
	ns := New("test")
	ns.ReplaceQueues([]models.Queue{queue("Orders", 0)})

	siblings := ns.SiblingNames(models.KindQueue, "", "")
	assert.True(t, HasSibling(siblings, "orders"))
	assert.True(t, HasSibling(siblings, "ORDERS"))
	assert.False(t, HasSibling(siblings, "orders2"))
}

func TestSiblingNames_ScopedToParent(t *testing.T) {
	ns := New("test")
	ns.ReplaceSubscriptions("events", []models.Subscription{sub("events", "s1")})
	ns.ReplaceSubscriptions("audit", []models.Subscription{sub("audit", "s2")})

	names := ns.SiblingNames(models.KindSubscription, "events", "")
	assert.Equal(t, []string{"s1"}, names)
}

func TestReset_DropsAllCollections(t *testing.T) {
	ns := New("old")
	ns.ReplaceQueues([]models.Queue{queue("q", 0)})
	ns.ReplaceTopics([]models.Topic{{Name: "t"}})

	ns.Reset("new")

	assert.Equal(t, "new", ns.ConnectionString)
	assert.Empty(t, ns.Queues)
	assert.Empty(t, ns.Topics)
	assert.Empty(t, ns.Subscriptions)
	assert.Empty(t, ns.Rules)
}
