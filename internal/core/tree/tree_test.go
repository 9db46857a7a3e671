package tree

import (
	"testing"

	"github.com/busview/busview/internal/core/models"
	"github.com/busview/busview/internal/core/namespace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() *namespace.Namespace {
	ns := namespace.New("test")
	ns.ReplaceQueues([]models.Queue{{Name: "zulu"}, {Name: "alpha"}})
	ns.ReplaceTopics([]models.Topic{{Name: "events"}, {Name: "audit"}})
	ns.ReplaceSubscriptions("events", []models.Subscription{
		{TopicName: "events", Name: "s2"},
		{TopicName: "events", Name: "s1"},
	})
	ns.ReplaceRules("events", "s1", []models.Rule{
		{TopicName: "events", SubscriptionName: "s1", Name: "r1"},
	})
	return ns
}

func TestChildren_RootsAreSortedGroups(t *testing.T) {
	p := NewProjection(seeded())

	roots := p.Children(nil)

	require.Len(t, roots, 4)
	// Queues first, lexicographic
	assert.Equal(t, NodeQueue, roots[0].Kind)
	assert.Equal(t, "alpha", roots[0].Label)
	assert.Equal(t, "zulu", roots[1].Label)
	// Then topics, lexicographic
	assert.Equal(t, NodeTopic, roots[2].Kind)
	assert.Equal(t, "audit", roots[2].Label)
	assert.Equal(t, "events", roots[3].Label)
}

func TestChildren_RootSortDoesNotReorderStore(t *testing.T) {
	ns := seeded()
	p := NewProjection(ns)

	p.Children(nil)

	assert.Equal(t, "zulu", ns.Queues[0].Name, "projection must not mutate store order")
}

func TestTopicExpandability_DerivedFromSubscriptions(t *testing.T) {
	ns := seeded()
	p := NewProjection(ns)

	roots := p.Children(nil)
	events := roots[3]
	require.Equal(t, "events", events.Label)
	assert.True(t, events.Expandable)
	assert.False(t, roots[2].Expandable, "audit has no subscriptions")

	// Removing the last subscription flips expandability with no other mutation
	ns.RemoveSubscription("events", "s1")
	ns.RemoveSubscription("events", "s2")
	roots = p.Children(nil)
	assert.False(t, roots[3].Expandable)
}

func TestChildren_SubscriptionsSortedWithDerivedExpandability(t *testing.T) {
	p := NewProjection(seeded())

	subs := p.Children(&Node{Kind: NodeTopic, Label: "events"})

	require.Len(t, subs, 2)
	assert.Equal(t, "s1", subs[0].Label)
	assert.Equal(t, "s2", subs[1].Label)
	assert.True(t, subs[0].Expandable, "s1 has a rule")
	assert.False(t, subs[1].Expandable)
	assert.Equal(t, "events", subs[0].TopicName)
}

func TestChildren_RulesAreLeaves(t *testing.T) {
	p := NewProjection(seeded())

	rules := p.Children(&Node{Kind: NodeSubscription, Label: "s1", TopicName: "events"})
	require.Len(t, rules, 1)
	assert.Equal(t, NodeRule, rules[0].Kind)
	assert.Equal(t, "/topics/events/subscriptions/s1/rules/r1", rules[0].Path)

	assert.Empty(t, p.Children(&rules[0]))
	assert.Empty(t, p.Children(&Node{Kind: NodeQueue, Label: "alpha"}))
}

func TestNotify_TagsCollection(t *testing.T) {
	p := NewProjection(seeded())

	var seen []Collection
	p.Subscribe(func(c Collection) { seen = append(seen, c) })
	p.Subscribe(func(c Collection) { seen = append(seen, c) })

	p.Notify(CollectionTopics)

	assert.Equal(t, []Collection{CollectionTopics, CollectionTopics}, seen)
}
