package tree

import (
	"sort"

	"github.com/busview/busview/internal/core/models"
	"github.com/busview/busview/internal/core/namespace"
)

// NodeKind mirrors the entity kinds as tree levels.
type NodeKind string

const (
	NodeQueue        NodeKind = "queue"
	NodeTopic        NodeKind = "topic"
	NodeSubscription NodeKind = "subscription"
	NodeRule         NodeKind = "rule"
)

// Node is a plain projection record. It carries no UI framework state;
// rendering adapters map nodes onto whatever item type the host needs.
type Node struct {
	Kind  NodeKind `json:"kind"`
	Path  string   `json:"path"`
	Label string   `json:"label"`

	// Expandable is derived from current child presence, never stored.
	Expandable bool `json:"expandable"`

	// Parent keys, populated per level
	TopicName        string `json:"topic_name,omitempty"`
	SubscriptionName string `json:"subscription_name,omitempty"`
}

// Collection tags which entity collection changed in a refresh signal.
type Collection string

const (
	CollectionQueues        Collection = "queues"
	CollectionTopics        Collection = "topics"
	CollectionSubscriptions Collection = "subscriptions"
	CollectionRules         Collection = "rules"
)

// Observer receives change notifications tagged with the collection that
// changed. Observers re-pull via Children; the signal carries no payload.
type Observer func(Collection)

// Projection derives the entity tree from the namespace on demand. It keeps
// no cache of its own, so every Children call reflects the store's latest
// state.
type Projection struct {
	ns        *namespace.Namespace
	observers []Observer
}

func NewProjection(ns *namespace.Namespace) *Projection {
	return &Projection{ns: ns}
}

// Subscribe registers an observer for change notifications.
func (p *Projection) Subscribe(obs Observer) {
	p.observers = append(p.observers, obs)
}

// Notify tells observers that a collection changed.
func (p *Projection) Notify(c Collection) {
	for _, obs := range p.observers {
		obs(c)
	}
}

// Children returns the child nodes of the given node, lexicographically
// ordered. A nil node yields the roots: all queues followed by all topics,
// as two independently sorted groups. Queue and rule nodes are leaves.
func (p *Projection) Children(node *Node) []Node {
	if node == nil {
		return p.roots()
	}
	switch node.Kind {
	case NodeTopic:
		return p.subscriptionNodes(node.Label)
	case NodeSubscription:
		return p.ruleNodes(node.TopicName, node.Label)
	default:
		return nil
	}
}

func (p *Projection) roots() []Node {
	nodes := make([]Node, 0, len(p.ns.Queues)+len(p.ns.Topics))

	queues := make([]models.Queue, len(p.ns.Queues))
	copy(queues, p.ns.Queues)
	sort.Slice(queues, func(i, j int) bool { return queues[i].Name < queues[j].Name })
	for _, q := range queues {
		nodes = append(nodes, Node{
			Kind:  NodeQueue,
			Path:  q.Path(),
			Label: q.Name,
		})
	}

	topics := make([]models.Topic, len(p.ns.Topics))
	copy(topics, p.ns.Topics)
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	for _, t := range topics {
		nodes = append(nodes, Node{
			Kind:       NodeTopic,
			Path:       t.Path(),
			Label:      t.Name,
			Expandable: len(p.ns.SubscriptionsOf(t.Name)) > 0,
		})
	}
	return nodes
}

func (p *Projection) subscriptionNodes(topicName string) []Node {
	subs := p.ns.SubscriptionsOf(topicName)
	sort.Slice(subs, func(i, j int) bool { return subs[i].Name < subs[j].Name })

	nodes := make([]Node, 0, len(subs))
	for _, s := range subs {
		nodes = append(nodes, Node{
			Kind:       NodeSubscription,
			Path:       s.Path(),
			Label:      s.Name,
			Expandable: len(p.ns.RulesOf(s.TopicName, s.Name)) > 0,
			TopicName:  s.TopicName,
		})
	}
	return nodes
}

func (p *Projection) ruleNodes(topicName, subName string) []Node {
	rules := p.ns.RulesOf(topicName, subName)
	sort.Slice(rules, func(i, j int) bool { return rules[i].Name < rules[j].Name })

	nodes := make([]Node, 0, len(rules))
	for _, r := range rules {
		nodes = append(nodes, Node{
			Kind:             NodeRule,
			Path:             r.Path(),
			Label:            r.Name,
			TopicName:        r.TopicName,
			SubscriptionName: r.SubscriptionName,
		})
	}
	return nodes
}
