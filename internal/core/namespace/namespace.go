package namespace

import (
	"strings"

	"github.com/busview/busview/internal/core/models"
)

// Namespace is the in-memory aggregate of all broker entities known to the
// current connection. Collections keep broker list order; a refresh replaces
// an item in place so positions are stable across refreshes.
//
// All operations are synchronous, total, and in-memory. The coordinator that
// owns the namespace serializes mutations; the namespace itself holds no
// locks.
type Namespace struct {
	ConnectionString string

	Queues        []models.Queue
	Topics        []models.Topic
	Subscriptions []models.Subscription
	Rules         []models.Rule
}

func New(connectionString string) *Namespace {
	return &Namespace{ConnectionString: connectionString}
}

// Reset drops all four collections. Used when the connection descriptor is
// replaced and a full reload follows.
func (n *Namespace) Reset(connectionString string) {
	n.ConnectionString = connectionString
	n.Queues = nil
	n.Topics = nil
	n.Subscriptions = nil
	n.Rules = nil
}

/* Wholesale replacement, used after "list all" calls */

func (n *Namespace) ReplaceQueues(queues []models.Queue) {
	n.Queues = queues
}

// ReplaceTopics replaces the topic collection and prunes subscriptions and
// rules whose parent topic no longer exists.
func (n *Namespace) ReplaceTopics(topics []models.Topic) {
	n.Topics = topics
	present := make(map[string]bool, len(topics))
	for _, t := range topics {
		present[t.Name] = true
	}
	n.Subscriptions = filterSubscriptions(n.Subscriptions, func(s models.Subscription) bool {
		return present[s.TopicName]
	})
	n.Rules = filterRules(n.Rules, func(r models.Rule) bool {
		return present[r.TopicName]
	})
}

// ReplaceSubscriptions replaces all subscriptions of one topic, keeping
// subscriptions of other topics untouched. Rules whose subscription vanished
// are pruned so no orphan survives the replacement.
func (n *Namespace) ReplaceSubscriptions(topicName string, subs []models.Subscription) {
	kept := filterSubscriptions(n.Subscriptions, func(s models.Subscription) bool {
		return s.TopicName != topicName
	})
	n.Subscriptions = append(kept, subs...)

	present := make(map[string]bool, len(subs))
	for _, s := range subs {
		present[s.Name] = true
	}
	n.Rules = filterRules(n.Rules, func(r models.Rule) bool {
		return r.TopicName != topicName || present[r.SubscriptionName]
	})
}

// ReplaceRules replaces all rules of one subscription.
func (n *Namespace) ReplaceRules(topicName, subName string, rules []models.Rule) {
	kept := filterRules(n.Rules, func(r models.Rule) bool {
		return !(r.TopicName == topicName && r.SubscriptionName == subName)
	})
	n.Rules = append(kept, rules...)
}

/* Identity-preserving upsert, used after create/refresh */

func (n *Namespace) UpsertQueue(q models.Queue) {
	for i := range n.Queues {
		if n.Queues[i].Name == q.Name {
			n.Queues[i] = q
			return
		}
	}
	n.Queues = append(n.Queues, q)
}

func (n *Namespace) UpsertTopic(t models.Topic) {
	for i := range n.Topics {
		if n.Topics[i].Name == t.Name {
			n.Topics[i] = t
			return
		}
	}
	n.Topics = append(n.Topics, t)
}

func (n *Namespace) UpsertSubscription(s models.Subscription) {
	for i := range n.Subscriptions {
		if n.Subscriptions[i].TopicName == s.TopicName && n.Subscriptions[i].Name == s.Name {
			n.Subscriptions[i] = s
			return
		}
	}
	n.Subscriptions = append(n.Subscriptions, s)
}

func (n *Namespace) UpsertRule(r models.Rule) {
	for i := range n.Rules {
		if n.Rules[i].TopicName == r.TopicName &&
			n.Rules[i].SubscriptionName == r.SubscriptionName &&
			n.Rules[i].Name == r.Name {
			n.Rules[i] = r
			return
		}
	}
	n.Rules = append(n.Rules, r)
}

/* Removal; absence is a no-op, topic and subscription removal cascade */

func (n *Namespace) RemoveQueue(name string) {
	n.Queues = filterQueues(n.Queues, func(q models.Queue) bool {
		return q.Name != name
	})
}

func (n *Namespace) RemoveTopic(name string) {
	n.Topics = filterTopics(n.Topics, func(t models.Topic) bool {
		return t.Name != name
	})
	n.Subscriptions = filterSubscriptions(n.Subscriptions, func(s models.Subscription) bool {
		return s.TopicName != name
	})
	n.Rules = filterRules(n.Rules, func(r models.Rule) bool {
		return r.TopicName != name
	})
}

func (n *Namespace) RemoveSubscription(topicName, name string) {
	n.Subscriptions = filterSubscriptions(n.Subscriptions, func(s models.Subscription) bool {
		return !(s.TopicName == topicName && s.Name == name)
	})
	n.Rules = filterRules(n.Rules, func(r models.Rule) bool {
		return !(r.TopicName == topicName && r.SubscriptionName == name)
	})
}

func (n *Namespace) RemoveRule(topicName, subName, name string) {
	n.Rules = filterRules(n.Rules, func(r models.Rule) bool {
		return !(r.TopicName == topicName && r.SubscriptionName == subName && r.Name == name)
	})
}

/* Lookups */

func (n *Namespace) QueueByName(name string) (models.Queue, bool) {
	for _, q := range n.Queues {
		if q.Name == name {
			return q, true
		}
	}
	return models.Queue{}, false
}

func (n *Namespace) TopicByName(name string) (models.Topic, bool) {
	for _, t := range n.Topics {
		if t.Name == name {
			return t, true
		}
	}
	return models.Topic{}, false
}

func (n *Namespace) SubscriptionByKey(topicName, name string) (models.Subscription, bool) {
	for _, s := range n.Subscriptions {
		if s.TopicName == topicName && s.Name == name {
			return s, true
		}
	}
	return models.Subscription{}, false
}

func (n *Namespace) RuleByKey(topicName, subName, name string) (models.Rule, bool) {
	for _, r := range n.Rules {
		if r.TopicName == topicName && r.SubscriptionName == subName && r.Name == name {
			return r, true
		}
	}
	return models.Rule{}, false
}

func (n *Namespace) SubscriptionsOf(topicName string) []models.Subscription {
	var subs []models.Subscription
	for _, s := range n.Subscriptions {
		if s.TopicName == topicName {
			subs = append(subs, s)
		}
	}
	return subs
}

func (n *Namespace) RulesOf(topicName, subName string) []models.Rule {
	var rules []models.Rule
	for _, r := range n.Rules {
		if r.TopicName == topicName && r.SubscriptionName == subName {
			rules = append(rules, r)
		}
	}
	return rules
}

// SiblingNames returns the names competing with a new entity of the given
// kind under the given parent keys, for case-insensitive duplicate checks.
func (n *Namespace) SiblingNames(kind models.EntityKind, topicName, subName string) []string {
	var names []string
	switch kind {
	case models.KindQueue:
		for _, q := range n.Queues {
			names = append(names, q.Name)
		}
	case models.KindTopic:
		for _, t := range n.Topics {
			names = append(names, t.Name)
		}
	case models.KindSubscription:
		for _, s := range n.SubscriptionsOf(topicName) {
			names = append(names, s.Name)
		}
	case models.KindRule:
		for _, r := range n.RulesOf(topicName, subName) {
			names = append(names, r.Name)
		}
	}
	return names
}

// HasSibling reports whether name collides case-insensitively with any of
// the given sibling names.
func HasSibling(siblings []string, name string) bool {
	for _, s := range siblings {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

func filterQueues(in []models.Queue, keep func(models.Queue) bool) []models.Queue {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func filterTopics(in []models.Topic, keep func(models.Topic) bool) []models.Topic {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func filterSubscriptions(in []models.Subscription, keep func(models.Subscription) bool) []models.Subscription {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func filterRules(in []models.Rule, keep func(models.Rule) bool) []models.Rule {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
