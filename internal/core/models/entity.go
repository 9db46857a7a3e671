package models

// EntityKind discriminates the four namespace entity types.
type EntityKind string

const (
	KindQueue        EntityKind = "queue"
	KindTopic        EntityKind = "topic"
	KindSubscription EntityKind = "subscription"
	KindRule         EntityKind = "rule"
)

// Entity is any addressable namespace entity. Path is the stable identity:
// the broker returns a fresh object graph on every call, so entities are
// always compared by path, never by reference.
type Entity interface {
	EntityKind() EntityKind
	// Path returns the hierarchical identity, e.g. "/topics/events/subscriptions/audit".
	Path() string
	// Label returns the entity's own name segment.
	Label() string
}

type Queue struct {
	Name string `json:"name"`

	// Broker-reported counts
	MessageCount           int64 `json:"message_count"`
	DeadLetterMessageCount int64 `json:"dead_letter_message_count"`
	SizeInBytes            int64 `json:"size_in_bytes"`

	// Raw broker metadata (TTL, lock duration, limits, flags) kept verbatim
	Properties map[string]any `json:"properties,omitempty"`
}

func (q Queue) EntityKind() EntityKind { return KindQueue }
func (q Queue) Path() string           { return "/queues/" + q.Name }
func (q Queue) Label() string          { return q.Name }

type Topic struct {
	Name string `json:"name"`

	SizeInBytes       int64 `json:"size_in_bytes"`
	SubscriptionCount int64 `json:"subscription_count"`

	Properties map[string]any `json:"properties,omitempty"`
}

func (t Topic) EntityKind() EntityKind { return KindTopic }
func (t Topic) Path() string           { return "/topics/" + t.Name }
func (t Topic) Label() string          { return t.Name }

// Subscription is identified by the (topic, subscription) compound key.
type Subscription struct {
	TopicName string `json:"topic_name"`
	Name      string `json:"name"`

	MessageCount           int64 `json:"message_count"`
	DeadLetterMessageCount int64 `json:"dead_letter_message_count"`

	Properties map[string]any `json:"properties,omitempty"`
}

func (s Subscription) EntityKind() EntityKind { return KindSubscription }
func (s Subscription) Path() string {
	return "/topics/" + s.TopicName + "/subscriptions/" + s.Name
}
func (s Subscription) Label() string { return s.Name }

// FilterKind enumerates the mutually exclusive rule filter flavors.
type FilterKind string

const (
	FilterTrue        FilterKind = "true"
	FilterFalse       FilterKind = "false"
	FilterSQL         FilterKind = "sql"
	FilterCorrelation FilterKind = "correlation"
)

type RuleFilter struct {
	Kind       FilterKind `json:"kind"`
	Expression string     `json:"expression,omitempty"`
}

// Rule is identified by the (topic, subscription, rule) compound key.
type Rule struct {
	TopicName        string `json:"topic_name"`
	SubscriptionName string `json:"subscription_name"`
	Name             string `json:"name"`

	Filter RuleFilter `json:"filter"`
	Action string     `json:"action,omitempty"`
}

func (r Rule) EntityKind() EntityKind { return KindRule }
func (r Rule) Path() string {
	return "/topics/" + r.TopicName + "/subscriptions/" + r.SubscriptionName + "/rules/" + r.Name
}
func (r Rule) Label() string { return r.Name }

// SamePath reports whether two entities share the same identity.
// Either side may be nil.
func SamePath(a, b Entity) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Path() == b.Path()
}
