package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/busview/busview/internal/core/models"
	"github.com/busview/busview/internal/core/options"
	"github.com/busview/busview/internal/gateway"
)

// FakeGateway is a configurable in-memory test double for gateway.Gateway.
// It keeps server-side entities and messages in maps, records every call,
// and can be told to fail specific operations.
type FakeGateway struct {
	mu sync.Mutex

	Queues        map[string]models.Queue
	Topics        map[string]models.Topic
	Subscriptions map[string]models.Subscription // key: topic + "/" + name
	Rules         map[string]models.Rule         // key: topic + "/" + sub + "/" + name
	Messages      map[string][]models.Message    // key: queue path or dead-letter path

	Calls  []string
	errors map[string]error

	// Hook, when set, runs before every operation (after the call is
	// recorded). Tests use it to interleave mutations across a suspension
	// point.
	Hook func(op string)

	Closed bool
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		Queues:        make(map[string]models.Queue),
		Topics:        make(map[string]models.Topic),
		Subscriptions: make(map[string]models.Subscription),
		Rules:         make(map[string]models.Rule),
		Messages:      make(map[string][]models.Message),
		errors:        make(map[string]error),
	}
}

// FailWith makes every subsequent call of the named operation return err.
func (f *FakeGateway) FailWith(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[op] = err
}

func (f *FakeGateway) begin(op string) error {
	f.mu.Lock()
	f.Calls = append(f.Calls, op)
	err := f.errors[op]
	hook := f.Hook
	f.mu.Unlock()
	if hook != nil {
		hook(op)
	}
	return err
}

func subKey(topic, name string) string          { return topic + "/" + name }
func ruleKey(topic, sub, name string) string    { return topic + "/" + sub + "/" + name }
func notFound(kind, name string) error          { return fmt.Errorf("%s '%s' not found", kind, name) }
func dlqPath(queue string) string               { return gateway.QueueDeadLetterPath(queue) }
func subDlqPath(topic, sub string) string       { return gateway.SubscriptionDeadLetterPath(topic, sub) }
func subMsgPath(topic, sub string) string       { return topic + "/subscriptions/" + sub }
func peekSlice(msgs []models.Message, count int) []models.Message {
	if count > len(msgs) {
		count = len(msgs)
	}
	out := make([]models.Message, count)
	copy(out, msgs[:count])
	return out
}

/* Queues */

func (f *FakeGateway) ListQueues(ctx context.Context) ([]models.Queue, error) {
	if err := f.begin("ListQueues"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Queue
	for _, q := range f.Queues {
		out = append(out, q)
	}
	return out, nil
}

func (f *FakeGateway) GetQueue(ctx context.Context, name string) (models.Queue, error) {
	if err := f.begin("GetQueue"); err != nil {
		return models.Queue{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.Queues[name]
	if !ok {
		return models.Queue{}, notFound("queue", name)
	}
	q.MessageCount = int64(len(f.Messages[name]))
	q.DeadLetterMessageCount = int64(len(f.Messages[dlqPath(name)]))
	return q, nil
}

func (f *FakeGateway) CreateQueue(ctx context.Context, name string, opts options.Values) (models.Queue, error) {
	if err := f.begin("CreateQueue"); err != nil {
		return models.Queue{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	q := models.Queue{Name: name, Properties: opts}
	f.Queues[name] = q
	return q, nil
}

func (f *FakeGateway) DeleteQueue(ctx context.Context, name string) error {
	if err := f.begin("DeleteQueue"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Queues[name]; !ok {
		return notFound("queue", name)
	}
	delete(f.Queues, name)
	delete(f.Messages, name)
	delete(f.Messages, dlqPath(name))
	return nil
}

/* Topics */

func (f *FakeGateway) ListTopics(ctx context.Context) ([]models.Topic, error) {
	if err := f.begin("ListTopics"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Topic
	for _, t := range f.Topics {
		out = append(out, t)
	}
	return out, nil
}

func (f *FakeGateway) GetTopic(ctx context.Context, name string) (models.Topic, error) {
	if err := f.begin("GetTopic"); err != nil {
		return models.Topic{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Topics[name]
	if !ok {
		return models.Topic{}, notFound("topic", name)
	}
	return t, nil
}

func (f *FakeGateway) CreateTopic(ctx context.Context, name string, opts options.Values) (models.Topic, error) {
	if err := f.begin("CreateTopic"); err != nil {
		return models.Topic{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := models.Topic{Name: name, Properties: opts}
	f.Topics[name] = t
	return t, nil
}

func (f *FakeGateway) DeleteTopic(ctx context.Context, name string) error {
	if err := f.begin("DeleteTopic"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Topics[name]; !ok {
		return notFound("topic", name)
	}
	delete(f.Topics, name)
	for k, s := range f.Subscriptions {
		if s.TopicName == name {
			delete(f.Subscriptions, k)
		}
	}
	for k, r := range f.Rules {
		if r.TopicName == name {
			delete(f.Rules, k)
		}
	}
	return nil
}

/* Subscriptions */

func (f *FakeGateway) ListSubscriptions(ctx context.Context, topic string) ([]models.Subscription, error) {
	if err := f.begin("ListSubscriptions"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Subscription
	for _, s := range f.Subscriptions {
		if s.TopicName == topic {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *FakeGateway) GetSubscription(ctx context.Context, topic, name string) (models.Subscription, error) {
	if err := f.begin("GetSubscription"); err != nil {
		return models.Subscription{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.Subscriptions[subKey(topic, name)]
	if !ok {
		return models.Subscription{}, notFound("subscription", name)
	}
	s.MessageCount = int64(len(f.Messages[subMsgPath(topic, name)]))
	s.DeadLetterMessageCount = int64(len(f.Messages[subDlqPath(topic, name)]))
	return s, nil
}

func (f *FakeGateway) CreateSubscription(ctx context.Context, topic, name string, opts options.Values) (models.Subscription, error) {
	if err := f.begin("CreateSubscription"); err != nil {
		return models.Subscription{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Topics[topic]; !ok {
		return models.Subscription{}, notFound("topic", topic)
	}
	s := models.Subscription{TopicName: topic, Name: name, Properties: opts}
	f.Subscriptions[subKey(topic, name)] = s
	return s, nil
}

func (f *FakeGateway) DeleteSubscription(ctx context.Context, topic, name string) error {
	if err := f.begin("DeleteSubscription"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Subscriptions[subKey(topic, name)]; !ok {
		return notFound("subscription", name)
	}
	delete(f.Subscriptions, subKey(topic, name))
	for k, r := range f.Rules {
		if r.TopicName == topic && r.SubscriptionName == name {
			delete(f.Rules, k)
		}
	}
	return nil
}

/* Rules */

func (f *FakeGateway) ListRules(ctx context.Context, topic, subscription string) ([]models.Rule, error) {
	if err := f.begin("ListRules"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Rule
	for _, r := range f.Rules {
		if r.TopicName == topic && r.SubscriptionName == subscription {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *FakeGateway) GetRule(ctx context.Context, topic, subscription, name string) (models.Rule, error) {
	if err := f.begin("GetRule"); err != nil {
		return models.Rule{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.Rules[ruleKey(topic, subscription, name)]
	if !ok {
		return models.Rule{}, notFound("rule", name)
	}
	return r, nil
}

func (f *FakeGateway) CreateRule(ctx context.Context, topic, subscription, name string, opts options.Values) (models.Rule, error) {
	if err := f.begin("CreateRule"); err != nil {
		return models.Rule{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Subscriptions[subKey(topic, subscription)]; !ok {
		return models.Rule{}, notFound("subscription", subscription)
	}
	r := models.Rule{TopicName: topic, SubscriptionName: subscription, Name: name}
	if expr, ok := opts[options.KeySQLExpressionFilter].(string); ok {
		r.Filter = models.RuleFilter{Kind: models.FilterSQL, Expression: expr}
	}
	if id, ok := opts[options.KeyCorrelationIDFilter].(string); ok {
		r.Filter = models.RuleFilter{Kind: models.FilterCorrelation, Expression: id}
	}
	if action, ok := opts[options.KeySQLRuleAction].(string); ok {
		r.Action = action
	}
	f.Rules[ruleKey(topic, subscription, name)] = r
	return r, nil
}

func (f *FakeGateway) DeleteRule(ctx context.Context, topic, subscription, name string) error {
	if err := f.begin("DeleteRule"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Rules[ruleKey(topic, subscription, name)]; !ok {
		return notFound("rule", name)
	}
	delete(f.Rules, ruleKey(topic, subscription, name))
	return nil
}

/* Messages */

func (f *FakeGateway) SendToQueue(ctx context.Context, queue string, msg models.Message) error {
	if err := f.begin("SendToQueue"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Queues[queue]; !ok {
		return notFound("queue", queue)
	}
	f.Messages[queue] = append(f.Messages[queue], msg)
	return nil
}

func (f *FakeGateway) SendToTopic(ctx context.Context, topic string, msg models.Message) error {
	if err := f.begin("SendToTopic"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Topics[topic]; !ok {
		return notFound("topic", topic)
	}
	for _, s := range f.Subscriptions {
		if s.TopicName == topic {
			path := subMsgPath(topic, s.Name)
			f.Messages[path] = append(f.Messages[path], msg)
		}
	}
	return nil
}

func (f *FakeGateway) PeekQueue(ctx context.Context, queue string, count int) ([]models.Message, error) {
	if err := f.begin("PeekQueue"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return peekSlice(f.Messages[queue], count), nil
}

func (f *FakeGateway) PeekQueueDeadLetter(ctx context.Context, queue string, count int) ([]models.Message, error) {
	if err := f.begin("PeekQueueDeadLetter"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return peekSlice(f.Messages[dlqPath(queue)], count), nil
}

func (f *FakeGateway) PeekSubscription(ctx context.Context, topic, subscription string, count int) ([]models.Message, error) {
	if err := f.begin("PeekSubscription"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return peekSlice(f.Messages[subMsgPath(topic, subscription)], count), nil
}

func (f *FakeGateway) PeekSubscriptionDeadLetter(ctx context.Context, topic, subscription string, count int) ([]models.Message, error) {
	if err := f.begin("PeekSubscriptionDeadLetter"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return peekSlice(f.Messages[subDlqPath(topic, subscription)], count), nil
}

func (f *FakeGateway) purge(path string) int {
	n := len(f.Messages[path])
	delete(f.Messages, path)
	return n
}

func (f *FakeGateway) PurgeQueue(ctx context.Context, queue string) (int, error) {
	if err := f.begin("PurgeQueue"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.purge(queue), nil
}

func (f *FakeGateway) PurgeQueueDeadLetter(ctx context.Context, queue string) (int, error) {
	if err := f.begin("PurgeQueueDeadLetter"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.purge(dlqPath(queue)), nil
}

func (f *FakeGateway) PurgeSubscription(ctx context.Context, topic, subscription string) (int, error) {
	if err := f.begin("PurgeSubscription"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.purge(subMsgPath(topic, subscription)), nil
}

func (f *FakeGateway) PurgeSubscriptionDeadLetter(ctx context.Context, topic, subscription string) (int, error) {
	if err := f.begin("PurgeSubscriptionDeadLetter"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.purge(subDlqPath(topic, subscription)), nil
}

func (f *FakeGateway) Close() error {
	f.Closed = true
	return nil
}
