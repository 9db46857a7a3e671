package rabbit

import (
	"context"
	"fmt"
	"strings"

	"github.com/busview/busview/internal/core/models"
	"github.com/busview/busview/internal/core/options"
)

/* Queues */

func (g *Gateway) ListQueues(ctx context.Context) ([]models.Queue, error) {
	mqs, err := g.mgmt.listQueues(ctx)
	if err != nil {
		return nil, err
	}
	counts := messageCountsByName(mqs)
	var out []models.Queue
	for _, mq := range mqs {
		if !isEntityQueue(mq) {
			continue
		}
		out = append(out, toQueueModel(mq, counts[deadLetterQueueName(mq.Name)]))
	}
	return out, nil
}

func (g *Gateway) GetQueue(ctx context.Context, name string) (models.Queue, error) {
	mq, err := g.mgmt.getQueue(ctx, name)
	if err != nil {
		return models.Queue{}, err
	}
	dlqCount, err := g.queueDepth(ctx, deadLetterQueueName(name))
	if err != nil {
		return models.Queue{}, err
	}
	return toQueueModel(mq, dlqCount), nil
}

func (g *Gateway) CreateQueue(ctx context.Context, name string, opts options.Values) (models.Queue, error) {
	args := queueArguments(opts)
	args["x-dead-letter-exchange"] = ""
	args["x-dead-letter-routing-key"] = deadLetterQueueName(name)
	if err := g.mgmt.putQueue(ctx, name, args); err != nil {
		return models.Queue{}, err
	}
	if err := g.mgmt.putQueue(ctx, deadLetterQueueName(name), map[string]any{}); err != nil {
		return models.Queue{}, err
	}
	return models.Queue{Name: name, Properties: opts}, nil
}

func (g *Gateway) DeleteQueue(ctx context.Context, name string) error {
	if err := g.mgmt.deleteQueue(ctx, name); err != nil {
		return err
	}
	if err := g.mgmt.deleteQueue(ctx, deadLetterQueueName(name)); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

/* Topics */

func (g *Gateway) ListTopics(ctx context.Context) ([]models.Topic, error) {
	exchanges, err := g.mgmt.listExchanges(ctx)
	if err != nil {
		return nil, err
	}
	mqs, err := g.mgmt.listQueues(ctx)
	if err != nil {
		return nil, err
	}
	subCounts := make(map[string]int64)
	for _, mq := range mqs {
		if owner, ok := mq.Arguments[argTopicOwner].(string); ok {
			subCounts[owner]++
		}
	}
	var out []models.Topic
	for _, ex := range exchanges {
		if !isEntityExchange(ex) {
			continue
		}
		out = append(out, models.Topic{
			Name:              ex.Name,
			SubscriptionCount: subCounts[ex.Name],
			Properties:        cleanArguments(ex.Arguments),
		})
	}
	return out, nil
}

func (g *Gateway) GetTopic(ctx context.Context, name string) (models.Topic, error) {
	ex, err := g.mgmt.getExchange(ctx, name)
	if err != nil {
		return models.Topic{}, err
	}
	if !isEntityExchange(ex) {
		return models.Topic{}, fmt.Errorf("exchange '%s' is not a managed topic", name)
	}
	subs, err := g.subscriptionQueues(ctx, name)
	if err != nil {
		return models.Topic{}, err
	}
	return models.Topic{
		Name:              ex.Name,
		SubscriptionCount: int64(len(subs)),
		Properties:        cleanArguments(ex.Arguments),
	}, nil
}

func (g *Gateway) CreateTopic(ctx context.Context, name string, opts options.Values) (models.Topic, error) {
	args := topicArguments(opts)
	args[argEntityMarker] = "topic"
	if err := g.mgmt.putExchange(ctx, name, args); err != nil {
		return models.Topic{}, err
	}
	return models.Topic{Name: name, Properties: opts}, nil
}

// DeleteTopic removes the exchange and every subscription queue it owns,
// dead-letter companions included.
func (g *Gateway) DeleteTopic(ctx context.Context, name string) error {
	subs, err := g.subscriptionQueues(ctx, name)
	if err != nil {
		return err
	}
	for _, mq := range subs {
		if err := g.mgmt.deleteQueue(ctx, mq.Name); err != nil && !isNotFound(err) {
			return err
		}
		if err := g.mgmt.deleteQueue(ctx, deadLetterQueueName(mq.Name)); err != nil && !isNotFound(err) {
			return err
		}
	}
	return g.mgmt.deleteExchange(ctx, name)
}

/* Subscriptions */

func (g *Gateway) ListSubscriptions(ctx context.Context, topic string) ([]models.Subscription, error) {
	mqs, err := g.mgmt.listQueues(ctx)
	if err != nil {
		return nil, err
	}
	counts := messageCountsByName(mqs)
	var out []models.Subscription
	for _, mq := range mqs {
		if owner, ok := mq.Arguments[argTopicOwner].(string); !ok || owner != topic {
			continue
		}
		out = append(out, models.Subscription{
			TopicName:              topic,
			Name:                   subscriptionNameFromQueue(topic, mq.Name),
			MessageCount:           mq.Messages,
			DeadLetterMessageCount: counts[deadLetterQueueName(mq.Name)],
			Properties:             cleanArguments(mq.Arguments),
		})
	}
	return out, nil
}

func (g *Gateway) GetSubscription(ctx context.Context, topic, name string) (models.Subscription, error) {
	qname := subscriptionQueueName(topic, name)
	mq, err := g.mgmt.getQueue(ctx, qname)
	if err != nil {
		return models.Subscription{}, err
	}
	if owner, ok := mq.Arguments[argTopicOwner].(string); !ok || owner != topic {
		return models.Subscription{}, fmt.Errorf("queue '%s' is not a subscription of topic '%s'", qname, topic)
	}
	dlqCount, err := g.queueDepth(ctx, deadLetterQueueName(qname))
	if err != nil {
		return models.Subscription{}, err
	}
	return models.Subscription{
		TopicName:              topic,
		Name:                   name,
		MessageCount:           mq.Messages,
		DeadLetterMessageCount: dlqCount,
		Properties:             cleanArguments(mq.Arguments),
	}, nil
}

// CreateSubscription declares the backing queue, its dead-letter companion,
// and a catch-all delivery binding from the topic exchange.
func (g *Gateway) CreateSubscription(ctx context.Context, topic, name string, opts options.Values) (models.Subscription, error) {
	if _, err := g.GetTopic(ctx, topic); err != nil {
		return models.Subscription{}, err
	}
	qname := subscriptionQueueName(topic, name)
	args := subscriptionArguments(opts)
	args[argTopicOwner] = topic
	args["x-dead-letter-exchange"] = ""
	args["x-dead-letter-routing-key"] = deadLetterQueueName(qname)
	if err := g.mgmt.putQueue(ctx, qname, args); err != nil {
		return models.Subscription{}, err
	}
	if err := g.mgmt.putQueue(ctx, deadLetterQueueName(qname), map[string]any{}); err != nil {
		return models.Subscription{}, err
	}
	if err := g.mgmt.bindQueue(ctx, topic, qname, "#", map[string]any{}); err != nil {
		return models.Subscription{}, err
	}
	return models.Subscription{TopicName: topic, Name: name, Properties: opts}, nil
}

func (g *Gateway) DeleteSubscription(ctx context.Context, topic, name string) error {
	qname := subscriptionQueueName(topic, name)
	if err := g.mgmt.deleteQueue(ctx, qname); err != nil {
		return err
	}
	if err := g.mgmt.deleteQueue(ctx, deadLetterQueueName(qname)); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

/* Rules */

func (g *Gateway) ListRules(ctx context.Context, topic, subscription string) ([]models.Rule, error) {
	bindings, err := g.ruleBindings(ctx, topic, subscription)
	if err != nil {
		return nil, err
	}
	var out []models.Rule
	for _, b := range bindings {
		out = append(out, toRuleModel(topic, subscription, b))
	}
	return out, nil
}

func (g *Gateway) GetRule(ctx context.Context, topic, subscription, name string) (models.Rule, error) {
	b, err := g.findRuleBinding(ctx, topic, subscription, name)
	if err != nil {
		return models.Rule{}, err
	}
	return toRuleModel(topic, subscription, b), nil
}

// CreateRule stores the rule as an annotated binding. The filter expression
// rides in the binding arguments; RabbitMQ does not evaluate it, so the rule
// is descriptive metadata on this broker.
func (g *Gateway) CreateRule(ctx context.Context, topic, subscription, name string, opts options.Values) (models.Rule, error) {
	filter, action := ruleFromOptions(opts)
	args := map[string]any{
		argRuleName:   name,
		argFilterKind: string(filter.Kind),
	}
	if filter.Expression != "" {
		args[argFilterExpr] = filter.Expression
	}
	if action != "" {
		args[argRuleAction] = action
	}
	qname := subscriptionQueueName(topic, subscription)
	if err := g.mgmt.bindQueue(ctx, topic, qname, name, args); err != nil {
		return models.Rule{}, err
	}
	return models.Rule{
		TopicName:        topic,
		SubscriptionName: subscription,
		Name:             name,
		Filter:           filter,
		Action:           action,
	}, nil
}

func (g *Gateway) DeleteRule(ctx context.Context, topic, subscription, name string) error {
	b, err := g.findRuleBinding(ctx, topic, subscription, name)
	if err != nil {
		return err
	}
	qname := subscriptionQueueName(topic, subscription)
	return g.mgmt.unbindQueue(ctx, topic, qname, b.PropertiesKey)
}

/* Helpers */

func (g *Gateway) subscriptionQueues(ctx context.Context, topic string) ([]mgmtQueue, error) {
	mqs, err := g.mgmt.listQueues(ctx)
	if err != nil {
		return nil, err
	}
	var out []mgmtQueue
	for _, mq := range mqs {
		if owner, ok := mq.Arguments[argTopicOwner].(string); ok && owner == topic {
			out = append(out, mq)
		}
	}
	return out, nil
}

func (g *Gateway) ruleBindings(ctx context.Context, topic, subscription string) ([]mgmtBinding, error) {
	bindings, err := g.mgmt.listBindings(ctx, topic)
	if err != nil {
		return nil, err
	}
	qname := subscriptionQueueName(topic, subscription)
	var out []mgmtBinding
	for _, b := range bindings {
		if b.DestinationType != "queue" || b.Destination != qname {
			continue
		}
		if _, ok := b.Arguments[argRuleName].(string); !ok {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (g *Gateway) findRuleBinding(ctx context.Context, topic, subscription, name string) (mgmtBinding, error) {
	bindings, err := g.ruleBindings(ctx, topic, subscription)
	if err != nil {
		return mgmtBinding{}, err
	}
	for _, b := range bindings {
		if ruleName, _ := b.Arguments[argRuleName].(string); ruleName == name {
			return b, nil
		}
	}
	return mgmtBinding{}, fmt.Errorf("rule '%s' not found", name)
}

// queueDepth returns a queue's message count, treating a missing queue as
// empty. Dead-letter companions of pre-existing topology may not exist.
func (g *Gateway) queueDepth(ctx context.Context, name string) (int64, error) {
	mq, err := g.mgmt.getQueue(ctx, name)
	if isNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return mq.Messages, nil
}

func isEntityQueue(mq mgmtQueue) bool {
	if strings.HasSuffix(mq.Name, deadLetterQueueSuffix) {
		return false
	}
	_, owned := mq.Arguments[argTopicOwner]
	return !owned
}

func isEntityExchange(ex mgmtExchange) bool {
	if ex.Type != "topic" {
		return false
	}
	marker, _ := ex.Arguments[argEntityMarker].(string)
	return marker == "topic"
}

func messageCountsByName(mqs []mgmtQueue) map[string]int64 {
	counts := make(map[string]int64, len(mqs))
	for _, mq := range mqs {
		counts[mq.Name] = mq.Messages
	}
	return counts
}

func toQueueModel(mq mgmtQueue, dlqCount int64) models.Queue {
	return models.Queue{
		Name:                   mq.Name,
		MessageCount:           mq.Messages,
		DeadLetterMessageCount: dlqCount,
		Properties:             cleanArguments(mq.Arguments),
	}
}

func toRuleModel(topic, subscription string, b mgmtBinding) models.Rule {
	name, _ := b.Arguments[argRuleName].(string)
	kind, _ := b.Arguments[argFilterKind].(string)
	expr, _ := b.Arguments[argFilterExpr].(string)
	action, _ := b.Arguments[argRuleAction].(string)
	if kind == "" {
		kind = string(models.FilterTrue)
	}
	return models.Rule{
		TopicName:        topic,
		SubscriptionName: subscription,
		Name:             name,
		Filter:           models.RuleFilter{Kind: models.FilterKind(kind), Expression: expr},
		Action:           action,
	}
}

// ruleFromOptions resolves the mutually exclusive filter options. With no
// filter option set the rule matches everything.
func ruleFromOptions(opts options.Values) (models.RuleFilter, string) {
	filter := models.RuleFilter{Kind: models.FilterTrue}
	if _, ok := opts[options.KeyFalseFilter]; ok {
		filter = models.RuleFilter{Kind: models.FilterFalse}
	}
	if expr, ok := opts[options.KeySQLExpressionFilter].(string); ok {
		filter = models.RuleFilter{Kind: models.FilterSQL, Expression: expr}
	}
	if id, ok := opts[options.KeyCorrelationIDFilter].(string); ok {
		filter = models.RuleFilter{Kind: models.FilterCorrelation, Expression: id}
	}
	action, _ := opts[options.KeySQLRuleAction].(string)
	return filter, action
}

// cleanArguments strips busview bookkeeping from broker arguments before
// they surface as entity properties.
func cleanArguments(args map[string]any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		switch k {
		case argEntityMarker, argTopicOwner, argRuleName, argFilterKind, argFilterExpr, argRuleAction,
			"x-dead-letter-exchange", "x-dead-letter-routing-key":
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

/* Create-option mapping onto RabbitMQ arguments */

func queueArguments(opts options.Values) map[string]any {
	args := make(map[string]any)
	for key, value := range opts {
		switch key {
		case options.KeyMaxSizeInMegabytes:
			if mb, ok := value.(int64); ok {
				args["x-max-length-bytes"] = mb * 1024 * 1024
			}
		case options.KeyDefaultMessageTimeToLive:
			if raw, ok := value.(string); ok {
				if ms, ok := isoDurationToMillis(raw); ok && ms > 0 {
					args["x-message-ttl"] = ms
				}
			}
		default:
			// No native RabbitMQ equivalent; kept verbatim so it round-trips
			// into the entity's properties.
			args[key] = value
		}
	}
	return args
}

func topicArguments(opts options.Values) map[string]any {
	args := make(map[string]any)
	for key, value := range opts {
		args[key] = value
	}
	return args
}

func subscriptionArguments(opts options.Values) map[string]any {
	return queueArguments(opts)
}
