package explorer

import (
	"context"
	"time"

	"github.com/busview/busview/internal/core/display"
	"github.com/busview/busview/internal/core/models"
	"github.com/busview/busview/internal/core/options"
	"github.com/busview/busview/internal/core/tree"
	"github.com/rs/zerolog/log"
)

// ListRules replaces the subscription's rule set. The result is dropped if
// the parent subscription vanished while the listing was in flight.
func (s *Service) ListRules(ctx context.Context, topic, subscription string) ([]models.Rule, error) {
	start := time.Now()
	rules, err := s.gateway().ListRules(ctx, topic, subscription)
	s.metrics.Observe("rule.list", start, err)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Str("subscription", subscription).Msg("Failed to list rules")
		return nil, err
	}

	s.mu.Lock()
	if _, ok := s.ns.SubscriptionByKey(topic, subscription); !ok {
		s.mu.Unlock()
		log.Debug().Str("topic", topic).Str("subscription", subscription).Msg("Subscription vanished during rule listing, dropping result")
		return rules, nil
	}
	s.ns.ReplaceRules(topic, subscription, rules)
	s.mu.Unlock()
	s.tree.Notify(tree.CollectionRules)

	entities := make([]models.Entity, len(rules))
	for i, r := range rules {
		entities[i] = r
	}
	s.repaint(entities...)
	return rules, nil
}

// Rules returns the subscription's rules in store order.
func (s *Service) Rules(topic, subscription string) []models.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ns.RulesOf(topic, subscription)
}

// RefreshRule fetches one rule and replaces it in place. The result is
// dropped if the rule vanished while the fetch ran.
func (s *Service) RefreshRule(ctx context.Context, topic, subscription, name string) (models.Rule, error) {
	start := time.Now()
	refreshed, err := s.gateway().GetRule(ctx, topic, subscription, name)
	s.metrics.Observe("rule.refresh", start, err)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Str("subscription", subscription).Str("rule", name).Msg("Failed to refresh rule")
		return models.Rule{}, err
	}

	s.mu.Lock()
	if _, ok := s.ns.RuleByKey(topic, subscription, name); !ok {
		s.mu.Unlock()
		log.Debug().Str("topic", topic).Str("subscription", subscription).Str("rule", name).Msg("Rule vanished during refresh, dropping result")
		return refreshed, nil
	}
	s.ns.UpsertRule(refreshed)
	s.mu.Unlock()

	s.tree.Notify(tree.CollectionRules)
	s.repaint(refreshed)
	return refreshed, nil
}

// CreateRule validates the name against the subscription's existing rules,
// creates it, and appends it locally. The parent subscription is re-checked
// after the gateway call returns.
func (s *Service) CreateRule(ctx context.Context, topic, subscription, name string, rawOpts map[string]string) (models.Rule, error) {
	s.mu.Lock()
	_, ok := s.ns.SubscriptionByKey(topic, subscription)
	s.mu.Unlock()
	if !ok {
		return models.Rule{}, notLoaded(models.KindSubscription, subscription)
	}
	if err := s.validateName(models.KindRule, topic, subscription, name); err != nil {
		return models.Rule{}, err
	}
	opts, err := options.ForRule().Build(rawOpts)
	if err != nil {
		return models.Rule{}, wrapValidation(err)
	}

	start := time.Now()
	created, err := s.gateway().CreateRule(ctx, topic, subscription, name, opts)
	s.metrics.Observe("rule.create", start, err)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Str("subscription", subscription).Str("rule", name).Msg("Failed to create rule")
		return models.Rule{}, err
	}

	s.mu.Lock()
	if _, ok := s.ns.SubscriptionByKey(topic, subscription); ok {
		s.ns.UpsertRule(created)
	} else {
		log.Debug().Str("topic", topic).Str("subscription", subscription).Str("rule", name).Msg("Subscription vanished during rule creation, dropping result")
	}
	s.mu.Unlock()
	s.tree.Notify(tree.CollectionRules)
	log.Info().Str("topic", topic).Str("subscription", subscription).Str("rule", created.Name).Msg("Rule created")
	return created, nil
}

// DeleteRule deletes the rule, removes it locally, and closes the detail
// view if it was showing the rule. Removing an already-absent rule locally
// is a no-op, so delete races resolve cleanly.
func (s *Service) DeleteRule(ctx context.Context, topic, subscription, name string) error {
	start := time.Now()
	err := s.gateway().DeleteRule(ctx, topic, subscription, name)
	s.metrics.Observe("rule.delete", start, err)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Str("subscription", subscription).Str("rule", name).Msg("Failed to delete rule")
		return err
	}

	s.mu.Lock()
	s.ns.RemoveRule(topic, subscription, name)
	s.mu.Unlock()
	s.tree.Notify(tree.CollectionRules)
	s.evictAndClose(models.Rule{TopicName: topic, SubscriptionName: subscription, Name: name})
	log.Info().Str("topic", topic).Str("subscription", subscription).Str("rule", name).Msg("Rule deleted")
	return nil
}

// ViewRule activates the rule's display state and pushes it to the view.
func (s *Service) ViewRule(topic, subscription, name string) (*display.State, error) {
	s.mu.Lock()
	r, ok := s.ns.RuleByKey(topic, subscription, name)
	s.mu.Unlock()
	if !ok {
		return nil, notLoaded(models.KindRule, name)
	}
	return s.show(r), nil
}
