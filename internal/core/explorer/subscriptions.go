package explorer

import (
	"context"
	"sync"
	"time"

	"github.com/busview/busview/internal/core/display"
	"github.com/busview/busview/internal/core/models"
	"github.com/busview/busview/internal/core/options"
	"github.com/busview/busview/internal/core/tree"
	"github.com/busview/busview/internal/gateway"
	"github.com/rs/zerolog/log"
)

// ListSubscriptions replaces the topic's subscription set and fans out one
// rule listing per subscription. If the topic was removed from the store
// while the listing was in flight, the result is dropped: splicing it back
// would resurrect children of a vanished parent.
func (s *Service) ListSubscriptions(ctx context.Context, topic string) ([]models.Subscription, error) {
	start := time.Now()
	subs, err := s.gateway().ListSubscriptions(ctx, topic)
	s.metrics.Observe("subscription.list", start, err)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("Failed to list subscriptions")
		return nil, err
	}

	s.mu.Lock()
	if _, ok := s.ns.TopicByName(topic); !ok {
		s.mu.Unlock()
		log.Debug().Str("topic", topic).Msg("Topic vanished during subscription listing, dropping result")
		return subs, nil
	}
	s.ns.ReplaceSubscriptions(topic, subs)
	s.mu.Unlock()
	s.tree.Notify(tree.CollectionSubscriptions)

	entities := make([]models.Entity, len(subs))
	for i, sub := range subs {
		entities[i] = sub
	}
	s.repaint(entities...)

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(subName string) {
			defer wg.Done()
			if _, err := s.ListRules(ctx, topic, subName); err != nil {
				log.Warn().Err(err).Str("topic", topic).Str("subscription", subName).Msg("Failed to load rules")
			}
		}(sub.Name)
	}
	wg.Wait()
	return subs, nil
}

// Subscriptions returns the topic's subscriptions in store order.
func (s *Service) Subscriptions(topic string) []models.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ns.SubscriptionsOf(topic)
}

// RefreshSubscription fetches one subscription and replaces it in place. The
// result is dropped if the subscription vanished while the fetch ran.
func (s *Service) RefreshSubscription(ctx context.Context, topic, name string) (models.Subscription, error) {
	start := time.Now()
	refreshed, err := s.gateway().GetSubscription(ctx, topic, name)
	s.metrics.Observe("subscription.refresh", start, err)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Str("subscription", name).Msg("Failed to refresh subscription")
		return models.Subscription{}, err
	}

	s.mu.Lock()
	if _, ok := s.ns.SubscriptionByKey(topic, name); !ok {
		s.mu.Unlock()
		log.Debug().Str("topic", topic).Str("subscription", name).Msg("Subscription vanished during refresh, dropping result")
		return refreshed, nil
	}
	s.ns.UpsertSubscription(refreshed)
	s.mu.Unlock()

	s.tree.Notify(tree.CollectionSubscriptions)
	s.repaint(refreshed)
	return refreshed, nil
}

// CreateSubscription validates the name against the topic's existing
// subscriptions, creates it, and appends it locally. The parent topic is
// re-checked after the gateway call returns; creation under a topic deleted
// meanwhile leaves the local store untouched.
func (s *Service) CreateSubscription(ctx context.Context, topic, name string, rawOpts map[string]string) (models.Subscription, error) {
	s.mu.Lock()
	_, ok := s.ns.TopicByName(topic)
	s.mu.Unlock()
	if !ok {
		return models.Subscription{}, notLoaded(models.KindTopic, topic)
	}
	if err := s.validateName(models.KindSubscription, topic, "", name); err != nil {
		return models.Subscription{}, err
	}
	opts, err := options.ForSubscription().Build(rawOpts)
	if err != nil {
		return models.Subscription{}, wrapValidation(err)
	}

	start := time.Now()
	created, err := s.gateway().CreateSubscription(ctx, topic, name, opts)
	s.metrics.Observe("subscription.create", start, err)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Str("subscription", name).Msg("Failed to create subscription")
		return models.Subscription{}, err
	}

	s.mu.Lock()
	if _, ok := s.ns.TopicByName(topic); ok {
		s.ns.UpsertSubscription(created)
	} else {
		log.Debug().Str("topic", topic).Str("subscription", name).Msg("Topic vanished during subscription creation, dropping result")
	}
	s.mu.Unlock()
	s.tree.Notify(tree.CollectionSubscriptions)
	log.Info().Str("topic", topic).Str("subscription", created.Name).Msg("Subscription created")
	return created, nil
}

// DeleteSubscription deletes the subscription, cascade-removes its rules
// locally, and closes the detail view if it was showing the subscription.
func (s *Service) DeleteSubscription(ctx context.Context, topic, name string) error {
	start := time.Now()
	err := s.gateway().DeleteSubscription(ctx, topic, name)
	s.metrics.Observe("subscription.delete", start, err)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Str("subscription", name).Msg("Failed to delete subscription")
		return err
	}

	s.mu.Lock()
	s.ns.RemoveSubscription(topic, name)
	s.mu.Unlock()
	s.tree.Notify(tree.CollectionSubscriptions)
	s.evictAndClose(models.Subscription{TopicName: topic, Name: name})
	log.Info().Str("topic", topic).Str("subscription", name).Msg("Subscription deleted")
	return nil
}

// ViewSubscription activates the subscription's display state and pushes it.
func (s *Service) ViewSubscription(topic, name string) (*display.State, error) {
	s.mu.Lock()
	sub, ok := s.ns.SubscriptionByKey(topic, name)
	s.mu.Unlock()
	if !ok {
		return nil, notLoaded(models.KindSubscription, name)
	}
	return s.show(sub), nil
}

// PeekSubscription peeks up to count messages from the subscription or its
// dead-letter sub-queue. The dead-letter path is composed from the topic and
// subscription names explicitly.
func (s *Service) PeekSubscription(ctx context.Context, topic, name string, count int, kind display.MessageKind) ([]models.Message, error) {
	effective := gateway.EffectivePeekCount(count)
	start := time.Now()
	var msgs []models.Message
	var err error
	if kind == display.DeadLetter {
		msgs, err = s.gateway().PeekSubscriptionDeadLetter(ctx, topic, name, effective)
	} else {
		msgs, err = s.gateway().PeekSubscription(ctx, topic, name, effective)
	}
	s.metrics.Observe("subscription.peek", start, err)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Str("subscription", name).Msg("Failed to peek subscription")
		return nil, err
	}
	s.metrics.ObservePeeked(string(kind), len(msgs))

	s.mu.Lock()
	s.display.RecordMessages(models.Subscription{TopicName: topic, Name: name}, kind, msgs)
	s.mu.Unlock()
	s.pushIfActive(models.Subscription{TopicName: topic, Name: name})
	return msgs, nil
}

// PurgeSubscription drains the subscription or its dead-letter sub-queue and
// returns how many messages were removed.
func (s *Service) PurgeSubscription(ctx context.Context, topic, name string, kind display.MessageKind) (int, error) {
	start := time.Now()
	var purged int
	var err error
	if kind == display.DeadLetter {
		purged, err = s.gateway().PurgeSubscriptionDeadLetter(ctx, topic, name)
	} else {
		purged, err = s.gateway().PurgeSubscription(ctx, topic, name)
	}
	s.metrics.Observe("subscription.purge", start, err)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Str("subscription", name).Msg("Failed to purge subscription")
		return 0, err
	}
	log.Info().Str("topic", topic).Str("subscription", name).Int("purged", purged).Msg("Subscription purged")
	return purged, nil
}
