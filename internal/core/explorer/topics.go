package explorer

import (
	"context"
	"sync"
	"time"

	"github.com/busview/busview/internal/core/display"
	"github.com/busview/busview/internal/core/models"
	"github.com/busview/busview/internal/core/options"
	"github.com/busview/busview/internal/core/tree"
	"github.com/rs/zerolog/log"
)

// ListTopics replaces the topic collection, then fans out one listing per
// topic to load its subscriptions (and, transitively, their rules). The
// per-topic listings run as independent concurrent tasks; each lands in the
// store and notifies on its own, so intermediate partial renders are
// expected. Child listing failures surface per topic and do not fail the
// parent operation.
func (s *Service) ListTopics(ctx context.Context) ([]models.Topic, error) {
	start := time.Now()
	topics, err := s.gateway().ListTopics(ctx)
	s.metrics.Observe("topic.list", start, err)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to list topics")
		return nil, err
	}

	s.mu.Lock()
	s.ns.ReplaceTopics(topics)
	s.mu.Unlock()
	s.tree.Notify(tree.CollectionTopics)

	entities := make([]models.Entity, len(topics))
	for i, t := range topics {
		entities[i] = t
	}
	s.repaint(entities...)

	var wg sync.WaitGroup
	for _, t := range topics {
		wg.Add(1)
		go func(topicName string) {
			defer wg.Done()
			if _, err := s.ListSubscriptions(ctx, topicName); err != nil {
				log.Warn().Err(err).Str("topic", topicName).Msg("Failed to load subscriptions")
			}
		}(t.Name)
	}
	wg.Wait()
	return topics, nil
}

// Topics returns the topic collection in store order.
func (s *Service) Topics() []models.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Topic, len(s.ns.Topics))
	copy(out, s.ns.Topics)
	return out
}

// RefreshTopic fetches one topic, replaces it in place, and reloads its
// subscriptions. A topic deleted while the fetch was in flight is dropped.
func (s *Service) RefreshTopic(ctx context.Context, name string) (models.Topic, error) {
	start := time.Now()
	refreshed, err := s.gateway().GetTopic(ctx, name)
	s.metrics.Observe("topic.refresh", start, err)
	if err != nil {
		log.Warn().Err(err).Str("topic", name).Msg("Failed to refresh topic")
		return models.Topic{}, err
	}

	s.mu.Lock()
	if _, ok := s.ns.TopicByName(name); !ok {
		s.mu.Unlock()
		log.Debug().Str("topic", name).Msg("Topic vanished during refresh, dropping result")
		return refreshed, nil
	}
	s.ns.UpsertTopic(refreshed)
	s.mu.Unlock()

	s.tree.Notify(tree.CollectionTopics)
	s.repaint(refreshed)

	if _, err := s.ListSubscriptions(ctx, name); err != nil {
		log.Warn().Err(err).Str("topic", name).Msg("Failed to reload subscriptions")
	}
	return refreshed, nil
}

// CreateTopic validates the name and options, then creates the topic and
// appends it locally.
func (s *Service) CreateTopic(ctx context.Context, name string, rawOpts map[string]string) (models.Topic, error) {
	if err := s.validateName(models.KindTopic, "", "", name); err != nil {
		return models.Topic{}, err
	}
	opts, err := options.ForTopic().Build(rawOpts)
	if err != nil {
		return models.Topic{}, wrapValidation(err)
	}

	start := time.Now()
	created, err := s.gateway().CreateTopic(ctx, name, opts)
	s.metrics.Observe("topic.create", start, err)
	if err != nil {
		log.Warn().Err(err).Str("topic", name).Msg("Failed to create topic")
		return models.Topic{}, err
	}

	s.mu.Lock()
	s.ns.UpsertTopic(created)
	s.mu.Unlock()
	s.tree.Notify(tree.CollectionTopics)
	log.Info().Str("topic", created.Name).Msg("Topic created")
	return created, nil
}

// DeleteTopic deletes the topic, cascade-removes its subscriptions and
// rules locally, and closes the detail view if it was showing the topic.
func (s *Service) DeleteTopic(ctx context.Context, name string) error {
	start := time.Now()
	err := s.gateway().DeleteTopic(ctx, name)
	s.metrics.Observe("topic.delete", start, err)
	if err != nil {
		log.Warn().Err(err).Str("topic", name).Msg("Failed to delete topic")
		return err
	}

	s.mu.Lock()
	subs := s.ns.SubscriptionsOf(name)
	s.ns.RemoveTopic(name)
	s.mu.Unlock()
	s.tree.Notify(tree.CollectionTopics)

	s.evictAndClose(models.Topic{Name: name})
	// Cascaded subscriptions lose their display states too: the parent is
	// gone, so a view left open on one of them would show orphaned data.
	for _, sub := range subs {
		s.evictAndClose(sub)
	}
	log.Info().Str("topic", name).Msg("Topic deleted")
	return nil
}

// ViewTopic activates the topic's display state and pushes it to the view.
func (s *Service) ViewTopic(name string) (*display.State, error) {
	s.mu.Lock()
	t, ok := s.ns.TopicByName(name)
	s.mu.Unlock()
	if !ok {
		return nil, notLoaded(models.KindTopic, name)
	}
	return s.show(t), nil
}

// SendToTopic sends one message to the topic. Local state is untouched.
func (s *Service) SendToTopic(ctx context.Context, name string, req models.SendMessageRequest) error {
	msg := newMessage(req)
	start := time.Now()
	err := s.gateway().SendToTopic(ctx, name, msg)
	s.metrics.Observe("topic.send", start, err)
	if err != nil {
		log.Warn().Err(err).Str("topic", name).Msg("Failed to send message")
		return err
	}
	log.Info().Str("topic", name).Str("id", msg.ID).Msg("Message sent")
	return nil
}
