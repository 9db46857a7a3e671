package explorer

import (
	"context"
	"time"

	"github.com/busview/busview/internal/core/display"
	"github.com/busview/busview/internal/core/models"
	"github.com/busview/busview/internal/core/options"
	"github.com/busview/busview/internal/core/tree"
	"github.com/busview/busview/internal/gateway"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ListQueues replaces the queue collection with the broker's current list.
func (s *Service) ListQueues(ctx context.Context) ([]models.Queue, error) {
	start := time.Now()
	queues, err := s.gateway().ListQueues(ctx)
	s.metrics.Observe("queue.list", start, err)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to list queues")
		return nil, err
	}

	s.mu.Lock()
	s.ns.ReplaceQueues(queues)
	s.mu.Unlock()
	s.tree.Notify(tree.CollectionQueues)

	entities := make([]models.Entity, len(queues))
	for i, q := range queues {
		entities[i] = q
	}
	s.repaint(entities...)
	return queues, nil
}

// Queues returns the queue collection in store order.
func (s *Service) Queues() []models.Queue {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Queue, len(s.ns.Queues))
	copy(out, s.ns.Queues)
	return out
}

// RefreshQueue fetches one queue and replaces it in place. If the queue was
// deleted while the fetch was in flight, the stale result is dropped.
func (s *Service) RefreshQueue(ctx context.Context, name string) (models.Queue, error) {
	start := time.Now()
	refreshed, err := s.gateway().GetQueue(ctx, name)
	s.metrics.Observe("queue.refresh", start, err)
	if err != nil {
		log.Warn().Err(err).Str("queue", name).Msg("Failed to refresh queue")
		return models.Queue{}, err
	}

	s.mu.Lock()
	if _, ok := s.ns.QueueByName(name); !ok {
		s.mu.Unlock()
		log.Debug().Str("queue", name).Msg("Queue vanished during refresh, dropping result")
		return refreshed, nil
	}
	s.ns.UpsertQueue(refreshed)
	s.mu.Unlock()

	s.tree.Notify(tree.CollectionQueues)
	s.repaint(refreshed)
	return refreshed, nil
}

// CreateQueue validates the name and options, then creates the queue and
// appends it locally. No display state is created until the queue is viewed.
func (s *Service) CreateQueue(ctx context.Context, name string, rawOpts map[string]string) (models.Queue, error) {
	if err := s.validateName(models.KindQueue, "", "", name); err != nil {
		return models.Queue{}, err
	}
	opts, err := options.ForQueue().Build(rawOpts)
	if err != nil {
		return models.Queue{}, wrapValidation(err)
	}

	start := time.Now()
	created, err := s.gateway().CreateQueue(ctx, name, opts)
	s.metrics.Observe("queue.create", start, err)
	if err != nil {
		log.Warn().Err(err).Str("queue", name).Msg("Failed to create queue")
		return models.Queue{}, err
	}

	s.mu.Lock()
	s.ns.UpsertQueue(created)
	s.mu.Unlock()
	s.tree.Notify(tree.CollectionQueues)
	log.Info().Str("queue", created.Name).Msg("Queue created")
	return created, nil
}

// DeleteQueue deletes the queue, removes it locally, and closes the detail
// view if it was showing this queue.
func (s *Service) DeleteQueue(ctx context.Context, name string) error {
	start := time.Now()
	err := s.gateway().DeleteQueue(ctx, name)
	s.metrics.Observe("queue.delete", start, err)
	if err != nil {
		log.Warn().Err(err).Str("queue", name).Msg("Failed to delete queue")
		return err
	}

	s.mu.Lock()
	s.ns.RemoveQueue(name)
	s.mu.Unlock()
	s.tree.Notify(tree.CollectionQueues)
	s.evictAndClose(models.Queue{Name: name})
	log.Info().Str("queue", name).Msg("Queue deleted")
	return nil
}

// ViewQueue activates the queue's display state and pushes it to the view.
func (s *Service) ViewQueue(name string) (*display.State, error) {
	s.mu.Lock()
	q, ok := s.ns.QueueByName(name)
	s.mu.Unlock()
	if !ok {
		return nil, notLoaded(models.KindQueue, name)
	}
	return s.show(q), nil
}

// SendToQueue sends one message. Local state is untouched.
func (s *Service) SendToQueue(ctx context.Context, name string, req models.SendMessageRequest) error {
	msg := newMessage(req)
	start := time.Now()
	err := s.gateway().SendToQueue(ctx, name, msg)
	s.metrics.Observe("queue.send", start, err)
	if err != nil {
		log.Warn().Err(err).Str("queue", name).Msg("Failed to send message")
		return err
	}
	log.Info().Str("queue", name).Str("id", msg.ID).Msg("Message sent")
	return nil
}

// PeekQueue peeks up to count messages (everything available when count is
// not positive) from the queue or its dead-letter sub-queue, and records
// them against the queue's display state if one exists.
func (s *Service) PeekQueue(ctx context.Context, name string, count int, kind display.MessageKind) ([]models.Message, error) {
	effective := gateway.EffectivePeekCount(count)
	start := time.Now()
	var msgs []models.Message
	var err error
	if kind == display.DeadLetter {
		msgs, err = s.gateway().PeekQueueDeadLetter(ctx, name, effective)
	} else {
		msgs, err = s.gateway().PeekQueue(ctx, name, effective)
	}
	s.metrics.Observe("queue.peek", start, err)
	if err != nil {
		log.Warn().Err(err).Str("queue", name).Msg("Failed to peek queue")
		return nil, err
	}
	s.metrics.ObservePeeked(string(kind), len(msgs))

	s.mu.Lock()
	s.display.RecordMessages(models.Queue{Name: name}, kind, msgs)
	s.mu.Unlock()
	s.pushIfActive(models.Queue{Name: name})
	return msgs, nil
}

// PurgeQueue drains the queue or its dead-letter sub-queue and returns how
// many messages were removed.
func (s *Service) PurgeQueue(ctx context.Context, name string, kind display.MessageKind) (int, error) {
	start := time.Now()
	var purged int
	var err error
	if kind == display.DeadLetter {
		purged, err = s.gateway().PurgeQueueDeadLetter(ctx, name)
	} else {
		purged, err = s.gateway().PurgeQueue(ctx, name)
	}
	s.metrics.Observe("queue.purge", start, err)
	if err != nil {
		log.Warn().Err(err).Str("queue", name).Msg("Failed to purge queue")
		return 0, err
	}
	log.Info().Str("queue", name).Int("purged", purged).Msg("Queue purged")
	return purged, nil
}

func newMessage(req models.SendMessageRequest) models.Message {
	return models.Message{
		ID:             uuid.NewString(),
		Body:           []byte(req.Body),
		UserProperties: req.UserProperties,
		EnqueuedAt:     time.Now(),
	}
}
