package explorer

import (
	"context"
	"fmt"

	"github.com/busview/busview/internal/core/display"
	"github.com/busview/busview/internal/core/models"
	"github.com/rs/zerolog/log"
)

// Inbound detail-view messages are addressed by display-state id. A message
// carrying an id with no live state (the state was evicted, or the id is
// garbage) is logged and ignored rather than failing the caller.

// HandleSetUI stores free-form view field echoes against a live state.
func (s *Service) HandleSetUI(stateID string, fields map[string]string) error {
	s.mu.Lock()
	ok := s.display.SetUIFields(stateID, fields)
	s.mu.Unlock()
	if !ok {
		log.Debug().Str("state_id", stateID).Msg("Ignoring UI update for unknown display state")
		return fmt.Errorf("%w: %s", ErrUnknownState, stateID)
	}
	return nil
}

// HandleSendMessage sends a message to the entity a display state is showing.
// Queues receive directly; subscriptions route through their parent topic,
// since a subscription is fed only by its topic.
func (s *Service) HandleSendMessage(ctx context.Context, stateID string, req models.SendMessageRequest) error {
	entity, err := s.stateEntity(stateID)
	if err != nil {
		return err
	}
	switch e := entity.(type) {
	case models.Queue:
		return s.SendToQueue(ctx, e.Name, req)
	case models.Topic:
		return s.SendToTopic(ctx, e.Name, req)
	case models.Subscription:
		return s.SendToTopic(ctx, e.TopicName, req)
	default:
		return fmt.Errorf("cannot send to a %s", entity.EntityKind())
	}
}

// HandlePeek peeks the entity a display state is showing and records the
// messages against that state.
func (s *Service) HandlePeek(ctx context.Context, stateID string, count int) ([]models.Message, error) {
	return s.handlePeek(ctx, stateID, count, display.Normal)
}

// HandlePeekDeadLetter peeks the entity's dead-letter sub-queue.
func (s *Service) HandlePeekDeadLetter(ctx context.Context, stateID string, count int) ([]models.Message, error) {
	return s.handlePeek(ctx, stateID, count, display.DeadLetter)
}

func (s *Service) handlePeek(ctx context.Context, stateID string, count int, kind display.MessageKind) ([]models.Message, error) {
	entity, err := s.stateEntity(stateID)
	if err != nil {
		return nil, err
	}
	switch e := entity.(type) {
	case models.Queue:
		return s.PeekQueue(ctx, e.Name, count, kind)
	case models.Subscription:
		return s.PeekSubscription(ctx, e.TopicName, e.Name, count, kind)
	default:
		return nil, fmt.Errorf("cannot peek a %s", entity.EntityKind())
	}
}

// ViewState resolves a display state by id for read-only presentation.
func (s *Service) ViewState(stateID string) (*display.State, error) {
	s.mu.Lock()
	state := s.display.ByID(stateID)
	s.mu.Unlock()
	if state == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownState, stateID)
	}
	return state, nil
}

func (s *Service) stateEntity(stateID string) (models.Entity, error) {
	s.mu.Lock()
	state := s.display.ByID(stateID)
	s.mu.Unlock()
	if state == nil {
		log.Debug().Str("state_id", stateID).Msg("Ignoring view message for unknown display state")
		return nil, fmt.Errorf("%w: %s", ErrUnknownState, stateID)
	}
	return state.Entity, nil
}
