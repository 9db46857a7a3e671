package display

import (
	"time"

	"github.com/busview/busview/internal/core/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MessageKind selects which peeked message list a record lands in.
type MessageKind string

const (
	Normal     MessageKind = "normal"
	DeadLetter MessageKind = "dead-letter"
)

// State is the cached view-model for one entity's detail presentation.
// Entity snapshots are replaced on every refresh; peeked messages and UI
// field echoes persist until the owning entity is deleted.
type State struct {
	ID     string        `json:"id"`
	Entity models.Entity `json:"entity"`

	Messages           []models.Message `json:"messages"`
	DeadLetterMessages []models.Message `json:"dead_letter_messages"`
	PeekedAt           time.Time        `json:"peeked_at"`
	DeadLetterPeekedAt time.Time        `json:"dead_letter_peeked_at"`

	// Free-form values echoed back from the detail view, never validated
	UIFields map[string]string `json:"ui_fields"`

	Active bool `json:"active"`
}

// Cache holds one display state per entity identity. States accumulate for
// the session; eviction happens only when the owning entity is deleted.
// At most one state is active at a time.
type Cache struct {
	states []*State
}

func NewCache() *Cache {
	return &Cache{}
}

// GetOrCreate returns the state for the entity's identity, creating it with
// empty message lists on first view. The previous active state, if any, is
// deactivated and the returned state becomes active. The entity snapshot is
// always replaced with the one passed in; messages and UI fields are kept.
func (c *Cache) GetOrCreate(entity models.Entity) *State {
	for _, s := range c.states {
		s.Active = false
	}
	state := c.stateFor(entity)
	if state == nil {
		state = &State{
			ID:       uuid.NewString(),
			Messages: []models.Message{},
			UIFields: make(map[string]string),
		}
		c.states = append(c.states, state)
		log.Debug().Str("path", entity.Path()).Str("state_id", state.ID).Msg("Created display state")
	}
	state.Entity = entity
	state.Active = true
	return state
}

// RecordMessages stores a peeked message list and stamps the peek time.
// Peeking an entity that was never viewed has no state to update; that is
// logged and ignored rather than creating one.
func (c *Cache) RecordMessages(entity models.Entity, kind MessageKind, messages []models.Message) {
	state := c.stateFor(entity)
	if state == nil {
		log.Debug().Str("path", entity.Path()).Str("kind", string(kind)).Msg("No display state for peeked entity, dropping messages")
		return
	}
	now := time.Now()
	switch kind {
	case DeadLetter:
		state.DeadLetterMessages = messages
		state.DeadLetterPeekedAt = now
	default:
		state.Messages = messages
		state.PeekedAt = now
	}
}

// SetUIFields stores view field echoes verbatim against a live state.
// Returns false if the state id is unknown.
func (c *Cache) SetUIFields(stateID string, fields map[string]string) bool {
	state := c.ByID(stateID)
	if state == nil {
		return false
	}
	for k, v := range fields {
		state.UIFields[k] = v
	}
	return true
}

// ByID looks a state up by its id. Inbound view messages are addressed by
// state id and are rejected when no live state matches.
func (c *Cache) ByID(stateID string) *State {
	for _, s := range c.states {
		if s.ID == stateID {
			return s
		}
	}
	return nil
}

// ActiveState returns the single active state, or nil.
func (c *Cache) ActiveState() *State {
	for _, s := range c.states {
		if s.Active {
			return s
		}
	}
	return nil
}

// Refresh applies a refreshed entity snapshot. If the active state's
// identity matches, the snapshot is replaced in place (messages and UI
// fields untouched) and the state is returned so the caller can repaint.
// Otherwise nothing is touched and nil is returned.
func (c *Cache) Refresh(entity models.Entity) *State {
	active := c.ActiveState()
	if active == nil || !models.SamePath(active.Entity, entity) {
		return nil
	}
	active.Entity = entity
	return active
}

// EvictFor removes the state for the entity's identity. Used only on entity
// deletion; returns the removed state if it was the active one, so the
// caller can close the open view.
func (c *Cache) EvictFor(entity models.Entity) (closed *State) {
	for i, s := range c.states {
		if models.SamePath(s.Entity, entity) {
			c.states = append(c.states[:i], c.states[i+1:]...)
			if s.Active {
				return s
			}
			return nil
		}
	}
	return nil
}

// Len reports the number of cached states.
func (c *Cache) Len() int {
	return len(c.states)
}

func (c *Cache) stateFor(entity models.Entity) *State {
	for _, s := range c.states {
		if models.SamePath(s.Entity, entity) {
			return s
		}
	}
	return nil
}
