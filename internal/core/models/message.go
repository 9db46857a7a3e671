package models

import "time"

// Message is the ephemeral payload produced by send and peek operations.
// Messages are never held in the entity store; they live only inside a
// display state.
type Message struct {
	ID   string `json:"id"`
	Body []byte `json:"body"`

	// User-defined application properties, stored verbatim
	UserProperties map[string]string `json:"user_properties,omitempty"`

	// Broker-assigned metadata
	EnqueuedAt time.Time `json:"enqueued_at"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
}
