package models

type SendMessageRequest struct {
	Body           string            `json:"body"`
	UserProperties map[string]string `json:"user_properties,omitempty"`
}

type PeekRequest struct {
	// Count <= 0 means "everything currently available"
	Count int `json:"count"`
}

type CreateEntityRequest struct {
	Name string `json:"name"`

	// Raw option values as entered; validated and coerced by the
	// create-options tables before any gateway call is made.
	Options map[string]string `json:"options,omitempty"`
}

type SetUIRequest struct {
	Fields map[string]string `json:"fields"`
}

type ChangeConnectionRequest struct {
	ConnectionString string `json:"connection_string"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
