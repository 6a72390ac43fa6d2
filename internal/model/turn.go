package model

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a turn authored by the connected client.
	RoleUser Role = "user"

	// RoleModel marks a turn authored by the generative backend.
	RoleModel Role = "model"
)

// Turn is a single utterance in a conversation. Its position in the
// conversation is implicit in append order; turns are never reordered,
// mutated, or deleted once appended.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
