package model

import "time"

// SchemaVersion is the current canonical command schema. It must be bumped
// on any field change; replay tooling refuses to reinterpret a command
// written under a newer schema.
const SchemaVersion = "v1"

// CanonicalCommand is the immutable record of one routing+decision outcome
// for one inbound message. Changing a decision means writing a new command
// with a new CCID, never editing history.
type CanonicalCommand struct {
	ReceivedAt    time.Time `json:"received_at"`
	CCID          string    `json:"cc_id"`
	UserID        string    `json:"user_id"`
	MessageID     string    `json:"message_id"`
	Intent        Intent    `json:"intent"`
	Decision      Decision  `json:"decision"`
	SchemaVersion string    `json:"schema_version"`
	Slots         Slots     `json:"slots"`
	Confidence    float64   `json:"confidence"`
}
