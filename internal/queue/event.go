// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Operations carried by RowChanged.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// RowChanged is published after a create, update or delete has been
// committed. Fields holds the bound column values; Key is the primary key
// from the URL or, for creates, the generated key when the driver reported one.
type RowChanged struct {
	ID         string         `json:"id"`
	Entity     string         `json:"entity"`
	Operation  string         `json:"operation"`
	Key        string         `json:"key,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
	Affected   int64          `json:"affected"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewRowChanged stamps a new event with a random id and the current UTC time.
func NewRowChanged(entity, op, key string, fields map[string]any, affected int64) RowChanged {
	return RowChanged{
		ID:         uuid.NewString(),
		Entity:     entity,
		Operation:  op,
		Key:        key,
		Fields:     fields,
		Affected:   affected,
		OccurredAt: time.Now().UTC(),
	}
}
