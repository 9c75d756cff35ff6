package domain

import (
	"context"
)

// ContactRepository is the emergency roster. Implementations must make each
// operation atomic with respect to the others.
type ContactRepository interface {
	// List returns a snapshot of the roster in insertion order
	List() []Contact

	// Add appends a contact and returns it with its assigned id
	Add(input ContactInput) Contact

	// Delete removes the first contact with the given id
	Delete(id int) bool
}

// HistoricalRepository serves the read-only historical dataset.
type HistoricalRepository interface {
	// Tail returns the last n rows in stored order, never nil
	Tail(n int) []HistoricalRecord

	// Len reports the number of loaded rows
	Len() int
}

// AuditRepository defines the interface for the optional audit log
// This follows the Dependency Inversion Principle - domain defines the interface
type AuditRepository interface {
	// SavePredictionLog persists a prediction request/result
	SavePredictionLog(ctx context.Context, req Conditions, result PredictionResult) error

	// SaveDispatchLog persists the summary of an emergency fan-out
	SaveDispatchLog(ctx context.Context, actions []string, outcome NotificationOutcome) error

	// Health checks database connectivity
	Health(ctx context.Context) error
}
