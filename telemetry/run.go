package telemetry

import "github.com/google/uuid"

// NewRunID returns a fresh identifier stamped on every output record of a run.
func NewRunID() string {
	return uuid.NewString()
}
