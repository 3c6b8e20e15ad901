package history

import "github.com/google/uuid"

// NewTaskID returns a time-sortable UUIDv7 task identifier.
// Panics if UUID generation fails (should never happen in practice).
func NewTaskID() string {
	return uuid.Must(uuid.NewV7()).String()
}
