package output

import (
	"context"

	"arrangement/internal/domain/entities"
)

// Announcer publishes a newly created or changed event to a chat channel.
type Announcer interface {
	Announce(ctx context.Context, eventID string, event entities.Event) error
}
