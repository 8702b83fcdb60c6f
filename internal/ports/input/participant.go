package input

import (
	"context"

	"arrangement/internal/domain/entities"
)

type ParticipantUseCase interface {
	Register(ctx context.Context, locale, eventID string, edit entities.EditParticipant) (string, error)
	Cancel(ctx context.Context, eventID, email, cancellationToken string) error
	Participants(ctx context.Context, eventID string) (entities.ParticipantsWithWaitingList, error)
	Export(ctx context.Context, eventID string) ([]byte, error)
	Status(ctx context.Context, eventID, email string) (entities.ViewerStatus, error)
}
