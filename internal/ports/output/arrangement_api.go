package output

import (
	"context"

	"arrangement/internal/domain/entities"
)

// ArrangementAPI is the remote arrangement service. All methods return the
// wire shapes; parsing into domain types is the caller's job.
type ArrangementAPI interface {
	PostEvent(ctx context.Context, body entities.EventWriteModel) (entities.NewEventViewModel, error)
	PutEvent(ctx context.Context, eventID, editToken string, body entities.EventWriteModel) (entities.EventViewModel, error)
	GetEvent(ctx context.Context, eventID string) (entities.EventViewModel, error)
	GetEvents(ctx context.Context) ([]entities.EventWithID, error)
	GetPastEvents(ctx context.Context) ([]entities.EventWithID, error)
	DeleteEvent(ctx context.Context, eventID, editToken, cancellationMessage string) error
	GetEventIDByShortname(ctx context.Context, shortname string) (string, error)

	GetParticipants(ctx context.Context, eventID, editToken string) (entities.ParticipantViewModelsWithWaitingList, error)
	GetNumberOfParticipants(ctx context.Context, eventID string) (int, error)
	GetParticipantExport(ctx context.Context, eventID, editToken string) ([]byte, error)
	GetWaitinglistSpot(ctx context.Context, eventID, email string) (int, error)
	PostParticipant(ctx context.Context, eventID, email string, body entities.ParticipantWriteModel) (entities.NewParticipantViewModel, error)
	DeleteParticipant(ctx context.Context, eventID, email, cancellationToken string) error

	GetEventsAndParticipations(ctx context.Context, employeeID int) (entities.EventsAndParticipations, error)
	GetOfficeEventsByDate(ctx context.Context, date string) ([]entities.OfficeEvent, error)
}
