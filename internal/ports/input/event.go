package input

import (
	"context"

	"arrangement/internal/domain/entities"
)

type EventUseCase interface {
	CreateEvent(ctx context.Context, edit entities.EditEvent) (string, error)
	UpdateEvent(ctx context.Context, eventID string, edit entities.EditEvent) (entities.Event, error)
	CancelEvent(ctx context.Context, eventID, message string) error
	GetEvent(ctx context.Context, eventID string) (entities.Event, error)
	ResolveEvent(ctx context.Context, idOrShortname string) (string, entities.Event, error)
	RepeatEvent(ctx context.Context, eventID string, intervalWeeks, count int) ([]string, error)
	CanEdit(ctx context.Context, eventID string) bool

	Draft(ctx context.Context, key string) (entities.EditEvent, error)
	SaveDraft(ctx context.Context, key string, edit entities.EditEvent) error
	ClearDraft(ctx context.Context, key string) error
	ApplySchedule(ctx context.Context, key string, action entities.ScheduleAction, value string) (entities.EditEvent, error)
	SubmitDraft(ctx context.Context, key string) (string, error)
}
