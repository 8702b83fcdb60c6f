package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/teambition/rrule-go"

	"arrangement/internal/domain"
	"arrangement/internal/domain/entities"
	"arrangement/internal/ports/output"
)

// CreateDraftKey is the session key of the draft for a new event.
const CreateDraftKey = "createEvent"

type EventService struct {
	api       output.ArrangementAPI
	tokens    *TokenService
	drafts    output.KeyValueStore
	queries   *Queries
	announcer output.Announcer
	routes    entities.Routes
	now       func() time.Time
	log       *zerolog.Logger
}

func NewEventService(
	api output.ArrangementAPI,
	tokens *TokenService,
	drafts output.KeyValueStore,
	queries *Queries,
	announcer output.Announcer,
	routes entities.Routes,
	log *zerolog.Logger,
) *EventService {
	return &EventService{
		api:       api,
		tokens:    tokens,
		drafts:    drafts,
		queries:   queries,
		announcer: announcer,
		routes:    routes,
		now:       time.Now,
		log:       log,
	}
}

// CreateEvent validates the form, posts it and saves the returned edit
// token. Validation failures are returned as validation.Errors before any
// request is made.
func (s *EventService) CreateEvent(ctx context.Context, edit entities.EditEvent) (string, error) {
	event, err := entities.ParseEditEvent(edit).Unwrap()
	if err != nil {
		return "", err
	}
	return s.post(ctx, event)
}

func (s *EventService) post(ctx context.Context, event entities.Event) (string, error) {
	created, err := s.api.PostEvent(ctx, entities.ToEventWriteModel(event, s.routes))
	if err != nil {
		return "", fmt.Errorf("post event: %w", err)
	}
	id := created.Event.ID
	if err := s.tokens.SaveEditableEvent(ctx, entities.EditEventToken{EventID: id, EditToken: created.EditToken}); err != nil {
		return id, err
	}
	s.log.Info().Str("event_id", id).Str("title", event.Title).Msg("event created")

	if s.announcer != nil {
		if err := s.announcer.Announce(ctx, id, event); err != nil {
			s.log.Warn().Err(err).Str("event_id", id).Msg("announce event")
		}
	}
	return id, nil
}

// CanEdit reports whether the viewer holds an edit token or is admin.
func (s *EventService) CanEdit(ctx context.Context, eventID string) bool {
	_, err := s.tokens.RequireEditToken(ctx, eventID)
	return err == nil
}

func (s *EventService) UpdateEvent(ctx context.Context, eventID string, edit entities.EditEvent) (entities.Event, error) {
	event, err := entities.ParseEditEvent(edit).Unwrap()
	if err != nil {
		return entities.Event{}, err
	}
	tok, err := s.tokens.RequireEditToken(ctx, eventID)
	if err != nil {
		return entities.Event{}, err
	}
	vm, err := s.api.PutEvent(ctx, eventID, tok, entities.ToEventWriteModel(event, s.routes))
	if err != nil {
		return entities.Event{}, fmt.Errorf("put event: %w", err)
	}
	updated, err := entities.ParseEventViewModel(vm)
	if err != nil {
		return entities.Event{}, err
	}
	s.queries.ForgetEvent(eventID)
	s.log.Info().Str("event_id", eventID).Msg("event updated")
	return updated, nil
}

// CancelEvent cancels the event and notifies participants with message.
func (s *EventService) CancelEvent(ctx context.Context, eventID, message string) error {
	tok, err := s.tokens.RequireEditToken(ctx, eventID)
	if err != nil {
		return err
	}
	if err := s.api.DeleteEvent(ctx, eventID, tok, message); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.queries.ForgetEvent(eventID)
	s.log.Info().Str("event_id", eventID).Msg("event cancelled")
	return nil
}

func (s *EventService) GetEvent(ctx context.Context, eventID string) (entities.Event, error) {
	return s.queries.Event(ctx, eventID).Unwrap()
}

// ResolveEvent accepts an event id or a shortname.
func (s *EventService) ResolveEvent(ctx context.Context, idOrShortname string) (string, entities.Event, error) {
	ev := s.queries.Event(ctx, idOrShortname)
	if ev.HasLoaded() {
		return idOrShortname, ev.Data, nil
	}
	id, err := s.queries.Shortname(ctx, idOrShortname).Unwrap()
	if err != nil {
		if _, evErr := ev.Unwrap(); evErr != nil && !errors.Is(evErr, domain.ErrInvalidEventID) {
			return "", entities.Event{}, evErr
		}
		return "", entities.Event{}, err
	}
	event, err := s.GetEvent(ctx, id)
	return id, event, err
}

// RepeatEvent posts count copies of an event, interval weeks apart.
func (s *EventService) RepeatEvent(ctx context.Context, eventID string, intervalWeeks, count int) ([]string, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	start := event.Start.Instant()
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.WEEKLY,
		Interval: intervalWeeks,
		Count:    count + 1,
		Dtstart:  start,
	})
	if err != nil {
		return nil, fmt.Errorf("repeat rule: %w", err)
	}

	ids := make([]string, 0, count)
	for _, occ := range rule.All() {
		days := daysBetween(start, occ)
		if days == 0 {
			continue
		}
		next := entities.ShiftDays(event, days)
		next.IsCancelled = false
		next.NumberOfParticipants = 0
		if next.Shortname != "" {
			next.Shortname = event.Shortname + "-" + entities.ToEditDate(next.Start.Date)
		}
		id, err := s.post(ctx, next)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func draftKey(key string) string { return "draft:" + key }

// LoadDraft returns the saved form for key, or ok=false.
func (s *EventService) LoadDraft(ctx context.Context, key string) (entities.EditEvent, bool, error) {
	raw, ok, err := s.drafts.Get(ctx, draftKey(key))
	if err != nil || !ok {
		return entities.EditEvent{}, false, err
	}
	var edit entities.EditEvent
	if err := json.Unmarshal([]byte(raw), &edit); err != nil {
		s.log.Warn().Err(err).Str("draft", key).Msg("discarding unreadable draft")
		return entities.EditEvent{}, false, nil
	}
	return edit, true, nil
}

func (s *EventService) SaveDraft(ctx context.Context, key string, edit entities.EditEvent) error {
	b, err := json.Marshal(edit)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.drafts.Set(ctx, draftKey(key), string(b))
}

func (s *EventService) ClearDraft(ctx context.Context, key string) error {
	return s.drafts.Remove(ctx, draftKey(key))
}

// Draft returns the form for key. A missing create draft starts from the
// initial form prefilled with the employee; a missing edit draft starts
// from the current event.
func (s *EventService) Draft(ctx context.Context, key string) (entities.EditEvent, error) {
	edit, ok, err := s.LoadDraft(ctx, key)
	if err != nil {
		return entities.EditEvent{}, err
	}
	if ok {
		return edit, nil
	}
	if key != CreateDraftKey {
		event, err := s.GetEvent(ctx, key)
		if err != nil {
			return entities.EditEvent{}, err
		}
		return entities.ToEditEvent(event), nil
	}
	var email, name string
	if emp, _ := s.queries.EmployeeProfile(ctx).Unwrap(); emp != nil {
		email, name = emp.Email, emp.Name
	}
	return entities.InitialEditEvent(email, name, s.now()), nil
}

// ApplySchedule edits the start or end of the stored draft, keeping start
// before end.
func (s *EventService) ApplySchedule(ctx context.Context, key string, action entities.ScheduleAction, value string) (entities.EditEvent, error) {
	edit, err := s.Draft(ctx, key)
	if err != nil {
		return entities.EditEvent{}, err
	}
	sched := entities.SetStartEnd(entities.Schedule{Start: edit.Start, End: edit.End}, action, value)
	edit.Start, edit.End = sched.Start, sched.End
	return edit, s.SaveDraft(ctx, key, edit)
}

// SubmitDraft creates or updates from the stored draft and clears it on
// success. It returns the event id.
func (s *EventService) SubmitDraft(ctx context.Context, key string) (string, error) {
	edit, err := s.Draft(ctx, key)
	if err != nil {
		return "", err
	}
	id := key
	if key == CreateDraftKey {
		id, err = s.CreateEvent(ctx, edit)
	} else {
		_, err = s.UpdateEvent(ctx, key, edit)
	}
	if err != nil {
		return "", err
	}
	if err := s.ClearDraft(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("draft", key).Msg("clear draft")
	}
	return id, nil
}
