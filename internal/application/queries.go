package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"arrangement/internal/domain/entities"
	"arrangement/internal/ports/output"
	"arrangement/internal/remotedata"
	"arrangement/pkg/tz"
)

// Queries serves read models through per-concern caches.
type Queries struct {
	api       output.ArrangementAPI
	directory output.EmployeeDirectory
	identity  output.Identity
	log       *zerolog.Logger

	events        *remotedata.Cache[entities.Event]
	shortnames    *remotedata.Cache[string]
	officeEvents  *remotedata.Cache[[]entities.OfficeEvent]
	participants  *remotedata.Cache[entities.ParticipantsWithWaitingList]
	counts        *remotedata.Cache[int]
	waitlistSpots *remotedata.Cache[int]
	employee      *remotedata.Cache[*entities.Employee]
}

func NewQueries(
	api output.ArrangementAPI,
	directory output.EmployeeDirectory,
	identity output.Identity,
	log *zerolog.Logger,
) *Queries {
	return &Queries{
		api:           api,
		directory:     directory,
		identity:      identity,
		log:           log,
		events:        remotedata.NewCache[entities.Event]("events", log),
		shortnames:    remotedata.NewCache[string]("shortnames", log),
		officeEvents:  remotedata.NewCache[[]entities.OfficeEvent]("office-events", log),
		participants:  remotedata.NewCache[entities.ParticipantsWithWaitingList]("participants", log),
		counts:        remotedata.NewCache[int]("participant-counts", log),
		waitlistSpots: remotedata.NewCache[int]("waitlist-spots", log),
		employee:      remotedata.NewCache[*entities.Employee]("employee", log),
	}
}

// Events exposes the event cache so callers can subscribe to it.
func (q *Queries) Events() *remotedata.Cache[entities.Event] { return q.events }

func (q *Queries) Event(ctx context.Context, id string) remotedata.RemoteData[entities.Event] {
	return q.events.Await(ctx, id, func(ctx context.Context) (entities.Event, error) {
		vm, err := q.api.GetEvent(ctx, id)
		if err != nil {
			return entities.Event{}, err
		}
		return entities.ParseEventViewModel(vm)
	})
}

// EventFilter selects which events to list. With neither Upcoming nor Past
// set both are fetched.
type EventFilter struct {
	Upcoming   bool
	Past       bool
	Offices    []entities.Office
	Mine       bool
	External   bool
	Internal   bool
	WithHidden bool
}

func (f EventFilter) wantUpcoming() bool { return f.Upcoming || !f.Past }

func (f EventFilter) wantPast() bool { return f.Past || !f.Upcoming }

// EventEntry is an event together with its id.
type EventEntry struct {
	ID    string
	Event entities.Event
}

// FilteredEvents fetches the upcoming and/or past lists once per time range
// and stores every event in the event cache.
func (q *Queries) FilteredEvents(ctx context.Context, f EventFilter) remotedata.RemoteData[map[string]remotedata.RemoteData[entities.Event]] {
	listKey := fmt.Sprintf("upcoming=%t,past=%t", f.wantUpcoming(), f.wantPast())
	return q.events.LoadAll(ctx, listKey, func(ctx context.Context) ([]remotedata.Entry[entities.Event], error) {
		var all []entities.EventWithID
		if f.wantUpcoming() {
			upcoming, err := q.api.GetEvents(ctx)
			if err != nil {
				return nil, err
			}
			all = append(all, upcoming...)
		}
		if f.wantPast() {
			past, err := q.api.GetPastEvents(ctx)
			if err != nil {
				return nil, err
			}
			all = append(all, past...)
		}
		out := make([]remotedata.Entry[entities.Event], 0, len(all))
		for _, e := range all {
			ev, err := entities.ParseEventViewModel(e.EventViewModel)
			if err != nil {
				return nil, fmt.Errorf("event %s: %w", e.ID, err)
			}
			out = append(out, remotedata.Entry[entities.Event]{Key: e.ID, Value: ev})
		}
		return out, nil
	})
}

// ApplyFilter narrows loaded events by the client side criteria and sorts
// them by start, upcoming first. mine holds the ids the viewer can edit or
// is registered for.
func ApplyFilter(loaded map[string]remotedata.RemoteData[entities.Event], f EventFilter, mine map[string]bool, now time.Time) []EventEntry {
	out := make([]EventEntry, 0, len(loaded))
	for id, rd := range loaded {
		if !rd.HasLoaded() {
			continue
		}
		e := rd.Data
		past := e.End.Instant().Before(now)
		if (past && !f.wantPast()) || (!past && !f.wantUpcoming()) {
			continue
		}
		if e.IsHidden && !f.WithHidden && !mine[id] {
			continue
		}
		if f.Mine && !mine[id] {
			continue
		}
		if f.External != f.Internal {
			if f.External && !e.IsExternal || f.Internal && e.IsExternal {
				continue
			}
		}
		if len(f.Offices) > 0 && e.Offices != nil {
			match := false
			for _, o := range f.Offices {
				if e.Offices.Has(o) {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, EventEntry{ID: id, Event: e})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Event, out[j].Event
		aPast, bPast := a.End.Instant().Before(now), b.End.Instant().Before(now)
		if aPast != bPast {
			return !aPast
		}
		if aPast {
			return a.Start.After(b.Start)
		}
		if a.Start == b.Start {
			return out[i].ID < out[j].ID
		}
		return a.Start.Before(b.Start)
	})
	return out
}

func (q *Queries) Shortname(ctx context.Context, shortname string) remotedata.RemoteData[string] {
	return q.shortnames.Await(ctx, shortname, func(ctx context.Context) (string, error) {
		return q.api.GetEventIDByShortname(ctx, shortname)
	})
}

// isoMillis is the UTC timestamp layout with milliseconds used by browsers.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// OfficeEvents is keyed by the ISO timestamp of the day in Oslo.
func (q *Queries) OfficeEvents(ctx context.Context, day time.Time) remotedata.RemoteData[[]entities.OfficeEvent] {
	key := tz.Today(day).UTC().Format(isoMillis)
	return q.officeEvents.Await(ctx, key, func(ctx context.Context) ([]entities.OfficeEvent, error) {
		return q.api.GetOfficeEventsByDate(ctx, key)
	})
}

func participantsKey(eventID, editToken string) string { return eventID + ":" + editToken }

func (q *Queries) Participants(ctx context.Context, eventID, editToken string) remotedata.RemoteData[entities.ParticipantsWithWaitingList] {
	return q.participants.Await(ctx, participantsKey(eventID, editToken),
		func(ctx context.Context) (entities.ParticipantsWithWaitingList, error) {
			vm, err := q.api.GetParticipants(ctx, eventID, editToken)
			if err != nil {
				return entities.ParticipantsWithWaitingList{}, err
			}
			return entities.ParseParticipantsWithWaitingList(vm)
		})
}

func (q *Queries) NumberOfParticipants(ctx context.Context, eventID string) remotedata.RemoteData[int] {
	return q.counts.Await(ctx, eventID, func(ctx context.Context) (int, error) {
		return q.api.GetNumberOfParticipants(ctx, eventID)
	})
}

// WaitinglistSpot is entities.NotRegistered when email is empty or the API
// does not know the address.
func (q *Queries) WaitinglistSpot(ctx context.Context, eventID, email string) remotedata.RemoteData[int] {
	return q.waitlistSpots.Await(ctx, entities.ParticipationKey(eventID, email), func(ctx context.Context) (int, error) {
		if email == "" {
			return entities.NotRegistered, nil
		}
		spot, err := q.api.GetWaitinglistSpot(ctx, eventID, email)
		var sc remotedata.StatusCoder
		if errors.As(err, &sc) && sc.StatusCode() == http.StatusNotFound {
			return entities.NotRegistered, nil
		}
		return spot, err
	})
}

// EmployeeProfile is nil when nobody is signed in.
func (q *Queries) EmployeeProfile(ctx context.Context) remotedata.RemoteData[*entities.Employee] {
	return q.employee.Await(ctx, "", func(ctx context.Context) (*entities.Employee, error) {
		if !q.identity.IsAuthenticated() {
			return nil, nil
		}
		id, err := q.identity.EmployeeID()
		if err != nil {
			return nil, nil
		}
		emp, err := q.directory.GetEmployee(ctx, id)
		if err != nil {
			return nil, err
		}
		return &emp, nil
	})
}

// ForgetEvent drops everything cached about one event after a change.
func (q *Queries) ForgetEvent(eventID string) {
	q.events.Invalidate(eventID)
	q.ForgetParticipants(eventID)
}

// ForgetParticipants drops participant lists, counts and waitlist spots.
func (q *Queries) ForgetParticipants(eventID string) {
	q.counts.Invalidate(eventID)
	prefix := eventID + ":"
	for _, k := range q.participants.Keys() {
		if strings.HasPrefix(k, prefix) {
			q.participants.Invalidate(k)
		}
	}
	for _, k := range q.waitlistSpots.Keys() {
		if strings.HasPrefix(k, prefix) {
			q.waitlistSpots.Invalidate(k)
		}
	}
}
