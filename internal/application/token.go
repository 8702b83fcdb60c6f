package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"arrangement/internal/domain"
	"arrangement/internal/domain/entities"
	"arrangement/internal/ports/output"
)

const (
	EditableEventsKey = "editable-events"
	ParticipationsKey = "participations"
)

// TokenService keeps the edit tokens and participations of this device.
type TokenService struct {
	store    output.KeyValueStore
	api      output.ArrangementAPI
	identity output.Identity
	log      *zerolog.Logger
}

func NewTokenService(
	store output.KeyValueStore,
	api output.ArrangementAPI,
	identity output.Identity,
	log *zerolog.Logger,
) *TokenService {
	return &TokenService{store: store, api: api, identity: identity, log: log}
}

// readList decodes a JSON array and drops entries that are not objects
// with every key in required. A corrupt blob reads as empty.
func readList[T any](raw string, ok bool, required []string, log *zerolog.Logger, key string) []T {
	if !ok || raw == "" {
		return []T{}
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("stored list is unreadable, treating it as empty")
		return []T{}
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(it, &fields); err != nil || fields == nil {
			continue
		}
		if !hasKeys(fields, required) {
			continue
		}
		var v T
		if err := json.Unmarshal(it, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func hasKeys(fields map[string]json.RawMessage, keys []string) bool {
	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			return false
		}
	}
	return true
}

func updateList[T any](ctx context.Context, store output.KeyValueStore, log *zerolog.Logger, key string, required []string, fn func([]T) []T) error {
	return store.Update(ctx, key, func(old string, ok bool) (string, error) {
		next := fn(readList[T](old, ok, required, log, key))
		b, err := json.Marshal(next)
		if err != nil {
			return "", err
		}
		return string(b), nil
	})
}

func (s *TokenService) SavedEditableEvents(ctx context.Context) ([]entities.EditEventToken, error) {
	raw, ok, err := s.store.Get(ctx, EditableEventsKey)
	if err != nil {
		return nil, fmt.Errorf("read editable events: %w", err)
	}
	return readList[entities.EditEventToken](raw, ok, entities.EditEventTokenFields, s.log, EditableEventsKey), nil
}

// SaveEditableEvent stores tok, replacing any token for the same event.
func (s *TokenService) SaveEditableEvent(ctx context.Context, tok entities.EditEventToken) error {
	err := updateList(ctx, s.store, s.log, EditableEventsKey, entities.EditEventTokenFields,
		func(list []entities.EditEventToken) []entities.EditEventToken {
			out := list[:0]
			for _, t := range list {
				if t.EventID != tok.EventID {
					out = append(out, t)
				}
			}
			return append(out, tok)
		})
	if err != nil {
		return fmt.Errorf("save editable event: %w", err)
	}
	return nil
}

// EditToken returns the saved token for eventID, or "" if none.
func (s *TokenService) EditToken(ctx context.Context, eventID string) (string, error) {
	list, err := s.SavedEditableEvents(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range list {
		if t.EventID == eventID {
			return t.EditToken, nil
		}
	}
	return "", nil
}

// RequireEditToken returns the saved token for eventID. Admins pass with an
// empty token; everyone else without a token gets domain.ErrMissingEditToken.
func (s *TokenService) RequireEditToken(ctx context.Context, eventID string) (string, error) {
	tok, err := s.EditToken(ctx, eventID)
	if err != nil {
		return "", err
	}
	if tok == "" && !s.identity.IsAdmin() {
		return "", domain.ErrMissingEditToken
	}
	return tok, nil
}

func (s *TokenService) SavedParticipations(ctx context.Context) ([]entities.Participation, error) {
	raw, ok, err := s.store.Get(ctx, ParticipationsKey)
	if err != nil {
		return nil, fmt.Errorf("read participations: %w", err)
	}
	return readList[entities.Participation](raw, ok, entities.ParticipationFields, s.log, ParticipationsKey), nil
}

// SaveParticipation stores p, replacing any entry with the same event and e-mail.
func (s *TokenService) SaveParticipation(ctx context.Context, p entities.Participation) error {
	err := updateList(ctx, s.store, s.log, ParticipationsKey, entities.ParticipationFields,
		func(list []entities.Participation) []entities.Participation {
			out := list[:0]
			for _, x := range list {
				if x.Key() != p.Key() {
					out = append(out, x)
				}
			}
			return append(out, p)
		})
	if err != nil {
		return fmt.Errorf("save participation: %w", err)
	}
	return nil
}

func (s *TokenService) RemoveParticipation(ctx context.Context, eventID, email string) error {
	key := entities.ParticipationKey(eventID, email)
	err := updateList(ctx, s.store, s.log, ParticipationsKey, entities.ParticipationFields,
		func(list []entities.Participation) []entities.Participation {
			out := list[:0]
			for _, x := range list {
				if x.Key() != key {
					out = append(out, x)
				}
			}
			return out
		})
	if err != nil {
		return fmt.Errorf("remove participation: %w", err)
	}
	return nil
}

// Participation returns the saved participation for eventID and email.
func (s *TokenService) Participation(ctx context.Context, eventID, email string) (entities.Participation, bool, error) {
	list, err := s.SavedParticipations(ctx)
	if err != nil {
		return entities.Participation{}, false, err
	}
	key := entities.ParticipationKey(eventID, email)
	for _, p := range list {
		if p.Key() == key {
			return p, true, nil
		}
	}
	return entities.Participation{}, false, nil
}

// ReconcileResult counts what Reconcile changed.
type ReconcileResult struct {
	AddedEvents           int
	AddedParticipations   int
	RemovedParticipations int
}

// Reconcile merges the server's record of the employee's events and
// participations into local storage: missing entries are added and
// participations the server no longer knows are removed.
func (s *TokenService) Reconcile(ctx context.Context) (ReconcileResult, error) {
	var res ReconcileResult
	if !s.identity.IsAuthenticated() {
		return res, domain.ErrNotAuthenticated
	}
	employeeID, err := s.identity.EmployeeID()
	if err != nil {
		return res, err
	}
	remote, err := s.api.GetEventsAndParticipations(ctx, employeeID)
	if err != nil {
		return res, fmt.Errorf("get events and participations: %w", err)
	}

	err = updateList(ctx, s.store, s.log, EditableEventsKey, entities.EditEventTokenFields,
		func(list []entities.EditEventToken) []entities.EditEventToken {
			known := make(map[string]bool, len(list))
			for _, t := range list {
				known[t.EventID] = true
			}
			for _, t := range remote.EditableEvents {
				if t.Valid() && !known[t.EventID] {
					list = append(list, t)
					known[t.EventID] = true
					res.AddedEvents++
				}
			}
			return list
		})
	if err != nil {
		return res, fmt.Errorf("reconcile editable events: %w", err)
	}

	err = updateList(ctx, s.store, s.log, ParticipationsKey, entities.ParticipationFields,
		func(list []entities.Participation) []entities.Participation {
			onServer := make(map[string]bool, len(remote.Participations))
			for _, p := range remote.Participations {
				onServer[p.Key()] = true
			}
			out := make([]entities.Participation, 0, len(list)+len(remote.Participations))
			local := make(map[string]bool, len(list))
			for _, p := range list {
				if !onServer[p.Key()] {
					res.RemovedParticipations++
					continue
				}
				local[p.Key()] = true
				out = append(out, p)
			}
			for _, p := range remote.Participations {
				if p.Valid() && !local[p.Key()] {
					out = append(out, p)
					local[p.Key()] = true
					res.AddedParticipations++
				}
			}
			return out
		})
	if err != nil {
		return res, fmt.Errorf("reconcile participations: %w", err)
	}

	s.log.Info().
		Int("added_events", res.AddedEvents).
		Int("added_participations", res.AddedParticipations).
		Int("removed_participations", res.RemovedParticipations).
		Msg("saved tokens reconciled")
	return res, nil
}
