package application

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrangement/internal/domain"
	"arrangement/internal/domain/entities"
)

func TestSavedListsSkipInvalidAndCorruptEntries(t *testing.T) {
	s := newServices(t, fakeIdentity{})
	ctx := context.Background()

	require.NoError(t, s.store.Set(ctx, ParticipationsKey, "not json"))
	parts, err := s.tokens.SavedParticipations(ctx)
	require.NoError(t, err)
	assert.Empty(t, parts)

	require.NoError(t, s.store.Set(ctx, EditableEventsKey,
		`[{"eventId":"a","editToken":"t"},{"eventId":"b"},42]`))
	toks, err := s.tokens.SavedEditableEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entities.EditEventToken{{EventID: "a", EditToken: "t"}}, toks)
}

func TestSavedListsKeepBlankButPresentFields(t *testing.T) {
	s := newServices(t, fakeIdentity{})
	ctx := context.Background()

	require.NoError(t, s.store.Set(ctx, ParticipationsKey,
		`[{"eventId":"a","email":"","cancellationToken":""},{"eventId":"b","email":"x@bekk.no"},null]`))
	parts, err := s.tokens.SavedParticipations(ctx)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "a", parts[0].EventID)
	assert.Empty(t, parts[0].CancellationToken)

	require.NoError(t, s.store.Set(ctx, EditableEventsKey, `[{"eventId":"c","editToken":""}]`))
	toks, err := s.tokens.SavedEditableEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entities.EditEventToken{{EventID: "c"}}, toks)
}

func TestCorruptStoredListIsLogged(t *testing.T) {
	s := newServices(t, fakeIdentity{})
	ctx := context.Background()
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	tokens := NewTokenService(s.store, nil, fakeIdentity{}, &log)

	require.NoError(t, s.store.Set(ctx, EditableEventsKey, "{broken"))
	require.NoError(t, tokens.SaveEditableEvent(ctx, entities.EditEventToken{EventID: "a", EditToken: "t"}))

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"key":"editable-events"`)
	toks, err := tokens.SavedEditableEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entities.EditEventToken{{EventID: "a", EditToken: "t"}}, toks)
}

func TestSaveEditableEventReplacesSameEvent(t *testing.T) {
	s := newServices(t, fakeIdentity{})
	ctx := context.Background()

	require.NoError(t, s.tokens.SaveEditableEvent(ctx, entities.EditEventToken{EventID: "a", EditToken: "old"}))
	require.NoError(t, s.tokens.SaveEditableEvent(ctx, entities.EditEventToken{EventID: "a", EditToken: "new"}))

	toks, err := s.tokens.SavedEditableEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entities.EditEventToken{{EventID: "a", EditToken: "new"}}, toks)
}

func TestRequireEditTokenAllowsAdmin(t *testing.T) {
	ctx := context.Background()

	s := newServices(t, fakeIdentity{})
	_, err := s.tokens.RequireEditToken(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrMissingEditToken)

	admin := newServices(t, fakeIdentity{employeeID: 1, admin: true})
	tok, err := admin.tokens.RequireEditToken(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestReconcileMergesServerRecord(t *testing.T) {
	s := newServices(t, fakeIdentity{employeeID: 42})
	ctx := context.Background()

	require.NoError(t, s.tokens.SaveEditableEvent(ctx, entities.EditEventToken{EventID: "a", EditToken: "ta"}))
	require.NoError(t, s.tokens.SaveParticipation(ctx, entities.Participation{EventID: "x", Email: "ola@bekk.no", CancellationToken: "cx"}))
	require.NoError(t, s.tokens.SaveParticipation(ctx, entities.Participation{EventID: "gone", Email: "ola@bekk.no", CancellationToken: "cg"}))

	s.srv.SetRemote(entities.EventsAndParticipations{
		EditableEvents: []entities.EditEventToken{{EventID: "a", EditToken: "ta"}, {EventID: "b", EditToken: "tb"}},
		Participations: []entities.Participation{
			{EventID: "x", Email: "ola@bekk.no", CancellationToken: "cx"},
			{EventID: "y", Email: "ola@bekk.no", CancellationToken: "cy"},
		},
	})

	res, err := s.tokens.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{AddedEvents: 1, AddedParticipations: 1, RemovedParticipations: 1}, res)

	toks, err := s.tokens.SavedEditableEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, toks, 2)

	parts, err := s.tokens.SavedParticipations(ctx)
	require.NoError(t, err)
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		keys = append(keys, p.Key())
	}
	assert.ElementsMatch(t, []string{"x:ola@bekk.no", "y:ola@bekk.no"}, keys)

	res, err = s.tokens.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{}, res)
}

func TestReconcileNeedsSignIn(t *testing.T) {
	s := newServices(t, fakeIdentity{})
	_, err := s.tokens.Reconcile(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Empty(t, s.srv.Requests())
}
