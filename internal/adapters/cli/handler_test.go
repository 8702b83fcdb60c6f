package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrangement/internal/application"
	"arrangement/internal/domain"
	"arrangement/internal/domain/entities"
	"arrangement/internal/infrastructure/arrangementsvc"
	"arrangement/internal/infrastructure/arrangementsvc/arrangementsvctest"
	"arrangement/internal/infrastructure/employeesvc"
	"arrangement/internal/infrastructure/i18n"
	"arrangement/internal/infrastructure/localstore"
)

type fakeIdentity struct {
	employeeID int
	admin      bool
}

func (f fakeIdentity) IsAuthenticated() bool { return f.employeeID != 0 }

func (f fakeIdentity) EmployeeID() (int, error) {
	if f.employeeID == 0 {
		return 0, domain.ErrNotAuthenticated
	}
	return f.employeeID, nil
}

func (f fakeIdentity) IsAdmin() bool       { return f.admin }
func (f fakeIdentity) AccessToken() string { return "tok" }

type harness struct {
	h      *Handler
	srv    *arrangementsvctest.Server
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newHarness(t *testing.T, id fakeIdentity) *harness {
	t.Helper()
	srv := arrangementsvctest.NewServer()
	t.Cleanup(srv.Close)

	log := zerolog.Nop()
	api := arrangementsvc.NewClient(srv.URL, id, 5*time.Second, &log)
	directory := employeesvc.NewClient(srv.URL, id, 5*time.Second, &log)
	store := localstore.NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	routes := entities.NewRoutes("https://skjer.bekk.no")
	tr := i18n.NewTranslator("en", &log)

	queries := application.NewQueries(api, directory, id, &log)
	tokens := application.NewTokenService(store, api, id, &log)
	events := application.NewEventService(api, tokens, store, queries, nil, routes, &log)
	participants := application.NewParticipantService(api, tokens, queries, routes, tr, &log)

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	h := NewHandler(Deps{
		Events:       events,
		Participants: participants,
		Queries:      queries,
		Tokens:       tokens,
		Routes:       routes,
		Translator:   tr,
		Locale:       "en",
		SyncCron:     "@every 1h",
		Out:          out,
		ErrOut:       errOut,
		Log:          &log,
	})
	return &harness{h: h, srv: srv, out: out, errOut: errOut}
}

func (h *harness) run(args ...string) int {
	h.out.Reset()
	h.errOut.Reset()
	return h.h.Run(context.Background(), args)
}

func openEvent(max int, questions ...entities.Question) entities.EventViewModel {
	now := time.Now()
	start := now.AddDate(0, 0, 14)
	return entities.EventViewModel{
		Title:                   "Fagdag",
		Description:             "Faglig påfyll for alle",
		Location:                "Skuret",
		StartDate:               entities.DateTimeOf(start),
		EndDate:                 entities.DateTimeOf(start.Add(3 * time.Hour)),
		OpenForRegistrationTime: entities.ToTimeInstanceWriteModel(now.Add(-time.Hour)),
		OrganizerName:           "Kari Nordmann",
		OrganizerEmail:          "kari@bekk.no",
		MaxParticipants:         &max,
		ParticipantQuestions:    questions,
		HasWaitingList:          true,
	}
}

func TestRegisterWithRequiredAndOptionalQuestion(t *testing.T) {
	h := newHarness(t, fakeIdentity{})
	id, _ := h.srv.AddEvent(openEvent(10,
		entities.Question{ID: 1, Question: "Allergier eller matpreferanser?", Required: true},
		entities.Question{ID: 2, Question: "Hvilke foredrag vil du høre?"},
	))

	code := h.run("register", "-name", "Ola Nordmann", "-email", "ola@bekk.no", id)
	assert.Equal(t, 1, code)
	assert.Contains(t, h.errOut.String(), "The form has errors:")
	assert.Contains(t, h.errOut.String(), "participantAnswers.1: Du må svare på dette spørsmålet")
	assert.NotContains(t, h.errOut.String(), "participantAnswers.2")
	assert.Empty(t, h.srv.Participants(id))
	for _, r := range h.srv.Requests() {
		assert.False(t, strings.HasPrefix(r, "POST "), "unexpected request %s", r)
	}

	code = h.run("register", id,
		"-name", "Ola Nordmann", "-email", "ola@bekk.no",
		"-answer", "1=Nøtter", "-answer", "2=Go", "-answer", "2=Rust")
	require.Equal(t, 0, code, h.errOut.String())
	assert.Contains(t, h.out.String(), "You are signed up for Fagdag")

	ps := h.srv.Participants(id)
	require.Len(t, ps, 1)
	require.Len(t, ps[0].ParticipantAnswers, 2)
	assert.Equal(t, "Nøtter", ps[0].ParticipantAnswers[0].Answer)
	assert.Equal(t, "Go, Rust", ps[0].ParticipantAnswers[1].Answer)

	require.Equal(t, 0, h.run("tokens"))
	assert.Contains(t, h.out.String(), "join  "+id+"  ola@bekk.no")
}

func TestRegisterBeyondLimitLandsOnWaitingList(t *testing.T) {
	h := newHarness(t, fakeIdentity{})
	id, _ := h.srv.AddEvent(openEvent(1))

	require.Equal(t, 0, h.run("register", "-name", "Ola Nordmann", "-email", "ola@bekk.no", id))
	require.Equal(t, 0, h.run("register", "-name", "Kari Nordmann", "-email", "kari@bekk.no", id))
	assert.Contains(t, h.out.String(), "waiting list for Fagdag")

	require.Equal(t, 0, h.run("show", id, "-email", "kari@bekk.no"))
	assert.Contains(t, h.out.String(), "On waiting list")
	assert.Contains(t, h.out.String(), "1 on the waiting list")

	require.Equal(t, 0, h.run("show", id, "-email", "ola@bekk.no"))
	assert.Contains(t, h.out.String(), "Attending")
}

func TestRegisterOnFullEventWithoutWaitingList(t *testing.T) {
	h := newHarness(t, fakeIdentity{})
	vm := openEvent(1)
	vm.HasWaitingList = false
	id, _ := h.srv.AddEvent(vm)

	require.Equal(t, 0, h.run("register", "-name", "Ola Nordmann", "-email", "ola@bekk.no", id))
	assert.Equal(t, 1, h.run("register", "-name", "Kari Nordmann", "-email", "kari@bekk.no", id))
	assert.Contains(t, h.errOut.String(), "The event is full.")
	assert.Len(t, h.srv.Participants(id), 1)
}

func TestUnregisterUsesSavedCancellationToken(t *testing.T) {
	h := newHarness(t, fakeIdentity{})
	id, _ := h.srv.AddEvent(openEvent(10))

	require.Equal(t, 0, h.run("register", "-name", "Ola Nordmann", "-email", "ola@bekk.no", id))
	require.Equal(t, 0, h.run("unregister", id), h.errOut.String())
	assert.Contains(t, h.out.String(), "Your registration is cancelled.")
	assert.Empty(t, h.srv.Participants(id))

	require.Equal(t, 0, h.run("tokens"))
	assert.NotContains(t, h.out.String(), "join")
}

func TestDraftCreateAndCancelByShortname(t *testing.T) {
	h := newHarness(t, fakeIdentity{})
	date := time.Now().AddDate(0, 1, 0).Format("2006-01-02")

	require.Equal(t, 0, h.run("draft", "new"))
	require.Equal(t, 0, h.run("draft", "set",
		"title=Julebord", "description=Årets fest", "location=Skuret",
		"organizer=Kari Nordmann", "organizer-email=kari@bekk.no",
		"max=40", "shortname=julebord", "offices=Oslo"))
	require.Equal(t, 0, h.run("draft", "schedule", "start-date", date))
	require.Equal(t, 0, h.run("draft", "question", "add", "-required", "Allergier?"))
	assert.NotContains(t, h.out.String(), "The form has errors:")

	require.Equal(t, 0, h.run("create"), h.errOut.String())
	assert.Contains(t, h.out.String(), "The event was created.")
	assert.Contains(t, h.out.String(), "https://skjer.bekk.no/julebord")

	ids := h.srv.EventIDs()
	require.Len(t, ids, 1)
	vm, _ := h.srv.Event(ids[0])
	assert.Equal(t, "Julebord", vm.Title)
	assert.Equal(t, []entities.Office{entities.OfficeOslo}, vm.Offices)
	require.Len(t, vm.ParticipantQuestions, 1)
	assert.True(t, vm.ParticipantQuestions[0].Required)
	assert.Equal(t, date, entities.ToEditDate(vm.EndDate.Date))

	require.Equal(t, 0, h.run("tokens"))
	assert.Contains(t, h.out.String(), "edit  "+ids[0])

	require.Equal(t, 0, h.run("cancel-event", "-message", "Avlyst", "julebord"), h.errOut.String())
	vm, _ = h.srv.Event(ids[0])
	assert.True(t, vm.IsCancelled)
}

func TestCreateWithInvalidDraftListsErrors(t *testing.T) {
	h := newHarness(t, fakeIdentity{})

	require.Equal(t, 0, h.run("draft", "set", "title=Ju"))
	assert.Contains(t, h.out.String(), "title: Tittel må ha minst tre tegn")

	assert.Equal(t, 1, h.run("create"))
	assert.Contains(t, h.errOut.String(), "title: Tittel må ha minst tre tegn")
	assert.Empty(t, h.srv.EventIDs())
}

func TestCancelEventWithoutTokenIsRefused(t *testing.T) {
	h := newHarness(t, fakeIdentity{})
	id, _ := h.srv.AddEvent(openEvent(10))

	assert.Equal(t, 1, h.run("cancel-event", id))
	assert.Contains(t, h.errOut.String(), "You are not allowed to edit this event.")
	vm, _ := h.srv.Event(id)
	assert.False(t, vm.IsCancelled)
}

func TestEventsListsUpcomingAndPast(t *testing.T) {
	h := newHarness(t, fakeIdentity{})
	upcoming := openEvent(10)
	h.srv.AddEvent(upcoming)

	past := openEvent(10)
	past.Title = "Sommerfest"
	then := time.Now().AddDate(0, -2, 0)
	past.StartDate = entities.DateTimeOf(then)
	past.EndDate = entities.DateTimeOf(then.Add(2 * time.Hour))
	past.OpenForRegistrationTime = entities.ToTimeInstanceWriteModel(then.AddDate(0, 0, -7))
	h.srv.AddEvent(past)

	hidden := openEvent(10)
	hidden.Title = "Hemmelig"
	hidden.IsHidden = true
	h.srv.AddEvent(hidden)

	require.Equal(t, 0, h.run("events"), h.errOut.String())
	assert.Contains(t, h.out.String(), "Fagdag")
	assert.Contains(t, h.out.String(), "Sommerfest")
	assert.NotContains(t, h.out.String(), "Hemmelig")

	require.Equal(t, 0, h.run("events", "-upcoming", "-hidden"))
	assert.Contains(t, h.out.String(), "Fagdag")
	assert.Contains(t, h.out.String(), "Hemmelig")
	assert.NotContains(t, h.out.String(), "Sommerfest")
}

func TestICSExport(t *testing.T) {
	h := newHarness(t, fakeIdentity{})
	id, _ := h.srv.AddEvent(openEvent(10))

	require.Equal(t, 0, h.run("ics", id))
	assert.Contains(t, h.out.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, h.out.String(), "SUMMARY:Fagdag")
}

func TestSyncAddsServerTokens(t *testing.T) {
	h := newHarness(t, fakeIdentity{employeeID: 42})
	id, tok := h.srv.AddEvent(openEvent(10))
	h.srv.SetRemote(entities.EventsAndParticipations{
		EditableEvents: []entities.EditEventToken{{EventID: id, EditToken: tok}},
	})

	require.Equal(t, 0, h.run("sync"), h.errOut.String())
	assert.Contains(t, h.out.String(), "+1 events")

	require.Equal(t, 0, h.run("export", id))
	assert.Contains(t, h.out.String(), "Navn;E-post;Avdeling")
}

func TestSyncRequiresSignIn(t *testing.T) {
	h := newHarness(t, fakeIdentity{})
	assert.Equal(t, 1, h.run("sync"))
	assert.Contains(t, h.errOut.String(), "You are not signed in.")
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t, fakeIdentity{})
	assert.Equal(t, 2, h.run())
	assert.Equal(t, 2, h.run("frobnicate"))
	assert.Contains(t, h.errOut.String(), `unknown command "frobnicate"`)
	assert.Equal(t, 2, h.run("show"))
	assert.Contains(t, h.errOut.String(), "usage: arrangement show")
}

func TestNotifyAskForLoginOnUnauthorized(t *testing.T) {
	h := newHarness(t, fakeIdentity{})
	h.h.notify(&arrangementsvc.APIError{Method: "GET", Path: "/events", Status: 401})
	assert.Contains(t, h.errOut.String(), "You need to sign in to do this.")
}

func TestAnswerFlagRejectsMalformedValue(t *testing.T) {
	a := answerFlag{}
	assert.Error(t, a.Set("no-equals"))
	assert.Error(t, a.Set("x=1"))
	require.NoError(t, a.Set("3=Ja"))
	assert.Equal(t, []string{"Ja"}, a[3])
}
