package application

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"arrangement/internal/domain"
	"arrangement/internal/domain/entities"
	"arrangement/internal/infrastructure/arrangementsvc"
	"arrangement/internal/infrastructure/arrangementsvc/arrangementsvctest"
	"arrangement/internal/infrastructure/employeesvc"
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

type keyTranslator struct{}

func (keyTranslator) T(_, key string, data map[string]any) string {
	if title, ok := data["Title"]; ok {
		return key + ":" + title.(string)
	}
	return key
}

type services struct {
	srv          *arrangementsvctest.Server
	store        *localstore.FileStore
	queries      *Queries
	tokens       *TokenService
	events       *EventService
	participants *ParticipantService
}

func newServices(t *testing.T, id fakeIdentity) *services {
	t.Helper()
	srv := arrangementsvctest.NewServer()
	t.Cleanup(srv.Close)

	log := zerolog.Nop()
	api := arrangementsvc.NewClient(srv.URL, id, 5*time.Second, &log)
	directory := employeesvc.NewClient(srv.URL, id, 5*time.Second, &log)
	store := localstore.NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	routes := entities.NewRoutes("https://skjer.bekk.no")

	queries := NewQueries(api, directory, id, &log)
	tokens := NewTokenService(store, api, id, &log)
	return &services{
		srv:          srv,
		store:        store,
		queries:      queries,
		tokens:       tokens,
		events:       NewEventService(api, tokens, store, queries, nil, routes, &log),
		participants: NewParticipantService(api, tokens, queries, routes, keyTranslator{}, &log),
	}
}

// validEdit is a two-spot event two weeks from now, open for registration.
func validEdit(now time.Time) entities.EditEvent {
	e := entities.InitialEditEvent("kari@bekk.no", "Kari Nordmann", now)
	day := entities.ToEditDate(entities.DateOf(now.AddDate(0, 0, 14)))
	e.Start.Date, e.End.Date = day, day
	e.Title = "Fagdag"
	e.Description = "Faglig påfyll for alle"
	e.Location = "Skuret"
	e.MaxParticipants = entities.EditMaxParticipants{Limited: true, Value: "2"}
	return e
}

func participantForm(name, email string) entities.EditParticipant {
	return entities.EditParticipant{Name: name, Email: email}
}
