package arrangementsvc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrangement/internal/domain"
	"arrangement/internal/domain/entities"
	"arrangement/internal/remotedata"
)

const eventID = "6f1c1a4e-8a55-4d47-9a0e-2f3b7f7f6a01"

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func newTestClient(t *testing.T, r chi.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	log := zerolog.Nop()
	return NewClient(srv.URL, staticToken("tok"), 5*time.Second, &log)
}

func TestGetEventSendsBearerAndDecodes(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/events/{id}", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
		assert.Equal(t, eventID, chi.URLParam(req, "id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"title":"Fagdag","maxParticipants":40,"startDate":{"date":{"year":2026,"month":11,"day":27},"time":{"hour":17,"minute":0}}}`)
	})
	c := newTestClient(t, r)

	vm, err := c.GetEvent(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, "Fagdag", vm.Title)
	require.NotNil(t, vm.MaxParticipants)
	assert.Equal(t, 40, *vm.MaxParticipants)
	assert.Equal(t, 27, vm.StartDate.Date.Day)
}

func TestInvalidEventIDIsRejectedLocally(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		t.Errorf("unexpected request %s", req.URL)
	})
	c := newTestClient(t, r)

	_, err := c.GetEvent(context.Background(), "../admin")
	assert.ErrorIs(t, err, domain.ErrInvalidEventID)
}

func TestNotFoundKeepsStatusAndSentinel(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/events/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "Arrangementet finnes ikke")
	})
	c := newTestClient(t, r)

	_, err := c.GetEvent(context.Background(), eventID)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode())

	status, msg := remotedata.Classify(err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Arrangementet finnes ikke", msg)
}

func TestJSONErrorBodyAndAuthStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/events", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"userMessage":"Logg inn"}`)
	})
	c := newTestClient(t, r)

	_, err := c.GetEvents(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, NeedsToAuthenticate(apiErr.Status))
	assert.Equal(t, "Logg inn", apiErr.UserMessage())
	assert.False(t, NeedsToAuthenticate(http.StatusNotFound))
}

func TestPostParticipantEscapesEmailAndSendsWriteModel(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/events/{id}/participants/{email}", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "ola+test@bekk.no", chi.URLParam(req, "email"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, map[string]any{"email": "ola+test@bekk.no"}, body["email"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"participant":{"name":"Ola","email":"ola+test@bekk.no","eventId":"`+eventID+`"},"cancellationToken":"ct"}`)
	})
	c := newTestClient(t, r)

	out, err := c.PostParticipant(context.Background(), eventID, "ola+test@bekk.no", entities.ParticipantWriteModel{
		Name:  "Ola",
		Email: entities.Email{Address: "ola+test@bekk.no"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ct", out.CancellationToken)
}

func TestDeleteEventSendsMessageAndToken(t *testing.T) {
	r := chi.NewRouter()
	r.Delete("/events/{id}", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "et", req.URL.Query().Get("editToken"))
		var msg string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&msg))
		assert.Equal(t, "Avlyst grunnet snø", msg)
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, r)

	require.NoError(t, c.DeleteEvent(context.Background(), eventID, "et", "Avlyst grunnet snø"))
}

func TestShortnameLookupAndCount(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/events/id", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "fagdag", req.URL.Query().Get("shortname"))
		_, _ = io.WriteString(w, `"`+eventID+`"`)
	})
	r.Get("/events/{id}/participants/count", func(w http.ResponseWriter, req *http.Request) {
		_, _ = io.WriteString(w, `12`)
	})
	c := newTestClient(t, r)

	id, err := c.GetEventIDByShortname(context.Background(), "fagdag")
	require.NoError(t, err)
	assert.Equal(t, eventID, id)

	n, err := c.GetNumberOfParticipants(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestGetClientConfig(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/config", func(w http.ResponseWriter, req *http.Request) {
		_, _ = io.WriteString(w, `{"employeeSvcUrl":"https://employees.example","audience":"aud"}`)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	cfg, err := GetClientConfig(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "https://employees.example", cfg.EmployeeSvcURL)
	assert.Equal(t, "aud", cfg.Audience)
}
