package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrangement/internal/domain"
	"arrangement/internal/domain/entities"
)

func createOpenEvent(t *testing.T, s *services, mutate func(*entities.EditEvent)) string {
	t.Helper()
	edit := validEdit(time.Now())
	if mutate != nil {
		mutate(&edit)
	}
	id, err := s.events.CreateEvent(context.Background(), edit)
	require.NoError(t, err)
	return id
}

func TestRegisterSavesParticipation(t *testing.T) {
	s := newServices(t, fakeIdentity{})
	ctx := context.Background()
	id := createOpenEvent(t, s, nil)

	msg, err := s.participants.Register(ctx, "nb", id, participantForm("Ola Nordmann", "ola@bekk.no"))
	require.NoError(t, err)
	assert.Equal(t, "registration.attending:Fagdag", msg)

	p, ok, err := s.tokens.Participation(ctx, id, "ola@bekk.no")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, p.CancellationToken)
}

func TestRegisterFillsWaitingListThenRejects(t *testing.T) {
	s := newServices(t, fakeIdentity{})
	ctx := context.Background()
	id := createOpenEvent(t, s, func(e *entities.EditEvent) {
		e.MaxParticipants = entities.EditMaxParticipants{Limited: true, Value: "1"}
	})
	noWaitingList := createOpenEvent(t, s, func(e *entities.EditEvent) {
		e.MaxParticipants = entities.EditMaxParticipants{Limited: true, Value: "1"}
		e.HasWaitingList = false
	})

	_, err := s.participants.Register(ctx, "nb", id, participantForm("Ola Nordmann", "ola@bekk.no"))
	require.NoError(t, err)
	msg, err := s.participants.Register(ctx, "nb", id, participantForm("Kari Nordmann", "kari@bekk.no"))
	require.NoError(t, err)
	assert.Equal(t, "registration.waiting_list:Fagdag", msg)

	_, err = s.participants.Register(ctx, "nb", noWaitingList, participantForm("Ola Nordmann", "ola@bekk.no"))
	require.NoError(t, err)
	_, err = s.participants.Register(ctx, "nb", noWaitingList, participantForm("Kari Nordmann", "kari@bekk.no"))
	assert.ErrorIs(t, err, domain.ErrEventFull)
	assert.Len(t, s.srv.Participants(noWaitingList), 1)
}

func TestRegisterRefusesClosedAndCancelledEvents(t *testing.T) {
	s := newServices(t, fakeIdentity{})
	ctx := context.Background()
	notOpen := createOpenEvent(t, s, func(e *entities.EditEvent) {
		e.OpenForRegistrationTime = entities.ToEditTimeInstance(time.Now().AddDate(0, 0, 7))
	})
	cancelled := createOpenEvent(t, s, nil)
	require.NoError(t, s.events.CancelEvent(ctx, cancelled, ""))

	_, err := s.participants.Register(ctx, "nb", notOpen, participantForm("Ola Nordmann", "ola@bekk.no"))
	assert.ErrorIs(t, err, domain.ErrRegistrationClosed)
	_, err = s.participants.Register(ctx, "nb", cancelled, participantForm("Ola Nordmann", "ola@bekk.no"))
	assert.ErrorIs(t, err, domain.ErrEventCancelled)

	assert.Zero(t, s.srv.CountRequests("POST /events/"+notOpen+"/participants/ola@bekk.no"))
}

func TestCancelWithoutSavedTokenFails(t *testing.T) {
	s := newServices(t, fakeIdentity{})
	id := createOpenEvent(t, s, nil)

	err := s.participants.Cancel(context.Background(), id, "ola@bekk.no", "")
	assert.ErrorIs(t, err, domain.ErrMissingCancelToken)
}

func TestCancelRemovesParticipation(t *testing.T) {
	s := newServices(t, fakeIdentity{})
	ctx := context.Background()
	id := createOpenEvent(t, s, nil)
	_, err := s.participants.Register(ctx, "nb", id, participantForm("Ola Nordmann", "ola@bekk.no"))
	require.NoError(t, err)

	require.NoError(t, s.participants.Cancel(ctx, id, "ola@bekk.no", ""))
	_, ok, err := s.tokens.Participation(ctx, id, "ola@bekk.no")
	require.NoError(t, err)
	assert.False(t, ok)

	st, err := s.participants.Status(ctx, id, "ola@bekk.no")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Participants)
}

func TestParticipantsShowEmailsOnlyToOrganizer(t *testing.T) {
	s := newServices(t, fakeIdentity{})
	ctx := context.Background()
	id := createOpenEvent(t, s, nil)
	_, err := s.participants.Register(ctx, "nb", id, participantForm("Ola Nordmann", "ola@bekk.no"))
	require.NoError(t, err)

	list, err := s.participants.Participants(ctx, id)
	require.NoError(t, err)
	require.Len(t, list.Attendees, 1)
	assert.Equal(t, "ola@bekk.no", list.Attendees[0].Email.Address)

	export, err := s.participants.Export(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, string(export), "Ola Nordmann;ola@bekk.no")
}

func TestStatusForViewer(t *testing.T) {
	s := newServices(t, fakeIdentity{})
	ctx := context.Background()
	id, _ := s.srv.AddEvent(entities.ToEventViewModel(mustParse(t, validEdit(time.Now()))))

	st, err := s.participants.Status(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, entities.StatePlass, st.State)
	assert.Equal(t, 2, st.Availability.AvailableSpots)

	_, err = s.participants.Register(ctx, "nb", id, participantForm("Ola Nordmann", "ola@bekk.no"))
	require.NoError(t, err)
	st, err = s.participants.Status(ctx, id, "ola@bekk.no")
	require.NoError(t, err)
	assert.Equal(t, entities.StatePameldt, st.State)
	assert.Equal(t, 1, st.Participants)
	assert.Equal(t, 1, st.Availability.AvailableSpots)
}
