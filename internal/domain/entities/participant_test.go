package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrangement/pkg/tz"
)

func TestParticipantWriteModelDropsBlankOptionalAnswers(t *testing.T) {
	questions := []Question{
		{ID: 1, Question: "Allergier?", Required: true},
		{ID: 2, Question: "Noe mer?"},
	}
	edit := InitialParticipant(questions, "ola@bekk.no", "Ola Nordmann", "Teknologi")
	edit.Answers[0].Answer = "laktose"

	r := ParseEditParticipant(edit, questions)
	require.True(t, r.IsValid(), r.Errors())

	w := ToParticipantWriteModel(r.Value(), validEvent(), NewRoutes("https://skjer.bekk.no"))
	assert.Equal(t, []Answer{{QuestionID: 1, Answer: "laktose"}}, w.ParticipantAnswers)
	assert.Equal(t, Email{Address: "ola@bekk.no"}, w.Email)
	assert.Equal(t,
		"https://skjer.bekk.no/events/{eventId}/cancel/{email}?cancellationToken=%7BcancellationToken%7D",
		w.CancelURLTemplate)
}

func TestParseEditParticipantRequiresAnswers(t *testing.T) {
	questions := []Question{{ID: 7, Question: "Hvilken buss?", Required: true}}
	edit := InitialParticipant(questions, "ola@bekk.no", "Ola Nordmann", "")

	r := ParseEditParticipant(edit, questions)
	require.False(t, r.IsValid())
	assert.Equal(t, []string{"Du må svare på dette spørsmålet"}, r.Errors().ForField("participantAnswers.7"))
}

func TestParseParticipantViewModel(t *testing.T) {
	p, err := ParseParticipantViewModel(ParticipantViewModel{
		Name:       "Ola Nordmann",
		Department: "Design",
		EventID:    "e1",
		ParticipantAnswers: []QuestionAndAnswer{
			{QuestionID: 1, EventID: "e1", Question: "Allergier?", Answer: "ingen"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, Email{}, p.Email)
	assert.Equal(t, []Answer{{QuestionID: 1, Answer: "ingen"}}, p.Answers)

	_, err = ParseParticipantViewModel(ParticipantViewModel{Name: "O", Email: "ola@bekk.no"})
	assert.Error(t, err)
}

func TestAvailabilityWithZeroLimitAndWaitingList(t *testing.T) {
	e := validEvent()
	e.MaxParticipants = Limited(0)
	e.HasWaitingList = true

	a := AvailabilityOf(e, 0)
	assert.True(t, a.Full)
	assert.Equal(t, 0, a.AvailableSpots)
	assert.Equal(t, OutcomeWaitingList, OutcomeOf(e, 0))

	a = AvailabilityOf(e, 3)
	assert.Equal(t, 3, a.WaitingList)

	e.HasWaitingList = false
	assert.Equal(t, OutcomeRejected, OutcomeOf(e, 0))
}

func TestStateOf(t *testing.T) {
	e := validEvent()
	open := time.Date(2026, 11, 10, 12, 0, 0, 0, tz.Oslo)

	assert.Equal(t, StateRediger, StateOf(e, StateInput{CanEdit: true, WaitingListSpot: NotRegistered}, open))
	assert.Equal(t, StatePlass, StateOf(e, StateInput{NumberOfParticipants: 3, WaitingListSpot: NotRegistered}, open))
	assert.Equal(t, StatePlassPaVenteliste, StateOf(e, StateInput{NumberOfParticipants: 40, WaitingListSpot: NotRegistered}, open))
	assert.Equal(t, StatePameldt, StateOf(e, StateInput{WaitingListSpot: 0}, open))
	assert.Equal(t, StatePaVenteliste, StateOf(e, StateInput{WaitingListSpot: 2}, open))
	assert.Equal(t, StateIkkeApnet, StateOf(e, StateInput{WaitingListSpot: NotRegistered}, open.AddDate(0, 0, -20)))
	assert.Equal(t, StatePameldingHarStengt, StateOf(e, StateInput{WaitingListSpot: NotRegistered}, open.AddDate(0, 0, 11)))
	assert.Equal(t, StateAvsluttet, StateOf(e, StateInput{WaitingListSpot: NotRegistered}, open.AddDate(0, 1, 0)))

	e.HasWaitingList = false
	assert.Equal(t, StateFullt, StateOf(e, StateInput{NumberOfParticipants: 41, WaitingListSpot: NotRegistered}, open))

	e.IsCancelled = true
	assert.Equal(t, StateAvlyst, StateOf(e, StateInput{WaitingListSpot: NotRegistered}, open))
}

func TestClosedReasonOf(t *testing.T) {
	e := validEvent()
	closeAt := *e.CloseRegistrationTime

	assert.Equal(t, ClosedNone, ClosedReasonOf(e, 0, closeAt.Add(-2*time.Hour)))
	assert.Equal(t, ClosingSoon, ClosedReasonOf(e, 0, closeAt.Add(-10*time.Minute)))
	assert.Equal(t, ClosedRegistration, ClosedReasonOf(e, 0, closeAt.Add(time.Minute)))
	assert.Equal(t, ClosedNotYetOpen, ClosedReasonOf(e, 0, e.OpenForRegistrationTime.Add(-time.Minute)))
	assert.Equal(t, ClosedInThePast, ClosedReasonOf(e, 0, e.End.Instant().Add(time.Minute)))

	e.HasWaitingList = false
	assert.Equal(t, ClosedFull, ClosedReasonOf(e, 40, closeAt.Add(-2*time.Hour)))
}
