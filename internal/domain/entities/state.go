package entities

import (
	"math"
	"time"
)

// EventState summarizes an event from the viewer's point of view.
type EventState string

const (
	StateRediger            EventState = "Rediger"
	StateIkkeApnet          EventState = "Ikke åpnet"
	StatePameldingHarStengt EventState = "Påmeldingen har stengt"
	StateAvsluttet          EventState = "Avsluttet"
	StatePameldt            EventState = "Påmeldt"
	StatePaVenteliste       EventState = "På venteliste"
	StatePlass              EventState = "Plass"
	StatePlassPaVenteliste  EventState = "Plass på venteliste"
	StateFullt              EventState = "Fullt"
	StateLaster             EventState = "Laster"
	StateAvlyst             EventState = "Avlyst"
	StateIkkePameldt        EventState = "ikke-påmeldt"
)

// NotRegistered is the waiting list spot of someone not signed up.
const NotRegistered = -1

// Availability is the capacity picture of an event.
type Availability struct {
	Full bool
	// AvailableSpots is math.MaxInt for unlimited events and never negative.
	AvailableSpots int
	// WaitingList is the number of participants beyond the limit.
	WaitingList int
}

// AvailabilityOf computes capacity from the current participant count.
func AvailabilityOf(e Event, numberOfParticipants int) Availability {
	limit, limited := e.MaxParticipants.Limit()
	if !limited {
		return Availability{AvailableSpots: math.MaxInt}
	}
	a := Availability{Full: limit <= numberOfParticipants}
	if a.Full {
		a.WaitingList = numberOfParticipants - limit
	} else {
		a.AvailableSpots = limit - numberOfParticipants
	}
	return a
}

// RegistrationOutcome tells where a new registration will land.
type RegistrationOutcome int

const (
	OutcomeAttending RegistrationOutcome = iota
	OutcomeWaitingList
	OutcomeRejected
)

func OutcomeOf(e Event, numberOfParticipants int) RegistrationOutcome {
	a := AvailabilityOf(e, numberOfParticipants)
	switch {
	case !a.Full:
		return OutcomeAttending
	case e.HasWaitingList:
		return OutcomeWaitingList
	default:
		return OutcomeRejected
	}
}

// IsOpen reports whether registration accepts sign-ups at now.
func IsOpen(e Event, now time.Time) bool {
	if e.IsCancelled || !e.End.Instant().After(now) {
		return false
	}
	if now.Before(e.OpenForRegistrationTime) {
		return false
	}
	if e.CloseRegistrationTime != nil && !now.Before(*e.CloseRegistrationTime) {
		return false
	}
	return true
}

// StateInput carries what the viewer knows beyond the event itself.
type StateInput struct {
	CanEdit              bool
	NumberOfParticipants int
	// WaitingListSpot is NotRegistered, 0 for attending, or the 1-based
	// position on the waiting list.
	WaitingListSpot int
}

func StateOf(e Event, in StateInput, now time.Time) EventState {
	switch {
	case in.CanEdit:
		return StateRediger
	case e.IsCancelled:
		return StateAvlyst
	case !e.End.Instant().After(now):
		return StateAvsluttet
	case in.WaitingListSpot >= 1:
		return StatePaVenteliste
	case in.WaitingListSpot == 0:
		return StatePameldt
	case now.Before(e.OpenForRegistrationTime):
		return StateIkkeApnet
	case e.CloseRegistrationTime != nil && !now.Before(*e.CloseRegistrationTime):
		return StatePameldingHarStengt
	}
	switch OutcomeOf(e, in.NumberOfParticipants) {
	case OutcomeWaitingList:
		return StatePlassPaVenteliste
	case OutcomeRejected:
		return StateFullt
	}
	return StatePlass
}

// ClosedReason explains why a visitor cannot sign up. It maps to a
// translated message.
type ClosedReason string

const (
	ClosedNone         ClosedReason = ""
	ClosedInThePast    ClosedReason = "closed_in_the_past"
	ClosedNotYetOpen   ClosedReason = "closed_not_yet_open"
	ClosedFull         ClosedReason = "closed_full"
	ClosedCancelled    ClosedReason = "closed_cancelled"
	ClosedRegistration ClosedReason = "closed_registration"
	ClosingSoon        ClosedReason = "closing_soon"
)

// ClosedReasonOf checks the reasons in display priority.
func ClosedReasonOf(e Event, numberOfParticipants int, now time.Time) ClosedReason {
	full := AvailabilityOf(e, numberOfParticipants).Full
	switch {
	case e.End.Instant().Before(now):
		return ClosedInThePast
	case now.Before(e.OpenForRegistrationTime):
		return ClosedNotYetOpen
	case full && !e.HasWaitingList:
		return ClosedFull
	case e.IsCancelled:
		return ClosedCancelled
	case e.CloseRegistrationTime == nil:
		return ClosedNone
	}
	left := e.CloseRegistrationTime.Sub(now)
	switch {
	case left <= 0:
		return ClosedRegistration
	case left < time.Hour:
		return ClosingSoon
	}
	return ClosedNone
}

// ViewerStatus bundles what a visitor sees about an event.
type ViewerStatus struct {
	State        EventState
	Closed       ClosedReason
	Availability Availability
	Participants int
}
