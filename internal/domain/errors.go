package domain

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	ErrEventNotFound         = errors.New("event not found")
	ErrParticipantNotFound   = errors.New("participant not found")
	ErrMissingEditToken      = errors.New("no edit token saved for event")
	ErrMissingCancelToken    = errors.New("no cancellation token saved for participation")
	ErrNotAuthenticated      = errors.New("not authenticated")
	ErrRegistrationClosed    = errors.New("registration is not open")
	ErrEventFull             = errors.New("event is full")
	ErrEventCancelled        = errors.New("event is cancelled")
	ErrInvalidEventID        = errors.New("invalid event id")
	ErrEmployeeIDUnavailable = errors.New("employee id claim missing from token")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrEventNotFound, "event_not_found"},
	{ErrParticipantNotFound, "participant_not_found"},
	{ErrMissingEditToken, "missing_edit_token"},
	{ErrMissingCancelToken, "missing_cancel_token"},
	{ErrNotAuthenticated, "not_authenticated"},
	{ErrRegistrationClosed, "registration_closed"},
	{ErrEventFull, "event_full"},
	{ErrEventCancelled, "event_cancelled"},
	{ErrInvalidEventID, "invalid_event_id"},
	{ErrEmployeeIDUnavailable, "employee_id_unavailable"},
}

// Code returns the stable code of the first domain error wrapped by err,
// or "" when err carries none.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	var ce *ContractError
	if errors.As(err, &ce) {
		return "contract_violation"
	}
	return ""
}

// ContractError reports a server response that violates domain invariants.
// The server is authoritative, so this is a programming error on one of the
// two sides rather than something a user can fix.
type ContractError struct {
	Entity string
	Reason error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract violation in %s: %v", e.Entity, e.Reason)
}

func (e *ContractError) Unwrap() error { return e.Reason }

func NewContractError(entity string, reason error) *ContractError {
	return &ContractError{Entity: entity, Reason: reason}
}
