package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"arrangement/internal/domain"
	"arrangement/internal/domain/entities"
	"arrangement/internal/ports/output"
)

type ParticipantService struct {
	api        output.ArrangementAPI
	tokens     *TokenService
	queries    *Queries
	routes     entities.Routes
	translator output.T
	now        func() time.Time
	log        *zerolog.Logger
}

func NewParticipantService(
	api output.ArrangementAPI,
	tokens *TokenService,
	queries *Queries,
	routes entities.Routes,
	translator output.T,
	log *zerolog.Logger,
) *ParticipantService {
	return &ParticipantService{
		api:        api,
		tokens:     tokens,
		queries:    queries,
		routes:     routes,
		translator: translator,
		now:        time.Now,
		log:        log,
	}
}

// Register signs edit up for the event and returns a confirmation in
// locale. Form errors come back as validation.Errors without contacting
// the server.
func (s *ParticipantService) Register(ctx context.Context, locale, eventID string, edit entities.EditParticipant) (string, error) {
	event, err := s.queries.Event(ctx, eventID).Unwrap()
	if err != nil {
		return "", err
	}
	if event.IsCancelled {
		return "", domain.ErrEventCancelled
	}
	if !entities.IsOpen(event, s.now()) {
		return "", domain.ErrRegistrationClosed
	}
	participant, err := entities.ParseEditParticipant(edit, event.ParticipantQuestions).Unwrap()
	if err != nil {
		return "", err
	}

	s.queries.ForgetParticipants(eventID)
	count, err := s.queries.NumberOfParticipants(ctx, eventID).Unwrap()
	if err != nil {
		return "", err
	}
	outcome := entities.OutcomeOf(event, count)
	if outcome == entities.OutcomeRejected {
		return "", domain.ErrEventFull
	}

	email := participant.Email.Address
	created, err := s.api.PostParticipant(ctx, eventID, email, entities.ToParticipantWriteModel(participant, event, s.routes))
	if err != nil {
		return "", fmt.Errorf("post participant: %w", err)
	}
	err = s.tokens.SaveParticipation(ctx, entities.Participation{
		EventID:            eventID,
		Email:              email,
		CancellationToken:  created.CancellationToken,
		QuestionAndAnswers: created.Participant.ParticipantAnswers,
	})
	if err != nil {
		return "", err
	}
	s.queries.ForgetParticipants(eventID)
	s.log.Info().Str("event_id", eventID).Bool("waiting_list", outcome == entities.OutcomeWaitingList).Msg("participant registered")

	key := "registration.attending"
	if outcome == entities.OutcomeWaitingList {
		key = "registration.waiting_list"
	}
	return s.translator.T(locale, key, map[string]any{"Title": event.Title}), nil
}

// Cancel withdraws a registration. An empty token is looked up among the
// saved participations.
func (s *ParticipantService) Cancel(ctx context.Context, eventID, email, cancellationToken string) error {
	if cancellationToken == "" {
		p, ok, err := s.tokens.Participation(ctx, eventID, email)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrMissingCancelToken
		}
		cancellationToken = p.CancellationToken
	}
	if err := s.api.DeleteParticipant(ctx, eventID, email, cancellationToken); err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if err := s.tokens.RemoveParticipation(ctx, eventID, email); err != nil {
		return err
	}
	s.queries.ForgetParticipants(eventID)
	s.log.Info().Str("event_id", eventID).Msg("participation cancelled")
	return nil
}

// Participants lists attendees and waiting list. Without an edit token the
// server omits e-mail addresses.
func (s *ParticipantService) Participants(ctx context.Context, eventID string) (entities.ParticipantsWithWaitingList, error) {
	tok, err := s.tokens.EditToken(ctx, eventID)
	if err != nil {
		return entities.ParticipantsWithWaitingList{}, err
	}
	return s.queries.Participants(ctx, eventID, tok).Unwrap()
}

// Export returns the participant spreadsheet as served by the API.
func (s *ParticipantService) Export(ctx context.Context, eventID string) ([]byte, error) {
	tok, err := s.tokens.RequireEditToken(ctx, eventID)
	if err != nil {
		return nil, err
	}
	b, err := s.api.GetParticipantExport(ctx, eventID, tok)
	if err != nil {
		return nil, fmt.Errorf("export participants: %w", err)
	}
	return b, nil
}

// Status is the viewer's state for an event. email is the address the
// viewer signed up with, if any.
func (s *ParticipantService) Status(ctx context.Context, eventID, email string) (entities.ViewerStatus, error) {
	event, err := s.queries.Event(ctx, eventID).Unwrap()
	if err != nil {
		return entities.ViewerStatus{}, err
	}
	count, err := s.queries.NumberOfParticipants(ctx, eventID).Unwrap()
	if err != nil {
		return entities.ViewerStatus{}, err
	}
	spot, err := s.queries.WaitinglistSpot(ctx, eventID, email).Unwrap()
	if err != nil {
		return entities.ViewerStatus{}, err
	}
	tok, err := s.tokens.EditToken(ctx, eventID)
	if err != nil {
		return entities.ViewerStatus{}, err
	}
	now := s.now()
	return entities.ViewerStatus{
		State: entities.StateOf(event, entities.StateInput{
			CanEdit:              tok != "",
			NumberOfParticipants: count,
			WaitingListSpot:      spot,
		}, now),
		Closed:       entities.ClosedReasonOf(event, count, now),
		Availability: entities.AvailabilityOf(event, count),
		Participants: count,
	}, nil
}
