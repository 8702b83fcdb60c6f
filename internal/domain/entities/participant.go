package entities

import (
	"strings"

	"arrangement/internal/domain"
	"arrangement/internal/domain/validation"
)

// Participant is a validated registration for one event.
type Participant struct {
	Name       string
	Email      Email
	Department string
	Answers    []Answer
}

// EditParticipant is the registration form.
type EditParticipant struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Department string   `json:"department"`
	Answers    []Answer `json:"participantAnswers"`
}

// QuestionAndAnswer is an answer as the API returns it.
type QuestionAndAnswer struct {
	QuestionID int    `json:"questionId"`
	EventID    string `json:"eventId"`
	Email      string `json:"email"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// ParticipantViewModel is what the API returns for a participant. Email is
// omitted when the caller lacks the edit token.
type ParticipantViewModel struct {
	Name               string              `json:"name"`
	Email              string              `json:"email,omitempty"`
	Department         string              `json:"department"`
	EventID            string              `json:"eventId"`
	RegistrationTime   int64               `json:"registrationTime"`
	ParticipantAnswers []QuestionAndAnswer `json:"participantAnswers"`
}

// ParticipantWriteModel is the body of POST /events/{id}/participants/{email}.
type ParticipantWriteModel struct {
	Name               string   `json:"name"`
	Email              Email    `json:"email"`
	Department         string   `json:"department"`
	ParticipantAnswers []Answer `json:"participantAnswers"`
	ViewURLTemplate    string   `json:"viewUrlTemplate"`
	CancelURLTemplate  string   `json:"cancelUrlTemplate"`
}

// NewParticipantViewModel is the response to a registration.
type NewParticipantViewModel struct {
	Participant       ParticipantViewModel `json:"participant"`
	CancellationToken string               `json:"cancellationToken"`
}

type ParticipantViewModelsWithWaitingList struct {
	Attendees   []ParticipantViewModel `json:"attendees"`
	WaitingList []ParticipantViewModel `json:"waitingList,omitempty"`
}

// ParticipantsWithWaitingList holds parsed participants. WaitingList is nil
// when the event has none.
type ParticipantsWithWaitingList struct {
	Attendees   []Participant
	WaitingList []Participant
}

// InitialParticipant prefills the form with the signed-in employee and one
// empty answer per question.
func InitialParticipant(questions []Question, email, name, department string) EditParticipant {
	answers := make([]Answer, 0, len(questions))
	for _, q := range questions {
		answers = append(answers, Answer{QuestionID: q.ID})
	}
	return EditParticipant{Name: name, Email: email, Department: department, Answers: answers}
}

// ParseEditParticipant validates the form against the event's questions.
func ParseEditParticipant(e EditParticipant, questions []Question) validation.Result[Participant] {
	var c validation.Collector
	p := Participant{
		Name:       validation.Field(&c, "name", ParseName(e.Name)),
		Email:      validation.Field(&c, "email", ParseEditEmail(e.Email)),
		Department: e.Department,
		Answers:    validation.Field(&c, "participantAnswers", ParseAnswers(questions, e.Answers)),
	}
	return validation.Finish(&c, p)
}

func ToEditParticipant(p Participant) EditParticipant {
	return EditParticipant{
		Name:       p.Name,
		Email:      ToEditEmail(p.Email),
		Department: p.Department,
		Answers:    append([]Answer(nil), p.Answers...),
	}
}

// ToParticipantWriteModel drops blank answers so optional questions left
// empty are not sent.
func ToParticipantWriteModel(p Participant, event Event, routes Routes) ParticipantWriteModel {
	answers := make([]Answer, 0, len(p.Answers))
	for _, a := range p.Answers {
		if strings.TrimSpace(a.Answer) == "" {
			continue
		}
		answers = append(answers, a)
	}
	return ParticipantWriteModel{
		Name:               p.Name,
		Email:              p.Email,
		Department:         p.Department,
		ParticipantAnswers: answers,
		ViewURLTemplate:    routes.ViewURLTemplate(event),
		CancelURLTemplate:  routes.CancelParticipationURLTemplate(),
	}
}

// ParseParticipantViewModel reads a participant returned by the API. A
// missing e-mail is accepted, everything else must satisfy the invariants.
func ParseParticipantViewModel(v ParticipantViewModel) (Participant, error) {
	var c validation.Collector
	p := Participant{
		Name:       validation.Field(&c, "name", ParseName(v.Name)),
		Department: v.Department,
		Answers:    make([]Answer, 0, len(v.ParticipantAnswers)),
	}
	if v.Email != "" {
		p.Email = validation.Field(&c, "email", ParseEditEmail(v.Email))
	}
	for _, qa := range v.ParticipantAnswers {
		a := Answer{QuestionID: qa.QuestionID, Answer: qa.Answer}
		p.Answers = append(p.Answers, validation.Field(&c, "participantAnswers",
			ParseAnswer(Question{ID: qa.QuestionID, Question: qa.Question}, a)))
	}
	res := validation.Finish(&c, p)
	if !res.IsValid() {
		return Participant{}, domain.NewContractError("participant", res.Errors())
	}
	return res.Value(), nil
}

func ParseParticipantsWithWaitingList(v ParticipantViewModelsWithWaitingList) (ParticipantsWithWaitingList, error) {
	var out ParticipantsWithWaitingList
	out.Attendees = make([]Participant, 0, len(v.Attendees))
	for _, a := range v.Attendees {
		p, err := ParseParticipantViewModel(a)
		if err != nil {
			return ParticipantsWithWaitingList{}, err
		}
		out.Attendees = append(out.Attendees, p)
	}
	if v.WaitingList != nil {
		out.WaitingList = make([]Participant, 0, len(v.WaitingList))
		for _, w := range v.WaitingList {
			p, err := ParseParticipantViewModel(w)
			if err != nil {
				return ParticipantsWithWaitingList{}, err
			}
			out.WaitingList = append(out.WaitingList, p)
		}
	}
	return out, nil
}
