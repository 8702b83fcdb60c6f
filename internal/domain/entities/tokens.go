package entities

// EditEventToken grants edit and cancel rights over an event.
type EditEventToken struct {
	EventID   string `json:"eventId"`
	EditToken string `json:"editToken"`
}

// Valid reports whether a token from the server is usable.
func (t EditEventToken) Valid() bool { return t.EventID != "" && t.EditToken != "" }

// EditEventTokenFields are the keys a stored token must have. Their values
// may be empty.
var EditEventTokenFields = []string{"eventId", "editToken"}

// Participation grants cancel rights over one's own registration.
type Participation struct {
	EventID            string              `json:"eventId"`
	Email              string              `json:"email"`
	CancellationToken  string              `json:"cancellationToken"`
	QuestionAndAnswers []QuestionAndAnswer `json:"questionAndAnswers"`
}

// Valid reports whether a participation from the server is usable.
func (p Participation) Valid() bool {
	return p.EventID != "" && p.Email != "" && p.CancellationToken != ""
}

// ParticipationFields are the keys a stored participation must have.
var ParticipationFields = []string{"eventId", "email", "cancellationToken"}

// Key is the natural key of a participation.
func (p Participation) Key() string { return ParticipationKey(p.EventID, p.Email) }

func ParticipationKey(eventID, email string) string { return eventID + ":" + email }

// EventsAndParticipations is the server's record of what an employee
// created and signed up for.
type EventsAndParticipations struct {
	EditableEvents []EditEventToken `json:"editableEvents"`
	Participations []Participation  `json:"participations"`
}

// Employee is an entry from the employee directory.
type Employee struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}
