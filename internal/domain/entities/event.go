package entities

import (
	"strconv"
	"time"

	"arrangement/internal/domain"
	"arrangement/internal/domain/validation"
	"arrangement/pkg/tz"
)

// Event is a validated event. Optional text fields are empty when absent.
type Event struct {
	Title                   string
	Description             string
	Location                string
	Offices                 *PickedOffices
	Start                   DateTime
	End                     DateTime
	OpenForRegistrationTime time.Time
	CloseRegistrationTime   *time.Time
	OrganizerName           string
	OrganizerEmail          Email
	MaxParticipants         MaxParticipants
	ParticipantQuestions    []Question
	Program                 string
	HasWaitingList          bool
	IsCancelled             bool
	IsExternal              bool
	IsHidden                bool
	NumberOfParticipants    int
	Shortname               string
	CustomHexColor          string
}

// EditEvent is the form-bound version of Event. It is stored as JSON in
// the session store while a create or edit is in progress.
type EditEvent struct {
	Title                   string               `json:"title"`
	Description             string               `json:"description"`
	Location                string               `json:"location"`
	Offices                 *PickedOffices       `json:"offices,omitempty"`
	Start                   EditDateTime         `json:"start"`
	End                     EditDateTime         `json:"end"`
	OpenForRegistrationTime EditDateTime         `json:"openForRegistrationTime"`
	CloseRegistrationTime   *EditDateTime        `json:"closeRegistrationTime,omitempty"`
	OrganizerName           string               `json:"organizerName"`
	OrganizerEmail          string               `json:"organizerEmail"`
	MaxParticipants         EditMaxParticipants  `json:"maxParticipants"`
	ParticipantQuestions    []Question           `json:"participantQuestions"`
	Program                 string               `json:"program,omitempty"`
	HasWaitingList          bool                 `json:"hasWaitingList"`
	IsCancelled             bool                 `json:"isCancelled"`
	IsExternal              bool                 `json:"isExternal"`
	IsHidden                bool                 `json:"isHidden"`
	NumberOfParticipants    int                  `json:"numberOfParticipants"`
	Shortname               string               `json:"shortname,omitempty"`
	CustomHexColor          string               `json:"customHexColor,omitempty"`
}

// EventViewModel is what the API returns for an event.
type EventViewModel struct {
	Title                   string                 `json:"title"`
	Description             string                 `json:"description"`
	Location                string                 `json:"location"`
	Offices                 []Office               `json:"offices,omitempty"`
	StartDate               DateTime               `json:"startDate"`
	EndDate                 DateTime               `json:"endDate"`
	OpenForRegistrationTime TimeInstanceViewModel  `json:"openForRegistrationTime"`
	CloseRegistrationTime   *TimeInstanceViewModel `json:"closeRegistrationTime,omitempty"`
	OrganizerName           string                 `json:"organizerName"`
	OrganizerEmail          string                 `json:"organizerEmail"`
	MaxParticipants         *int                   `json:"maxParticipants,omitempty"`
	ParticipantQuestions    []Question             `json:"participantQuestions"`
	Program                 string                 `json:"program,omitempty"`
	HasWaitingList          bool                   `json:"hasWaitingList"`
	IsCancelled             bool                   `json:"isCancelled"`
	IsExternal              bool                   `json:"isExternal"`
	IsHidden                bool                   `json:"isHidden"`
	NumberOfParticipants    int                    `json:"numberOfParticipants"`
	Shortname               string                 `json:"shortname,omitempty"`
	CustomHexColor          string                 `json:"customHexColor,omitempty"`
}

// EventWithID is an event view model as listed by the API.
type EventWithID struct {
	ID string `json:"id"`
	EventViewModel
}

// EventWriteModel is the body of POST and PUT /events.
type EventWriteModel struct {
	Title                          string                 `json:"title"`
	Description                    string                 `json:"description"`
	Location                       string                 `json:"location"`
	Offices                        []Office               `json:"offices,omitempty"`
	StartDate                      DateTime               `json:"startDate"`
	EndDate                        DateTime               `json:"endDate"`
	OpenForRegistrationTime        TimeInstanceViewModel  `json:"openForRegistrationTime"`
	CloseRegistrationTime          *TimeInstanceViewModel `json:"closeRegistrationTime,omitempty"`
	OrganizerName                  string                 `json:"organizerName"`
	OrganizerEmail                 string                 `json:"organizerEmail"`
	MaxParticipants                *int                   `json:"maxParticipants,omitempty"`
	ViewURLTemplate                string                 `json:"viewUrlTemplate"`
	EditURLTemplate                string                 `json:"editUrlTemplate"`
	CancelParticipationURLTemplate string                 `json:"cancelParticipationUrlTemplate"`
	ParticipantQuestions           []Question             `json:"participantQuestions"`
	Program                        string                 `json:"program,omitempty"`
	HasWaitingList                 bool                   `json:"hasWaitingList"`
	IsExternal                     bool                   `json:"isExternal"`
	IsHidden                       bool                   `json:"isHidden"`
	Shortname                      string                 `json:"shortname,omitempty"`
	CustomHexColor                 string                 `json:"customHexColor,omitempty"`
}

// NewEventViewModel is the response to POST /events.
type NewEventViewModel struct {
	Event     EventWithID `json:"event"`
	EditToken string      `json:"editToken"`
}

// ParseEditEvent validates every field and collects all errors.
func ParseEditEvent(e EditEvent) validation.Result[Event] {
	var c validation.Collector
	start := ParseEditDateTime(e.Start)
	end := ParseEditDateTime(e.End)
	ev := Event{
		Title:                validation.Field(&c, "title", ParseTitle(e.Title)),
		Description:          validation.Field(&c, "description", ParseDescription(e.Description)),
		Location:             validation.Field(&c, "location", ParseLocation(e.Location)),
		Start:                validation.Field(&c, "start", start),
		End:                  validation.Field(&c, "end", end),
		OrganizerName:        validation.Field(&c, "organizerName", ParseHost(e.OrganizerName)),
		OrganizerEmail:       validation.Field(&c, "organizerEmail", ParseEditEmail(e.OrganizerEmail)),
		MaxParticipants:      validation.Field(&c, "maxParticipants", ParseMaxParticipants(e.MaxParticipants)),
		ParticipantQuestions: validation.Field(&c, "participantQuestions", ParseQuestions(e.ParticipantQuestions)),
		Program:              validation.Field(&c, "program", ParseProgram(e.Program)),
		Shortname:            validation.Field(&c, "shortname", ParseShortname(e.Shortname)),
		CustomHexColor:       validation.Field(&c, "customHexColor", ParseCustomHexColor(e.CustomHexColor)),
		HasWaitingList:       e.HasWaitingList,
		IsCancelled:          e.IsCancelled,
		IsExternal:           e.IsExternal,
		IsHidden:             e.IsHidden,
		NumberOfParticipants: e.NumberOfParticipants,
	}
	if e.Offices != nil {
		offices := validation.Field(&c, "offices", ParsePickedOffices(*e.Offices))
		ev.Offices = &offices
	}
	open := ParseEditTimeInstance(e.OpenForRegistrationTime)
	ev.OpenForRegistrationTime = validation.Field(&c, "openForRegistrationTime", open)
	if e.CloseRegistrationTime != nil {
		closeRes := ParseEditTimeInstance(*e.CloseRegistrationTime)
		closeAt := validation.Field(&c, "closeRegistrationTime", closeRes)
		ev.CloseRegistrationTime = &closeAt
		if open.IsValid() && closeRes.IsValid() {
			c.Check("closeRegistrationTime",
				validation.Check("Påmeldingen kan ikke stenge før den åpner", closeAt.Before(ev.OpenForRegistrationTime)))
		}
	}
	if start.IsValid() && end.IsValid() {
		c.Check("end", validation.Check("Starttidspunkt må være før sluttidspunkt", ev.Start.After(ev.End)))
	}
	return validation.Finish(&c, ev)
}

func ToEditEvent(e Event) EditEvent {
	edit := EditEvent{
		Title:                   e.Title,
		Description:             e.Description,
		Location:                e.Location,
		Start:                   ToEditDateTime(e.Start),
		End:                     ToEditDateTime(e.End),
		OpenForRegistrationTime: ToEditTimeInstance(e.OpenForRegistrationTime),
		OrganizerName:           e.OrganizerName,
		OrganizerEmail:          ToEditEmail(e.OrganizerEmail),
		MaxParticipants:         ToEditMaxParticipants(e.MaxParticipants),
		ParticipantQuestions:    append([]Question(nil), e.ParticipantQuestions...),
		Program:                 e.Program,
		HasWaitingList:          e.HasWaitingList,
		IsCancelled:             e.IsCancelled,
		IsExternal:              e.IsExternal,
		IsHidden:                e.IsHidden,
		NumberOfParticipants:    e.NumberOfParticipants,
		Shortname:               e.Shortname,
		CustomHexColor:          e.CustomHexColor,
	}
	if e.Offices != nil {
		o := *e.Offices
		edit.Offices = &o
	}
	if e.CloseRegistrationTime != nil {
		c := ToEditTimeInstance(*e.CloseRegistrationTime)
		edit.CloseRegistrationTime = &c
	}
	return edit
}

// ToEventWriteModel builds the request body, embedding the link templates
// the API uses in outgoing mail.
func ToEventWriteModel(e Event, routes Routes) EventWriteModel {
	w := EventWriteModel{
		Title:                          e.Title,
		Description:                    e.Description,
		Location:                       e.Location,
		Offices:                        pickedOfficesToList(e.Offices),
		StartDate:                      e.Start,
		EndDate:                        e.End,
		OpenForRegistrationTime:        ToTimeInstanceWriteModel(e.OpenForRegistrationTime),
		OrganizerName:                  e.OrganizerName,
		OrganizerEmail:                 ToEmailWriteModel(e.OrganizerEmail),
		MaxParticipants:                e.MaxParticipants.ToWriteModel(),
		ViewURLTemplate:                routes.ViewURLTemplate(e),
		EditURLTemplate:                routes.EditURLTemplate(),
		CancelParticipationURLTemplate: routes.CancelParticipationURLTemplate(),
		ParticipantQuestions:           nonNilQuestions(e.ParticipantQuestions),
		Program:                        e.Program,
		HasWaitingList:                 e.HasWaitingList,
		IsExternal:                     e.IsExternal,
		IsHidden:                       e.IsHidden,
		Shortname:                      e.Shortname,
		CustomHexColor:                 e.CustomHexColor,
	}
	if e.CloseRegistrationTime != nil {
		c := ToTimeInstanceWriteModel(*e.CloseRegistrationTime)
		w.CloseRegistrationTime = &c
	}
	return w
}

// ToEventViewModel renders an event the way the API returns it.
func ToEventViewModel(e Event) EventViewModel {
	v := EventViewModel{
		Title:                   e.Title,
		Description:             e.Description,
		Location:                e.Location,
		Offices:                 pickedOfficesToList(e.Offices),
		StartDate:               e.Start,
		EndDate:                 e.End,
		OpenForRegistrationTime: ToTimeInstanceWriteModel(e.OpenForRegistrationTime),
		OrganizerName:           e.OrganizerName,
		OrganizerEmail:          ToEmailWriteModel(e.OrganizerEmail),
		MaxParticipants:         e.MaxParticipants.ToWriteModel(),
		ParticipantQuestions:    nonNilQuestions(e.ParticipantQuestions),
		Program:                 e.Program,
		HasWaitingList:          e.HasWaitingList,
		IsCancelled:             e.IsCancelled,
		IsExternal:              e.IsExternal,
		IsHidden:                e.IsHidden,
		NumberOfParticipants:    e.NumberOfParticipants,
		Shortname:               e.Shortname,
		CustomHexColor:          e.CustomHexColor,
	}
	if e.CloseRegistrationTime != nil {
		c := ToTimeInstanceWriteModel(*e.CloseRegistrationTime)
		v.CloseRegistrationTime = &c
	}
	return v
}

// ParseEventViewModel reads an event returned by the API. Data that breaks
// the event invariants yields a *domain.ContractError.
func ParseEventViewModel(v EventViewModel) (Event, error) {
	var c validation.Collector
	maxParticipants := Unlimited()
	if v.MaxParticipants != nil {
		maxParticipants = validation.Field(&c, "maxParticipants",
			ParseMaxParticipants(EditMaxParticipants{Limited: true, Value: strconv.Itoa(*v.MaxParticipants)}))
	}
	ev := Event{
		Title:                   validation.Field(&c, "title", ParseTitle(v.Title)),
		Description:             validation.Field(&c, "description", ParseDescription(v.Description)),
		Location:                validation.Field(&c, "location", ParseLocation(v.Location)),
		Offices:                 ParseOffices(v.Offices),
		Start:                   validation.Field(&c, "startDate", ParseDateViewModel(v.StartDate)),
		End:                     validation.Field(&c, "endDate", ParseDateViewModel(v.EndDate)),
		OpenForRegistrationTime: validation.Field(&c, "openForRegistrationTime", ParseTimeInstanceViewModel(v.OpenForRegistrationTime)),
		OrganizerName:           validation.Field(&c, "organizerName", ParseHost(v.OrganizerName)),
		OrganizerEmail:          validation.Field(&c, "organizerEmail", ParseEditEmail(v.OrganizerEmail)),
		MaxParticipants:         maxParticipants,
		ParticipantQuestions:    validation.Field(&c, "participantQuestions", ParseQuestions(v.ParticipantQuestions)),
		Program:                 validation.Field(&c, "program", ParseProgram(v.Program)),
		HasWaitingList:          v.HasWaitingList,
		IsCancelled:             v.IsCancelled,
		IsExternal:              v.IsExternal,
		IsHidden:                v.IsHidden,
		NumberOfParticipants:    v.NumberOfParticipants,
		Shortname:               validation.Field(&c, "shortname", ParseShortname(v.Shortname)),
		CustomHexColor:          v.CustomHexColor,
	}
	if v.CloseRegistrationTime != nil {
		closeAt := validation.Field(&c, "closeRegistrationTime", ParseTimeInstanceViewModel(*v.CloseRegistrationTime))
		ev.CloseRegistrationTime = &closeAt
	}
	res := validation.Finish(&c, ev)
	if !res.IsValid() {
		return Event{}, domain.NewContractError("event", res.Errors())
	}
	return res.Value(), nil
}

// InitialEditEvent is the form state for a new event: today 17:00 to
// 20:00, open for both offices, with a waiting list.
func InitialEditEvent(email, name string, now time.Time) EditEvent {
	today := DateOf(now)
	return EditEvent{
		Offices:                 &PickedOffices{Oslo: true, Trondheim: true},
		Start:                   EditDateTime{Date: ToEditDate(today), Time: ToEditTime(Time{Hour: 17})},
		End:                     EditDateTime{Date: ToEditDate(today), Time: ToEditTime(Time{Hour: 20})},
		OpenForRegistrationTime: ToEditTimeInstance(now.In(tz.Oslo)),
		OrganizerName:           name,
		OrganizerEmail:          email,
		MaxParticipants:         EditMaxParticipants{Limited: true},
		ParticipantQuestions:    []Question{},
		HasWaitingList:          true,
	}
}

// IncrementOneWeek moves the schedule and registration window a week ahead.
func IncrementOneWeek(e Event) Event {
	return ShiftDays(e, 7)
}

// ShiftDays moves the schedule and registration window by days, keeping
// wall-clock times in Oslo.
func ShiftDays(e Event, days int) Event {
	out := e
	out.Start = e.Start.AddDays(days)
	out.End = e.End.AddDays(days)
	out.OpenForRegistrationTime = e.OpenForRegistrationTime.AddDate(0, 0, days)
	if e.CloseRegistrationTime != nil {
		c := e.CloseRegistrationTime.AddDate(0, 0, days)
		out.CloseRegistrationTime = &c
	}
	return out
}

func nonNilQuestions(qs []Question) []Question {
	if qs == nil {
		return []Question{}
	}
	return qs
}
