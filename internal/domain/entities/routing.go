package entities

import (
	"net/url"
	"strings"
)

const (
	EditTokenKey         = "editToken"
	CancellationTokenKey = "cancellationToken"
)

// Routes builds links into the web frontend. The API stores the templates
// and fills in {eventId}, {shortname}, {email} and the tokens when it sends
// mail.
type Routes struct {
	Origin string
}

func NewRoutes(origin string) Routes {
	return Routes{Origin: strings.TrimRight(origin, "/")}
}

func queryString(key, value string) string {
	if value == "" {
		return ""
	}
	return "?" + url.Values{key: {value}}.Encode()
}

func ViewEventRoute(eventID string) string { return "/events/" + eventID }

func ViewEventShortnameRoute(shortname string) string { return "/" + shortname }

func EditEventRoute(eventID, editToken string) string {
	return "/events/" + eventID + "/edit" + queryString(EditTokenKey, editToken)
}

func CancelParticipantRoute(eventID, email, cancellationToken string) string {
	return "/events/" + eventID + "/cancel/" + email + queryString(CancellationTokenKey, cancellationToken)
}

func OfficeEventRoute(date string) string { return "/office-events/" + date }

// ViewURLTemplate links to the shortname route when the event has one.
func (r Routes) ViewURLTemplate(e Event) string {
	if e.Shortname != "" {
		return r.Origin + ViewEventShortnameRoute("{shortname}")
	}
	return r.Origin + ViewEventRoute("{eventId}")
}

func (r Routes) EditURLTemplate() string {
	return r.Origin + EditEventRoute("{eventId}", "{editToken}")
}

func (r Routes) CancelParticipationURLTemplate() string {
	return r.Origin + CancelParticipantRoute("{eventId}", "{email}", "{cancellationToken}")
}

func (r Routes) URLFromShortname(shortname string) string {
	return r.Origin + ViewEventShortnameRoute(shortname)
}

func (r Routes) EventURL(eventID string, e Event) string {
	if e.Shortname != "" {
		return r.URLFromShortname(e.Shortname)
	}
	return r.Origin + ViewEventRoute(eventID)
}
