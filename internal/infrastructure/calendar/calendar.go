package calendar

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"arrangement/internal/domain/entities"
)

const productID = "-//Bekk//Arrangement//NO"

// Item is an event with the id it is published under.
type Item struct {
	ID    string
	Event entities.Event
}

// ExportEvents renders events as an iCalendar document. Cancelled events
// are kept with STATUS:CANCELLED so subscribers drop them.
func ExportEvents(routes entities.Routes, now time.Time, items ...Item) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, it := range items {
		e := it.Event
		ve := cal.AddEvent(it.ID + "@arrangement.bekk.no")
		ve.SetDtStampTime(now.UTC())
		ve.SetStartAt(e.Start.Instant().UTC())
		ve.SetEndAt(e.End.Instant().UTC())
		ve.SetSummary(e.Title)
		ve.SetLocation(e.Location)
		ve.SetDescription(e.Description)
		ve.SetURL(routes.EventURL(it.ID, e))
		if e.OrganizerEmail.Address != "" {
			ve.SetOrganizer("mailto:"+e.OrganizerEmail.Address, ical.WithCN(e.OrganizerName))
		}
		if e.IsCancelled {
			ve.SetStatus(ical.ObjectStatusCancelled)
		} else {
			ve.SetStatus(ical.ObjectStatusConfirmed)
		}
	}
	return cal.Serialize()
}

// ExportOfficeEvents renders one day of the office calendar.
func ExportOfficeEvents(now time.Time, events []entities.OfficeEvent) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, oe := range events {
		ve := cal.AddEvent(oe.ID + "@office.bekk.no")
		ve.SetDtStampTime(now.UTC())
		ve.SetStartAt(oe.StartTime.UTC())
		ve.SetEndAt(oe.EndTime.UTC())
		ve.SetSummary(oe.Title)
		ve.SetLocation(oe.Location)
		ve.SetDescription(oe.Description)
		if !oe.ModifiedAt.IsZero() {
			ve.SetModifiedAt(oe.ModifiedAt.UTC())
		}
	}
	return cal.Serialize()
}
