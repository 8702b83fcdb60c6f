package entities

import (
	"fmt"
	"strings"
	"time"

	"arrangement/internal/domain/validation"
	"arrangement/pkg/tz"
)

const (
	editDateLayout = "2006-01-02"
	editTimeLayout = "15:04"
)

// Date is a calendar date without zone.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Time is a wall-clock time of day.
type Time struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// DateTime is a wall-clock date and time in Oslo. It is also the wire shape.
type DateTime struct {
	Date Date `json:"date"`
	Time Time `json:"time"`
}

// EditDateTime is the form representation: YYYY-MM-DD and HH:MM strings.
type EditDateTime struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

func DateOf(t time.Time) Date {
	t = t.In(tz.Oslo)
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

func TimeOf(t time.Time) Time {
	t = t.In(tz.Oslo)
	return Time{Hour: t.Hour(), Minute: t.Minute()}
}

func DateTimeOf(t time.Time) DateTime {
	return DateTime{Date: DateOf(t), Time: TimeOf(t)}
}

// Instant resolves the wall-clock value in Oslo.
func (d DateTime) Instant() time.Time {
	return time.Date(d.Date.Year, time.Month(d.Date.Month), d.Date.Day,
		d.Time.Hour, d.Time.Minute, 0, 0, tz.Oslo)
}

func (d DateTime) Before(o DateTime) bool { return d.Instant().Before(o.Instant()) }

func (d DateTime) After(o DateTime) bool { return d.Instant().After(o.Instant()) }

func (d DateTime) String() string {
	return d.Instant().Format("02.01.2006 15:04")
}

// AddDays moves the date, keeping the wall-clock time.
func (d DateTime) AddDays(days int) DateTime {
	t := time.Date(d.Date.Year, time.Month(d.Date.Month), d.Date.Day+days, 0, 0, 0, 0, tz.Oslo)
	return DateTime{Date: DateOf(t), Time: d.Time}
}

func (d DateTime) AddWeek() DateTime { return d.AddDays(7) }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func ToEditDate(d Date) string { return d.String() }

func ToEditTime(t Time) string { return t.String() }

func ToEditDateTime(d DateTime) EditDateTime {
	return EditDateTime{Date: ToEditDate(d.Date), Time: ToEditTime(d.Time)}
}

// ToEditTimeInstance renders an instant as an Oslo wall-clock edit value.
func ToEditTimeInstance(t time.Time) EditDateTime {
	return ToEditDateTime(DateTimeOf(t))
}

func ParseEditDate(raw string) validation.Result[Date] {
	t, err := time.ParseInLocation(editDateLayout, strings.TrimSpace(raw), tz.Oslo)
	if err != nil {
		return validation.Validate(Date{}, validation.Check("Ugyldig dato", true))
	}
	return validation.Ok(DateOf(t))
}

func ParseEditTime(raw string) validation.Result[Time] {
	t, err := time.Parse(editTimeLayout, strings.TrimSpace(raw))
	if err != nil {
		return validation.Validate(Time{}, validation.Check("Ugyldig klokkeslett", true))
	}
	return validation.Ok(Time{Hour: t.Hour(), Minute: t.Minute()})
}

func ParseEditDateTime(e EditDateTime) validation.Result[DateTime] {
	var c validation.Collector
	d := validation.Field(&c, "date", ParseEditDate(e.Date))
	t := validation.Field(&c, "time", ParseEditTime(e.Time))
	return validation.Finish(&c, DateTime{Date: d, Time: t})
}

// ParseEditTimeInstance parses an edit value into an absolute instant.
func ParseEditTimeInstance(e EditDateTime) validation.Result[time.Time] {
	return validation.Map(ParseEditDateTime(e), DateTime.Instant)
}

// ParseDateViewModel checks that a wire date-time names a real calendar
// moment. time.Date normalizes overflow, so a round trip detects it.
func ParseDateViewModel(d DateTime) validation.Result[DateTime] {
	valid := d.Date.Month >= 1 && d.Date.Month <= 12 &&
		d.Time.Hour >= 0 && d.Time.Hour < 24 &&
		d.Time.Minute >= 0 && d.Time.Minute < 60 &&
		DateOf(d.Instant()) == d.Date
	return validation.Validate(d, validation.Check("Ugyldig dato", !valid))
}

// TimeInstanceViewModel is the wire shape of an absolute instant.
type TimeInstanceViewModel = DateTime

func ParseTimeInstanceViewModel(d TimeInstanceViewModel) validation.Result[time.Time] {
	return validation.Map(ParseDateViewModel(d), DateTime.Instant)
}

func ToTimeInstanceWriteModel(t time.Time) TimeInstanceViewModel {
	return DateTimeOf(t)
}
