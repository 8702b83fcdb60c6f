package tz

import (
	"time"
	_ "time/tzdata"
)

// Oslo is the Europe/Oslo location (CET/CEST with automatic DST).
// All wire date-times exchanged with the arrangement API are wall-clock
// times in this zone.
var Oslo *time.Location

func init() {
	var err error
	Oslo, err = time.LoadLocation("Europe/Oslo")
	if err != nil {
		panic("tz: load Europe/Oslo: " + err.Error())
	}
}

// Today returns midnight of the current day in Oslo.
func Today(now time.Time) time.Time {
	n := now.In(Oslo)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, Oslo)
}
