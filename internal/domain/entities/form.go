package entities

// ScheduleAction names one edit of the start or end bound of an event form.
type ScheduleAction int

const (
	SetSameDate ScheduleAction = iota
	SetStartDate
	SetEndDate
	SetStartTime
	SetEndTime
)

// Schedule is the part of an EditEvent that SetStartEnd adjusts.
type Schedule struct {
	Start EditDateTime
	End   EditDateTime
}

// SetStartEnd applies an edit and moves the other bound when the edit would
// put start after end. Invalid input is stored as typed and left to the
// validators. An adjusted time stays within the same day.
func SetStartEnd(s Schedule, action ScheduleAction, value string) Schedule {
	start, end := s.Start, s.End
	switch action {
	case SetSameDate:
		start.Date, end.Date = value, value
		return Schedule{Start: start, End: end}

	case SetStartDate:
		start.Date = value
		first, last := ParseEditDate(value), ParseEditDate(end.Date)
		if first.IsValid() && last.IsValid() && dateAfter(first.Value(), last.Value()) {
			end.Date = value
		}
		return Schedule{Start: start, End: end}

	case SetEndDate:
		end.Date = value
		first, last := ParseEditDate(start.Date), ParseEditDate(value)
		if first.IsValid() && last.IsValid() && dateAfter(first.Value(), last.Value()) {
			start.Date = value
		}
		return Schedule{Start: start, End: end}

	case SetStartTime:
		start.Time = value
		first, last := ParseEditDateTime(start), ParseEditDateTime(end)
		if first.IsValid() && last.IsValid() && first.Value().After(last.Value()) {
			t := first.Value().Time
			end.Time = ToEditTime(Time{Hour: min(t.Hour+1, 23), Minute: t.Minute})
		}
		return Schedule{Start: start, End: end}

	case SetEndTime:
		end.Time = value
		first, last := ParseEditDateTime(start), ParseEditDateTime(end)
		if first.IsValid() && last.IsValid() && first.Value().After(last.Value()) {
			t := last.Value().Time
			start.Time = ToEditTime(Time{Hour: max(t.Hour-1, 0), Minute: t.Minute})
		}
		return Schedule{Start: start, End: end}
	}
	return s
}

func dateAfter(a, b Date) bool {
	if a.Year != b.Year {
		return a.Year > b.Year
	}
	if a.Month != b.Month {
		return a.Month > b.Month
	}
	return a.Day > b.Day
}
