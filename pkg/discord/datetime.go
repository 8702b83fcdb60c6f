package discord

import (
	"fmt"

	"arrangement/internal/domain/entities"
)

// FormatEventDateTime renders an Oslo wall-clock time as 27.11.2026 17:00.
func FormatEventDateTime(dt entities.DateTime) string {
	return fmt.Sprintf("%02d.%02d.%04d %02d:%02d",
		dt.Date.Day, dt.Date.Month, dt.Date.Year, dt.Time.Hour, dt.Time.Minute)
}

// FormatSchedule omits the end date when the event starts and ends the same day.
func FormatSchedule(start, end entities.DateTime) string {
	if start.Date == end.Date {
		return fmt.Sprintf("%s–%02d:%02d", FormatEventDateTime(start), end.Time.Hour, end.Time.Minute)
	}
	return FormatEventDateTime(start) + " – " + FormatEventDateTime(end)
}
