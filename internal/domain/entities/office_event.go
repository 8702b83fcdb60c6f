package entities

import "time"

// OfficeEvent is an entry of the office calendar.
type OfficeEvent struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	ContactPerson string    `json:"contactPerson"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	CreatedAt     time.Time `json:"createdAt"`
	ModifiedAt    time.Time `json:"modifiedAt"`
	Themes        []string  `json:"themes"`
	Types         []string  `json:"types"`
}
