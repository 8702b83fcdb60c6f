package cli

import (
	"fmt"
	"strconv"
	"strings"

	"arrangement/internal/domain/entities"
)

// answerFlag collects repeated -answer qid=text values. Several values for
// the same question are joined as picked alternatives.
type answerFlag map[int][]string

func (a answerFlag) String() string { return fmt.Sprint(map[int][]string(a)) }

func (a answerFlag) Set(v string) error {
	id, text, ok := strings.Cut(v, "=")
	if !ok {
		return fmt.Errorf("answer %q: want questionId=text", v)
	}
	qid, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("answer %q: question id: %w", v, err)
	}
	a[qid] = append(a[qid], text)
	return nil
}

func (a answerFlag) apply(edit *entities.EditParticipant) {
	for i, ans := range edit.Answers {
		if picked, ok := a[ans.QuestionID]; ok {
			edit.Answers[i].Answer = entities.JoinAlternatives(picked)
		}
	}
}

func parseOffices(raw string) ([]entities.Office, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []entities.Office
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		found := false
		for _, o := range entities.AllOffices {
			if strings.EqualFold(name, string(o)) {
				out = append(out, o)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown office %q", name)
		}
	}
	return out, nil
}

func parseBool(field, v string) (bool, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %q is not true or false", field, v)
	}
	return b, nil
}

func splitDateTime(v string) entities.EditDateTime {
	date, tm, _ := strings.Cut(strings.TrimSpace(v), " ")
	return entities.EditDateTime{Date: date, Time: strings.TrimSpace(tm)}
}

// setDraftField applies one field=value assignment from "draft set".
func setDraftField(edit *entities.EditEvent, field, value string) error {
	var err error
	switch field {
	case "title":
		edit.Title = value
	case "description":
		edit.Description = value
	case "location":
		edit.Location = value
	case "program":
		edit.Program = value
	case "organizer":
		edit.OrganizerName = value
	case "organizer-email":
		edit.OrganizerEmail = value
	case "shortname":
		edit.Shortname = value
	case "color":
		edit.CustomHexColor = value
	case "open":
		edit.OpenForRegistrationTime = splitDateTime(value)
	case "close":
		if strings.TrimSpace(value) == "" {
			edit.CloseRegistrationTime = nil
		} else {
			dt := splitDateTime(value)
			edit.CloseRegistrationTime = &dt
		}
	case "max":
		if value == "" || value == "unlimited" {
			edit.MaxParticipants = entities.EditMaxParticipants{}
		} else {
			edit.MaxParticipants = entities.EditMaxParticipants{Limited: true, Value: value}
		}
	case "offices":
		offices, perr := parseOffices(value)
		if perr != nil {
			return perr
		}
		edit.Offices = entities.ParseOffices(offices)
	case "waiting-list":
		edit.HasWaitingList, err = parseBool(field, value)
	case "external":
		edit.IsExternal, err = parseBool(field, value)
	case "hidden":
		edit.IsHidden, err = parseBool(field, value)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return err
}

var scheduleActions = map[string]entities.ScheduleAction{
	"same-date":  entities.SetSameDate,
	"start-date": entities.SetStartDate,
	"end-date":   entities.SetEndDate,
	"start-time": entities.SetStartTime,
	"end-time":   entities.SetEndTime,
}
