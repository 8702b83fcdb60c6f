package cli

import (
	"fmt"
	"math"
	"strings"

	"arrangement/internal/application"
	"arrangement/internal/domain/entities"
	"arrangement/pkg/discord"
)

var stateKeys = map[entities.EventState]string{
	entities.StateRediger:            "state.edit",
	entities.StateIkkeApnet:          "state.not_open",
	entities.StatePameldingHarStengt: "state.registration_closed",
	entities.StateAvsluttet:          "state.ended",
	entities.StatePameldt:            "state.attending",
	entities.StatePaVenteliste:       "state.on_waiting_list",
	entities.StatePlass:              "state.open",
	entities.StatePlassPaVenteliste:  "state.open_waiting_list",
	entities.StateFullt:              "state.full",
	entities.StateLaster:             "state.loading",
	entities.StateAvlyst:             "state.cancelled",
	entities.StateIkkePameldt:        "state.not_attending",
}

func (h *Handler) stateLabel(s entities.EventState) string {
	if key, ok := stateKeys[s]; ok {
		return h.t(key, nil)
	}
	return string(s)
}

func (h *Handler) closedMessage(e entities.Event, r entities.ClosedReason) string {
	if r == entities.ClosedNone {
		return ""
	}
	data := map[string]any{
		"Opens": discord.FormatEventDateTime(entities.DateTimeOf(e.OpenForRegistrationTime)),
	}
	if e.CloseRegistrationTime != nil {
		data["Closes"] = discord.FormatEventDateTime(entities.DateTimeOf(*e.CloseRegistrationTime))
	}
	return h.t(string(r), data)
}

func (h *Handler) availabilityLabel(a entities.Availability) string {
	switch {
	case a.AvailableSpots == math.MaxInt:
		return h.t("availability.unlimited", nil)
	case a.Full:
		return h.t("availability.waiting_list", map[string]any{"Count": a.WaitingList})
	}
	return h.t("availability.spots", map[string]any{"Spots": a.AvailableSpots})
}

func officesLabel(p *entities.PickedOffices) string {
	if p == nil {
		return ""
	}
	list := p.List()
	names := make([]string, len(list))
	for i, o := range list {
		names[i] = string(o)
	}
	return strings.Join(names, ", ")
}

func (h *Handler) renderEventList(entries []application.EventEntry) {
	for _, en := range entries {
		e := en.Event
		flags := ""
		if e.IsCancelled {
			flags += " [" + h.t("state.cancelled", nil) + "]"
		}
		if e.IsHidden {
			flags += " [hidden]"
		}
		fmt.Fprintf(h.out, "%s  %-28s  %s%s\n", en.ID, discord.FormatSchedule(e.Start, e.End), e.Title, flags)
	}
}

func (h *Handler) renderEvent(id string, e entities.Event, st entities.ViewerStatus) {
	w := h.out
	fmt.Fprintln(w, e.Title)
	fmt.Fprintf(w, "  %s\n", discord.FormatSchedule(e.Start, e.End))
	fmt.Fprintf(w, "  %s\n", e.Location)
	if offices := officesLabel(e.Offices); offices != "" {
		fmt.Fprintf(w, "  %s\n", offices)
	}
	fmt.Fprintf(w, "  %s <%s>\n", e.OrganizerName, e.OrganizerEmail)
	fmt.Fprintf(w, "  %s\n", h.routes.EventURL(id, e))
	fmt.Fprintf(w, "  %s · %s\n", h.stateLabel(st.State), h.availabilityLabel(st.Availability))
	if msg := h.closedMessage(e, st.Closed); msg != "" {
		fmt.Fprintf(w, "  %s\n", msg)
	}
	if e.Description != "" {
		fmt.Fprintf(w, "\n%s\n", e.Description)
	}
	if e.Program != "" {
		fmt.Fprintf(w, "\n%s\n", e.Program)
	}
	for _, q := range e.ParticipantQuestions {
		req := ""
		if q.Required {
			req = " *"
		}
		fmt.Fprintf(w, "  ? [%d] %s%s\n", q.ID, q.Question, req)
	}
}

func (h *Handler) renderDraft(key string, edit entities.EditEvent) {
	w := h.out
	fmt.Fprintf(w, "draft %s\n", key)
	row := func(name, value string) { fmt.Fprintf(w, "  %-16s %s\n", name, value) }
	row("title", edit.Title)
	row("location", edit.Location)
	row("description", edit.Description)
	row("start", edit.Start.Date+" "+edit.Start.Time)
	row("end", edit.End.Date+" "+edit.End.Time)
	row("open", edit.OpenForRegistrationTime.Date+" "+edit.OpenForRegistrationTime.Time)
	if edit.CloseRegistrationTime != nil {
		row("close", edit.CloseRegistrationTime.Date+" "+edit.CloseRegistrationTime.Time)
	}
	row("organizer", edit.OrganizerName)
	row("organizer-email", edit.OrganizerEmail)
	limit := "unlimited"
	if edit.MaxParticipants.Limited {
		limit = edit.MaxParticipants.Value
	}
	row("max", limit)
	row("offices", officesLabel(edit.Offices))
	row("waiting-list", fmt.Sprint(edit.HasWaitingList))
	row("external", fmt.Sprint(edit.IsExternal))
	row("hidden", fmt.Sprint(edit.IsHidden))
	row("shortname", edit.Shortname)
	row("color", edit.CustomHexColor)
	for i, q := range edit.ParticipantQuestions {
		req := ""
		if q.Required {
			req = " *"
		}
		fmt.Fprintf(w, "  question %-7d %s%s\n", i, q.Question, req)
	}

	if errs := entities.ParseEditEvent(edit).Errors(); len(errs) > 0 {
		fmt.Fprintln(w, h.t("error.validation", nil))
		for _, e := range errs {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}
}

func (h *Handler) renderParticipants(list entities.ParticipantsWithWaitingList) {
	row := func(p entities.Participant) {
		line := "  " + p.Name
		if p.Email.Address != "" {
			line += " <" + p.Email.Address + ">"
		}
		if p.Department != "" {
			line += " (" + p.Department + ")"
		}
		fmt.Fprintln(h.out, line)
		for _, a := range p.Answers {
			if a.Answer != "" {
				fmt.Fprintf(h.out, "      %d: %s\n", a.QuestionID, a.Answer)
			}
		}
	}
	fmt.Fprintf(h.out, "%s (%d)\n", h.t("state.attending", nil), len(list.Attendees))
	for _, p := range list.Attendees {
		row(p)
	}
	if list.WaitingList != nil {
		fmt.Fprintf(h.out, "%s (%d)\n", h.t("state.on_waiting_list", nil), len(list.WaitingList))
		for _, p := range list.WaitingList {
			row(p)
		}
	}
}
