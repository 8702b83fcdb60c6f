package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"arrangement/internal/application"
	"arrangement/internal/domain/entities"
	"arrangement/internal/infrastructure/calendar"
	"arrangement/pkg/discord"
)

func (h *Handler) cmdEvents(ctx context.Context, args []string) error {
	fs := h.flagSet("events")
	var f application.EventFilter
	fs.BoolVar(&f.Past, "past", false, "include past events")
	fs.BoolVar(&f.Upcoming, "upcoming", false, "include upcoming events")
	fs.BoolVar(&f.Mine, "mine", false, "only events you organize or attend")
	fs.BoolVar(&f.External, "external", false, "only external events")
	fs.BoolVar(&f.Internal, "internal", false, "only internal events")
	fs.BoolVar(&f.WithHidden, "hidden", false, "include hidden events")
	office := fs.String("office", "", "comma separated offices")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	offices, err := parseOffices(*office)
	if err != nil {
		return err
	}
	f.Offices = offices

	loaded, err := h.queries.FilteredEvents(ctx, f).Unwrap()
	if err != nil {
		return err
	}
	mine, err := h.mine(ctx)
	if err != nil {
		return err
	}
	h.renderEventList(application.ApplyFilter(loaded, f, mine, h.now()))
	return nil
}

// mine is the set of event ids with a saved edit token or participation.
func (h *Handler) mine(ctx context.Context) (map[string]bool, error) {
	toks, err := h.tokens.SavedEditableEvents(ctx)
	if err != nil {
		return nil, err
	}
	parts, err := h.tokens.SavedParticipations(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(toks)+len(parts))
	for _, t := range toks {
		out[t.EventID] = true
	}
	for _, p := range parts {
		out[p.EventID] = true
	}
	return out, nil
}

// savedEmail is the address of the first saved participation for eventID.
func (h *Handler) savedEmail(ctx context.Context, eventID string) (string, error) {
	parts, err := h.tokens.SavedParticipations(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range parts {
		if p.EventID == eventID {
			return p.Email, nil
		}
	}
	return "", nil
}

func (h *Handler) cmdShow(ctx context.Context, args []string) error {
	fs := h.flagSet("show")
	email := fs.String("email", "", "address you signed up with")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errUsage
	}
	id, event, err := h.events.ResolveEvent(ctx, pos[0])
	if err != nil {
		return err
	}
	if *email == "" {
		if *email, err = h.savedEmail(ctx, id); err != nil {
			return err
		}
	}
	st, err := h.participants.Status(ctx, id, *email)
	if err != nil {
		return err
	}
	h.renderEvent(id, event, st)
	return nil
}

func (h *Handler) cmdDraft(ctx context.Context, args []string) error {
	fs := h.flagSet("draft")
	key := fs.String("event", application.CreateDraftKey, "event id to edit; omit for a new event")
	required := fs.Bool("required", false, "question must be answered")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) == 0 {
		return errUsage
	}

	switch pos[0] {
	case "show":
		edit, err := h.events.Draft(ctx, *key)
		if err != nil {
			return err
		}
		h.renderDraft(*key, edit)
		return nil

	case "new", "clear":
		if err := h.events.ClearDraft(ctx, *key); err != nil {
			return err
		}
		if pos[0] == "clear" {
			return nil
		}
		edit, err := h.events.Draft(ctx, *key)
		if err != nil {
			return err
		}
		if err := h.events.SaveDraft(ctx, *key, edit); err != nil {
			return err
		}
		h.renderDraft(*key, edit)
		return nil

	case "set":
		if len(pos) < 2 {
			return errUsage
		}
		edit, err := h.events.Draft(ctx, *key)
		if err != nil {
			return err
		}
		for _, kv := range pos[1:] {
			field, value, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("%q: want field=value", kv)
			}
			if err := setDraftField(&edit, field, value); err != nil {
				return err
			}
		}
		if err := h.events.SaveDraft(ctx, *key, edit); err != nil {
			return err
		}
		h.renderDraft(*key, edit)
		return nil

	case "schedule":
		if len(pos) != 3 {
			return errUsage
		}
		action, ok := scheduleActions[pos[1]]
		if !ok {
			return fmt.Errorf("unknown schedule action %q", pos[1])
		}
		edit, err := h.events.ApplySchedule(ctx, *key, action, pos[2])
		if err != nil {
			return err
		}
		h.renderDraft(*key, edit)
		return nil

	case "question":
		return h.draftQuestion(ctx, *key, *required, pos[1:])
	}
	return errUsage
}

func (h *Handler) draftQuestion(ctx context.Context, key string, required bool, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	edit, err := h.events.Draft(ctx, key)
	if err != nil {
		return err
	}
	switch args[0] {
	case "add":
		edit.ParticipantQuestions = append(edit.ParticipantQuestions, entities.Question{Question: args[1], Required: required})
	case "remove":
		i, err := strconv.Atoi(args[1])
		if err != nil || i < 0 || i >= len(edit.ParticipantQuestions) {
			return fmt.Errorf("no question %q", args[1])
		}
		edit.ParticipantQuestions = append(edit.ParticipantQuestions[:i], edit.ParticipantQuestions[i+1:]...)
	default:
		return errUsage
	}
	if err := h.events.SaveDraft(ctx, key, edit); err != nil {
		return err
	}
	h.renderDraft(key, edit)
	return nil
}

func (h *Handler) cmdCreate(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	id, err := h.events.SubmitDraft(ctx, application.CreateDraftKey)
	if err != nil {
		return err
	}
	event, err := h.events.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(h.out, h.t("event.created", nil))
	fmt.Fprintf(h.out, "%s\n%s\n", id, h.routes.EventURL(id, event))
	return nil
}

func (h *Handler) cmdUpdate(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if _, err := h.events.SubmitDraft(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(h.out, h.t("event.updated", nil))
	return nil
}

func (h *Handler) cmdCancelEvent(ctx context.Context, args []string) error {
	fs := h.flagSet("cancel-event")
	message := fs.String("message", "", "sent to everyone signed up")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errUsage
	}
	id, _, err := h.events.ResolveEvent(ctx, pos[0])
	if err != nil {
		return err
	}
	if err := h.events.CancelEvent(ctx, id, *message); err != nil {
		return err
	}
	fmt.Fprintln(h.out, h.t("event.cancelled", nil))
	return nil
}

func (h *Handler) cmdRepeat(ctx context.Context, args []string) error {
	fs := h.flagSet("repeat")
	every := fs.Int("every", 1, "weeks between copies")
	count := fs.Int("count", 1, "number of copies")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 || *every < 1 || *count < 1 {
		return errUsage
	}
	id, _, err := h.events.ResolveEvent(ctx, pos[0])
	if err != nil {
		return err
	}
	ids, err := h.events.RepeatEvent(ctx, id, *every, *count)
	for _, created := range ids {
		fmt.Fprintln(h.out, created)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(h.out, h.t("event.repeated", map[string]any{"Count": len(ids)}))
	return nil
}

func (h *Handler) cmdICS(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	items := make([]calendar.Item, 0, len(args))
	for _, arg := range args {
		id, event, err := h.events.ResolveEvent(ctx, arg)
		if err != nil {
			return err
		}
		items = append(items, calendar.Item{ID: id, Event: event})
	}
	fmt.Fprint(h.out, calendar.ExportEvents(h.routes, h.now(), items...))
	return nil
}

func (h *Handler) cmdOfficeEvents(ctx context.Context, args []string) error {
	fs := h.flagSet("office-events")
	date := fs.String("date", "", "day as YYYY-MM-DD, default today")
	ics := fs.Bool("ics", false, "print as iCalendar")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	day := h.now()
	if *date != "" {
		d, err := entities.ParseEditDate(*date).Unwrap()
		if err != nil {
			return err
		}
		day = entities.DateTime{Date: d, Time: entities.Time{Hour: 12}}.Instant()
	}
	events, err := h.queries.OfficeEvents(ctx, day).Unwrap()
	if err != nil {
		return err
	}
	if *ics {
		fmt.Fprint(h.out, calendar.ExportOfficeEvents(h.now(), events))
		return nil
	}
	for _, e := range events {
		start := entities.DateTimeOf(e.StartTime)
		end := entities.DateTimeOf(e.EndTime)
		fmt.Fprintf(h.out, "%-28s  %s", discord.FormatSchedule(start, end), e.Title)
		if e.Location != "" {
			fmt.Fprintf(h.out, " (%s)", e.Location)
		}
		fmt.Fprintln(h.out)
	}
	return nil
}
