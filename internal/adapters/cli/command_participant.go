package cli

import (
	"context"
	"fmt"
	"os"

	"arrangement/internal/domain/entities"
)

func (h *Handler) cmdRegister(ctx context.Context, args []string) error {
	fs := h.flagSet("register")
	name := fs.String("name", "", "your name")
	email := fs.String("email", "", "your e-mail address")
	department := fs.String("department", "", "your department")
	answers := answerFlag{}
	fs.Var(answers, "answer", "questionId=text, repeat for several alternatives")
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

	edit := entities.InitialParticipant(event.ParticipantQuestions, *email, *name, *department)
	if edit.Name == "" || edit.Email == "" {
		if emp, _ := h.queries.EmployeeProfile(ctx).Unwrap(); emp != nil {
			if edit.Name == "" {
				edit.Name = emp.Name
			}
			if edit.Email == "" {
				edit.Email = emp.Email
			}
			if edit.Department == "" {
				edit.Department = emp.Department
			}
		}
	}
	answers.apply(&edit)

	msg, err := h.participants.Register(ctx, h.locale, id, edit)
	if err != nil {
		return err
	}
	fmt.Fprintln(h.out, msg)
	return nil
}

func (h *Handler) cmdUnregister(ctx context.Context, args []string) error {
	fs := h.flagSet("unregister")
	email := fs.String("email", "", "address you signed up with")
	token := fs.String("token", "", "cancellation token from the confirmation e-mail")
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
	if *email == "" {
		if *email, err = h.savedEmail(ctx, id); err != nil {
			return err
		}
		if *email == "" {
			return errUsage
		}
	}
	if err := h.participants.Cancel(ctx, id, *email, *token); err != nil {
		return err
	}
	fmt.Fprintln(h.out, h.t("registration.cancelled", nil))
	return nil
}

func (h *Handler) cmdParticipants(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	id, _, err := h.events.ResolveEvent(ctx, args[0])
	if err != nil {
		return err
	}
	list, err := h.participants.Participants(ctx, id)
	if err != nil {
		return err
	}
	h.renderParticipants(list)
	return nil
}

func (h *Handler) cmdExport(ctx context.Context, args []string) error {
	fs := h.flagSet("export")
	out := fs.String("o", "", "write to file instead of stdout")
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
	data, err := h.participants.Export(ctx, id)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = h.out.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	h.log.Info().Str("event_id", id).Str("path", *out).Int("bytes", len(data)).Msg("participants exported")
	return nil
}

func (h *Handler) cmdTokens(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	toks, err := h.tokens.SavedEditableEvents(ctx)
	if err != nil {
		return err
	}
	parts, err := h.tokens.SavedParticipations(ctx)
	if err != nil {
		return err
	}
	for _, t := range toks {
		fmt.Fprintf(h.out, "edit  %s  %s\n", t.EventID, h.routes.Origin+entities.EditEventRoute(t.EventID, t.EditToken))
	}
	for _, p := range parts {
		fmt.Fprintf(h.out, "join  %s  %s\n", p.EventID, p.Email)
	}
	return nil
}
