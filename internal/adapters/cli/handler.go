package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"arrangement/internal/application"
	"arrangement/internal/domain/entities"
	"arrangement/internal/ports/input"
	"arrangement/internal/ports/output"
)

// Handler runs CLI commands against the use cases.
type Handler struct {
	events       input.EventUseCase
	participants input.ParticipantUseCase
	queries      *application.Queries
	tokens       *application.TokenService
	routes       entities.Routes
	tr           output.T
	locale       string
	syncCron     string
	out          io.Writer
	errOut       io.Writer
	log          *zerolog.Logger
	now          func() time.Time
}

type Deps struct {
	Events       input.EventUseCase
	Participants input.ParticipantUseCase
	Queries      *application.Queries
	Tokens       *application.TokenService
	Routes       entities.Routes
	Translator   output.T
	Locale       string
	SyncCron     string
	Out          io.Writer
	ErrOut       io.Writer
	Log          *zerolog.Logger
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		events:       d.Events,
		participants: d.Participants,
		queries:      d.Queries,
		tokens:       d.Tokens,
		routes:       d.Routes,
		tr:           d.Translator,
		locale:       d.Locale,
		syncCron:     d.SyncCron,
		out:          d.Out,
		errOut:       d.ErrOut,
		log:          d.Log,
		now:          time.Now,
	}
}

type command struct {
	usage string
	run   func(h *Handler, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"events":        {"events [-past] [-upcoming] [-mine] [-office Oslo,Trondheim] [-external|-internal] [-hidden]", (*Handler).cmdEvents},
	"show":          {"show [-email addr] <id|shortname>", (*Handler).cmdShow},
	"draft":         {"draft show|new|set|schedule|question|clear [-event id] ...", (*Handler).cmdDraft},
	"create":        {"create", (*Handler).cmdCreate},
	"update":        {"update <id>", (*Handler).cmdUpdate},
	"cancel-event":  {"cancel-event -message text <id>", (*Handler).cmdCancelEvent},
	"repeat":        {"repeat [-every weeks] [-count n] <id>", (*Handler).cmdRepeat},
	"register":      {"register [-name n] [-email e] [-department d] [-answer qid=text]... <id|shortname>", (*Handler).cmdRegister},
	"unregister":    {"unregister -email e [-token t] <id|shortname>", (*Handler).cmdUnregister},
	"participants":  {"participants <id|shortname>", (*Handler).cmdParticipants},
	"export":        {"export [-o file] <id|shortname>", (*Handler).cmdExport},
	"office-events": {"office-events [-date YYYY-MM-DD] [-ics]", (*Handler).cmdOfficeEvents},
	"ics":           {"ics <id|shortname>...", (*Handler).cmdICS},
	"tokens":        {"tokens", (*Handler).cmdTokens},
	"sync":          {"sync [-watch]", (*Handler).cmdSync},
}

var errUsage = errors.New("usage")

// Run executes one command and returns the process exit code.
func (h *Handler) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		h.usage()
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(h.errOut, "unknown command %q\n", args[0])
		h.usage()
		return 2
	}
	err := cmd.run(h, ctx, args[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		fmt.Fprintln(h.errOut, "usage: arrangement "+cmd.usage)
		return 2
	default:
		h.notify(err)
		return 1
	}
}

func (h *Handler) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(h.errOut, "usage: arrangement [-config path] <command> [args]")
	for _, name := range names {
		fmt.Fprintln(h.errOut, "  "+commands[name].usage)
	}
}

func (h *Handler) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(h.errOut)
	return fs
}

// parseArgs allows flags after positional arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return pos, nil
		}
		pos = append(pos, rest[0])
		args = rest[1:]
	}
}

func (h *Handler) t(key string, data map[string]any) string {
	return h.tr.T(h.locale, key, data)
}
