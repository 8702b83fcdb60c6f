package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"arrangement/internal/adapters/cli"
	"arrangement/internal/application"
	"arrangement/internal/config"
	"arrangement/internal/domain/entities"
	"arrangement/internal/infrastructure/arrangementsvc"
	"arrangement/internal/infrastructure/auth"
	"arrangement/internal/infrastructure/database"
	"arrangement/internal/infrastructure/employeesvc"
	"arrangement/internal/infrastructure/i18n"
	"arrangement/internal/infrastructure/localstore"
	"arrangement/internal/infrastructure/logging"
	"arrangement/internal/ports/output"
	"arrangement/pkg/discord"
)

func main() {
	configPath := flag.String("config", filepath.Join(config.DefaultDir(), "config.yaml"), "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, log, flag.Args())
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, log *zerolog.Logger, args []string) int {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	if cfg.EmployeeSvcBaseURL == "" {
		remote, err := arrangementsvc.GetClientConfig(ctx, cfg.PublicOrigin, timeout)
		if err != nil {
			log.Warn().Err(err).Msg("client config unavailable, employee lookups disabled")
		} else {
			cfg = cfg.WithRemote(remote)
		}
	}

	identity, err := auth.NewIdentity(cfg.AccessToken)
	if err != nil {
		log.Error().Err(err).Msg("invalid access token")
		return 1
	}

	store, closeStore, err := openStore(ctx, cfg, identity, log)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.Storage.Backend).Msg("open storage")
		return 1
	}
	defer closeStore()

	routes := entities.NewRoutes(cfg.PublicOrigin)
	tr := i18n.NewTranslator(cfg.Locale, log)
	api := arrangementsvc.NewClient(cfg.APIBaseURL, identity, timeout, log)
	directory := employeesvc.NewClient(cfg.EmployeeSvcBaseURL, identity, timeout, log)

	var announcer output.Announcer
	if cfg.Discord.Enabled() {
		a, err := discord.NewAnnouncer(cfg.Discord.WebhookID, cfg.Discord.WebhookToken, tr, cfg.Locale, routes, log)
		if err != nil {
			log.Warn().Err(err).Msg("discord announcer disabled")
		} else {
			announcer = a
		}
	}

	queries := application.NewQueries(api, directory, identity, log)
	tokens := application.NewTokenService(store, api, identity, log)
	events := application.NewEventService(api, tokens, store, queries, announcer, routes, log)
	participants := application.NewParticipantService(api, tokens, queries, routes, tr, log)

	h := cli.NewHandler(cli.Deps{
		Events:       events,
		Participants: participants,
		Queries:      queries,
		Tokens:       tokens,
		Routes:       routes,
		Translator:   tr,
		Locale:       cfg.Locale,
		SyncCron:     cfg.SyncCron,
		Out:          os.Stdout,
		ErrOut:       os.Stderr,
		Log:          log,
	})
	return h.Run(ctx, args)
}

// openStore returns the key-value store for tokens and drafts. Postgres
// rows are namespaced per employee so one database can serve many users.
func openStore(ctx context.Context, cfg *config.Config, identity *auth.Identity, log *zerolog.Logger) (output.KeyValueStore, func(), error) {
	if cfg.Storage.Backend != config.BackendPostgres {
		path := filepath.Join(cfg.Storage.Dir, "store.json")
		log.Debug().Str("path", path).Msg("using file store")
		return localstore.NewFileStore(path), func() {}, nil
	}

	if err := database.RunMigrations(cfg.Storage.DatabaseURL, log); err != nil {
		return nil, nil, err
	}
	pool, err := database.NewPool(ctx, cfg.Storage.DatabaseURL, log)
	if err != nil {
		return nil, nil, err
	}
	namespace := "anonymous"
	if id, err := identity.EmployeeID(); err == nil {
		namespace = "employee:" + strconv.Itoa(id)
	}
	return database.NewKVStore(pool, namespace), pool.Close, nil
}
