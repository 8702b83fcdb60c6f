package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"arrangement/internal/domain/entities"
	"arrangement/internal/ports/output"
)

var _ output.Announcer = (*Announcer)(nil)

// Announcer posts new events to a channel webhook. Webhooks need no bot
// token, so the session is created without one.
type Announcer struct {
	session      *discordgo.Session
	webhookID    string
	webhookToken string
	tr           output.T
	locale       string
	routes       entities.Routes
	log          *zerolog.Logger
}

func NewAnnouncer(webhookID, webhookToken string, tr output.T, locale string, routes entities.Routes, log *zerolog.Logger) (*Announcer, error) {
	s, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Announcer{
		session:      s,
		webhookID:    webhookID,
		webhookToken: webhookToken,
		tr:           tr,
		locale:       locale,
		routes:       routes,
		log:          log,
	}, nil
}

func (a *Announcer) Announce(ctx context.Context, eventID string, event entities.Event) error {
	if event.IsHidden {
		return nil
	}
	embed := BuildEventEmbed(a.tr, a.locale, a.routes.EventURL(eventID, event), event)
	_, err := a.session.WebhookExecute(a.webhookID, a.webhookToken, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("webhook execute: %w", err)
	}
	a.log.Info().Str("event_id", eventID).Msg("event announced")
	return nil
}
