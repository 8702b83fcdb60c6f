package discord

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"arrangement/internal/domain/entities"
	"arrangement/internal/ports/output"
)

const (
	embedColor       = 0x5865F2
	maxDescriptionLn = 300
)

func embedColorOf(e entities.Event) int {
	if c := strings.TrimPrefix(e.CustomHexColor, "#"); len(c) == 6 {
		if n, err := strconv.ParseInt(c, 16, 32); err == nil {
			return int(n)
		}
	}
	return embedColor
}

func formatPlaces(tr output.T, locale string, e entities.Event) string {
	if limit, ok := e.MaxParticipants.Limit(); ok {
		return strconv.Itoa(limit)
	}
	return tr.T(locale, "announce.unlimited", nil)
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// BuildEventEmbed builds the announcement of a new event. Only public
// details are shown.
func BuildEventEmbed(tr output.T, locale, url string, e entities.Event) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       tr.T(locale, "announce.title", map[string]any{"Title": e.Title}),
		URL:         url,
		Description: shorten(e.Description, maxDescriptionLn),
		Color:       embedColorOf(e),
		Fields: []*discordgo.MessageEmbedField{
			{Name: tr.T(locale, "announce.when", nil), Value: FormatSchedule(e.Start, e.End), Inline: true},
			{Name: tr.T(locale, "announce.where", nil), Value: e.Location, Inline: true},
			{Name: tr.T(locale, "announce.organizer", nil), Value: e.OrganizerName, Inline: true},
			{Name: tr.T(locale, "announce.spots", nil), Value: formatPlaces(tr, locale, e), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: url},
	}
}
