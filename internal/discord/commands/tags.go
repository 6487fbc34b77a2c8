// Package commands implements the tagmend slash commands.
package commands

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/MrWong99/tagmend/internal/discord"
	"github.com/MrWong99/tagmend/internal/observe"
	"github.com/MrWong99/tagmend/internal/tagging"
	"github.com/MrWong99/tagmend/internal/vocab"
)

// Discord limits.
const (
	maxEmbedFields = 25
	maxChoices     = 25
	maxChoiceLen   = 100
)

const (
	correctedMarker  = "✏️"
	translatedMarker = "🌐"
	embedColor       = 0x5865F2
)

// Processor is the tag pipeline as seen by the commands.
type Processor interface {
	Process(ctx context.Context, raw string) []tagging.TagRecord
	Vocabulary() *vocab.Vocabulary
}

// TagCommands handles the /tags command group.
type TagCommands struct {
	proc    Processor
	metrics *observe.Metrics
}

// NewTagCommands creates a TagCommands handler. A nil metrics falls back to
// [observe.DefaultMetrics].
func NewTagCommands(proc Processor, metrics *observe.Metrics) *TagCommands {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &TagCommands{proc: proc, metrics: metrics}
}

// Register registers the /tags subcommands with the router.
func (tc *TagCommands) Register(router *discord.CommandRouter) {
	router.RegisterCommand("tags", tc.Definition(), func(s discord.Responder, i *discordgo.InteractionCreate) {
		_ = discord.RespondEphemeral(s, i, "Please use a subcommand: `/tags check`.")
	})
	router.RegisterHandler("tags/check", tc.handleCheck)
	router.RegisterAutocomplete("tags/check", tc.handleAutocomplete)
}

// Definition returns the /tags ApplicationCommand for Discord registration.
func (tc *TagCommands) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "tags",
		Description: "Check and correct Korean tags",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "check",
				Description: "Show how comma-separated tags get corrected and translated",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:         "text",
						Description:  "Tags separated by commas",
						Type:         discordgo.ApplicationCommandOptionString,
						Required:     true,
						Autocomplete: true,
					},
				},
			},
		},
	}
}

func (tc *TagCommands) handleCheck(s discord.Responder, i *discordgo.InteractionCreate) {
	ctx, span := observe.StartSpan(context.Background(), "discord.tags.check")

	text := ""
	if opt := discord.SubcommandOption(i, "text"); opt != nil {
		text = opt.StringValue()
	}

	records := tc.proc.Process(ctx, text)
	var err error
	if len(records) == 0 {
		err = discord.RespondEphemeral(s, i, "No tags found. Separate tags with commas.")
	} else {
		err = discord.RespondEmbed(s, i, buildEmbed(records, string(i.Locale)))
	}
	tc.metrics.RecordCommand(ctx, "tags/check", err)
	observe.EndSpan(span, err)
}

// buildEmbed renders one field per record. The field name is the chip label
// for locale with change markers; the value is the tooltip.
func buildEmbed(records []tagging.TagRecord, locale string) *discordgo.MessageEmbed {
	lang := "en"
	if strings.HasPrefix(locale, "ko") {
		lang = "ko"
	}

	shown := records
	if len(shown) > maxEmbedFields {
		shown = shown[:maxEmbedFields]
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(shown))
	corrected := 0
	for _, r := range records {
		if r.WasCorrected {
			corrected++
		}
	}
	for _, r := range shown {
		name := r.Label(lang)
		if r.WasTranslated {
			name = translatedMarker + " " + name
		}
		if r.WasCorrected {
			name = correctedMarker + " " + name
		}
		value := r.Tooltip()
		if value == "" {
			value = "No change"
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   name,
			Value:  value,
			Inline: true,
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Tags",
		Description: fmt.Sprintf("%d tag(s), %d corrected", len(records), corrected),
		Color:       embedColor,
		Fields:      fields,
	}
	if hidden := len(records) - len(shown); hidden > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("and %d more", hidden)}
	}
	return embed
}

// handleAutocomplete completes the last comma piece of the text option with
// canonical vocabulary tokens. When no token starts with the piece, the
// piece's fuzzy correction is offered instead.
func (tc *TagCommands) handleAutocomplete(s discord.Responder, i *discordgo.InteractionCreate) {
	opt := discord.SubcommandOption(i, "text")
	if opt == nil || !opt.Focused {
		_ = discord.RespondAutocomplete(s, i, nil)
		return
	}

	head, piece := splitLast(opt.StringValue())

	var completions []string
	for _, sug := range tc.proc.Vocabulary().Suggest(piece, maxChoices) {
		completions = append(completions, sug.Canonical)
	}
	if len(completions) == 0 && piece != "" {
		if recs := tc.proc.Process(context.Background(), piece); len(recs) == 1 && recs[0].WasCorrected {
			completions = append(completions, recs[0].Corrected)
		}
	}

	v := tc.proc.Vocabulary()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(completions))
	for _, c := range completions {
		value := head + c
		if utf8.RuneCountInString(value) > maxChoiceLen {
			continue
		}
		name := c
		if label := v.Translate(c); label != c {
			name = c + " (" + label + ")"
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  name,
			Value: value,
		})
	}
	_ = discord.RespondAutocomplete(s, i, choices)
}

// splitLast cuts raw into everything up to and including the last comma
// (followed by one space) and the trimmed piece after it.
func splitLast(raw string) (head, piece string) {
	idx := strings.LastIndex(raw, ",")
	if idx < 0 {
		return "", strings.TrimSpace(raw)
	}
	return strings.TrimRight(raw[:idx+1], " ") + " ", strings.TrimSpace(raw[idx+1:])
}
