package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/jusunglee/singlish/internal/metrics"
	"github.com/jusunglee/singlish/internal/transliteration"
	"github.com/samber/lo"
)

// Discord rejects message content longer than this.
const maxMessageLen = 2000

type Config struct {
	GuildID       string
	// MaxInputRunes bounds the text option of /sinhala.
	MaxInputRunes int
}

type Bot struct {
	log       Logger
	session   DiscordSession
	converter Converter
	limiter   *RateLimiter
	config    Config
}

func New(log Logger, session DiscordSession, converter Converter, config Config) *Bot {
	if config.MaxInputRunes <= 0 {
		config.MaxInputRunes = 1000
	}
	return &Bot{
		log:       log,
		session:   session,
		converter: converter,
		limiter:   NewRateLimiter(),
		config:    config,
	}
}

func (b *Bot) Run(ctx context.Context) error {
	b.session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		b.handleInteraction(i)
	})
	b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.log.InfoContext(ctx, "connected to Discord", "username", r.User.Username)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening Discord connection: %w", err)
	}

	if err := b.registerCommands(ctx); err != nil {
		b.session.Close()
		return fmt.Errorf("registering commands: %w", err)
	}

	b.log.InfoContext(ctx, "bot is running, press Ctrl+C to stop")

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.limiter.Prune()
		case <-ctx.Done():
			b.log.Info("shutdown signal received")
			if err := b.session.Close(); err != nil {
				b.log.WarnContext(ctx, "closing Discord session", "error", err)
			}
			b.log.Info("shut down complete")
			return nil
		}
	}
}

func (b *Bot) registerCommands(ctx context.Context) error {
	guildID := b.config.GuildID
	if guildID != "" {
		b.log.InfoContext(ctx, "registering commands to guild", "guild_id", guildID)
		_, err := b.session.ApplicationCommandBulkOverwrite(b.session.GetUserID(), "", []*discordgo.ApplicationCommand{})
		if err != nil {
			b.log.WarnContext(ctx, "failed to clear global commands", "error", err)
		} else {
			b.log.InfoContext(ctx, "cleared global commands")
		}
	} else {
		b.log.InfoContext(ctx, "registering commands globally (may take up to 1 hour to propagate)")
	}

	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.GetUserID(), guildID, commands)
	if err != nil {
		return fmt.Errorf("bulk overwrite commands: %w", err)
	}
	b.log.InfoContext(ctx, "registered commands", "count", len(commands))
	return nil
}

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "sinhala",
		Description: "Convert Singlish to Sinhala script",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "Singlish text (e.g., mama gedhara yanavaa)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "private",
				Description: "Only show the result to you",
			},
		},
	},
}

type handlerResult struct {
	Response  string
	Ephemeral bool
	Err       error
}

type userError struct {
	Err error
}

func (e *userError) Error() string {
	return e.Err.Error()
}

func (e *userError) Unwrap() error {
	return e.Err
}

func newUserError(err error) *userError {
	return &userError{Err: err}
}

func (b *Bot) handleInteraction(i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := i.ApplicationCommandData().Name
	var result handlerResult
	switch cmd {
	case "sinhala":
		result = b.handleSinhala(i)
	default:
		result = handlerResult{
			Response:  "❌ Unknown command",
			Ephemeral: true,
			Err:       newUserError(fmt.Errorf("unknown command %q", cmd)),
		}
	}

	if err := b.respond(i, result); err != nil {
		b.log.ErrorContext(ctx, "failed to respond to interaction", "command", cmd, "error", err)
	}

	if result.Err == nil {
		return
	}
	var ue *userError
	if errors.As(result.Err, &ue) {
		b.log.WarnContext(ctx, "user error", "command", cmd, "error", result.Err, "channel_id", i.ChannelID)
	} else {
		b.log.ErrorContext(ctx, "command failed", "command", cmd, "error", result.Err, "channel_id", i.ChannelID)
	}
}

func (b *Bot) handleSinhala(i *discordgo.InteractionCreate) handlerResult {
	options := i.ApplicationCommandData().Options
	text := strings.TrimSpace(getStringOption(options, "text"))
	private := getBoolOption(options, "private")

	if !b.limiter.Allow(interactionUserID(i)) {
		metrics.RateLimitHits.WithLabelValues("bot").Inc()
		return handlerResult{
			Response:  "⏳ Slow down a little, try again in a minute.",
			Ephemeral: true,
			Err:       newUserError(errors.New("rate limited")),
		}
	}

	if text == "" {
		return handlerResult{
			Response:  "❌ Give me some Singlish to convert, e.g. `/sinhala text:mama gedhara yanavaa`",
			Ephemeral: true,
			Err:       newUserError(errors.New("empty text")),
		}
	}
	if n := utf8.RuneCountInString(text); n > b.config.MaxInputRunes {
		return handlerResult{
			Response:  fmt.Sprintf("❌ Text is too long (%d characters, max %d)", n, b.config.MaxInputRunes),
			Ephemeral: true,
			Err:       newUserError(fmt.Errorf("input of %d runes", n)),
		}
	}

	res := b.converter.Convert("bot", text)
	return handlerResult{
		Response:  formatResult(res),
		Ephemeral: private,
	}
}

func formatResult(res transliteration.Result) string {
	var sb strings.Builder
	sb.WriteString(res.Output)
	if len(res.Unresolved) > 0 {
		words := lo.Uniq(lo.Map(res.Unresolved, func(s transliteration.Span, _ int) string {
			return "`" + s.Text + "`"
		}))
		sb.WriteString("\n-# Could not convert: ")
		sb.WriteString(strings.Join(words, ", "))
	}
	return truncate(sb.String(), maxMessageLen)
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	const ellipsis = "…"
	cut := n - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}

func (b *Bot) respond(i *discordgo.InteractionCreate, result handlerResult) error {
	data := &discordgo.InteractionResponseData{
		Content:         result.Response,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	if result.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func getStringOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func getBoolOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) bool {
	for _, opt := range options {
		if opt.Name == name {
			return opt.BoolValue()
		}
	}
	return false
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
