package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/jusunglee/singlish/internal/bot"
	"github.com/jusunglee/singlish/internal/converter"
	"github.com/jusunglee/singlish/internal/db/postgres"
	"github.com/jusunglee/singlish/internal/db/sqlite"
	"github.com/jusunglee/singlish/internal/envsetup"
	"github.com/jusunglee/singlish/internal/health"
	"github.com/jusunglee/singlish/internal/logger"
	"github.com/jusunglee/singlish/internal/transliteration"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
	slog.Info("exiting without error")
}

func mainE() error {
	if envsetup.NeedsSetup(".env") && os.Getenv("DISCORD_TOKEN") == "" {
		ok, err := envsetup.Run(".env")
		if err != nil {
			return fmt.Errorf("running env setup: %w", err)
		}
		if !ok {
			return errors.New("setup cancelled")
		}
	}
	_ = godotenv.Load()

	fs_ := ff.NewFlagSet("singlish-bot")

	var (
		discordToken  = fs_.StringLong("discord-token", "", "Discord bot token")
		guildID       = fs_.StringLong("guild-id", "", "Register commands to this guild only (instant updates)")
		rulesPath     = fs_.StringLong("rules", "", "YAML rule file (defaults to the built-in Sinhala rules)")
		databaseURL   = fs_.StringLong("database-url", "", "Optional sqlite:// or postgres:// URL to load stored passthrough words from")
		healthPort    = fs_.IntLong("health-port", 8080, "Port for the health check endpoint")
		maxInputRunes = fs_.IntLong("max-input-runes", 1000, "Longest text accepted by /sinhala")
	)

	if err := ff.Parse(fs_, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs_))
		return fmt.Errorf("parsing flags: %w", err)
	}

	if *discordToken == "" {
		return errors.New("discord-token is required")
	}

	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := transliteration.Config{Registry: transliteration.DefaultRegistry()}
	if *rulesPath != "" {
		rules, err := transliteration.LoadRulesFile(*rulesPath)
		if err != nil {
			return fmt.Errorf("loading rules: %w", err)
		}
		cfg.Rules = rules
	}
	engine, err := transliteration.New(cfg)
	if err != nil {
		return err
	}
	conv := converter.New(engine)

	checks := map[string]health.Checker{}
	if *databaseURL != "" {
		if err := loadStoredWords(ctx, *databaseURL, conv, log); err != nil {
			return err
		}
	}

	session, err := discordgo.New("Bot " + *discordToken)
	if err != nil {
		return fmt.Errorf("creating Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	checks["discord"] = func(context.Context) error {
		if !session.DataReady {
			return errors.New("gateway not ready")
		}
		return nil
	}

	b := bot.New(bot.NewLogger(log), bot.NewDiscordSession(session), conv, bot.Config{
		GuildID:       *guildID,
		MaxInputRunes: *maxInputRunes,
	})

	healthServer := health.New(*healthPort, checks)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.InfoContext(gctx, "starting health server", "port", *healthPort)
		return healthServer.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return healthServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return b.Run(gctx)
	})

	return g.Wait()
}

// loadStoredWords adds the passthrough words saved through the web service
// so both surfaces convert alike.
func loadStoredWords(ctx context.Context, url string, conv *converter.Converter, log *slog.Logger) error {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		repo, err := postgres.New(ctx, url)
		if err != nil {
			return fmt.Errorf("creating PostgreSQL connection: %w", err)
		}
		defer repo.Close()
		n, err := conv.LoadStored(ctx, repo)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "stored passthrough words loaded", "count", n)
		return nil
	}

	repo, err := sqlite.New(ctx, url)
	if err != nil {
		return fmt.Errorf("opening SQLite database: %w", err)
	}
	defer repo.Close()
	n, err := conv.LoadStored(ctx, repo)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "stored passthrough words loaded", "count", n)
	return nil
}
