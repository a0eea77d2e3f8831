package main

import (
	"context"
	"fmt"
	"lolstalker/internal/bot"
	"lolstalker/internal/config"
	"lolstalker/internal/riotapi"
	"lolstalker/internal/spectator"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load configuration: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Bot stopped")
	}
	log.Info().Msg("Bye")
}

func setupLogging(cfg *config.Config) {

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Development {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	// Loggers taken from a context without one fall back to the global
	zerolog.DefaultContextLogger = &log.Logger
}

type riotIdLookup interface {
	GetRiotId(ctx context.Context, puuid riotapi.Puuid) (riotapi.RiotId, error)
}

// Name used in messages: the configured one, else the game name of the
// configured riot id, else the game name Riot knows the puuid by
func playerName(ctx context.Context, player config.PlayerConfig, riotids riotIdLookup, puuid riotapi.Puuid) string {

	if player.Name != "" {
		return player.Name
	}
	if riotid, err := riotapi.ParseRiotId(player.RiotId); err == nil {
		return riotid.GameName
	}
	riotid, err := riotids.GetRiotId(ctx, puuid)
	if err != nil {
		log.Warn().Err(err).Msg(fmt.Sprintf("Could not get the riot id of %s, using the puuid in messages", puuid))
		return string(puuid)
	}
	return riotid.GameName
}

func run(ctx context.Context, cfg *config.Config) error {

	// Riot API
	api := riotapi.NewRiotApi(cfg.Riot.Key, cfg.Riot.Platform, cfg.Riot.Region, cfg.Riot.Realm, cfg.Tracker.Timeout, riotapi.DEV_KEY_RESTRICTIONS)

	// Tracked player
	puuid := riotapi.Puuid(cfg.Player.Puuid)
	if puuid == "" {
		riotid, err := riotapi.ParseRiotId(cfg.Player.RiotId)
		if err != nil {
			return err
		}
		puuid, err = api.GetPuuid(ctx, riotid)
		if err != nil {
			return fmt.Errorf("could not resolve the puuid of %s: %w", &riotid, err)
		}
		log.Info().Msg(fmt.Sprintf("Resolved %s to puuid %s", &riotid, puuid))
	}
	name := playerName(ctx, cfg.Player, api, puuid)

	// Discord
	discord, err := bot.NewSession(cfg.Discord.Token)
	if err != nil {
		return err
	}

	// Tracker
	tracker, err := spectator.NewTracker(spectator.Config{
		Puuid:       puuid,
		Name:        name,
		Interval:    cfg.Tracker.Interval,
		SettleDelay: cfg.Tracker.Settle,
		Timeout:     cfg.Tracker.Timeout,
	}, api, api, bot.NewChannelNotifier(discord, cfg.Discord.Channel))
	if err != nil {
		return fmt.Errorf("could not create tracker: %w", err)
	}

	// Bot
	b, err := bot.New(bot.Config{
		Prefix:               cfg.Discord.Prefix,
		Channel:              cfg.Discord.Channel,
		Puuid:                puuid,
		Name:                 name,
		Interval:             cfg.Tracker.Interval,
		Timeout:              cfg.Tracker.Timeout,
		CommandLimit:         cfg.Commands.Limit,
		CommandWindow:        cfg.Commands.Window,
		Matches:              cfg.Commands.Matches,
		HousekeepingInterval: cfg.Housekeeping.Interval,
	}, discord, api, tracker)
	if err != nil {
		return fmt.Errorf("could not create discord bot: %w", err)
	}

	log.Info().Msg(fmt.Sprintf("Tracking %s, posting to channel %s", name, cfg.Discord.Channel))
	return b.Run(ctx)
}
