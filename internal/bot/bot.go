package bot

import (
	"context"
	"errors"
	"fmt"
	"lolstalker/internal/common"
	"lolstalker/internal/riotapi"
	"lolstalker/internal/spectator"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Number of recent match ids considered by the matches command
const RECENT_MATCHES = 5

// Everything the commands need from the Riot API
type RiotApi interface {
	GetSpectator(ctx context.Context, puuid riotapi.Puuid) (riotapi.Spectator, error)
	GetMatchIds(ctx context.Context, puuid riotapi.Puuid, start int, count int) ([]riotapi.MatchId, error)
	GetMatch(ctx context.Context, matchId riotapi.MatchId) (riotapi.Match, error)
	GetChampionName(ctx context.Context, championId riotapi.ChampionId) (string, error)
	GetSpellName(ctx context.Context, spellId riotapi.SpellId) (string, error)
	Housekeeping(ctx context.Context)
}

type Config struct {
	Prefix               string
	Channel              string // Channel id for the tracker messages
	Puuid                riotapi.Puuid
	Name                 string
	Interval             time.Duration // Tracker poll interval, only informative
	Timeout              time.Duration // Bound of every command
	CommandLimit         int
	CommandWindow        time.Duration
	Matches              int // Matches shown by the matches command
	HousekeepingInterval time.Duration
}

type Bot struct {
	cfg            Config
	discord        *discordgo.Session
	riotapi        RiotApi
	tracker        *spectator.Tracker
	commandLimiter *common.RateLimiter
}

// Session with the intents needed to read prefix commands
func NewSession(token string) (*discordgo.Session, error) {

	discord, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("could not create discord session: %w", err)
	}
	discord.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent
	return discord, nil
}

func New(cfg Config, discord *discordgo.Session, riotapi RiotApi, tracker *spectator.Tracker) (*Bot, error) {

	if discord == nil || riotapi == nil || tracker == nil {
		return nil, errors.New("discord session, riot api and tracker are required")
	}
	if cfg.Prefix == "" {
		return nil, errors.New("command prefix is required")
	}
	cfg.Matches = min(max(cfg.Matches, 1), RECENT_MATCHES)
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Bot{
		cfg:            cfg,
		discord:        discord,
		riotapi:        riotapi,
		tracker:        tracker,
		commandLimiter: common.NewRateLimiter([]common.Restriction{{Requests: cfg.CommandLimit, Duration: cfg.CommandWindow}}),
	}, nil
}

// Connect, track the player and answer commands until the context is done
func (bot *Bot) Run(ctx context.Context) error {

	// Event handler
	bot.discord.AddHandler(func(discord *discordgo.Session, message *discordgo.MessageCreate) {
		bot.Receive(ctx, discord, message)
	})

	// Open session
	if err := bot.discord.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer bot.discord.Close()
	log.Info().Msg("Discord session open")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		bot.tracker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		bot.housekeeping(ctx)
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	wg.Wait()
	return nil
}

// Refresh the Riot API static data once per housekeeping interval
func (bot *Bot) housekeeping(ctx context.Context) {

	if bot.cfg.HousekeepingInterval <= 0 {
		return
	}
	executor := common.NewTimedExecutor(bot.cfg.HousekeepingInterval, func() {
		log.Info().Msg("Riot API housekeeping")
		bot.riotapi.Housekeeping(ctx)
	})
	for {
		executor.Execute()
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Minute):
		}
	}
}

func (bot *Bot) Receive(ctx context.Context, discord *discordgo.Session, message *discordgo.MessageCreate) {

	// Reject my own messages
	if discord.State != nil && discord.State.User != nil && message.Author != nil && message.Author.ID == discord.State.User.ID {
		return
	}

	logger := log.With().Str("command", uuid.NewString()).Str("channel", message.ChannelID).Logger()
	ctx = logger.WithContext(ctx)

	for _, response := range bot.Handle(ctx, message.Content) {
		if err := response.Send(ctx, message.ChannelID, discord); err != nil {
			logger.Error().Err(err).Msg("Could not answer command")
		}
	}
}

// Parse the input provided and call the appropriate function
func (bot *Bot) Handle(ctx context.Context, content string) []Response {

	logger := zerolog.Ctx(ctx)
	parseResult := Parse(bot.cfg.Prefix, content)
	switch parseResult.parseid {
	case PARSEID_NO_BOT_PREFIX:
		return nil
	case PARSEID_OK:
		logger.Info().Msg(fmt.Sprintf("Command understood: %s", content))
		ctx, cancel := context.WithTimeout(ctx, bot.cfg.Timeout)
		defer cancel()
		switch parseResult.command {
		case COMMAND_LIVEGAME:
			return bot.livegame(ctx)
		case COMMAND_MATCHES:
			return bot.matches(ctx)
		case COMMAND_STATUS:
			return StatusMessage(bot.cfg.Name, bot.cfg.Channel, bot.cfg.Interval, bot.tracker.Snapshot())
		case COMMAND_HELP:
			return HelpMessage(bot.cfg.Prefix)
		default:
			panic(fmt.Sprintf("Command %d is not one of the possible ones", parseResult.command))
		}
	default:
		// The command is invalid input, so it contains an error message
		logger.Info().Msg(fmt.Sprintf("Wrong input: '%s'. Reason: %s", content, parseResult.errorMessage))
		return InputNotValid(parseResult.errorMessage)
	}
}

func (bot *Bot) livegame(ctx context.Context) []Response {

	logger := zerolog.Ctx(ctx)

	game, err := bot.riotapi.GetSpectator(ctx, bot.cfg.Puuid)
	if errors.Is(err, riotapi.ErrNotFound) {
		return NotInGame(bot.cfg.Name)
	} else if err != nil {
		logger.Error().Err(err).Msg("Could not get live game")
		return NoResponseRiotApi()
	}

	// Static data. A missing name is not worth failing the command
	names := Names{Champions: map[riotapi.ChampionId]string{}, Spells: map[riotapi.SpellId]string{}}
	for _, id := range championIds(game) {
		if name, err := bot.riotapi.GetChampionName(ctx, id); err == nil {
			names.Champions[id] = name
		} else {
			logger.Warn().Err(err).Msg(fmt.Sprintf("Could not get name of champion %d", id))
		}
	}
	if player, ok := game.Participant(bot.cfg.Puuid); ok {
		for _, id := range []riotapi.SpellId{player.Spell1Id, player.Spell2Id} {
			if name, err := bot.riotapi.GetSpellName(ctx, id); err == nil {
				names.Spells[id] = name
			} else {
				logger.Warn().Err(err).Msg(fmt.Sprintf("Could not get name of spell %d", id))
			}
		}
	}

	return LiveGameMessage(bot.cfg.Name, bot.cfg.Puuid, game, names)
}

// Champions in the game, bans included, without repetitions
func championIds(game riotapi.Spectator) []riotapi.ChampionId {
	seen := map[riotapi.ChampionId]struct{}{}
	ids := []riotapi.ChampionId{}
	add := func(id riotapi.ChampionId) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, participant := range game.Participants {
		add(participant.ChampionId)
	}
	for _, id := range game.BannedChampions {
		add(id)
	}
	return ids
}

func (bot *Bot) matches(ctx context.Context) []Response {

	logger := zerolog.Ctx(ctx)

	// Expensive command, so it has its own limit
	if !bot.commandLimiter.Allowed(ctx, false) {
		logger.Warn().Msg("Matches command rate limited")
		return RateLimitReached(bot.cfg.CommandWindow)
	}

	matchIds, err := bot.riotapi.GetMatchIds(ctx, bot.cfg.Puuid, 0, RECENT_MATCHES)
	if err != nil {
		logger.Error().Err(err).Msg("Could not get match ids")
		return NoResponseRiotApi()
	}
	if len(matchIds) == 0 {
		return NoMatches(bot.cfg.Name)
	}

	// Request the details concurrently
	var wg sync.WaitGroup
	ch := make(chan riotapi.Match, len(matchIds))
	for _, matchId := range matchIds {
		wg.Add(1)
		go func(matchId riotapi.MatchId) {
			defer wg.Done()
			match, err := bot.riotapi.GetMatch(ctx, matchId)
			if err != nil {
				logger.Warn().Err(err).Msg(fmt.Sprintf("Could not get match %s", matchId))
				return
			}
			ch <- match
		}(matchId)
	}
	wg.Wait()
	close(ch)

	matches := []riotapi.Match{}
	for match := range ch {
		matches = append(matches, match)
	}
	if len(matches) == 0 {
		return NoResponseRiotApi()
	}

	responses := MatchesMessage(bot.cfg.Name, bot.cfg.Puuid, matches, time.Now())
	if len(responses) > bot.cfg.Matches {
		responses = responses[:bot.cfg.Matches]
	}
	return responses
}
