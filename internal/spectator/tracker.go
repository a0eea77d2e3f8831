package spectator

import (
	"context"
	"errors"
	"fmt"
	"lolstalker/internal/riotapi"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Live game lookups. riotapi.ErrNotFound means the player is not in a game
type GameProvider interface {
	GetSpectator(ctx context.Context, puuid riotapi.Puuid) (riotapi.Spectator, error)
}

// Somewhere to post text, usually a discord channel.
// Must be safe for concurrent use
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

const (
	TRANSITION_NONE    = iota // Nothing changed
	TRANSITION_STARTED = iota // Idle to in game
	TRANSITION_ENDED   = iota // In game to idle
	TRANSITION_FAILED  = iota // The poll failed, nothing changed
)

type Config struct {
	Puuid       riotapi.Puuid
	Name        string        // How to call the player in messages
	Interval    time.Duration // Time between polls
	SettleDelay time.Duration // Time given to the match history to include a finished game
	Timeout     time.Duration // Bound of every request
}

type Tracker struct {
	cfg      Config
	games    GameProvider
	resolver *Resolver
	notifier Notifier

	// Only the poll loop writes the state. The mutex lets
	// Snapshot read it from other goroutines
	mu    sync.Mutex
	state State
}

func NewTracker(cfg Config, games GameProvider, history MatchHistory, notifier Notifier) (*Tracker, error) {

	if cfg.Puuid == "" {
		return nil, errors.New("puuid is required")
	}
	if games == nil || history == nil || notifier == nil {
		return nil, errors.New("game provider, match history and notifier are required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", cfg.Interval)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("request timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.SettleDelay < 0 {
		return nil, fmt.Errorf("settle delay cannot be negative, got %s", cfg.SettleDelay)
	}
	if cfg.Name == "" {
		cfg.Name = string(cfg.Puuid)
	}

	return &Tracker{
		cfg:      cfg,
		games:    games,
		resolver: NewResolver(cfg.Puuid, history, cfg.Timeout),
		notifier: notifier,
	}, nil
}

// Poll until the context is done, one poll at a time
func (tracker *Tracker) Run(ctx context.Context) {

	log.Info().Msg(fmt.Sprintf("Tracking %s every %s", tracker.cfg.Name, tracker.cfg.Interval))
	for {
		tracker.Poll(ctx)

		select {
		case <-ctx.Done():
			log.Info().Msg("Tracker stopped")
			return
		case <-time.After(tracker.cfg.Interval):
		}
	}
}

// Copy of the current state
func (tracker *Tracker) Snapshot() State {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.state.clone()
}

// Query the live game once and react to the transition, if any.
// Nothing escapes from here: failures are logged and reported to the notifier
func (tracker *Tracker) Poll(ctx context.Context) (transition int) {

	if ctx.Err() != nil {
		return TRANSITION_NONE
	}

	logger := log.With().Str("poll", uuid.NewString()).Logger()
	ctx = logger.WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Msg(fmt.Sprintf("Recovered from panic in the spectator check: %v", r))
			tracker.notify(ctx, DiagnosticMessage(r))
			transition = TRANSITION_FAILED
		}
	}()

	pollCtx, cancel := context.WithTimeout(ctx, tracker.cfg.Timeout)
	spectator, err := tracker.games.GetSpectator(pollCtx, tracker.cfg.Puuid)
	cancel()

	switch {
	case err == nil:
		return tracker.gameFound(ctx, spectator)
	case errors.Is(err, riotapi.ErrNotFound):
		return tracker.gameNotFound(ctx)
	case ctx.Err() != nil:
		// Shutting down
		return TRANSITION_NONE
	default:
		logger.Error().Err(err).Msg("Spectator check failed")
		tracker.notify(ctx, DiagnosticMessage(err))
		return TRANSITION_FAILED
	}
}

func (tracker *Tracker) gameFound(ctx context.Context, spectator riotapi.Spectator) int {

	logger := zerolog.Ctx(ctx)

	tracker.mu.Lock()
	started := tracker.state.start(spectator.GameId)
	currentGameId, _ := tracker.state.GameId()
	tracker.mu.Unlock()

	if !started {
		if currentGameId != spectator.GameId {
			logger.Warn().Msg(fmt.Sprintf("Spectator reports game %d while tracking game %d", spectator.GameId, currentGameId))
		}
		return TRANSITION_NONE
	}

	logger.Info().Msg(fmt.Sprintf("%s started game %d", tracker.cfg.Name, spectator.GameId))
	tracker.notify(ctx, GameStartedMessage(tracker.cfg.Name))
	return TRANSITION_STARTED
}

func (tracker *Tracker) gameNotFound(ctx context.Context) int {

	logger := zerolog.Ctx(ctx)

	tracker.mu.Lock()
	gameId, ended := tracker.state.end()
	tracker.mu.Unlock()

	if !ended {
		return TRANSITION_NONE
	}
	logger.Info().Msg(fmt.Sprintf("%s finished game %d, waiting %s for the match history", tracker.cfg.Name, gameId, tracker.cfg.SettleDelay))

	// The loop blocks here on purpose: there is only one player to track
	select {
	case <-ctx.Done():
		return TRANSITION_ENDED
	case <-time.After(tracker.cfg.SettleDelay):
	}

	outcome := tracker.resolver.Resolve(ctx, gameId)
	for _, message := range GameEndedMessages(tracker.cfg.Name, outcome) {
		tracker.notify(ctx, message)
	}
	return TRANSITION_ENDED
}

// Fire and forget. Failures are only logged
func (tracker *Tracker) notify(ctx context.Context, text string) {

	logger := zerolog.Ctx(ctx)
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Msg(fmt.Sprintf("Recovered from panic in the notifier: %v", r))
		}
	}()

	notifyCtx, cancel := context.WithTimeout(ctx, tracker.cfg.Timeout)
	defer cancel()
	if err := tracker.notifier.Notify(notifyCtx, text); err != nil {
		logger.Error().Err(err).Msg("Could not send notification")
	}
}
