package spectator

import (
	"context"
	"fmt"
	"lolstalker/internal/riotapi"
	"time"

	"github.com/rs/zerolog"
)

// Match history lookups used to find out how a game ended
type MatchHistory interface {
	GetMatchIds(ctx context.Context, puuid riotapi.Puuid, start int, count int) ([]riotapi.MatchId, error)
	GetMatch(ctx context.Context, matchId riotapi.MatchId) (riotapi.Match, error)
}

// Result of a finished game. When Resolved is false,
// Reason explains why the result could not be found
type Outcome struct {
	Resolved bool
	Won      bool
	Deaths   int
	Reason   string
}

func unresolved(format string, args ...any) Outcome {
	return Outcome{Reason: fmt.Sprintf(format, args...)}
}

type Resolver struct {
	puuid   riotapi.Puuid
	history MatchHistory
	timeout time.Duration
}

func NewResolver(puuid riotapi.Puuid, history MatchHistory, timeout time.Duration) *Resolver {
	return &Resolver{puuid, history, timeout}
}

// Find the outcome of the most recent match of the player.
// The game id is only used to warn when the latest match looks like
// a different game, since match history is not queried by game id.
// Never fails: problems end up in an unresolved outcome
func (resolver *Resolver) Resolve(ctx context.Context, gameId riotapi.GameId) Outcome {

	logger := zerolog.Ctx(ctx)

	// Latest match id
	idsCtx, cancel := context.WithTimeout(ctx, resolver.timeout)
	matchIds, err := resolver.history.GetMatchIds(idsCtx, resolver.puuid, 0, 1)
	cancel()
	if err != nil {
		logger.Error().Err(err).Msg("Could not get latest match id")
		return unresolved("could not get latest match: %s", err)
	}
	if len(matchIds) == 0 {
		logger.Warn().Msg(fmt.Sprintf("No matches found for puuid %s", resolver.puuid))
		return unresolved("no matches found")
	}
	matchId := matchIds[0]
	if matchGameId, ok := matchId.GameId(); !ok || matchGameId != gameId {
		logger.Warn().Msg(fmt.Sprintf("Latest match %s may not be game %d", matchId, gameId))
	}

	// Match detail
	matchCtx, cancel := context.WithTimeout(ctx, resolver.timeout)
	match, err := resolver.history.GetMatch(matchCtx, matchId)
	cancel()
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Could not get match %s", matchId))
		return unresolved("could not get match %s: %s", matchId, err)
	}

	// Player inside the match
	participant, ok := match.Participant(resolver.puuid)
	if !ok {
		logger.Warn().Msg(fmt.Sprintf("Puuid %s is not among the participants of match %s", resolver.puuid, matchId))
		return unresolved("player not found in match %s", matchId)
	}

	logger.Info().Msg(fmt.Sprintf("Match %s resolved: win %t, deaths %d", matchId, participant.Win, participant.Deaths))
	return Outcome{Resolved: true, Won: participant.Win, Deaths: participant.Deaths}
}
