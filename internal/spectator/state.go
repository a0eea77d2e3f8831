package spectator

import "lolstalker/internal/riotapi"

// What the tracker believes about the tracked player.
// currentGameId is set if and only if inGame is true
type State struct {
	inGame        bool
	currentGameId *riotapi.GameId
}

func (state State) InGame() bool {
	return state.inGame
}

// The game the player is in, if any
func (state State) GameId() (riotapi.GameId, bool) {
	if state.currentGameId == nil {
		return 0, false
	}
	return *state.currentGameId, true
}

// Move to in game. Report false when already in a game,
// in which case the current game id is kept
func (state *State) start(gameId riotapi.GameId) bool {
	if state.inGame {
		return false
	}
	state.inGame = true
	state.currentGameId = &gameId
	return true
}

// Move to idle, returning the game that just ended.
// Report false when already idle
func (state *State) end() (riotapi.GameId, bool) {
	if !state.inGame {
		return 0, false
	}
	gameId := *state.currentGameId
	state.inGame = false
	state.currentGameId = nil
	return gameId, true
}

func (state State) clone() State {
	if gameId, ok := state.GameId(); ok {
		return State{inGame: state.inGame, currentGameId: &gameId}
	}
	return State{inGame: state.inGame}
}
