package riotapi

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Puuid string
type ChampionId int
type SpellId int
type GameId int64
type MatchId string

type RiotId struct {
	GameName string
	TagLine  string
}

// Live game as reported by the spectator endpoint
type Spectator struct {
	GameId          GameId
	GameMode        string
	GameLength      time.Duration
	Participants    []SpectatorParticipant
	BannedChampions []ChampionId
}

type SpectatorParticipant struct {
	Puuid      Puuid
	Riotid     RiotId
	ChampionId ChampionId
	TeamId     int
	Spell1Id   SpellId
	Spell2Id   SpellId
}

type Match struct {
	MatchId MatchId
	Info    MatchInfo
}

type MatchInfo struct {
	GameCreation time.Time
	GameDuration time.Duration
	GameMode     string
	Participants []MatchParticipant
}

type MatchParticipant struct {
	Puuid                Puuid
	Riotid               RiotId
	ChampionId           ChampionId
	ChampionName         string
	TeamId               int
	Win                  bool
	Kills                int
	Deaths               int
	Assists              int
	TotalMinionsKilled   int
	NeutralMinionsKilled int
}

func (riotid *RiotId) String() string {
	return fmt.Sprintf("%s#%s", riotid.GameName, riotid.TagLine)
}

// Parse a riot id written as <game_name>#<tag_line>
func ParseRiotId(s string) (RiotId, error) {

	index := strings.Index(s, "#")
	if index <= 0 || index == len(s)-1 {
		return RiotId{}, fmt.Errorf("%q is not a riot id", s)
	}
	return RiotId{GameName: s[:index], TagLine: s[index+1:]}, nil
}

// Find a participant in the live game
func (spectator *Spectator) Participant(puuid Puuid) (SpectatorParticipant, bool) {
	for _, participant := range spectator.Participants {
		if participant.Puuid == puuid {
			return participant, true
		}
	}
	return SpectatorParticipant{}, false
}

// Find a participant in the match
func (match *Match) Participant(puuid Puuid) (MatchParticipant, bool) {
	for _, participant := range match.Info.Participants {
		if participant.Puuid == puuid {
			return participant, true
		}
	}
	return MatchParticipant{}, false
}

// Creep score, counting lane minions and jungle monsters
func (participant *MatchParticipant) CreepScore() int {
	return participant.TotalMinionsKilled + participant.NeutralMinionsKilled
}

// Match ids are made of the platform and the game id, as in NA1_5012345678
func (matchId MatchId) GameId() (GameId, bool) {
	index := strings.LastIndex(string(matchId), "_")
	if index == -1 {
		return 0, false
	}
	gameId, err := strconv.ParseInt(string(matchId)[index+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return GameId(gameId), true
}
