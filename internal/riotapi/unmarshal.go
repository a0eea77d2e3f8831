package riotapi

import (
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

func UnmarshalPuuid(data []byte) (Puuid, error) {

	var puuid struct {
		Puuid string `json:"puuid"`
	}
	if err := json.Unmarshal(data, &puuid); err != nil {
		return "", err
	}
	if puuid.Puuid == "" {
		return "", fmt.Errorf("puuid not found among received data")
	}

	return Puuid(puuid.Puuid), nil
}

func UnmarshalRiotId(data []byte) (RiotId, error) {

	var raw struct {
		GameName string `json:"gameName"`
		TagLine  string `json:"tagLine"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return RiotId{}, err
	}

	return RiotId{GameName: raw.GameName, TagLine: raw.TagLine}, nil
}

func UnmarshalSpectator(data []byte) (Spectator, error) {

	// unmarshal
	var raw struct {
		GameId       GameId `json:"gameId"`
		GameMode     string `json:"gameMode"`
		GameLength   int64  `json:"gameLength"`
		Participants []struct {
			Puuid      Puuid      `json:"puuid"`
			RiotId     string     `json:"riotId"`
			ChampionId ChampionId `json:"championId"`
			TeamId     int        `json:"teamId"`
			Spell1Id   SpellId    `json:"spell1Id"`
			Spell2Id   SpellId    `json:"spell2Id"`
		} `json:"participants"`
		BannedChampions []struct {
			ChampionId ChampionId `json:"championId"`
		} `json:"bannedChampions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Spectator{}, err
	}
	if raw.GameId == 0 {
		return Spectator{}, fmt.Errorf("game id not found among spectator data")
	}

	spectator := Spectator{
		GameId:     raw.GameId,
		GameMode:   raw.GameMode,
		GameLength: time.Duration(raw.GameLength) * time.Second,
	}
	for _, rawPart := range raw.Participants {
		// Bots and some custom games come without a riot id
		riotid, _ := ParseRiotId(rawPart.RiotId)
		spectator.Participants = append(spectator.Participants, SpectatorParticipant{
			Puuid:      rawPart.Puuid,
			Riotid:     riotid,
			ChampionId: rawPart.ChampionId,
			TeamId:     rawPart.TeamId,
			Spell1Id:   rawPart.Spell1Id,
			Spell2Id:   rawPart.Spell2Id,
		})
	}
	for _, ban := range raw.BannedChampions {
		// -1 means no ban in that turn
		if ban.ChampionId > 0 {
			spectator.BannedChampions = append(spectator.BannedChampions, ban.ChampionId)
		}
	}

	return spectator, nil
}

func UnmarshalMatchIds(data []byte) ([]MatchId, error) {

	var matchIds []MatchId
	if err := json.Unmarshal(data, &matchIds); err != nil {
		return nil, err
	}
	return matchIds, nil
}

func UnmarshalMatch(data []byte) (Match, error) {

	// unmarshal
	var raw struct {
		Metadata struct {
			MatchId MatchId `json:"matchId"`
		} `json:"metadata"`
		Info struct {
			GameCreation int64  `json:"gameCreation"`
			GameDuration int64  `json:"gameDuration"`
			GameMode     string `json:"gameMode"`
			Participants []struct {
				Puuid                Puuid      `json:"puuid"`
				RiotIdGameName       string     `json:"riotIdGameName"`
				RiotIdTagline        string     `json:"riotIdTagline"`
				ChampionId           ChampionId `json:"championId"`
				ChampionName         string     `json:"championName"`
				TeamId               int        `json:"teamId"`
				Win                  bool       `json:"win"`
				Kills                int        `json:"kills"`
				Deaths               int        `json:"deaths"`
				Assists              int        `json:"assists"`
				TotalMinionsKilled   int        `json:"totalMinionsKilled"`
				NeutralMinionsKilled int        `json:"neutralMinionsKilled"`
			} `json:"participants"`
		} `json:"info"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Match{}, err
	}

	match := Match{
		MatchId: raw.Metadata.MatchId,
		Info: MatchInfo{
			GameCreation: time.UnixMilli(raw.Info.GameCreation),
			GameDuration: time.Duration(raw.Info.GameDuration) * time.Second,
			GameMode:     raw.Info.GameMode,
		},
	}
	for _, rawPart := range raw.Info.Participants {
		match.Info.Participants = append(match.Info.Participants, MatchParticipant{
			Puuid:                rawPart.Puuid,
			Riotid:               RiotId{GameName: rawPart.RiotIdGameName, TagLine: rawPart.RiotIdTagline},
			ChampionId:           rawPart.ChampionId,
			ChampionName:         rawPart.ChampionName,
			TeamId:               rawPart.TeamId,
			Win:                  rawPart.Win,
			Kills:                rawPart.Kills,
			Deaths:               rawPart.Deaths,
			Assists:              rawPart.Assists,
			TotalMinionsKilled:   rawPart.TotalMinionsKilled,
			NeutralMinionsKilled: rawPart.NeutralMinionsKilled,
		})
	}

	return match, nil
}

// Decode the champion.json file of the data dragon
func UnmarshalChampions(data []byte) (map[ChampionId]string, error) {

	var raw struct {
		Data map[string]struct {
			Key  string `json:"key"`
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("champion data in response is not correctly formatted")
	}

	champions := make(map[ChampionId]string, len(raw.Data))
	for _, champion := range raw.Data {
		championId, err := strconv.Atoi(champion.Key)
		if err != nil {
			return nil, fmt.Errorf("champion id is not correctly formatted in response: %s", champion.Key)
		}
		champions[ChampionId(championId)] = champion.Name
	}
	return champions, nil
}

// Decode the summoner.json file of the data dragon
func UnmarshalSpells(data []byte) (map[SpellId]string, error) {

	var raw struct {
		Data map[string]struct {
			Key  string `json:"key"`
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("summoner spell data in response is not correctly formatted")
	}

	spells := make(map[SpellId]string, len(raw.Data))
	for _, spell := range raw.Data {
		spellId, err := strconv.Atoi(spell.Key)
		if err != nil {
			return nil, fmt.Errorf("summoner spell id is not correctly formatted in response: %s", spell.Key)
		}
		spells[SpellId(spellId)] = spell.Name
	}
	return spells, nil
}

func UnmarshalVersions(data []byte) ([]string, error) {

	var versions []string
	if err := json.Unmarshal(data, &versions); err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("no versions found among received data")
	}
	return versions, nil
}

func UnmarshalRealmVersion(data []byte) (string, error) {

	var realm struct {
		Dd string `json:"dd"`
	}
	if err := json.Unmarshal(data, &realm); err != nil {
		return "", err
	}
	if realm.Dd == "" {
		return "", fmt.Errorf("realm data does not contain a data dragon version")
	}
	return realm.Dd, nil
}
