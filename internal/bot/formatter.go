package bot

import (
	"fmt"
	"lolstalker/internal/riotapi"
	"lolstalker/internal/spectator"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Use "teal" color for the bot
const color int = 0x008080

// Embed colors of the match results
const (
	colorWin  int = 0x2e8b57
	colorLoss int = 0xb22222
)

func InputNotValid(errorMessage string) []Response {

	return []Response{ResponseString{fmt.Sprintf("Input not valid: \n> %s", errorMessage)}}
}

func RateLimitReached(window time.Duration) []Response {

	return []Response{ResponseString{fmt.Sprintf("Rate limit reached. Try again in a few moments (the limit resets every %s)", window)}}
}

func NotInGame(name string) []Response {

	return []Response{ResponseString{fmt.Sprintf("%s is not in a game right now", name)}}
}

func NoMatches(name string) []Response {

	return []Response{ResponseString{fmt.Sprintf("No recent matches found for %s", name)}}
}

func NoResponseRiotApi() []Response {

	return []Response{ResponseString{"Got no response from Riot API, try again later"}}
}

func HelpMessage(prefix string) []Response {

	embed := discordgo.MessageEmbed{Title: "Commands available", Color: color}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  fmt.Sprintf("`%s livegame`", prefix),
		Value: "Show the game the tracked player is currently in: mode, champions, spells and bans",
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  fmt.Sprintf("`%s matches`", prefix),
		Value: "Show the latest matches of the tracked player",
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  fmt.Sprintf("`%s status`", prefix),
		Value: "Print the tracked player, the channel the bot is sending messages to and the tracker state",
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  fmt.Sprintf("`%s help`", prefix),
		Value: "Print the usage of the different commands",
	})
	return []Response{ResponseEmbed{embed}}
}

func StatusMessage(name string, channelid string, interval time.Duration, state spectator.State) []Response {

	embed := discordgo.MessageEmbed{Title: "Tracker status", Color: color}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Tracked player:", Value: name})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Channel for in-game messages:", Value: fmt.Sprintf("<#%s>", channelid)})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Poll interval:", Value: interval.String()})

	// Tracker state
	value := "Idle"
	if gameId, ok := state.GameId(); ok {
		value = fmt.Sprintf("In game %d", gameId)
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "State:", Value: value})

	return []Response{ResponseEmbed{embed}}
}

// Names of the static data, already looked up by the caller
type Names struct {
	Champions map[riotapi.ChampionId]string
	Spells    map[riotapi.SpellId]string
}

func (names *Names) champion(id riotapi.ChampionId) string {
	if name, ok := names.Champions[id]; ok {
		return name
	}
	return fmt.Sprintf("Champion %d", id)
}

func (names *Names) spell(id riotapi.SpellId) string {
	if name, ok := names.Spells[id]; ok {
		return name
	}
	return fmt.Sprintf("Spell %d", id)
}

func LiveGameMessage(name string, puuid riotapi.Puuid, game riotapi.Spectator, names Names) []Response {

	embed := discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s is in game (%s)", name, game.GameMode),
		Description: fmt.Sprintf("Time elapsed: %d minutes", int64(game.GameLength.Minutes())),
		Color:       color,
	}

	// The player's team goes first
	player, found := game.Participant(puuid)
	if found {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "**Playing**",
			Value: fmt.Sprintf("%s (%s, %s)", names.champion(player.ChampionId), names.spell(player.Spell1Id), names.spell(player.Spell2Id)),
		})
	}
	teamIds := []int{}
	for _, participant := range game.Participants {
		if !slices.Contains(teamIds, participant.TeamId) {
			teamIds = append(teamIds, participant.TeamId)
		}
	}
	slices.Sort(teamIds)
	if found {
		if index := slices.Index(teamIds, player.TeamId); index > 0 {
			teamIds = slices.Delete(teamIds, index, index+1)
			teamIds = slices.Insert(teamIds, 0, player.TeamId)
		}
	}
	for index, teamId := range teamIds {
		title := fmt.Sprintf("**Team %d**", index+1)
		if found {
			title = "**Allies**"
			if teamId != player.TeamId {
				title = "**Enemies**"
			}
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: title, Value: teamValue(game, teamId, names), Inline: true})
	}

	// Bans
	if len(game.BannedChampions) > 0 {
		bans := make([]string, len(game.BannedChampions))
		for i, id := range game.BannedChampions {
			bans[i] = names.champion(id)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "**Bans**", Value: strings.Join(bans, ", ")})
	}

	return []Response{ResponseEmbed{embed}}
}

func teamValue(game riotapi.Spectator, teamId int, names Names) string {

	value := ""
	for _, participant := range game.Participants {
		if participant.TeamId != teamId {
			continue
		}
		value += fmt.Sprintf("**%s**", names.champion(participant.ChampionId))
		if participant.Riotid.GameName != "" {
			value += fmt.Sprintf(" (%s)", &participant.Riotid)
		}
		value += "\n"
	}
	return value
}

// One embed per match, newest first
func MatchesMessage(name string, puuid riotapi.Puuid, matches []riotapi.Match, now time.Time) []Response {

	matches = slices.Clone(matches)
	slices.SortFunc(matches, func(a, b riotapi.Match) int {
		return b.Info.GameCreation.Compare(a.Info.GameCreation)
	})

	responses := []Response{}
	for _, match := range matches {
		player, ok := match.Participant(puuid)
		if !ok {
			continue
		}
		responses = append(responses, ResponseEmbed{matchEmbed(name, player, match, now)})
	}
	if len(responses) == 0 {
		return NoMatches(name)
	}
	return responses
}

func matchEmbed(name string, player riotapi.MatchParticipant, match riotapi.Match, now time.Time) discordgo.MessageEmbed {

	result, embedColor := "Defeat", colorLoss
	if player.Win {
		result, embedColor = "Victory", colorWin
	}
	embed := discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s: %s as %s", result, name, player.ChampionName),
		Description: fmt.Sprintf("%s, %s, %s", match.Info.GameMode, FormatDuration(match.Info.GameDuration), FormatTimeAgo(now.Sub(match.Info.GameCreation))),
		Color:       embedColor,
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "KDA",
		Value:  fmt.Sprintf("%d/%d/%d", player.Kills, player.Deaths, player.Assists),
		Inline: true,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "CS",
		Value:  fmt.Sprintf("%d (%.1f/min)", player.CreepScore(), CreepScorePerMinute(player.CreepScore(), match.Info.GameDuration)),
		Inline: true,
	})

	// Allies and enemies
	allies, enemies := []string{}, []string{}
	for _, participant := range match.Info.Participants {
		if participant.Puuid == player.Puuid {
			continue
		}
		if participant.TeamId == player.TeamId {
			allies = append(allies, participant.ChampionName)
		} else {
			enemies = append(enemies, participant.ChampionName)
		}
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Allies", Value: joinOrNone(allies)})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Enemies", Value: joinOrNone(enemies)})

	return embed
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "None"
	}
	return strings.Join(values, ", ")
}

func CreepScorePerMinute(creepScore int, duration time.Duration) float64 {
	if duration <= 0 {
		return 0
	}
	return float64(creepScore) / duration.Minutes()
}

func FormatDuration(duration time.Duration) string {
	minutes := int64(duration.Minutes())
	seconds := int64(duration.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

func FormatTimeAgo(elapsed time.Duration) string {
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%d minutes ago", int64(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int64(elapsed.Hours()))
	case elapsed < 48*time.Hour:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", int64(elapsed.Hours())/24)
	}
}
