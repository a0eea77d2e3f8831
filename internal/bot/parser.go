package bot

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	COMMAND_LIVEGAME = iota
	COMMAND_MATCHES  = iota
	COMMAND_STATUS   = iota
	COMMAND_HELP     = iota
)

const (
	PARSEID_OK                     = iota
	PARSEID_NO_BOT_PREFIX          = iota
	PARSEID_NO_COMMAND             = iota
	PARSEID_COMMAND_NOT_RECOGNISED = iota
	PARSEID_UNEXPECTED_INPUT       = iota
)

var errorMessages map[int]string = map[int]string{
	PARSEID_NO_COMMAND:             "No command provided",
	PARSEID_COMMAND_NOT_RECOGNISED: "Command `%s` not recognised",
	PARSEID_UNEXPECTED_INPUT:       "Command `%s` does not take any argument",
}

var commands map[string]int = map[string]int{
	"livegame": COMMAND_LIVEGAME,
	"matches":  COMMAND_MATCHES,
	"status":   COMMAND_STATUS,
	"help":     COMMAND_HELP,
}

type ParseResult struct {
	command      int
	parseid      int
	errorMessage string
}

// Commands look like "<prefix> <command>", case insensitive
func Parse(prefix string, message string) ParseResult {

	// The first word has to be the bot prefix
	words := strings.Fields(message)
	if len(words) == 0 || !strings.EqualFold(words[0], prefix) {
		log.Debug().Msg("Reject message not intended for the bot")
		return ParseResult{parseid: PARSEID_NO_BOT_PREFIX}
	}
	words = words[1:]

	// Get the command if valid
	if len(words) == 0 {
		parseid := PARSEID_NO_COMMAND
		return ParseResult{parseid: parseid, errorMessage: errorMessages[parseid]}
	}
	commandString := strings.ToLower(words[0])
	command, ok := commands[commandString]
	if !ok {
		parseid := PARSEID_COMMAND_NOT_RECOGNISED
		return ParseResult{parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], words[0])}
	}

	// None of the commands take arguments
	if len(words) > 1 {
		parseid := PARSEID_UNEXPECTED_INPUT
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], commandString)}
	}

	return ParseResult{command: command, parseid: PARSEID_OK}
}
