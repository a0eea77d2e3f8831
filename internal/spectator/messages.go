package spectator

import "fmt"

func GameStartedMessage(name string) string {
	return fmt.Sprintf("%s is in a game now! Monitoring...", name)
}

// Two lines: how the game went and how many times the player died
func GameEndedMessages(name string, outcome Outcome) []string {

	var result string
	switch {
	case !outcome.Resolved:
		result = fmt.Sprintf("Unable to determine match result (%s).", outcome.Reason)
	case outcome.Won:
		result = fmt.Sprintf("%s's team won!", name)
	default:
		result = fmt.Sprintf("%s's team lost!", name)
	}

	return []string{
		fmt.Sprintf("%s's game just ended! %s", name, result),
		fmt.Sprintf("Amount of times %s died: %d", name, outcome.Deaths),
	}
}

func DiagnosticMessage(reason any) string {
	return fmt.Sprintf("An error occurred in the spectator check: %v", reason)
}
