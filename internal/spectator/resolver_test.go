package spectator

import (
	"context"
	"errors"
	"lolstalker/internal/riotapi"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve_Won(t *testing.T) {
	resolver := NewResolver(testPuuid, wonMatch(1, 2), time.Second)

	outcome := resolver.Resolve(context.Background(), 1)

	assert.Equal(t, Outcome{Resolved: true, Won: true, Deaths: 2}, outcome)
}

func TestResolve_Lost(t *testing.T) {
	history := &fakeHistory{
		matchIds: []riotapi.MatchId{"NA1_1"},
		match: riotapi.Match{Info: riotapi.MatchInfo{Participants: []riotapi.MatchParticipant{
			{Puuid: testPuuid, Win: false, Deaths: 11},
		}}},
	}
	resolver := NewResolver(testPuuid, history, time.Second)

	outcome := resolver.Resolve(context.Background(), 1)

	assert.Equal(t, Outcome{Resolved: true, Won: false, Deaths: 11}, outcome)
}

func TestResolve_LatestMatchOfAnotherGameIsStillUsed(t *testing.T) {
	resolver := NewResolver(testPuuid, wonMatch(7, 3), time.Second)

	outcome := resolver.Resolve(context.Background(), 1)

	assert.True(t, outcome.Resolved)
	assert.Equal(t, 3, outcome.Deaths)
}

func TestResolve_Unresolved(t *testing.T) {
	tests := []struct {
		name    string
		history *fakeHistory
		reason  string
	}{
		{"empty match list", &fakeHistory{}, "no matches found"},
		{"match id request fails", &fakeHistory{idsErr: errors.New("timeout")}, "could not get latest match"},
		{"match detail fails", &fakeHistory{matchIds: []riotapi.MatchId{"NA1_1"}, matchErr: errors.New("bad gateway")}, "could not get match NA1_1"},
		{"player not in match", &fakeHistory{
			matchIds: []riotapi.MatchId{"NA1_1"},
			match: riotapi.Match{Info: riotapi.MatchInfo{Participants: []riotapi.MatchParticipant{
				{Puuid: "someone-else", Win: true, Deaths: 1},
			}}},
		}, "player not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewResolver(testPuuid, tt.history, time.Second)

			outcome := resolver.Resolve(context.Background(), 1)

			assert.False(t, outcome.Resolved)
			assert.Zero(t, outcome.Deaths)
			assert.Contains(t, outcome.Reason, tt.reason)
		})
	}
}

func TestGameEndedMessages(t *testing.T) {
	assert.Equal(t, []string{
		"Sourcewalker's game just ended! Sourcewalker's team lost!",
		"Amount of times Sourcewalker died: 8",
	}, GameEndedMessages("Sourcewalker", Outcome{Resolved: true, Deaths: 8}))

	assert.Equal(t, []string{
		"Sourcewalker's game just ended! Unable to determine match result (no matches found).",
		"Amount of times Sourcewalker died: 0",
	}, GameEndedMessages("Sourcewalker", Outcome{Reason: "no matches found"}))
}
