package spectator

import (
	"context"
	"errors"
	"fmt"
	"lolstalker/internal/common"
	"lolstalker/internal/riotapi"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPuuid = riotapi.Puuid("puuid-1")

type pollResult struct {
	gameId riotapi.GameId
	err    error
}

func found(gameId riotapi.GameId) pollResult { return pollResult{gameId: gameId} }
func notFound() pollResult                   { return pollResult{err: riotapi.ErrNotFound} }
func providerError() pollResult              { return pollResult{err: common.ErrRateLimited} }

// Answers the scripted results in order
type fakeProvider struct {
	results []pollResult
	calls   int
	panics  bool
}

func (p *fakeProvider) GetSpectator(ctx context.Context, puuid riotapi.Puuid) (riotapi.Spectator, error) {
	if p.panics {
		panic("malformed response")
	}
	result := p.results[p.calls]
	p.calls++
	if result.err != nil {
		return riotapi.Spectator{}, result.err
	}
	return riotapi.Spectator{GameId: result.gameId}, nil
}

type fakeHistory struct {
	matchIds   []riotapi.MatchId
	idsErr     error
	match      riotapi.Match
	matchErr   error
	idRequests int
}

func (h *fakeHistory) GetMatchIds(ctx context.Context, puuid riotapi.Puuid, start int, count int) ([]riotapi.MatchId, error) {
	h.idRequests++
	return h.matchIds, h.idsErr
}

func (h *fakeHistory) GetMatch(ctx context.Context, matchId riotapi.MatchId) (riotapi.Match, error) {
	return h.match, h.matchErr
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *fakeNotifier) Notify(ctx context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return n.err
}

func (n *fakeNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func wonMatch(gameId riotapi.GameId, deaths int) *fakeHistory {
	return &fakeHistory{
		matchIds: []riotapi.MatchId{riotapi.MatchId(fmt.Sprintf("NA1_%d", gameId))},
		match: riotapi.Match{Info: riotapi.MatchInfo{Participants: []riotapi.MatchParticipant{
			{Puuid: "someone-else", Win: false, Deaths: 9},
			{Puuid: testPuuid, Win: true, Deaths: deaths},
		}}},
	}
}

func newTestTracker(t *testing.T, provider GameProvider, history MatchHistory, notifier Notifier) *Tracker {
	tracker, err := NewTracker(Config{
		Puuid:       testPuuid,
		Name:        "Sourcewalker",
		Interval:    time.Millisecond,
		SettleDelay: 0,
		Timeout:     time.Second,
	}, provider, history, notifier)
	require.NoError(t, err)
	return tracker
}

func assertInvariant(t *testing.T, state State) {
	t.Helper()
	_, hasGameId := state.GameId()
	assert.Equal(t, state.InGame(), hasGameId, "game id must be present if and only if in game")
}

func TestPoll_StartAndEndScenario(t *testing.T) {
	provider := &fakeProvider{results: []pollResult{notFound(), found(1), found(1), notFound()}}
	history := wonMatch(1, 2)
	notifier := &fakeNotifier{}
	tracker := newTestTracker(t, provider, history, notifier)
	ctx := context.Background()

	assert.Equal(t, TRANSITION_NONE, tracker.Poll(ctx))
	assert.Empty(t, notifier.Messages())

	assert.Equal(t, TRANSITION_STARTED, tracker.Poll(ctx))
	assert.Equal(t, []string{"Sourcewalker is in a game now! Monitoring..."}, notifier.Messages())
	gameId, ok := tracker.Snapshot().GameId()
	assert.True(t, ok)
	assert.Equal(t, riotapi.GameId(1), gameId)

	assert.Equal(t, TRANSITION_NONE, tracker.Poll(ctx))
	assert.Len(t, notifier.Messages(), 1)

	assert.Equal(t, TRANSITION_ENDED, tracker.Poll(ctx))
	assert.Equal(t, []string{
		"Sourcewalker is in a game now! Monitoring...",
		"Sourcewalker's game just ended! Sourcewalker's team won!",
		"Amount of times Sourcewalker died: 2",
	}, notifier.Messages())
	assert.Equal(t, 1, history.idRequests)
	assert.False(t, tracker.Snapshot().InGame())
	assertInvariant(t, tracker.Snapshot())
}

func TestPoll_FoundTwiceStartsOnce(t *testing.T) {
	provider := &fakeProvider{results: []pollResult{found(1), found(1)}}
	notifier := &fakeNotifier{}
	tracker := newTestTracker(t, provider, &fakeHistory{}, notifier)

	transitions := []int{tracker.Poll(context.Background()), tracker.Poll(context.Background())}

	assert.Equal(t, []int{TRANSITION_STARTED, TRANSITION_NONE}, transitions)
	assert.Len(t, notifier.Messages(), 1)
}

func TestPoll_GameIdNotOverwrittenMidGame(t *testing.T) {
	provider := &fakeProvider{results: []pollResult{found(1), found(2)}}
	notifier := &fakeNotifier{}
	tracker := newTestTracker(t, provider, &fakeHistory{}, notifier)

	tracker.Poll(context.Background())
	tracker.Poll(context.Background())

	gameId, _ := tracker.Snapshot().GameId()
	assert.Equal(t, riotapi.GameId(1), gameId)
	assert.Len(t, notifier.Messages(), 1)
}

func TestPoll_NotFoundTwiceEndsOnce(t *testing.T) {
	provider := &fakeProvider{results: []pollResult{found(1), notFound(), notFound()}}
	history := wonMatch(1, 0)
	notifier := &fakeNotifier{}
	tracker := newTestTracker(t, provider, history, notifier)
	ctx := context.Background()

	tracker.Poll(ctx)
	assert.Equal(t, TRANSITION_ENDED, tracker.Poll(ctx))
	assert.Equal(t, TRANSITION_NONE, tracker.Poll(ctx))

	assert.Equal(t, 1, history.idRequests)
	assert.Len(t, notifier.Messages(), 3)
}

func TestPoll_ProviderErrorKeepsState(t *testing.T) {
	provider := &fakeProvider{results: []pollResult{found(1), found(1), providerError(), notFound()}}
	notifier := &fakeNotifier{}
	tracker := newTestTracker(t, provider, wonMatch(1, 4), notifier)
	ctx := context.Background()

	tracker.Poll(ctx)
	tracker.Poll(ctx)

	assert.Equal(t, TRANSITION_FAILED, tracker.Poll(ctx))
	gameId, ok := tracker.Snapshot().GameId()
	assert.True(t, ok)
	assert.Equal(t, riotapi.GameId(1), gameId)
	messages := notifier.Messages()
	require.Len(t, messages, 2)
	assert.Contains(t, messages[1], "An error occurred in the spectator check")

	assert.Equal(t, TRANSITION_ENDED, tracker.Poll(ctx))
	assert.False(t, tracker.Snapshot().InGame())
	assert.Len(t, notifier.Messages(), 4)
}

// Never answers, so every call ends with the poll timeout
type hangingProvider struct{}

func (hangingProvider) GetSpectator(ctx context.Context, puuid riotapi.Puuid) (riotapi.Spectator, error) {
	<-ctx.Done()
	return riotapi.Spectator{}, ctx.Err()
}

func TestPoll_TimeoutIsAProviderError(t *testing.T) {
	notifier := &fakeNotifier{}
	tracker, err := NewTracker(Config{
		Puuid:    testPuuid,
		Name:     "Sourcewalker",
		Interval: time.Millisecond,
		Timeout:  20 * time.Millisecond,
	}, hangingProvider{}, &fakeHistory{}, notifier)
	require.NoError(t, err)

	start := time.Now()
	transition := tracker.Poll(context.Background())

	assert.Equal(t, TRANSITION_FAILED, transition)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, []string{"An error occurred in the spectator check: context deadline exceeded"}, notifier.Messages())
	assert.False(t, tracker.Snapshot().InGame())
	assertInvariant(t, tracker.Snapshot())
}

func TestPoll_ProviderErrorWhileIdle(t *testing.T) {
	provider := &fakeProvider{results: []pollResult{providerError()}}
	notifier := &fakeNotifier{}
	tracker := newTestTracker(t, provider, &fakeHistory{}, notifier)

	assert.Equal(t, TRANSITION_FAILED, tracker.Poll(context.Background()))

	assert.False(t, tracker.Snapshot().InGame())
	assert.Len(t, notifier.Messages(), 1)
}

func TestPoll_InvariantHoldsForEverySequence(t *testing.T) {
	results := []pollResult{
		notFound(), providerError(), found(3), providerError(), found(4), notFound(),
		notFound(), found(5), notFound(), providerError(), found(6), found(6), notFound(),
	}
	provider := &fakeProvider{results: results}
	tracker := newTestTracker(t, provider, wonMatch(3, 1), &fakeNotifier{})

	for range results {
		tracker.Poll(context.Background())
		assertInvariant(t, tracker.Snapshot())
	}
}

func TestPoll_UnresolvedOutcomeStillNotifies(t *testing.T) {
	provider := &fakeProvider{results: []pollResult{found(1), notFound()}}
	notifier := &fakeNotifier{}
	tracker := newTestTracker(t, provider, &fakeHistory{}, notifier)

	tracker.Poll(context.Background())
	tracker.Poll(context.Background())

	messages := notifier.Messages()
	require.Len(t, messages, 3)
	assert.Contains(t, messages[1], "Unable to determine match result")
	assert.Equal(t, "Amount of times Sourcewalker died: 0", messages[2])
}

func TestPoll_NotifierFailureIsSwallowed(t *testing.T) {
	provider := &fakeProvider{results: []pollResult{found(1), notFound()}}
	notifier := &fakeNotifier{err: errors.New("channel unreachable")}
	tracker := newTestTracker(t, provider, wonMatch(1, 1), notifier)

	assert.Equal(t, TRANSITION_STARTED, tracker.Poll(context.Background()))
	assert.Equal(t, TRANSITION_ENDED, tracker.Poll(context.Background()))
	assert.Len(t, notifier.Messages(), 3)
}

func TestPoll_PanicIsRecovered(t *testing.T) {
	notifier := &fakeNotifier{}
	tracker := newTestTracker(t, &fakeProvider{panics: true}, &fakeHistory{}, notifier)

	assert.NotPanics(t, func() {
		assert.Equal(t, TRANSITION_FAILED, tracker.Poll(context.Background()))
	})
	messages := notifier.Messages()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "malformed response")
	assert.False(t, tracker.Snapshot().InGame())
}

func TestPoll_SettleDelayIsWaited(t *testing.T) {
	provider := &fakeProvider{results: []pollResult{found(1), notFound()}}
	tracker, err := NewTracker(Config{
		Puuid:       testPuuid,
		Interval:    time.Millisecond,
		SettleDelay: 50 * time.Millisecond,
		Timeout:     time.Second,
	}, provider, wonMatch(1, 1), &fakeNotifier{})
	require.NoError(t, err)

	tracker.Poll(context.Background())
	start := time.Now()
	tracker.Poll(context.Background())

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestRun_StopsWithContext(t *testing.T) {
	results := make([]pollResult, 0, 1000)
	for i := 0; i < cap(results); i++ {
		results = append(results, notFound())
	}
	provider := &fakeProvider{results: results}
	tracker := newTestTracker(t, provider, &fakeHistory{}, &fakeNotifier{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		tracker.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the context was done")
	}
}

func TestNewTracker_Validation(t *testing.T) {
	valid := Config{Puuid: testPuuid, Interval: time.Second, Timeout: time.Second}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing puuid", func(c *Config) { c.Puuid = "" }},
		{"zero interval", func(c *Config) { c.Interval = 0 }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"negative settle delay", func(c *Config) { c.SettleDelay = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			_, err := NewTracker(cfg, &fakeProvider{}, &fakeHistory{}, &fakeNotifier{})
			assert.Error(t, err)
		})
	}

	_, err := NewTracker(valid, nil, &fakeHistory{}, &fakeNotifier{})
	assert.Error(t, err)
}
