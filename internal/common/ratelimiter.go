package common

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Analysis struct {
	allowed bool          // If the request is allowed
	wait    time.Duration // The minimal time to wait before the request is allowed
}

type RateLimiter struct {
	mu                   sync.Mutex
	restrictions         []Restriction          // Restrictions to consider
	history              []time.Time            // History of requests
	duration             time.Duration          // Min duration to wait for all restrictions to be lifted
	pendingVitalRequests map[uuid.UUID]struct{} // Set of pending vital requests
	stopwatch            Stopwatch              // Back-off after the server answered with a rate limit
}

func NewRateLimiter(restrictions []Restriction) *RateLimiter {
	rl := RateLimiter{}
	// Restrictions are just a copy of the provided ones
	rl.restrictions = make([]Restriction, len(restrictions))
	copy(rl.restrictions, restrictions)
	// Duration
	for _, restriction := range restrictions {
		if restriction.Duration > rl.duration {
			rl.duration = restriction.Duration
		}
	}
	rl.pendingVitalRequests = make(map[uuid.UUID]struct{})
	rl.stopwatch = NewStopwatch(rl.duration)

	return &rl
}

// Decide if request is allowed.
// If the request is not allowed but vital, execution
// will block here until it is allowed or the context is done
func (rl *RateLimiter) Allowed(ctx context.Context, vital bool) bool {

	// Give this request a unique identifier
	thisuuid := uuid.New()
	defer rl.forget(thisuuid)

	for {
		rl.mu.Lock()
		currentTime := time.Now()
		// Trim history first
		rl.trim(currentTime)
		// Check if the restrictions allow this request
		analysis := rl.analyse(currentTime)
		if analysis.allowed {
			if vital || len(rl.pendingVitalRequests) == 0 {
				// Include this request in the history as it is allowed
				rl.history = append(rl.history, currentTime)
				rl.mu.Unlock()
				log.Debug().Msg("Allowing request")
				return true
			}
			// Request is not vital and the queue is not empty,
			// so we have to reject the request
			rl.mu.Unlock()
			log.Warn().Msg("Rejecting non vital request because restrictions allow it but vital queue is not empty")
			return false
		} else if !vital {
			rl.mu.Unlock()
			log.Warn().Msg("Rejecting a non vital request because restrictions do not allow it")
			return false
		}

		// Request is vital and not allowed, so it goes to the queue
		// and waits for some time
		rl.pendingVitalRequests[thisuuid] = struct{}{}
		rl.mu.Unlock()
		log.Warn().Msg(fmt.Sprintf("Vital request %s delayed %.2f seconds", thisuuid, analysis.wait.Seconds()))
		select {
		case <-ctx.Done():
			return false
		case <-time.After(analysis.wait):
		}
	}
}

// The server answered with a rate limit, so stop allowing
// requests for the provided time
func (rl *RateLimiter) ReceivedRateLimit(retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.stopwatch.Timeout = retryAfter
	rl.stopwatch.Start()
}

func (rl *RateLimiter) forget(id uuid.UUID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.pendingVitalRequests, id)
}

// Trim the current history, leaving only the requests
// that are young enough to be affected by at least one restriction
func (rl *RateLimiter) trim(currentTime time.Time) {
	// Find the index from which we need to keep the history.
	// Start searching at the end of the slice.
	// I assume times are stored in chronological order
	index := 0
	for i := len(rl.history) - 1; i >= 0; i-- {
		if currentTime.Sub(rl.history[i]) >= rl.duration {
			index = i + 1
			break
		}
	}
	rl.history = rl.history[index:]
}

func (rl *RateLimiter) analyse(currentTime time.Time) Analysis {

	// Back-off imposed by the server goes first
	var wait time.Duration = 0
	allowed := true
	if stopped, remaining := rl.stopwatch.Stopped(); !stopped {
		allowed = false
		wait = remaining
	}

	// Merge the analyses of all the restrictions
	for _, restriction := range rl.restrictions {
		analysis := restriction.Analyse(rl.history, currentTime)
		allowed = allowed && analysis.allowed
		if analysis.wait > wait {
			wait = analysis.wait
		}
	}
	return Analysis{allowed, wait}
}
