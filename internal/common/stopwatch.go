package common

import (
	"time"
)

// This stopwatch keeps track of time. You can set a timeout for it,
// make it start counting time, and ask it if the timeout has been reached
type Stopwatch struct {
	Timeout   time.Duration
	startTime time.Time
	Running   bool
}

func NewStopwatch(timeout time.Duration) Stopwatch {
	return Stopwatch{timeout, time.Time{}, false}
}

func (s *Stopwatch) Start() {
	s.Running = true
	s.startTime = time.Now()
}

func (s *Stopwatch) Stop() {
	s.Running = false
}

// Return the time elapsed since this stopwatch
// stopped (reached its timeout).
// Note that if the number is negative, the timeout still
// has not been reached
func (s *Stopwatch) TimeStopped() time.Duration {
	currentTime := time.Now()
	return currentTime.Sub(s.startTime.Add(s.Timeout))
}

// Report if the stopwatch is stopped, meaning that it was never started
// or its timeout has been reached. When it is still running, also return
// the time left until the timeout
func (s *Stopwatch) Stopped() (bool, time.Duration) {

	if !s.Running {
		return true, 0
	}
	if stopped := s.TimeStopped(); stopped >= 0 {
		s.Running = false
		return true, 0
	} else {
		return false, -stopped
	}
}
