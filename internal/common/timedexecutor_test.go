package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimedExecutor_FirstCallAlwaysExecutes(t *testing.T) {
	calls := 0
	executor := NewTimedExecutor(time.Hour, func() { calls++ })

	assert.True(t, executor.Execute())
	assert.False(t, executor.Execute())
	assert.Equal(t, 1, calls)
}

func TestTimedExecutor_ExecutesAgainAfterTimeout(t *testing.T) {
	calls := 0
	executor := NewTimedExecutor(20*time.Millisecond, func() { calls++ })

	executor.Execute()
	time.Sleep(30 * time.Millisecond)

	assert.True(t, executor.Execute())
	assert.Equal(t, 2, calls)
}
