package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDelaySequence(t *testing.T) {
	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}
	for i, expected := range want {
		assert.Equal(t, expected, backoffDelay(i+1), "attempt %d", i+1)
	}
}

func TestBackoffDelayStaysCapped(t *testing.T) {
	assert.Equal(t, backoffCap, backoffDelay(50))
	assert.Equal(t, backoffCap, backoffDelay(1000))
}
