package messenger

import (
	"math/rand/v2"
	"time"
)

// Typing simulation bounds. The delay is awaited before each send so the
// conversation paces like a human typist; it never exceeds maxTypingDelay.
const (
	baseDelayMin = 1000 * time.Millisecond
	baseDelayMax = 2000 * time.Millisecond

	perCharDelayMin = 30 * time.Millisecond
	perCharDelayMax = 50 * time.Millisecond

	maxTypingDelay = 5000 * time.Millisecond
)

// typingDelay computes the pacing delay for one outbound message.
func typingDelay(text string) time.Duration {
	base := baseDelayMin + rand.N(baseDelayMax-baseDelayMin)
	perChar := perCharDelayMin + rand.N(perCharDelayMax-perCharDelayMin)

	delay := base + time.Duration(len([]rune(text)))*perChar
	if delay > maxTypingDelay {
		delay = maxTypingDelay
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}
