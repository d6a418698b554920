// Package animator reveals transcript messages character by character,
// simulating typed delivery. Animation is strictly sequential: one message
// at a time, with a fixed pause between distinct messages.
package animator

import (
	"time"

	"seminar/pkg/seminartypes"
)

// Default pacing constants. System messages type faster than persona and
// user messages.
const (
	DefaultCharDelay       = 20 * time.Millisecond
	DefaultSystemCharDelay = 10 * time.Millisecond
	DefaultMessageDelay    = 300 * time.Millisecond
	DefaultScrollStride    = 20
)

// Animator sequences the character-by-character reveal of messages.
// OnTick fires after every revealed character; OnStride fires at a fixed
// character stride for coarser work such as auto-scroll.
type Animator struct {
	CharDelay       time.Duration
	SystemCharDelay time.Duration
	MessageDelay    time.Duration
	ScrollStride    int

	sleep func(time.Duration)
}

// New creates an Animator with the default pacing.
func New() *Animator {
	return &Animator{
		CharDelay:       DefaultCharDelay,
		SystemCharDelay: DefaultSystemCharDelay,
		MessageDelay:    DefaultMessageDelay,
		ScrollStride:    DefaultScrollStride,
		sleep:           time.Sleep,
	}
}

// SetSleepFunc replaces the delay function. Intended for tests.
func (a *Animator) SetSleepFunc(sleep func(time.Duration)) {
	a.sleep = sleep
}

// Animate reveals one message from an empty prefix to its full text.
// The message is always left with IsAnimating false and VisibleText equal
// to FullText, even if a callback panics mid-reveal.
func (a *Animator) Animate(msg *seminartypes.Message, onTick, onStride func()) {
	msg.IsAnimating = true
	msg.VisibleText = ""

	defer func() {
		msg.VisibleText = msg.FullText
		msg.IsAnimating = false
	}()

	delay := a.CharDelay
	if msg.Kind == seminartypes.KindSystem {
		delay = a.SystemCharDelay
	}

	runes := []rune(msg.FullText)
	for i := range runes {
		msg.VisibleText = string(runes[:i+1])

		if onTick != nil {
			onTick()
		}
		if onStride != nil && i%a.ScrollStride == 0 {
			onStride()
		}

		a.sleep(delay)
	}
}

// Run animates each message in order, pausing between distinct messages but
// not after the last one.
func (a *Animator) Run(msgs []*seminartypes.Message, onTick, onStride func()) {
	for i, msg := range msgs {
		a.Animate(msg, onTick, onStride)
		if i < len(msgs)-1 {
			a.sleep(a.MessageDelay)
		}
	}
}
