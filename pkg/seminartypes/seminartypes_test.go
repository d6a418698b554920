package seminartypes

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRevealed(t *testing.T) {
	testCases := []struct {
		name     string
		full     string
		visible  string
		expected bool
	}{
		{
			name:     "empty message is revealed",
			full:     "",
			visible:  "",
			expected: true,
		},
		{
			name:     "partial prefix not revealed",
			full:     "Know thyself.",
			visible:  "Know thy",
			expected: false,
		},
		{
			name:     "complete text revealed",
			full:     "Know thyself.",
			visible:  "Know thyself.",
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg := Message{FullText: tc.full, VisibleText: tc.visible}
			assert.Equal(t, tc.expected, msg.Revealed())
		})
	}
}

func TestTranscriptAppendOrdering(t *testing.T) {
	var transcript Transcript

	first := transcript.Append(Message{Kind: KindUser, FullText: "hello", ReplyTo: NoReply})
	second := transcript.Append(Message{Kind: KindPersona, AuthorID: "socrates", FullText: "greetings", ReplyTo: NoReply})

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 2, transcript.Len())

	msgs := transcript.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, KindUser, msgs[0].Kind)
	assert.Equal(t, "socrates", msgs[1].AuthorID)
}

func TestTranscriptClear(t *testing.T) {
	var transcript Transcript
	transcript.Append(Message{Kind: KindUser, FullText: "hello", ReplyTo: NoReply})
	transcript.Append(Message{Kind: KindSystem, FullText: "notice", ReplyTo: NoReply})

	transcript.Clear()

	assert.Equal(t, 0, transcript.Len())
	assert.Empty(t, transcript.Messages())
}

func TestTranscriptMessagesReturnsCopy(t *testing.T) {
	var transcript Transcript
	transcript.Append(Message{Kind: KindUser, FullText: "original", ReplyTo: NoReply})

	msgs := transcript.Messages()
	msgs[0].FullText = "mutated"

	assert.Equal(t, "original", transcript.At(0).FullText)
}

func TestTranscriptAtAllowsInPlaceAnimation(t *testing.T) {
	var transcript Transcript
	idx := transcript.Append(Message{
		Kind:        KindPersona,
		AuthorID:    "newton",
		FullText:    "Gravity acts.",
		IsAnimating: true,
		ReplyTo:     NoReply,
		Timestamp:   time.Now(),
	})

	msg := transcript.At(idx)
	for i := 1; i <= len(msg.FullText); i++ {
		msg.VisibleText = msg.FullText[:i]
		assert.True(t, strings.HasPrefix(msg.FullText, transcript.At(idx).VisibleText))
	}
	msg.IsAnimating = false

	assert.True(t, transcript.At(idx).Revealed())
	assert.False(t, transcript.At(idx).IsAnimating)
}
