// Package seminartypes defines conversation transcript types for Seminar.
// This file contains the message and transcript types that back the visible
// chat transcript, including the incremental-reveal animation state.
package seminartypes

import "time"

// MessageKind identifies who authored a transcript message.
type MessageKind string

// Message kinds for the transcript.
const (
	KindUser    MessageKind = "user"
	KindPersona MessageKind = "persona"
	KindSystem  MessageKind = "system"
)

// NoReply marks a message that does not reference an earlier message.
const NoReply = -1

// Message represents one turn in the transcript.
// VisibleText is always a prefix of FullText; the two are equal once the
// message has finished animating. ReplyTo, when not NoReply, is the index of
// an earlier persona message this one appears to respond to. It is set at
// most once, at creation, and never recomputed.
type Message struct {
	ID             string      `json:"id"`
	Kind           MessageKind `json:"kind"`
	AuthorID       string      `json:"author_id,omitempty"` // persona id when Kind == KindPersona
	FullText       string      `json:"full_text"`
	VisibleText    string      `json:"visible_text"`
	IsAnimating    bool        `json:"is_animating"`
	ReplyTo        int         `json:"reply_to"`
	Timestamp      time.Time   `json:"timestamp"`
	ConversationID string      `json:"conversation_id"`
}

// Revealed reports whether the full text of the message is visible.
func (m *Message) Revealed() bool {
	return m.VisibleText == m.FullText
}

// Transcript is an ordered, append-only sequence of messages scoped to one
// conversation. It is only ever appended to or fully cleared; messages are
// never reordered in place.
type Transcript struct {
	messages []Message
}

// Append adds a message to the end of the transcript and returns its index.
func (t *Transcript) Append(msg Message) int {
	t.messages = append(t.messages, msg)
	return len(t.messages) - 1
}

// Clear removes all messages, e.g. on logout or when a new session starts.
func (t *Transcript) Clear() {
	t.messages = nil
}

// Len returns the number of messages in the transcript.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// At returns a pointer to the message at index i so callers can advance its
// animation state in place. Panics on out-of-range access, like a slice.
func (t *Transcript) At(i int) *Message {
	return &t.messages[i]
}

// Messages returns a copy of the transcript contents.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}
