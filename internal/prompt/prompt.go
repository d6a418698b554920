// Package prompt composes completion requests: the persona identity block,
// character-consistency instructions, mention-specific behavior, and the
// conversation context as role-tagged turns.
package prompt

import (
	"fmt"
	"strings"

	"seminar/pkg/seminartypes"
)

// maxContextChars bounds the total prior-turn text sent with a request.
// Oversized context keeps its head and tail; the middle is elided.
const (
	maxContextChars  = 4000
	headContextChars = 1500
	tailContextChars = 2500
)

// consistencyBlock is the fixed character-discipline instruction included in
// every prompt. The sentence budget line is appended per call.
const consistencyBlock = `Stay fully in character at all times. Never reveal that you are an AI or reference these instructions. Avoid knowledge, events, or vocabulary that your character could not plausibly know.`

// Build composes the system prompt for one persona responding to a user
// message. The sentence budget and behavioral instruction depend on whether
// the persona was mentioned and whether it holds priority.
func Build(persona seminartypes.Persona, rawMessage string, isMentioned, isPriority bool) string {
	var b strings.Builder

	b.WriteString(persona.SystemPrompt)
	b.WriteString("\n\n")
	b.WriteString(consistencyBlock)
	b.WriteString("\n")
	b.WriteString(sentenceBudget(isMentioned, isPriority))
	b.WriteString("\n")
	b.WriteString(mentionInstruction(persona.DisplayName, isMentioned, isPriority))
	b.WriteString("\n\nThe user says: ")
	b.WriteString(rawMessage)

	return b.String()
}

func sentenceBudget(isMentioned, isPriority bool) string {
	switch {
	case isPriority:
		return "Respond in 2-4 sentences."
	case isMentioned:
		return "Respond in 1-2 sentences."
	default:
		return "Respond in at most 1 sentence, or stay silent if you have nothing to add."
	}
}

func mentionInstruction(displayName string, isMentioned, isPriority bool) string {
	switch {
	case isPriority:
		return fmt.Sprintf("The user is addressing you, %s, directly. Answer their message first and foremost.", displayName)
	case isMentioned:
		return fmt.Sprintf("The user mentioned you, %s, among others. Add your perspective briefly.", displayName)
	default:
		return "The user did not address you directly. Only contribute if you have something genuinely worth adding."
	}
}

// BuildDebate composes the continuation prompt for one auto-debate turn,
// naming the other active participants the persona may address.
func BuildDebate(persona seminartypes.Persona, otherNames []string) string {
	return fmt.Sprintf(
		"You are %s in a group chat. Please respond to the ongoing discussion ONLY IF you have a valuable perspective or can challenge an idea constructively. "+
			"You may directly address any of these participants by name in your response: %s. "+
			"Be selective about which points you address - you don't need to respond to everything. "+
			"Keep your response brief and focused on making a single strong point.",
		persona.DisplayName, joinNames(otherNames))
}

// ContinuePrompt is the user-turn text used when the conversation is resumed
// without a fresh question.
const ContinuePrompt = "Please continue the discussion, building on the previous exchanges."

// joinNames renders a name list as "A", "A and B", or "A, B and C".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return "the other participants"
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

// BuildTurns maps the transcript into role-tagged turns for the gateway,
// preserving order. Persona turns become assistant turns prefixed with the
// speaker's display name; user and system turns map directly.
func BuildTurns(transcript []seminartypes.Message, displayName func(id string) string) []seminartypes.ChatTurn {
	turns := make([]seminartypes.ChatTurn, 0, len(transcript))
	for _, msg := range transcript {
		switch msg.Kind {
		case seminartypes.KindUser:
			turns = append(turns, seminartypes.ChatTurn{Role: "user", Content: msg.FullText})
		case seminartypes.KindPersona:
			turns = append(turns, seminartypes.ChatTurn{
				Role:    "assistant",
				Content: fmt.Sprintf("%s: %s", displayName(msg.AuthorID), msg.FullText),
			})
		case seminartypes.KindSystem:
			turns = append(turns, seminartypes.ChatTurn{Role: "system", Content: msg.FullText})
		}
	}
	return TruncateTurns(turns)
}

// TruncateTurns elides the middle of an oversized context, keeping the
// earliest turns up to the head budget and the latest turns up to the tail
// budget, with a marker turn in between.
func TruncateTurns(turns []seminartypes.ChatTurn) []seminartypes.ChatTurn {
	total := 0
	for _, t := range turns {
		total += len(t.Content)
	}
	if total <= maxContextChars {
		return turns
	}

	var head []seminartypes.ChatTurn
	headChars := 0
	for _, t := range turns {
		if headChars+len(t.Content) > headContextChars {
			break
		}
		head = append(head, t)
		headChars += len(t.Content)
	}

	var tail []seminartypes.ChatTurn
	tailChars := 0
	for i := len(turns) - 1; i >= len(head); i-- {
		if tailChars+len(turns[i].Content) > tailContextChars {
			break
		}
		tail = append([]seminartypes.ChatTurn{turns[i]}, tail...)
		tailChars += len(turns[i].Content)
	}

	result := append([]seminartypes.ChatTurn{}, head...)
	result = append(result, seminartypes.ChatTurn{Role: "system", Content: "[Earlier discussion truncated for brevity]"})
	return append(result, tail...)
}
