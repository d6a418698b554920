package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seminar/pkg/seminartypes"
)

func socrates() seminartypes.Persona {
	return seminartypes.Persona{
		ID:           "socrates",
		DisplayName:  "Socrates",
		SystemPrompt: "You are Socrates, the classical Greek philosopher.",
	}
}

func TestBuild_PriorityBudget(t *testing.T) {
	got := Build(socrates(), "What is justice?", true, true)

	assert.True(t, strings.HasPrefix(got, "You are Socrates"))
	assert.Contains(t, got, "2-4 sentences")
	assert.Contains(t, got, "addressing you, Socrates, directly")
	assert.True(t, strings.HasSuffix(got, "The user says: What is justice?"))
}

func TestBuild_MentionedBudget(t *testing.T) {
	got := Build(socrates(), "What is justice?", true, false)
	assert.Contains(t, got, "1-2 sentences")
	assert.Contains(t, got, "mentioned you, Socrates, among others")
}

func TestBuild_UnmentionedBudget(t *testing.T) {
	got := Build(socrates(), "What is justice?", false, false)
	assert.Contains(t, got, "at most 1 sentence")
	assert.Contains(t, got, "stay silent")
	assert.Contains(t, got, "did not address you directly")
}

func TestBuild_ConsistencyBlockAlwaysPresent(t *testing.T) {
	for _, flags := range [][2]bool{{true, true}, {true, false}, {false, false}} {
		got := Build(socrates(), "hm", flags[0], flags[1])
		assert.Contains(t, got, "Stay fully in character")
		assert.Contains(t, got, "Never reveal that you are an AI")
	}
}

func TestBuildDebate(t *testing.T) {
	got := BuildDebate(socrates(), []string{"Newton", "Darwin"})

	assert.Contains(t, got, "You are Socrates in a group chat")
	assert.Contains(t, got, "ONLY IF you have a valuable perspective")
	assert.Contains(t, got, "Newton and Darwin")
	assert.Contains(t, got, "single strong point")
}

func TestJoinNames(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{"empty", nil, "the other participants"},
		{"single", []string{"Newton"}, "Newton"},
		{"pair", []string{"Newton", "Darwin"}, "Newton and Darwin"},
		{"triple", []string{"Newton", "Darwin", "Einstein"}, "Newton, Darwin and Einstein"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinNames(tt.names))
		})
	}
}

func TestBuildTurns_RoleMapping(t *testing.T) {
	transcript := []seminartypes.Message{
		{Kind: seminartypes.KindUser, FullText: "What is gravity?", ReplyTo: seminartypes.NoReply},
		{Kind: seminartypes.KindPersona, AuthorID: "newton", FullText: "A force at a distance.", ReplyTo: seminartypes.NoReply},
		{Kind: seminartypes.KindSystem, FullText: "The discussion has concluded.", ReplyTo: seminartypes.NoReply},
	}
	names := map[string]string{"newton": "Newton"}
	displayName := func(id string) string { return names[id] }

	turns := BuildTurns(transcript, displayName)
	require.Len(t, turns, 3)

	assert.Equal(t, seminartypes.ChatTurn{Role: "user", Content: "What is gravity?"}, turns[0])
	assert.Equal(t, seminartypes.ChatTurn{Role: "assistant", Content: "Newton: A force at a distance."}, turns[1])
	assert.Equal(t, seminartypes.ChatTurn{Role: "system", Content: "The discussion has concluded."}, turns[2])
}

func TestTruncateTurns_ShortContextUntouched(t *testing.T) {
	turns := []seminartypes.ChatTurn{
		{Role: "user", Content: "short"},
		{Role: "assistant", Content: "also short"},
	}
	assert.Equal(t, turns, TruncateTurns(turns))
}

func TestTruncateTurns_KeepsHeadAndTail(t *testing.T) {
	long := strings.Repeat("x", 900)
	turns := make([]seminartypes.ChatTurn, 0, 8)
	for i := 0; i < 8; i++ {
		turns = append(turns, seminartypes.ChatTurn{Role: "assistant", Content: long})
	}

	truncated := TruncateTurns(turns)
	require.Less(t, len(truncated), len(turns))

	// first and last turns survive, with one elision marker in the middle
	assert.Equal(t, turns[0], truncated[0])
	assert.Equal(t, turns[len(turns)-1], truncated[len(truncated)-1])

	markers := 0
	for _, turn := range truncated {
		if strings.Contains(turn.Content, "truncated") {
			markers++
		}
	}
	assert.Equal(t, 1, markers)
}
