// Package mentions implements the pure string heuristics that decide which
// personas a message addresses: explicit @-mentions, implicit name drops,
// question targeting, and reply attribution.
package mentions

import (
	"fmt"
	"regexp"
	"strings"

	"seminar/pkg/seminartypes"
)

// Result is the outcome of parsing one message for persona targets. The
// priority persona responds first; the rest follow in collection order.
type Result struct {
	PriorityID string
	OtherIDs   []string
}

// HasTarget reports whether any persona was collected.
func (r Result) HasTarget() bool {
	return r.PriorityID != ""
}

// All returns the priority id followed by the other ids.
func (r Result) All() []string {
	if !r.HasTarget() {
		return nil
	}
	return append([]string{r.PriorityID}, r.OtherIDs...)
}

var (
	atMentionPattern = regexp.MustCompile(`@(\w+)`)
	sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)
)

// Parse scans text for persona targets. Explicit @-mentions take precedence;
// with none present it falls back to bare name drops in catalog order, then
// appends the question-target heuristic's pick. An empty result means the
// caller must apply its own fallback policy.
func Parse(text string, catalog []seminartypes.Persona) Result {
	collected := collectAtMentions(text, catalog)

	if len(collected) == 0 {
		collected = collectNameDrops(text, catalog)
	}

	if target := DetectQuestionTarget(text, catalog); target != "" && !containsID(collected, target) {
		collected = append(collected, target)
	}

	if len(collected) == 0 {
		return Result{}
	}
	return Result{PriorityID: collected[0], OtherIDs: collected[1:]}
}

// collectAtMentions matches every @token against the catalog, preserving
// first-seen order and collapsing duplicates.
func collectAtMentions(text string, catalog []seminartypes.Persona) []string {
	var collected []string
	for _, match := range atMentionPattern.FindAllStringSubmatch(text, -1) {
		token := match[1]
		for _, p := range catalog {
			if fuzzyMatches(token, p) && !containsID(collected, p.ID) {
				collected = append(collected, p.ID)
			}
		}
	}
	return collected
}

// collectNameDrops scans the lowercased text for any persona's display name
// or readable id appearing as a substring, in catalog iteration order.
func collectNameDrops(text string, catalog []seminartypes.Persona) []string {
	lower := strings.ToLower(text)
	var collected []string
	for _, p := range catalog {
		name := strings.ToLower(p.DisplayName)
		readableID := strings.ToLower(strings.ReplaceAll(p.ID, "_", " "))
		if strings.Contains(lower, name) || strings.Contains(lower, readableID) {
			collected = append(collected, p.ID)
		}
	}
	return collected
}

// fuzzyMatches is intentionally lenient: a case-insensitive substring match
// in either direction against the display name or id. Short names can
// over-match; that is an accepted limitation of the heuristic.
func fuzzyMatches(token string, p seminartypes.Persona) bool {
	t := strings.ToLower(token)
	if t == "" {
		return false
	}
	name := strings.ToLower(p.DisplayName)
	id := strings.ToLower(p.ID)
	readableID := strings.ReplaceAll(id, "_", " ")
	return strings.Contains(name, t) || strings.Contains(t, name) ||
		strings.Contains(id, t) || strings.Contains(t, id) ||
		strings.Contains(readableID, t) || strings.Contains(t, readableID)
}

// questionPatternTemplates are the addressed-question forms checked per
// candidate. %[1]s expands to an alternation of the candidate's display name
// and readable id.
var questionPatternTemplates = []string{
	`(?i)what\s+(?:do|would|does|might)\s+(?:you|%[1]s)\s+think`,
	`(?i)%[1]s[,:]?\s+(?:what|why|how|do|would|could|can|should)`,
	`(?i)(?:do|would)\s+(?:you|%[1]s)\s+agree`,
}

// DetectQuestionTarget inspects only the last two sentences of text and, if
// they contain a question mark, returns the first candidate the window
// addresses: by name before the question mark, by @-mention, or by one of
// the addressed-question patterns. Returns "" when no candidate matches.
func DetectQuestionTarget(text string, candidates []seminartypes.Persona) string {
	window := lastSentences(text, 2)
	questionIdx := strings.LastIndex(window, "?")
	if questionIdx < 0 {
		return ""
	}
	lower := strings.ToLower(window)

	for _, p := range candidates {
		name := strings.ToLower(p.DisplayName)
		readableID := strings.ToLower(strings.ReplaceAll(p.ID, "_", " "))

		for _, needle := range []string{name, readableID} {
			if idx := strings.Index(lower, needle); idx >= 0 && idx < questionIdx {
				return p.ID
			}
			if strings.Contains(lower, "@"+needle) {
				return p.ID
			}
		}

		alternation := fmt.Sprintf("(?:%s|%s)", regexp.QuoteMeta(name), regexp.QuoteMeta(readableID))
		for _, template := range questionPatternTemplates {
			pattern := regexp.MustCompile(fmt.Sprintf(template, alternation))
			if pattern.MatchString(window) {
				return p.ID
			}
		}
	}
	return ""
}

// replyPatterns are the explicit attribution forms checked in a response's
// opening sentences. The captured word is fuzzy-matched against persona
// names.
var replyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)replying\s+to\s+(\w+)`),
	regexp.MustCompile(`(?i)in\s+response\s+to\s+(\w+)`),
	regexp.MustCompile(`(?i)addressing\s+(\w+)`),
	regexp.MustCompile(`(?i)to\s+answer\s+(\w+)`),
}

// DetectReplyTarget infers which earlier persona message a freshly generated
// response appears to address, purely from surface text. It returns the
// transcript index of the attributed message, or seminartypes.NoReply.
// The result is advisory; it never blocks delivery.
func DetectReplyTarget(text, authorID string, transcript []seminartypes.Message, catalog []seminartypes.Persona, autoDebate bool) int {
	if text == "" || len(transcript) < 2 {
		return seminartypes.NoReply
	}

	type prior struct {
		index   int
		persona seminartypes.Persona
	}
	var priors []prior
	for i, msg := range transcript {
		if msg.Kind != seminartypes.KindPersona || msg.AuthorID == authorID {
			continue
		}
		if p, ok := lookupPersona(catalog, msg.AuthorID); ok {
			priors = append(priors, prior{index: i, persona: p})
		}
	}
	if len(priors) == 0 {
		return seminartypes.NoReply
	}

	window := firstSentences(text, 2)

	for _, pattern := range replyPatterns {
		match := pattern.FindStringSubmatch(window)
		if match == nil {
			continue
		}
		// most recent qualifying message wins
		for i := len(priors) - 1; i >= 0; i-- {
			if fuzzyMatches(match[1], priors[i].persona) {
				return priors[i].index
			}
		}
	}

	lower := strings.ToLower(window)
	for i := len(priors) - 1; i >= 0; i-- {
		name := strings.ToLower(priors[i].persona.DisplayName)
		readableID := strings.ToLower(strings.ReplaceAll(priors[i].persona.ID, "_", " "))
		if strings.Contains(lower, name) || strings.Contains(lower, readableID) {
			return priors[i].index
		}
	}

	// in a debate, an unattributed message continues the thread
	if autoDebate {
		return priors[len(priors)-1].index
	}

	return seminartypes.NoReply
}

// lastSentences returns the suffix of text covering its final n sentences,
// punctuation preserved.
func lastSentences(text string, n int) string {
	locs := sentenceBoundary.FindAllStringIndex(text, -1)
	if len(locs) < n {
		return text
	}
	return text[locs[len(locs)-n][1]:]
}

// firstSentences returns the prefix of text covering its first n sentences,
// punctuation preserved.
func firstSentences(text string, n int) string {
	locs := sentenceBoundary.FindAllStringIndex(text, -1)
	if len(locs) < n {
		return text
	}
	return text[:locs[n-1][0]+1]
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func lookupPersona(catalog []seminartypes.Persona, id string) (seminartypes.Persona, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return seminartypes.Persona{}, false
}
