// Package sanitize normalizes raw completions before they enter the
// transcript: leaked signatures and meta-instructions are stripped,
// anachronistic vocabulary is replaced for historical personas, and every
// response is capped at a fixed sentence count.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"

	"seminar/pkg/seminartypes"
)

// MaxSentences is the hard backstop applied to every response regardless of
// the sentence budget requested in the prompt.
const MaxSentences = 4

var (
	leadingMetaPattern = regexp.MustCompile(`^\s*\[[^\]]*\]\s*`)
	sentenceBoundary   = regexp.MustCompile(`[.!?]\s+`)
	historicalEra      = regexp.MustCompile(`\b\d{3,4}s?\b|\bcentury\b|\bhistorical\b`)
)

// modernReplacements maps colloquialisms to period-neutral equivalents.
// Applied whole-word and case-insensitively for historical personas only.
var modernReplacements = map[string]string{
	"okay":    "very well",
	"ok":      "very well",
	"yeah":    "yes",
	"cool":    "remarkable",
	"awesome": "admirable",
	"gonna":   "going to",
	"wanna":   "want to",
	"gotta":   "must",
	"kinda":   "somewhat",
	"guys":    "gentlemen",
	"don't":   "do not",
	"can't":   "cannot",
	"won't":   "will not",
	"isn't":   "is not",
	"doesn't": "does not",
	"didn't":  "did not",
	"it's":    "it is",
	"that's":  "that is",
	"i'm":     "I am",
	"you're":  "you are",
}

// Sanitize normalizes a raw completion for the given persona. The steps run
// unconditionally and in order: signature strip, leading meta strip, trim,
// anachronism replacement for historical personas, sentence cap.
func Sanitize(persona seminartypes.Persona, rawText string) string {
	text := stripSignature(rawText, persona.DisplayName)
	text = leadingMetaPattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if IsHistorical(persona) {
		text = replaceModernTerms(text)
	}

	return capSentences(text, MaxSentences)
}

// IsHistorical reports whether the persona's stored prompt marks it as a
// historical figure: the words "historical" or "century", or a 3-4 digit
// year token.
func IsHistorical(persona seminartypes.Persona) bool {
	return historicalEra.MatchString(strings.ToLower(persona.SystemPrompt))
}

// stripSignature removes a trailing "- Name" self-signature, tolerating
// hyphen, en-dash, and em-dash variants.
func stripSignature(text, displayName string) string {
	trimmed := strings.TrimRight(text, " \t\n")
	lower := strings.ToLower(trimmed)
	nameLower := strings.ToLower(displayName)

	for _, dash := range []string{"-", "–", "—"} {
		suffix := dash + " " + nameLower
		for _, candidate := range []string{suffix, dash + nameLower} {
			if strings.HasSuffix(lower, candidate) {
				return strings.TrimRight(trimmed[:len(trimmed)-len(candidate)], " \t\n-–—")
			}
		}
	}
	return trimmed
}

// replaceModernTerms substitutes each colloquialism whole-word and
// case-insensitively, preserving a leading capital in the replacement when
// the original started one.
func replaceModernTerms(text string) string {
	for term, replacement := range modernReplacements {
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
		text = pattern.ReplaceAllStringFunc(text, func(match string) string {
			if match != "" && match[0] >= 'A' && match[0] <= 'Z' {
				return capitalize(replacement)
			}
			return replacement
		})
	}
	return text
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// capSentences truncates text to at most maxSentences sentences, re-joining
// with ". " and a trailing period.
func capSentences(text string, maxSentences int) string {
	if text == "" {
		return text
	}

	sentences := sentenceBoundary.Split(text, -1)
	if len(sentences) <= maxSentences {
		return text
	}

	kept := sentences[:maxSentences]
	for i, s := range kept {
		kept[i] = strings.TrimRight(s, ".!? ")
	}
	return fmt.Sprintf("%s.", strings.Join(kept, ". "))
}
