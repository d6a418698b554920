// Package orchestrator runs the conversation turn state machine: it decides
// which personas respond to a submission and in what order, drives the
// gateway calls and post-processing for each, sequences animated delivery,
// and runs auto-debate rounds.
package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"seminar/internal/animator"
	"seminar/internal/logger"
	"seminar/internal/mentions"
	"seminar/internal/prompt"
	"seminar/internal/sanitize"
	"seminar/internal/services"
	"seminar/internal/testutils"
	"seminar/pkg/seminartypes"
)

// State names the phase the orchestrator is in. Anything other than
// StateIdle rejects new submissions.
type State string

const (
	StateIdle              State = "idle"
	StateAwaitingResponses State = "awaiting_responses"
	StateAnimating         State = "animating"
	StateAutoDebateRound   State = "auto_debate_round"
)

// Default completion parameters. Debate rounds get a tighter token budget to
// keep the exchange brisk.
var (
	defaultParams = seminartypes.ModelParams{Temperature: 0.7, MaxTokens: 500}
	debateParams  = seminartypes.ModelParams{Temperature: 0.7, MaxTokens: 300}
)

// DebateMessageDelay is the pause after each animated debate response.
const DebateMessageDelay = 500 * time.Millisecond

// ConcludedMessage is appended once after all auto-debate rounds finish.
const ConcludedMessage = "The discussion has concluded. You may now respond or ask a follow-up question."

// Gateway abstracts the inference gateway for the orchestrator.
type Gateway interface {
	Complete(ctx context.Context, req seminartypes.CompletionRequest) (string, error)
}

// Catalog abstracts persona lookup for the orchestrator.
type Catalog interface {
	ListPersonas() []seminartypes.Persona
	GetPersona(id string) (seminartypes.Persona, error)
	DisplayName(id string) string
}

// Orchestrator owns the transcript and the busy flags. All turn processing
// is strictly sequential; a new submission is rejected, not queued, while a
// turn is in flight.
type Orchestrator struct {
	catalog    Catalog
	gateway    Gateway
	animator   *animator.Animator
	transcript *seminartypes.Transcript
	rng        *rand.Rand
	testMode   seminartypes.TestModeProvider

	state          State
	conversationID string
	personaParams  map[string]seminartypes.ModelParams

	onTick   func()
	onStride func()
	sleep    func(time.Duration)
}

// New creates an orchestrator over an empty transcript with a fresh
// conversation id.
func New(catalog Catalog, gateway Gateway, anim *animator.Animator, rng *rand.Rand, testMode seminartypes.TestModeProvider) *Orchestrator {
	o := &Orchestrator{
		catalog:       catalog,
		gateway:       gateway,
		animator:      anim,
		transcript:    &seminartypes.Transcript{},
		rng:           rng,
		testMode:      testMode,
		state:         StateIdle,
		personaParams: make(map[string]seminartypes.ModelParams),
		sleep:         time.Sleep,
	}
	o.conversationID = testutils.GenerateUUID(testMode)
	return o
}

// SetCallbacks installs the per-character and per-stride render callbacks
// passed through to the animator.
func (o *Orchestrator) SetCallbacks(onTick, onStride func()) {
	o.onTick = onTick
	o.onStride = onStride
}

// SetSleepFunc replaces the inter-round delay function. Intended for tests.
func (o *Orchestrator) SetSleepFunc(sleep func(time.Duration)) {
	o.sleep = sleep
}

// SetPersonaParams overrides the completion parameters for one persona,
// taking precedence over both the catalog's per-persona params and the
// phase defaults. Used for runtime tuning from the chat loop.
func (o *Orchestrator) SetPersonaParams(personaID string, params seminartypes.ModelParams) {
	o.personaParams[personaID] = params
}

// State returns the current phase.
func (o *Orchestrator) State() State {
	return o.state
}

// Busy reports whether a turn is in flight.
func (o *Orchestrator) Busy() bool {
	return o.state != StateIdle
}

// Transcript returns the orchestrator-owned transcript.
func (o *Orchestrator) Transcript() *seminartypes.Transcript {
	return o.transcript
}

// ConversationID returns the current session's correlation token.
func (o *Orchestrator) ConversationID() string {
	return o.conversationID
}

// Reset clears the transcript and starts a fresh conversation id. It is a
// no-op while a turn is in flight.
func (o *Orchestrator) Reset() {
	if o.Busy() {
		return
	}
	o.transcript.Clear()
	o.conversationID = testutils.GenerateUUID(o.testMode)
	logger.Debug("Conversation reset", "conversation_id", o.conversationID)
}

// SubmitTurn runs one full orchestration pass for a user submission.
// Validation failures (empty text, empty selection, busy) are silent no-ops.
// Any deeper failure is surfaced as a single System message; the orchestrator
// always returns to idle.
func (o *Orchestrator) SubmitTurn(ctx context.Context, req seminartypes.TurnRequest) {
	if strings.TrimSpace(req.UserText) == "" || len(req.ActivePersonaIDs) == 0 || o.Busy() {
		logger.Debug("Submission rejected", "busy", o.Busy(), "active", len(req.ActivePersonaIDs))
		return
	}

	o.state = StateAwaitingResponses
	defer o.finishTurn()

	priorTurns := prompt.BuildTurns(o.transcript.Messages(), o.catalog.DisplayName)
	o.appendRevealed(seminartypes.KindUser, "", req.UserText)

	parsed := mentions.Parse(req.UserText, o.catalog.ListPersonas())
	order := responderOrder(parsed, req.ActivePersonaIDs)
	logger.TurnStep(o.conversationID, "responder_order", "order", strings.Join(order, ","))

	responses, failures := o.collectResponses(ctx, req.UserText, priorTurns, order, parsed)

	if successCount(responses) == 0 && failures > 0 {
		o.deliverSystem("Error: the inference service could not produce any responses. Please try again.")
		return
	}

	o.state = StateAnimating
	o.deliverResponses(responses)

	if req.AutoDebate && len(req.ActivePersonaIDs) >= 2 && req.MaxRounds > 0 {
		o.runAutoDebate(ctx, req.ActivePersonaIDs, req.MaxRounds)
	}
}

// Continue resumes the discussion without a new user question: every active
// persona responds to a fixed continuation prompt. No user message is added
// to the transcript.
func (o *Orchestrator) Continue(ctx context.Context, activeIDs []string) {
	if len(activeIDs) == 0 || o.Busy() {
		return
	}

	o.state = StateAwaitingResponses
	defer o.finishTurn()

	priorTurns := prompt.BuildTurns(o.transcript.Messages(), o.catalog.DisplayName)
	responses, failures := o.collectResponses(ctx, prompt.ContinuePrompt, priorTurns, activeIDs, mentions.Result{})

	if successCount(responses) == 0 && failures > 0 {
		o.deliverSystem("Error: the inference service could not produce any responses. Please try again.")
		return
	}

	o.state = StateAnimating
	o.deliverResponses(responses)
}

// responderOrder applies the mention parse to fix the responder sequence.
// A priority mention responds first, followed by the other mentioned
// personas present in the active selection. With no mention at all, every
// active persona responds in selection order.
func responderOrder(parsed mentions.Result, activeIDs []string) []string {
	if !parsed.HasTarget() {
		return activeIDs
	}

	var order []string
	for _, id := range parsed.All() {
		if containsID(activeIDs, id) {
			order = append(order, id)
		}
	}
	if len(order) == 0 {
		return activeIDs
	}
	return order
}

type personaResponse struct {
	persona seminartypes.Persona
	text    string
	system  bool
}

// successCount reports how many responses carry real persona text rather
// than a failure notice.
func successCount(responses []personaResponse) int {
	count := 0
	for _, r := range responses {
		if !r.system {
			count++
		}
	}
	return count
}

// collectResponses runs the gateway call pipeline for each responder in
// order. Gateway failures never abort the turn: a connectivity failure
// yields a labeled local fallback, a business error a skip notice.
func (o *Orchestrator) collectResponses(ctx context.Context, userText string, priorTurns []seminartypes.ChatTurn, order []string, parsed mentions.Result) ([]personaResponse, int) {
	var responses []personaResponse
	failures := 0

	for _, personaID := range order {
		persona, err := o.catalog.GetPersona(personaID)
		if err != nil {
			logger.Warn("Skipping unknown persona", "persona", personaID)
			failures++
			continue
		}

		isPriority := personaID == parsed.PriorityID
		isMentioned := isPriority || containsID(parsed.OtherIDs, personaID)

		req := seminartypes.CompletionRequest{
			SystemPrompt:   prompt.Build(persona, userText, isMentioned, isPriority),
			PriorTurns:     priorTurns,
			UserText:       userText,
			Params:         o.paramsFor(persona, defaultParams),
			ConversationID: o.conversationID,
		}

		logger.TurnStep(o.conversationID, "gateway_call", "persona", personaID)
		raw, err := o.gateway.Complete(ctx, req)
		if err != nil {
			failures++
			logger.Error("Gateway call failed", "persona", personaID, "error", err)
			if services.IsConnectivityError(err) {
				responses = append(responses, personaResponse{
					persona: persona,
					text:    fmt.Sprintf("[Service unavailable] %s could not be reached.", persona.DisplayName),
					system:  true,
				})
			} else {
				responses = append(responses, personaResponse{
					persona: persona,
					text:    fmt.Sprintf("%s was skipped due to an error.", persona.DisplayName),
					system:  true,
				})
			}
			continue
		}

		responses = append(responses, personaResponse{
			persona: persona,
			text:    sanitize.Sanitize(persona, raw),
		})
	}

	return responses, failures
}

// deliverResponses appends each response to the transcript and animates it,
// computing reply attribution against the transcript as it stands when the
// message lands.
func (o *Orchestrator) deliverResponses(responses []personaResponse) {
	for i, resp := range responses {
		if resp.system {
			o.deliverSystem(resp.text)
		} else {
			o.deliverPersona(resp.persona, resp.text, false)
		}
		if i < len(responses)-1 {
			o.sleep(o.animator.MessageDelay)
		}
	}
}

// runAutoDebate executes up to maxRounds additional rounds. Each round
// randomly picks 2-3 active personas without replacement; individual agent
// failures are skipped. One concluding System message follows the rounds.
func (o *Orchestrator) runAutoDebate(ctx context.Context, activeIDs []string, maxRounds int) {
	o.state = StateAutoDebateRound

	for round := 0; round < maxRounds; round++ {
		selected := o.pickDebaters(activeIDs)
		logger.TurnStep(o.conversationID, "debate_round", "round", round+1, "selected", strings.Join(selected, ","))

		for _, personaID := range selected {
			persona, err := o.catalog.GetPersona(personaID)
			if err != nil {
				continue
			}

			otherNames := make([]string, 0, len(activeIDs)-1)
			for _, id := range activeIDs {
				if id != personaID {
					otherNames = append(otherNames, o.catalog.DisplayName(id))
				}
			}

			req := seminartypes.CompletionRequest{
				SystemPrompt:   persona.SystemPrompt,
				PriorTurns:     prompt.BuildTurns(o.transcript.Messages(), o.catalog.DisplayName),
				UserText:       prompt.BuildDebate(persona, otherNames),
				Params:         o.paramsFor(persona, debateParams),
				ConversationID: o.conversationID,
			}

			raw, err := o.gateway.Complete(ctx, req)
			if err != nil {
				logger.Warn("Debate agent skipped", "persona", personaID, "round", round+1, "error", err)
				continue
			}

			o.deliverPersona(persona, sanitize.Sanitize(persona, raw), true)
			o.sleep(DebateMessageDelay)
		}
	}

	o.deliverSystem(ConcludedMessage)
}

// pickDebaters selects 2-3 distinct active personas for one debate round.
func (o *Orchestrator) pickDebaters(activeIDs []string) []string {
	count := 2 + o.rng.Intn(2)
	if count > len(activeIDs) {
		count = len(activeIDs)
	}

	shuffled := append([]string{}, activeIDs...)
	o.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:count]
}

// deliverPersona appends one persona message with reply attribution and
// animates it.
func (o *Orchestrator) deliverPersona(persona seminartypes.Persona, text string, autoDebate bool) {
	replyTo := mentions.DetectReplyTarget(text, persona.ID, o.transcript.Messages(), o.catalog.ListPersonas(), autoDebate)

	idx := o.transcript.Append(seminartypes.Message{
		ID:             testutils.GenerateUUID(o.testMode),
		Kind:           seminartypes.KindPersona,
		AuthorID:       persona.ID,
		FullText:       text,
		ReplyTo:        replyTo,
		Timestamp:      testutils.GetCurrentTime(o.testMode),
		ConversationID: o.conversationID,
	})
	o.animator.Animate(o.transcript.At(idx), o.onTick, o.onStride)
}

// deliverSystem appends one System message and animates it.
func (o *Orchestrator) deliverSystem(text string) {
	idx := o.transcript.Append(seminartypes.Message{
		ID:             testutils.GenerateUUID(o.testMode),
		Kind:           seminartypes.KindSystem,
		FullText:       text,
		ReplyTo:        seminartypes.NoReply,
		Timestamp:      testutils.GetCurrentTime(o.testMode),
		ConversationID: o.conversationID,
	})
	o.animator.Animate(o.transcript.At(idx), o.onTick, o.onStride)
}

// finishTurn is deferred by SubmitTurn and Continue. It converts a panic
// anywhere in turn processing into a single visible System message instead
// of crashing the process, then returns the orchestrator to idle. The error
// message is appended fully revealed because the render callbacks may be
// the thing that panicked.
func (o *Orchestrator) finishTurn() {
	if r := recover(); r != nil {
		logger.Error("Turn processing recovered from panic", "conversation_id", o.conversationID, "panic", r)
		o.transcript.Append(seminartypes.Message{
			ID:             testutils.GenerateUUID(o.testMode),
			Kind:           seminartypes.KindSystem,
			FullText:       fmt.Sprintf("Error: %v. Please try again.", r),
			VisibleText:    fmt.Sprintf("Error: %v. Please try again.", r),
			ReplyTo:        seminartypes.NoReply,
			Timestamp:      testutils.GetCurrentTime(o.testMode),
			ConversationID: o.conversationID,
		})
	}
	o.state = StateIdle
}

// appendRevealed appends a message that displays immediately, skipping
// animation. Used for the user's own message.
func (o *Orchestrator) appendRevealed(kind seminartypes.MessageKind, authorID, text string) {
	o.transcript.Append(seminartypes.Message{
		ID:             testutils.GenerateUUID(o.testMode),
		Kind:           kind,
		AuthorID:       authorID,
		FullText:       text,
		VisibleText:    text,
		ReplyTo:        seminartypes.NoReply,
		Timestamp:      testutils.GetCurrentTime(o.testMode),
		ConversationID: o.conversationID,
	})
	if o.onTick != nil {
		o.onTick()
	}
}

// paramsFor resolves the completion parameters for one gateway call.
// Runtime overrides win outright; otherwise the persona's catalog params
// replace the phase fallback field by field, so a persona that only sets a
// temperature still gets the phase's token cap.
func (o *Orchestrator) paramsFor(persona seminartypes.Persona, fallback seminartypes.ModelParams) seminartypes.ModelParams {
	if params, ok := o.personaParams[persona.ID]; ok {
		return params
	}

	resolved := fallback
	if persona.Params != nil {
		if persona.Params.Temperature > 0 {
			resolved.Temperature = persona.Params.Temperature
		}
		if persona.Params.MaxTokens > 0 {
			resolved.MaxTokens = persona.Params.MaxTokens
		}
	}
	return resolved
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
