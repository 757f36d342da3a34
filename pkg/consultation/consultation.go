// Package consultation runs the pre-capture intake chat and
// accumulates the user's makeup goals, concerns and target
// environment across turns.
package consultation

import (
	"context"
	"strings"
	"sync"

	"github.com/venuslab/glowup/pkg/client"
	"github.com/venuslab/glowup/pkg/types"
)

// MinTurnsForReady is the transcript length at which the intake is
// considered complete even without an explicit goal and environment.
const MinTurnsForReady = 4

// Profile is the information gathered during the consultation.
type Profile struct {
	Goals       []string
	Concerns    []string
	Environment string
}

// Gatherer accumulates a Profile over a consultation transcript. It
// is safe for concurrent use; overlapping Send calls serialize their
// transcript commits.
type Gatherer struct {
	model client.ConsultationModel
	lang  types.Language

	mu      sync.Mutex
	history []types.ChatMessage
	profile Profile
}

// NewGatherer creates a Gatherer backed by the given model.
func NewGatherer(model client.ConsultationModel, lang types.Language) *Gatherer {
	return &Gatherer{model: model, lang: lang}
}

// Send runs one consultation turn. The user message and the
// assistant's reply are both appended to the transcript. A model
// failure does not surface as an error: the turn completes with an
// apologetic assistant message so the chat stays usable.
func (g *Gatherer) Send(ctx context.Context, input string) types.ChatMessage {
	// The model call runs outside the lock against a snapshot of the
	// transcript; only the commit is serialized.
	g.mu.Lock()
	history := append([]types.ChatMessage(nil), g.history...)
	g.mu.Unlock()

	extraction, err := g.model.Consult(ctx, history, input, g.lang)

	g.mu.Lock()
	defer g.mu.Unlock()

	g.history = append(g.history, types.ChatMessage{Role: types.RoleUser, Content: input})

	var reply types.ChatMessage
	if err != nil || extraction == nil {
		reply = types.ChatMessage{Role: types.RoleAssistant, Content: apology(g.lang)}
	} else {
		g.merge(extraction)
		reply = types.ChatMessage{Role: types.RoleAssistant, Content: extraction.ReplyText}
	}
	g.history = append(g.history, reply)
	return reply
}

// merge folds one turn's extraction into the accumulated profile.
// Goals and concerns accumulate without duplicates; the environment
// is overwritten by the latest non-empty value.
func (g *Gatherer) merge(e *types.Extraction) {
	g.profile.Goals = appendUnique(g.profile.Goals, e.Styles)
	g.profile.Concerns = appendUnique(g.profile.Concerns, e.Concerns)
	if e.Environment != "" {
		g.profile.Environment = e.Environment
	}
}

// Ready reports whether the intake has gathered enough to move on:
// at least one goal together with an environment, or a transcript of
// MinTurnsForReady messages.
func (g *Gatherer) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.profile.Goals) > 0 && g.profile.Environment != "" {
		return true
	}
	return len(g.history) >= MinTurnsForReady
}

// Profile returns a copy of the gathered profile.
func (g *Gatherer) Profile() Profile {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Profile{
		Goals:       append([]string(nil), g.profile.Goals...),
		Concerns:    append([]string(nil), g.profile.Concerns...),
		Environment: g.profile.Environment,
	}
}

// History returns a copy of the transcript.
func (g *Gatherer) History() []types.ChatMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]types.ChatMessage(nil), g.history...)
}

// Reset clears the transcript and the gathered profile.
func (g *Gatherer) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.history = nil
	g.profile = Profile{}
}

func appendUnique(dst, src []string) []string {
	for _, s := range src {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		found := false
		for _, existing := range dst {
			if strings.EqualFold(existing, s) {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, s)
		}
	}
	return dst
}

func apology(lang types.Language) string {
	if lang == types.LangChinese {
		return "抱歉，我这边出了点小问题，请再说一次好吗？"
	}
	return "Sorry, something went wrong on my end. Could you say that again?"
}
