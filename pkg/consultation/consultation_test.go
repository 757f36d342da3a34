package consultation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/venuslab/glowup/pkg/types"
)

// scriptedModel replays canned extractions, one per turn.
type scriptedModel struct {
	turns []*types.Extraction
	errs  []error
	calls int
}

func (m *scriptedModel) Consult(_ context.Context, _ []types.ChatMessage, _ string, _ types.Language) (*types.Extraction, error) {
	i := m.calls
	m.calls++
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	if i < len(m.turns) {
		return m.turns[i], err
	}
	return nil, err
}

func TestSendAppendsBothMessages(t *testing.T) {
	model := &scriptedModel{turns: []*types.Extraction{
		{ReplyText: "Love it! Where are you headed?"},
	}}
	g := NewGatherer(model, types.LangEnglish)

	reply := g.Send(context.Background(), "I want something natural")

	if reply.Role != types.RoleAssistant {
		t.Errorf("reply role = %q, want %q", reply.Role, types.RoleAssistant)
	}
	if reply.Content != "Love it! Where are you headed?" {
		t.Errorf("reply content = %q", reply.Content)
	}
	history := g.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Role != types.RoleUser || history[0].Content != "I want something natural" {
		t.Errorf("first message = %+v", history[0])
	}
}

func TestProfileMerging(t *testing.T) {
	model := &scriptedModel{turns: []*types.Extraction{
		{ReplyText: "a", Styles: []string{"Natural"}, Concerns: []string{"dark circles"}},
		{ReplyText: "b", Styles: []string{"natural", "Bold"}, Environment: "Office"},
		{ReplyText: "c", Concerns: []string{"Dark Circles"}, Environment: "Date"},
	}}
	g := NewGatherer(model, types.LangEnglish)
	ctx := context.Background()

	g.Send(ctx, "one")
	g.Send(ctx, "two")
	g.Send(ctx, "three")

	p := g.Profile()
	if len(p.Goals) != 2 || p.Goals[0] != "Natural" || p.Goals[1] != "Bold" {
		t.Errorf("goals = %v, want [Natural Bold]", p.Goals)
	}
	if len(p.Concerns) != 1 || p.Concerns[0] != "dark circles" {
		t.Errorf("concerns = %v, want [dark circles]", p.Concerns)
	}
	if p.Environment != "Date" {
		t.Errorf("environment = %q, want Date (latest wins)", p.Environment)
	}
}

func TestEnvironmentNotClearedByEmptyTurn(t *testing.T) {
	model := &scriptedModel{turns: []*types.Extraction{
		{ReplyText: "a", Environment: "Party"},
		{ReplyText: "b"},
	}}
	g := NewGatherer(model, types.LangEnglish)
	ctx := context.Background()

	g.Send(ctx, "one")
	g.Send(ctx, "two")

	if env := g.Profile().Environment; env != "Party" {
		t.Errorf("environment = %q, want Party", env)
	}
}

func TestReadyRequiresGoalAndEnvironment(t *testing.T) {
	model := &scriptedModel{turns: []*types.Extraction{
		{ReplyText: "a", Styles: []string{"Vintage"}},
		{ReplyText: "b", Environment: "Wedding"},
	}}
	g := NewGatherer(model, types.LangEnglish)
	ctx := context.Background()

	if g.Ready() {
		t.Error("fresh gatherer should not be ready")
	}
	g.Send(ctx, "one")
	if g.Ready() {
		t.Error("goal alone should not be ready")
	}
	g.Send(ctx, "two")
	if !g.Ready() {
		t.Error("goal plus environment should be ready")
	}
}

func TestReadyAfterLongTranscript(t *testing.T) {
	// No goal or environment ever extracted, but the conversation has
	// gone on long enough.
	model := &scriptedModel{turns: []*types.Extraction{
		{ReplyText: "a"},
		{ReplyText: "b"},
	}}
	g := NewGatherer(model, types.LangEnglish)
	ctx := context.Background()

	g.Send(ctx, "one")
	if g.Ready() {
		t.Error("2 messages should not be ready")
	}
	g.Send(ctx, "two")
	if !g.Ready() {
		t.Errorf("%d messages should be ready", len(g.History()))
	}
}

func TestModelFailureYieldsApology(t *testing.T) {
	model := &scriptedModel{errs: []error{errors.New("rate limited")}}
	g := NewGatherer(model, types.LangEnglish)

	reply := g.Send(context.Background(), "hello")

	if reply.Role != types.RoleAssistant {
		t.Errorf("reply role = %q", reply.Role)
	}
	if reply.Content == "" {
		t.Error("apology reply should not be empty")
	}
	if len(g.History()) != 2 {
		t.Errorf("history length = %d, want 2 (failed turn still recorded)", len(g.History()))
	}
	if p := g.Profile(); len(p.Goals) != 0 || len(p.Concerns) != 0 || p.Environment != "" {
		t.Errorf("failed turn must not touch the profile, got %+v", p)
	}
}

// slowModel simulates a model round-trip so overlapping turns are
// actually in flight together.
type slowModel struct{}

func (slowModel) Consult(_ context.Context, _ []types.ChatMessage, input string, _ types.Language) (*types.Extraction, error) {
	time.Sleep(20 * time.Millisecond)
	return &types.Extraction{
		ReplyText: "noted: " + input,
		Styles:    []string{input},
	}, nil
}

func TestConcurrentSends(t *testing.T) {
	g := NewGatherer(slowModel{}, types.LangEnglish)
	ctx := context.Background()

	const turns = 8
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g.Send(ctx, fmt.Sprintf("style-%d", i))
		}(i)
	}
	wg.Wait()

	if got := len(g.History()); got != 2*turns {
		t.Errorf("history length = %d, want %d (one user and one assistant message per turn)", got, 2*turns)
	}
	if got := len(g.Profile().Goals); got != turns {
		t.Errorf("goals = %d, want %d distinct entries", got, turns)
	}
}

func TestResetClearsEverything(t *testing.T) {
	model := &scriptedModel{turns: []*types.Extraction{
		{ReplyText: "a", Styles: []string{"Bold"}, Environment: "Party"},
	}}
	g := NewGatherer(model, types.LangEnglish)
	g.Send(context.Background(), "one")

	g.Reset()

	if len(g.History()) != 0 {
		t.Error("history should be empty after reset")
	}
	if g.Ready() {
		t.Error("gatherer should not be ready after reset")
	}
	if p := g.Profile(); len(p.Goals) != 0 || p.Environment != "" {
		t.Errorf("profile should be empty after reset, got %+v", p)
	}
}
