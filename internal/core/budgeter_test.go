// ABOUTME: Tests for context budgeting and final prompt assembly
// ABOUTME: Covers recency-biased selection, preamble rendering, and degraded composition
package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/backstage-chat/context-engine/internal/models"
)

func msg(role, content string) models.Message {
	return models.Message{Role: role, Content: content}
}

func TestSelectRecent_ContiguousSuffix(t *testing.T) {
	// 10 turns of 10 chars each, budget 35: only the most recent 3 fit
	var history []models.Message
	for i := 0; i < 10; i++ {
		history = append(history, msg(models.RoleUser, fmt.Sprintf("turn %04d!", i)))
	}

	b := NewBudgeter(35)
	included := b.SelectRecent(history)

	if len(included) != 3 {
		t.Fatalf("expected 3 included turns, got %d", len(included))
	}
	// Must be the last 3 turns, back in chronological order
	for i, m := range included {
		want := fmt.Sprintf("turn %04d!", 7+i)
		if m.Content != want {
			t.Errorf("position %d: expected %q, got %q", i, want, m.Content)
		}
	}
}

func TestSelectRecent_OversizedTurnStillIncluded(t *testing.T) {
	history := []models.Message{
		msg(models.RoleUser, strings.Repeat("x", 500)),
	}

	b := NewBudgeter(100)
	included := b.SelectRecent(history)

	if len(included) != 1 {
		t.Fatalf("expected the oversized turn to be included alone, got %d turns", len(included))
	}
}

func TestSelectRecent_EmptyHistory(t *testing.T) {
	b := NewBudgeter(100)
	if included := b.SelectRecent(nil); included != nil {
		t.Errorf("expected nil for empty history, got %v", included)
	}
}

func TestSelectRecent_AllFitUnchanged(t *testing.T) {
	history := []models.Message{
		msg(models.RoleUser, "hello"),
		msg(models.RoleAssistant, "hi there"),
	}

	b := NewBudgeter(1000)
	included := b.SelectRecent(history)

	if len(included) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(included))
	}
	if included[0].Content != "hello" || included[1].Content != "hi there" {
		t.Errorf("order changed: %v", included)
	}
}

func TestRenderPreamble_Sections(t *testing.T) {
	turnSnips := []models.SimilarityResult{
		{Text: "my favorite color is blue", Similarity: 0.9},
		{Text: "I live in Chicago", Similarity: 0.7},
	}
	uploadSnips := []UploadSnippet{
		{SimilarityResult: models.SimilarityResult{Text: "quarterly revenue grew", Similarity: 0.8}, FileName: "report.pdf"},
	}

	preamble := RenderPreamble(turnSnips, uploadSnips)

	if !strings.Contains(preamble, "### Relevant conversation history:") {
		t.Error("missing conversation history section")
	}
	if !strings.Contains(preamble, "### Relevant information from uploaded files:") {
		t.Error("missing uploaded files section")
	}
	if !strings.Contains(preamble, "1. my favorite color is blue") {
		t.Error("turn snippets not numbered")
	}
	if !strings.Contains(preamble, `From "report.pdf":`) {
		t.Error("upload snippet missing file name")
	}
}

func TestRenderPreamble_EmptySectionsOmitted(t *testing.T) {
	if got := RenderPreamble(nil, nil); got != "" {
		t.Errorf("expected empty preamble, got %q", got)
	}

	onlyTurns := RenderPreamble([]models.SimilarityResult{{Text: "x", Similarity: 1}}, nil)
	if strings.Contains(onlyTurns, "uploaded files") {
		t.Error("upload section emitted with no upload snippets")
	}
}

func TestCompose_BareWhenNoContext(t *testing.T) {
	b := NewBudgeter(1000)
	bundle := b.Compose("hello", nil, nil, nil)

	if bundle.SystemMessage != minimalSystemMessage {
		t.Errorf("expected minimal system message, got %q", bundle.SystemMessage)
	}
	if len(bundle.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(bundle.Messages))
	}
	if bundle.Messages[0].Role != models.RoleUser || bundle.Messages[0].Content != "hello" {
		t.Errorf("unexpected final message: %+v", bundle.Messages[0])
	}
}

func TestCompose_HistoryEndsWithPrompt(t *testing.T) {
	history := []models.Message{
		msg(models.RoleUser, "first"),
		msg(models.RoleAssistant, "second"),
	}

	b := NewBudgeter(1000)
	bundle := b.Compose("third", history, nil, nil)

	if len(bundle.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(bundle.Messages))
	}
	last := bundle.Messages[len(bundle.Messages)-1]
	if last.Role != models.RoleUser || last.Content != "third" {
		t.Errorf("expected prompt as final user message, got %+v", last)
	}
	if bundle.SystemMessage == minimalSystemMessage {
		t.Error("expected full directive when history is present")
	}
}

func TestCompose_PreambleEmbeddedInSystemMessage(t *testing.T) {
	snips := []models.SimilarityResult{{Text: "the sky is green here", Similarity: 0.9}}

	b := NewBudgeter(1000)
	bundle := b.Compose("what color is the sky?", nil, snips, nil)

	if !strings.Contains(bundle.SystemMessage, "the sky is green here") {
		t.Error("retrieved snippet not present in system message")
	}
	if len(bundle.RetrievedTurns) != 1 {
		t.Errorf("expected snippet carried in bundle, got %v", bundle.RetrievedTurns)
	}
}
