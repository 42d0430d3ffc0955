// ABOUTME: Tests for the search command
// ABOUTME: Exercises the pipeline against a temporary database with fallback embeddings

package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backstage-chat/context-engine/internal/llm"
	"github.com/backstage-chat/context-engine/internal/models"
	"github.com/backstage-chat/context-engine/internal/storage"
	"github.com/backstage-chat/context-engine/internal/vector"
)

func runSearchCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	outputFormat = "auto"
	quiet = false

	cmd := NewSearchCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return output.String(), err
}

func TestSearchCmd_FindsStoredTurn(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	t.Setenv("CONTEXT_DB_PATH", dbPath)
	t.Setenv("OPENAI_API_KEY", "")

	store, err := storage.NewStorageWithPath(dbPath)
	if err != nil {
		t.Fatalf("NewStorageWithPath() error = %v", err)
	}

	// Fallback-embed the stored text so a fallback-embedded identical
	// query matches it exactly.
	text := "my favorite color is blue"
	embedding := llm.DeterministicEmbedding(text, vector.Dimension)
	if _, err := store.AppendTurn("conv1", "alice", models.RoleUser, text, embedding); err != nil {
		t.Fatalf("AppendTurn() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	output, err := runSearchCmd(t, "--conversation", "conv1", text)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(output, "my favorite color is blue") {
		t.Errorf("expected stored turn in output, got:\n%s", output)
	}
}

func TestSearchCmd_NoResults(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	t.Setenv("CONTEXT_DB_PATH", dbPath)
	t.Setenv("OPENAI_API_KEY", "")

	output, err := runSearchCmd(t, "--conversation", "conv1", "anything")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(output, "No similar turns found") {
		t.Errorf("expected no-results message, got:\n%s", output)
	}
}

func TestSearchCmd_RequiresConversation(t *testing.T) {
	if _, err := runSearchCmd(t, "query with no conversation"); err == nil {
		t.Error("expected error when --conversation is missing")
	}
}
