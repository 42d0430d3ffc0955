// ABOUTME: CLI command to search a conversation's stored turns
// ABOUTME: Runs the full expand-embed-search pipeline against local storage
package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/backstage-chat/context-engine/internal/core"
	"github.com/backstage-chat/context-engine/internal/llm"
	"github.com/backstage-chat/context-engine/internal/models"
	"github.com/backstage-chat/context-engine/internal/storage"
)

var (
	searchConversation string
	searchLimit        int
	searchThreshold    float64
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search stored turns by similarity",
		Long: `Search a conversation's stored turns for text similar to a query.

Without an OpenAI key the query is embedded with the deterministic
fallback, which matches other fallback-embedded text but not
provider-embedded turns.

Examples:
  contextctl search --conversation conv1 "favorite color"
  contextctl search --conversation conv1 --limit 3 --threshold 0.5 "parking"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().StringVar(&searchConversation, "conversation", "", "Conversation ID to search (required)")
	cmd.Flags().IntVar(&searchLimit, "limit", core.DefaultMaxResults, "Maximum results to return")
	cmd.Flags().Float64Var(&searchThreshold, "threshold", core.DefaultSimilarityThreshold, "Minimum cosine similarity")
	_ = cmd.MarkFlagRequired("conversation")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}

	query := args[0]

	dbPath := os.Getenv("CONTEXT_DB_PATH")
	if dbPath == "" {
		dbPath = storage.DefaultDBPath()
	}
	store, err := storage.NewStorageWithPath(dbPath)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	turns, err := store.GetTurnsByConversation(searchConversation)
	if err != nil {
		return fmt.Errorf("loading turns: %w", err)
	}

	corpus := make([]models.EmbeddedText, 0, len(turns))
	for _, t := range turns {
		if t.Text == "" || len(t.Embedding) == 0 {
			continue
		}
		corpus = append(corpus, models.EmbeddedText{
			Text:       t.Text,
			Embedding:  t.Embedding,
			SourceID:   t.ID,
			SourceKind: models.SourceTurn,
		})
	}

	provider := llm.NewProvider(llm.DefaultConfig(os.Getenv("OPENAI_API_KEY")))
	engine := core.NewEngine(provider, core.Options{SimilarityThreshold: searchThreshold})

	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "query variants: %v\n", engine.ExpandQuery(query))
	}

	results := engine.FindRelevantContext(cmd.Context(), query, corpus, searchThreshold, searchLimit)

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No similar turns found for query: %s\n", query)
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SIMILARITY\tTEXT")
	for _, r := range results {
		fmt.Fprintf(w, "%.3f\t%s\n", r.Similarity, truncate(r.Text, 80))
	}
	return w.Flush()
}
