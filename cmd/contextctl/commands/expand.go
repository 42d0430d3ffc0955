// ABOUTME: CLI command to expand a prompt into retrieval query variants
// ABOUTME: Shows the exact variants the engine embeds and searches with
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backstage-chat/context-engine/internal/core"
)

var expandLimit int

// NewExpandCmd creates the expand command
func NewExpandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand <prompt>",
		Short: "Expand a prompt into query variants",
		Long: `Expand a prompt into the query variants used for retrieval.

The first variant is always the verbatim prompt; further variants strip
question prefixes and extract possessive phrases like "my favorite color".

Examples:
  contextctl expand "What's my favorite color?"
  contextctl expand --limit 5 "Where did I park my car?"`,
		Args: cobra.ExactArgs(1),
		RunE: runExpand,
	}

	cmd.Flags().IntVar(&expandLimit, "limit", core.DefaultVariantLimit, "Maximum variants to produce")

	return cmd
}

func runExpand(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(expandLimit, "limit"); err != nil {
		return err
	}

	variants := core.NewExpander(expandLimit).Expand(args[0])

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(variants, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	for i, v := range variants {
		fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, v)
	}
	return nil
}
