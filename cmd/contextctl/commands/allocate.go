// ABOUTME: CLI command to compute fractional ordering indices for comments
// ABOUTME: Pure computation against supplied bounds; storage is not touched
package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/backstage-chat/context-engine/internal/core"
)

var allocateExisting string

// NewAllocateCmd creates the allocate command
func NewAllocateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allocate <parent-index> [next-index]",
		Short: "Compute a comment ordering index",
		Long: `Compute the fractional ordering index a new comment would receive
between a parent turn and its next sibling. When the next sibling index
is omitted it defaults to parent + 1.

Examples:
  contextctl allocate 10 20
  contextctl allocate 10 20 --existing 15,17.5
  contextctl allocate 3`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runAllocate,
	}

	cmd.Flags().StringVar(&allocateExisting, "existing", "", "Comma-separated indices of existing comments between the bounds")

	return cmd
}

func runAllocate(cmd *cobra.Command, args []string) error {
	parent, err := decimal.NewFromString(args[0])
	if err != nil {
		return fmt.Errorf("parsing parent index %q: %w", args[0], err)
	}

	var sibling *decimal.Decimal
	if len(args) == 2 {
		next, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("parsing next index %q: %w", args[1], err)
		}
		sibling = &next
	}

	var existing []decimal.Decimal
	if allocateExisting != "" {
		for _, part := range strings.Split(allocateExisting, ",") {
			idx, err := decimal.NewFromString(strings.TrimSpace(part))
			if err != nil {
				return fmt.Errorf("parsing existing index %q: %w", part, err)
			}
			existing = append(existing, idx)
		}
	}

	next := core.NextSiblingOrDefault(parent, sibling)
	index, err := core.AllocateCommentIndex(parent, next, existing)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", index)
	return nil
}
