// ABOUTME: Root CLI command with global flags
// ABOUTME: Wires all subcommands onto one cobra tree
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contextctl",
		Short: "Inspect and drive the context assembly engine",
		Long: `contextctl exercises the context assembly engine from the command line:
expand prompts into retrieval variants, search stored conversations for
similar turns, and compute fractional ordering indices for threaded
comments.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto or json")

	cmd.AddCommand(NewExpandCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewAllocateCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
