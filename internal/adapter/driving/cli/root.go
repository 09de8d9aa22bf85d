// Package cli implements the pluxee-mcp command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/port/driving"
)

// Dependencies are resolved lazily so that commands which only print help
// never open the store or launch a browser.
type Dependencies struct {
	// Session returns the session administration port.
	Session func(ctx context.Context) (driving.SessionAdmin, error)
	// Serve runs the tool server until ctx is cancelled.
	Serve    func(ctx context.Context) error
	Prompter Prompter
}

// NewRootCmd builds the command tree. Without a subcommand the tool server
// is started.
func NewRootCmd(deps Dependencies, version string) *cobra.Command {
	if deps.Prompter == nil {
		deps.Prompter = NewPrompter()
	}

	cmd := &cobra.Command{
		Use:           "pluxee-mcp",
		Short:         "MCP server for the Pluxee consumer API",
		Long:          "Exposes Pluxee budget, order history and restaurant data as MCP tools, with browser-based login.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return deps.Serve(cmd.Context())
		},
	}

	cmd.AddCommand(
		newServeCmd(deps),
		newLoginCmd(deps),
		newTokenCmd(deps),
		newStatusCmd(deps),
		newLogoutCmd(deps),
	)

	return cmd
}

func newServeCmd(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio or HTTP, per MCP_TRANSPORT)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return deps.Serve(cmd.Context())
		},
	}
}

// interrupted turns a prompt interruption into a clean exit.
func interrupted(cmd *cobra.Command, err error) error {
	if errors.Is(err, ErrInterrupted) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Interrupted.")
		return nil
	}
	return err
}
