package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "Form portal operator tools",
		Long:          `portalctl renders assistant prompts, inspects webhook routing, and hashes user passwords.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newPromptCmd())
	root.AddCommand(newWebhooksCmd())
	root.AddCommand(newUsersCmd())
	root.AddCommand(newOpenAPICmd())

	return root
}

func cmdLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
}
