package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "igire-admin",
		Short:         "Operator tooling for the Igire citizen hub",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newSetStatusCommand(ctx))
	rootCmd.AddCommand(newAssignCommand(ctx))
	rootCmd.AddCommand(newAwardCommand(ctx))
	rootCmd.AddCommand(newAddInstitutionCommand(ctx))
	rootCmd.AddCommand(newPromoteCommand(ctx))
	rootCmd.AddCommand(newCompleteRedemptionCommand(ctx))
	rootCmd.AddCommand(newGenerateInsightsCommand(ctx))

	return rootCmd
}
