// Package commands builds the polytask command tree.
package commands

import (
	"github.com/spf13/cobra"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "polytask",
		Short:         "Personal task and calendar planner.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addBot(topLevel)
	addAgenda(topLevel)
	addAutoSchedule(topLevel)
	addParse(topLevel)
	addBlocks(topLevel)
	addMigrate(topLevel)
}
