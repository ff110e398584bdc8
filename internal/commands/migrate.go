package commands

import (
	"log"

	"github.com/spf13/cobra"
)

func addMigrate(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			log.Printf("[info] schema ready at %s", a.cfg.DatabaseURL)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
