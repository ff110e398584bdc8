package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func addAutoSchedule(topLevel *cobra.Command) {
	var (
		userID int64
		day    string
	)
	cmd := &cobra.Command{
		Use:   "autoschedule",
		Short: "Place a user's floating tasks into free time of a day",
		Example: `
polytask autoschedule --user 123456789 --day 2024-03-04
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := parseDay(day)
			if err != nil {
				return err
			}
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.user(ctx, userID)
			if err != nil {
				return err
			}
			n, err := a.session(user.ID, d).AutoSchedule(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Auto-scheduled %d tasks on %s\n", n, d.Format("2006-01-02"))
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "Telegram id of the user")
	cmd.Flags().StringVar(&day, "day", "", "day to fill, YYYY-MM-DD (default today)")

	topLevel.AddCommand(cmd)
}
