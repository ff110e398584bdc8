package commands

import (
	"github.com/spf13/cobra"

	"polytask/internal/printers"
)

func addAgenda(topLevel *cobra.Command) {
	var (
		userID int64
		day    string
		showID bool
	)
	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Print one day of a user's calendar",
		Example: `
polytask agenda --user 123456789
polytask agenda --user 123456789 --day 2024-03-04 --ids
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
			agenda, err := a.reminders.Agenda(ctx, user.ID, d)
			if err != nil {
				return err
			}
			p := printers.NewAgendaPrinter(cmd.OutOrStdout())
			p.ShowID = showID
			p.Print(agenda)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "Telegram id of the user")
	cmd.Flags().StringVar(&day, "day", "", "day to print, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&showID, "ids", false, "show task ids")

	topLevel.AddCommand(cmd)
}
