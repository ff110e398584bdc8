package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"polytask/internal/service"
)

func addBlocks(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "Manage weekly blocked time",
	}

	var (
		userID int64
		day    string
	)
	cmd.PersistentFlags().Int64Var(&userID, "user", 0, "Telegram id of the user")
	cmd.PersistentFlags().StringVar(&day, "day", "", "any day of the week to work on, YYYY-MM-DD (default today)")

	var (
		file   string
		repeat bool
	)
	apply := &cobra.Command{
		Use:   "apply",
		Short: "Replace blocked time with the intervals of a YAML file",
		Example: `
polytask blocks apply --user 123456789 -f week.yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := parseDay(day)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			def, err := service.ParseWeekYAML(data)
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
			res, err := a.blocks.Apply(ctx, user.ID, d, def, repeat)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %d, updated %d, deleted %d\n", res.Created, res.Updated, res.Deleted)
			return nil
		},
	}
	apply.Flags().StringVarP(&file, "file", "f", "", "YAML file keyed by weekday")
	apply.Flags().BoolVar(&repeat, "repeat", true, "repeat the blocks every week")
	_ = apply.MarkFlagRequired("file")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current blocked time",
		Args:  cobra.NoArgs,
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
			def, err := a.blocks.Load(ctx, user.ID, d)
			if err != nil {
				return err
			}
			if def.Count() == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no blocked time")
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), def.Format())
			return nil
		},
	}

	cmd.AddCommand(apply, show)
	topLevel.AddCommand(cmd)
}
