package commands

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"polytask/internal/parser"
)

func addParse(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Show what smart input reads from a task line",
		Example: `
polytask parse "Math homework tomorrow 5pm for 45m"
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := parser.Parse(strings.Join(args, " "), time.Now())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	topLevel.AddCommand(cmd)
}
