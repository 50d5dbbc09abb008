package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/commands/options"
	"tableflip.dev/agenda/pkg/runner/snooze"
)

func addSnooze(topLevel *cobra.Command) {
	io := &options.ItemOptions{}

	cmd := &cobra.Command{
		Use:   "snooze",
		Short: "Push an item's due date forward one day.",
		Example: `
agenda snooze task <id>
agenda snooze finance_bill <id>
`,
		Args: func(_ *cobra.Command, args []string) error {
			return io.Parse(args)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := loadPersistence()
			if err != nil {
				return err
			}
			s := snooze.Snooze{
				Source:      io.Source,
				ID:          io.ID,
				Persistence: p,
			}
			return s.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
