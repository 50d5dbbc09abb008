package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/commands/options"
	"tableflip.dev/agenda/pkg/runner/complete"
)

func addComplete(topLevel *cobra.Command) {
	io := &options.ItemOptions{}

	cmd := &cobra.Command{
		Use:     "complete",
		Aliases: []string{"done"},
		Short:   "Mark an item done in its originating collection.",
		Example: `
agenda complete task <id>
agenda complete reminder <id>
`,
		Args: func(_ *cobra.Command, args []string) error {
			return io.Parse(args)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := loadPersistence()
			if err != nil {
				return err
			}
			c := complete.Complete{
				Source:      io.Source,
				ID:          io.ID,
				Persistence: p,
			}
			return c.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
