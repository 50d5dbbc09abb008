package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/commands/options"
	"tableflip.dev/agenda/pkg/runner/open"
)

func addOpen(topLevel *cobra.Command) {
	io := &options.ItemOptions{}

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Resolve the navigation target for an item.",
		Example: `
agenda open task <id>
agenda open calendar <event id>
`,
		Args: func(_ *cobra.Command, args []string) error {
			return io.Parse(args)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := loadPersistence()
			if err != nil {
				return err
			}
			o := open.Open{
				Source:      io.Source,
				ID:          io.ID,
				Persistence: p,
			}
			return o.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
