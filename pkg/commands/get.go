package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/runner/get"
)

func addGet(topLevel *cobra.Command) {
	showID := false
	bucket := ""
	window := ""

	cmd := &cobra.Command{
		Use:     "get",
		Aliases: []string{"list", "ls"},
		Short:   "Print the bucketed worklist.",
		Example: `
agenda get
agenda get --bucket today
agenda get --window 1w2d
`,
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := loadPersistence()
			if err != nil {
				return err
			}
			g := get.Get{
				ShowID:      showID,
				Bucket:      bucket,
				Window:      window,
				Persistence: p,
			}
			return g.Do(context.Background())
		},
	}

	cmd.Flags().BoolVarP(&showID, "id", "i", false, "Show item ids.")
	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Limit output to one bucket (today, tomorrow, this_week, next_week, upcoming).")
	cmd.Flags().StringVarP(&window, "window", "w", "", "Hide items due beyond this horizon, e.g. 3d or 1w2d.")

	topLevel.AddCommand(cmd)
}
