package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Interactive worklist that follows live collection changes.",
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := loadPersistence()
			if err != nil {
				return err
			}
			u := ui.UI{Persistence: p}
			return u.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
