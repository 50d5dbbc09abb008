package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/runner/calendar"
)

func addCalendar(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Manage the external calendar connection.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "connect",
		Short: "Sign in to the external calendar.",
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := loadPersistence()
			if err != nil {
				return err
			}
			c := calendar.Connect{Persistence: p}
			return c.Do(context.Background())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "disconnect",
		Short: "Sign out and clear the stored token.",
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := loadPersistence()
			if err != nil {
				return err
			}
			d := calendar.Disconnect{Persistence: p}
			return d.Do(context.Background())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Resync every subscribed calendar into the local mirror.",
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := loadPersistence()
			if err != nil {
				return err
			}
			s := calendar.Sync{Persistence: p}
			return s.Do(context.Background())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <calendar id>",
		Short: "Subscribe a calendar.",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a calendar id")
			}
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := loadPersistence()
			if err != nil {
				return err
			}
			a := calendar.Add{ID: args[0], Persistence: p}
			return a.Do(context.Background())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <calendar id>",
		Short: "Unsubscribe a calendar and drop its mirrored events.",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a calendar id")
			}
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := loadPersistence()
			if err != nil {
				return err
			}
			r := calendar.Remove{ID: args[0], Persistence: p}
			return r.Do(context.Background())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show connection state and subscribed calendars.",
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := loadPersistence()
			if err != nil {
				return err
			}
			l := calendar.List{Persistence: p}
			return l.Do(context.Background())
		},
	})

	topLevel.AddCommand(cmd)
}
