package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/agenda/pkg/crypto"
	"tableflip.dev/agenda/pkg/store"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agenda",
		Short: base.Wrap80("One worklist over every collection with a due date."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addGet(topLevel)
	addComplete(topLevel)
	addSnooze(topLevel)
	addOpen(topLevel)
	addCalendar(topLevel)
	addUI(topLevel)
	addVersion(topLevel)
}

// loadPersistence opens the record store with the configured cipher.
func loadPersistence() (store.Persistence, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	cipher := crypto.Plaintext()
	if key := cfg.KeyHex(); key != "" {
		cipher, err = crypto.NewAESGCM(key)
		if err != nil {
			return nil, err
		}
	}
	return store.Load(cfg, cipher)
}
