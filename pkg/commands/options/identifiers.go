package options

import (
	"errors"
	"fmt"

	"tableflip.dev/agenda/pkg/alert"
)

// ItemOptions identifies one worklist item by source and id, the composite
// key every action routes on.
type ItemOptions struct {
	Source alert.Source
	ID     string
}

// Parse fills the options from `<source> <id>` positional args.
func (io *ItemOptions) Parse(args []string) error {
	if len(args) < 2 {
		return errors.New("requires a source and an item id")
	}
	source, err := alert.ParseSource(args[0])
	if err != nil {
		return fmt.Errorf("%v (one of %v)", err, alert.AllSources())
	}
	io.Source = source
	io.ID = args[1]
	return nil
}
