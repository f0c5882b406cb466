package cli

import (
	"github.com/spf13/cobra"
)

// An actionCommand runs one operation of an akd executable
// against the instance described by the config file.
type actionCommand struct {
	use     string
	short   string
	long    string
	args    cobra.PositionalArgs
	runFunc func(cmd *cobra.Command, args []string)
}

var _ cobraCommand = (*actionCommand)(nil)

// NewActionCommand constructs a new ActionCommand with the given
// usage line, descriptions, positional argument check and the
// runFunc implementing it.
func NewActionCommand(use, short, long string, args cobra.PositionalArgs,
	runFunc func(cmd *cobra.Command, args []string)) *cobra.Command {
	actCmd := &actionCommand{
		use:     use,
		short:   short,
		long:    long,
		args:    args,
		runFunc: runFunc,
	}
	return actCmd.Build()
}

// Build constructs the cobra.Command according to the
// ActionCommand's settings.
func (actCmd *actionCommand) Build() *cobra.Command {
	cmd := cobra.Command{
		Use:   actCmd.use,
		Short: actCmd.short,
		Long: actCmd.long + `

This will look for config files with default names
in the current directory if not specified differently.`,
		Args: actCmd.args,
		Run:  actCmd.runFunc,
	}
	return &cmd
}
