package cmd

import (
	"github.com/coniks-sys/akd-go/cli"
)

var versionCmd = cli.NewVersionCommand("akd")

func init() {
	RootCmd.AddCommand(versionCmd)
}
