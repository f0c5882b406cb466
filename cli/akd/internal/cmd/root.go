// Package cmd implements the CLI commands for an akd key directory.
package cmd

import (
	"github.com/coniks-sys/akd-go/cli"
)

// RootCmd represents the base "akd" command when called without any subcommands.
var RootCmd = cli.NewRootCommand("akd",
	"Append-only key directory in Go",
	`
   _    _  ______
  /_\  | |/ /  _ \
 / _ \ | ' <| |_) |
/_/ \_\|_|\_\____/

An append-only authenticated key directory.`)

func init() {
	RootCmd.PersistentFlags().StringP("metrics", "m", "",
		"Write the directory metrics in Prometheus text format to this file on exit")
}
