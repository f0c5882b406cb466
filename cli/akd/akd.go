// Executable akd key directory. It publishes names and values into a
// local directory and produces and verifies its proofs.
package main

import (
	"github.com/coniks-sys/akd-go/cli"
	"github.com/coniks-sys/akd-go/cli/akd/internal/cmd"
)

func main() {
	cli.Execute(cmd.RootCmd)
}
