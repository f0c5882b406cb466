// Command configen writes the default configuration of an akd directory.
package main

import (
	"fmt"
	"os"
	"path"

	"github.com/coniks-sys/akd-go/application"
)

const ConfigFile = "config.toml"

func main() {
	var dir string
	if len(os.Args) < 2 {
		dir = "."
	} else {
		dir = os.Args[1]
	}

	conf := application.NewConfig(path.Join(dir, ConfigFile))
	if err := application.SaveConfig(conf.GetPath(), conf); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
