package cmd

import (
	"log"
	"path"

	"github.com/coniks-sys/akd-go/application"
	"github.com/coniks-sys/akd-go/cli"
	"github.com/coniks-sys/akd-go/crypto/vrf"
	"github.com/coniks-sys/akd-go/utils"
	"github.com/spf13/cobra"
)

var initCmd = cli.NewInitCommand("akd", initRunFunc)

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("backend", "b", application.BackendLevelDB,
		"Storage backend: leveldb, memory, tmdb-memory or tmdb-goleveldb")
}

func initRunFunc(cmd *cobra.Command, args []string) {
	dir := cmd.Flag("dir").Value.String()
	mkConfig(dir, cmd.Flag("backend").Value.String())
	mkVrfKey(dir)
}

func mkConfig(dir, backend string) {
	conf := application.NewConfig(path.Join(dir, "config.toml"))
	conf.Storage.Backend = backend
	if err := conf.Validate(); err != nil {
		log.Println(err)
		return
	}
	if err := conf.Save(); err != nil {
		log.Println(err)
	}
}

func mkVrfKey(dir string) {
	sk, err := vrf.GenerateKey(nil)
	if err != nil {
		log.Print(err)
		return
	}
	pk, _ := sk.Public()
	if err := utils.WriteFile(path.Join(dir, "vrf.priv"), sk, 0600); err != nil {
		log.Println(err)
		return
	}
	if err := utils.WriteFile(path.Join(dir, "vrf.pub"), pk, 0600); err != nil {
		log.Println(err)
		return
	}
}
