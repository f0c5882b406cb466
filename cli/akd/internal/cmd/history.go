package cmd

import (
	"fmt"

	"github.com/coniks-sys/akd-go/azks"
	"github.com/coniks-sys/akd-go/cli"
	"github.com/coniks-sys/akd-go/protocol/client"
	"github.com/spf13/cobra"
)

var historyCmd = cli.NewActionCommand("history <name>",
	"Prove and verify the key history of a name.",
	`Prove the versions of a name and verify them against the epoch hashes
of an audited chain. By default every version is covered.`,
	cobra.ExactArgs(1), historyRunFunc)

func init() {
	RootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("most-recent", "n", 0, "Only cover the n most recent versions")
	historyCmd.Flags().Uint64P("since", "s", 0, "Only cover the versions written at this epoch or later")
	historyCmd.Flags().StringP("out", "o", "", "Write the proof as JSON to this file")
}

func historyParams(cmd *cobra.Command) (azks.HistoryParams, error) {
	n, _ := cmd.Flags().GetInt("most-recent")
	since, _ := cmd.Flags().GetUint64("since")
	switch {
	case n != 0 && since != 0:
		return azks.HistoryParams{}, fmt.Errorf("--most-recent and --since are exclusive")
	case n != 0:
		return azks.MostRecent(n), nil
	case since != 0:
		return azks.SinceEpoch(since), nil
	}
	return azks.Complete(), nil
}

func historyRunFunc(cmd *cobra.Command, args []string) {
	e := openOrExit(cmd)
	defer e.close()
	name := args[0]

	params, err := historyParams(cmd)
	if err != nil {
		e.fatal("bad history parameters", err)
	}
	aud, err := e.auditChain(e.genesis())
	if err != nil {
		e.fatal("audit failed", err)
	}
	cc, err := client.New(e.dir.Policies())
	if err != nil {
		e.fatal("bad policies", err)
	}
	hp, err := e.dir.KeyHistory(e.ctx, name, params)
	if err != nil {
		e.fatal("cannot prove history of "+name, err)
	}
	if err := cc.VerifyHistory(params, aud.Roots(), hp); err != nil {
		e.fatal("history proof does not verify", err)
	}
	fmt.Printf("%s: %s history as of epoch %d (verified)\n", name, params, hp.Tree.AsOf)
	for _, u := range hp.Updates {
		fmt.Printf("  version %d at epoch %d: %q\n", u.Version, u.Epoch, u.Value)
	}
	saveProof(e, cmd, hp)
}
