package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/coniks-sys/akd-go/cli"
	"github.com/coniks-sys/akd-go/protocol"
	"github.com/coniks-sys/akd-go/protocol/client"
	"github.com/spf13/cobra"
)

var lookupCmd = cli.NewActionCommand("lookup <name>",
	"Look up and verify the value of a name.",
	`Look up the value of a name at the latest or a past epoch and verify
the proof against the epoch hash. A name without a value gets a verified
proof of absence instead.`,
	cobra.ExactArgs(1), lookupRunFunc)

func init() {
	RootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().StringP("epoch", "e", "", "Look up the name at this epoch instead of the latest one")
	lookupCmd.Flags().StringP("out", "o", "", "Write the proof as JSON to this file")
}

func lookupRunFunc(cmd *cobra.Command, args []string) {
	e := openOrExit(cmd)
	defer e.close()
	name := args[0]

	epoch := e.dir.LatestEpoch()
	if s := cmd.Flag("epoch").Value.String(); s != "" {
		var err error
		if epoch, err = strconv.ParseUint(s, 10, 64); err != nil {
			e.fatal("bad epoch", err)
		}
	}
	eh, err := e.dir.EpochHash(e.ctx, epoch)
	if err != nil {
		e.fatal("cannot read epoch hash", err)
	}
	cc, err := client.New(e.dir.Policies())
	if err != nil {
		e.fatal("bad policies", err)
	}

	lp, err := e.dir.LookupInEpoch(e.ctx, name, epoch)
	switch {
	case errors.Is(err, protocol.ErrNameNotFound):
		ap, err := e.dir.ProveAbsenceInEpoch(e.ctx, name, epoch)
		if err != nil {
			e.fatal("cannot prove absence", err)
		}
		if err := cc.VerifyAbsence(eh, ap); err != nil {
			e.fatal("absence proof does not verify", err)
		}
		fmt.Printf("%s: absent at epoch %d (verified)\n", name, epoch)
		saveProof(e, cmd, ap)
	case err != nil:
		e.fatal("cannot look up "+name, err)
	default:
		if err := cc.VerifyLookup(eh, lp); err != nil {
			e.fatal("lookup proof does not verify", err)
		}
		fmt.Printf("%s: %q version %d from epoch %d (verified at epoch %d)\n",
			name, lp.Update.Value, lp.Update.Version, lp.Update.Epoch, epoch)
		saveProof(e, cmd, lp)
	}
}
