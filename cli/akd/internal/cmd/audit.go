package cmd

import (
	"fmt"

	"github.com/coniks-sys/akd-go/application"
	"github.com/coniks-sys/akd-go/cli"
	"github.com/coniks-sys/akd-go/protocol"
	"github.com/spf13/cobra"
)

var auditCmd = cli.NewActionCommand("audit",
	"Verify that the directory's epochs form an append-only history.",
	`Verify an append-only proof for every epoch from a trusted epoch hash
up to the latest one. Without --trusted the audit starts at the empty
tree of epoch 0. The latest verified epoch hash can be saved with --out
and passed as --trusted to the next audit.`,
	cobra.NoArgs, auditRunFunc)

func init() {
	RootCmd.AddCommand(auditCmd)
	auditCmd.Flags().StringP("trusted", "t", "", "Start from the epoch hash stored as JSON in this file")
	auditCmd.Flags().StringP("out", "o", "", "Write the latest verified epoch hash as JSON to this file")
}

func auditRunFunc(cmd *cobra.Command, args []string) {
	e := openOrExit(cmd)
	defer e.close()

	var trusted protocol.EpochHash
	if file := cmd.Flag("trusted").Value.String(); file != "" {
		eh, err := application.UnmarshalProofFromFile[protocol.EpochHash](file)
		if err != nil {
			e.fatal("cannot read trusted epoch hash", err)
		}
		trusted = *eh
	} else {
		trusted = e.genesis()
	}

	current, err := e.dir.EpochHash(e.ctx, trusted.Epoch)
	if err != nil {
		e.fatal("cannot read epoch hash", err)
	}
	if current != trusted {
		e.fatal("directory equivocated", protocol.CheckBadEpochHash)
	}
	aud, err := e.auditChain(trusted)
	if err != nil {
		e.fatal("audit failed", err)
	}
	verified := aud.Verified()
	fmt.Printf("verified epochs %d to %d\n", trusted.Epoch, verified.Epoch)
	printEpochHash(verified)
	saveProof(e, cmd, &verified)
}
