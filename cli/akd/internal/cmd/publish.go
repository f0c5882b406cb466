package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/coniks-sys/akd-go/cli"
	"github.com/coniks-sys/akd-go/protocol/directory"
	"github.com/spf13/cobra"
)

var publishCmd = cli.NewActionCommand("publish [name=value ...]",
	"Publish new versions of names as one epoch.",
	`Publish new versions of names as one epoch.

Every argument binds a name to a value. With --file, the bindings are
read one per line from the given file instead.`,
	cobra.ArbitraryArgs, publishRunFunc)

func init() {
	RootCmd.AddCommand(publishCmd)
	publishCmd.Flags().StringP("file", "f", "", "Read name=value bindings from this file")
	publishCmd.Flags().StringP("out", "o", "", "Write the new epoch hash as JSON to this file")
}

func publishRunFunc(cmd *cobra.Command, args []string) {
	e := openOrExit(cmd)
	defer e.close()

	bindings := args
	if file := cmd.Flag("file").Value.String(); file != "" {
		lines, err := readLines(file)
		if err != nil {
			e.fatal("cannot read bindings", err)
		}
		bindings = append(bindings, lines...)
	}
	updates, err := parseUpdates(bindings)
	if err != nil {
		e.fatal("bad bindings", err)
	}
	eh, err := e.dir.Publish(e.ctx, updates)
	if err != nil {
		e.fatal("cannot publish", err)
	}
	printEpochHash(eh)
	saveProof(e, cmd, &eh)
}

func parseUpdates(bindings []string) ([]directory.Update, error) {
	updates := make([]directory.Update, 0, len(bindings))
	for _, b := range bindings {
		i := strings.IndexByte(b, '=')
		if i <= 0 {
			return nil, fmt.Errorf("%q is not a name=value binding", b)
		}
		updates = append(updates, directory.Update{Name: b[:i], Value: []byte(b[i+1:])})
	}
	return updates, nil
}

func readLines(file string) ([]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
