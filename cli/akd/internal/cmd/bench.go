package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/coniks-sys/akd-go/application"
	"github.com/coniks-sys/akd-go/azks"
	"github.com/coniks-sys/akd-go/cli"
	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/crypto/vrf"
	"github.com/coniks-sys/akd-go/label"
	"github.com/coniks-sys/akd-go/protocol/directory"
	"github.com/coniks-sys/akd-go/utils/binutils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var benchCmd = cli.NewActionCommand("bench",
	"Measure publishing, lookups and key histories on a throwaway directory.",
	`Publish batches of random names into an in-memory directory with a fresh
VRF key, then time VRF evaluation, lookups and key histories. The config
file is not read.`,
	cobra.NoArgs, benchRunFunc)

func init() {
	RootCmd.AddCommand(benchCmd)
	benchCmd.Flags().IntP("names", "n", 1000, "Number of names published per epoch")
	benchCmd.Flags().IntP("epochs", "e", 10, "Number of epochs")
	benchCmd.Flags().IntP("workers", "w", azks.DefaultParallelism().Workers, "Number of insertion workers")
	benchCmd.Flags().StringP("backend", "b", application.BackendMemory, "In-memory backend: memory or tmdb-memory")
	benchCmd.Flags().Bool("bulk", false, "Also load random batches into bare trees in bulk and directory mode")
}

func benchRunFunc(cmd *cobra.Command, args []string) {
	names, _ := cmd.Flags().GetInt("names")
	epochs, _ := cmd.Flags().GetInt("epochs")
	workers, _ := cmd.Flags().GetInt("workers")

	conf := application.NewConfig("")
	conf.Logger = &binutils.LoggerConfig{Environment: "production"}
	conf.Storage.Backend = cmd.Flag("backend").Value.String()
	conf.Parallelism = azks.Parallel(workers, azks.DefaultParallelism().Threshold)
	e := &env{
		ctx:     context.Background(),
		conf:    conf,
		logger:  binutils.NewLogger(conf.Logger),
		reg:     prometheus.NewRegistry(),
		metrics: cmd.Flag("metrics").Value.String(),
	}
	defer e.close()
	if names < 2 || epochs < 1 {
		e.fatal("bad bench size", fmt.Errorf("need at least 2 names and 1 epoch"))
	}
	if conf.Storage.Backend != application.BackendMemory &&
		conf.Storage.Backend != application.BackendTMMemory {
		e.fatal("bad backend", fmt.Errorf("%q is not an in-memory backend", conf.Storage.Backend))
	}

	key, err := vrf.GenerateKey(nil)
	if err != nil {
		e.fatal("cannot generate VRF key", err)
	}
	if e.db, err = conf.OpenStorage(); err != nil {
		e.fatal("cannot open storage", err)
	}
	e.dir, err = directory.New(e.ctx, e.db, key, conf.DirectoryConfig(),
		directory.WithMetrics(azks.PrometheusMetrics("akd", e.reg)))
	if err != nil {
		e.fatal("cannot open directory", err)
	}

	benchVRF(key, names)

	start := time.Now()
	for i := 0; i < epochs; i++ {
		updates := make([]directory.Update, names)
		for j := range updates {
			// every epoch rewrites the first half and adds new names
			n := j
			if j >= names/2 {
				n = i*names + j
			}
			updates[j] = directory.Update{
				Name:  fmt.Sprintf("user%d", n),
				Value: []byte(fmt.Sprintf("key%d.%d", n, i)),
			}
		}
		t := time.Now()
		eh, err := e.dir.Publish(e.ctx, updates)
		if err != nil {
			e.fatal("cannot publish", err)
		}
		e.logger.Info("bench epoch", "epoch", eh.Epoch, "updates", names, "took", time.Since(t))
	}
	report("publish", epochs, time.Since(start))

	start = time.Now()
	for j := 0; j < names; j++ {
		if _, err := e.dir.Lookup(e.ctx, fmt.Sprintf("user%d", j)); err != nil {
			e.fatal("cannot look up", err)
		}
	}
	report("lookup", names, time.Since(start))

	start = time.Now()
	for j := 0; j < names/2; j++ {
		if _, err := e.dir.KeyHistory(e.ctx, fmt.Sprintf("user%d", j), azks.Complete()); err != nil {
			e.fatal("cannot prove history", err)
		}
	}
	report("history", names/2, time.Since(start))

	start = time.Now()
	if _, err := e.auditChain(e.genesis()); err != nil {
		e.fatal("audit failed", err)
	}
	report("audit", epochs, time.Since(start))

	if bulk, _ := cmd.Flags().GetBool("bulk"); bulk {
		if err := benchBulk(e, names, epochs); err != nil {
			e.fatal("bulk load failed", err)
		}
	}
}

// benchBulk inserts the same random batches into one tree in BulkMode and
// one in DirectoryMode and checks that both reach the same roots.
func benchBulk(e *env, names, epochs int) error {
	trees := make([]*azks.Azks, 2)
	for i := range trees {
		db, err := e.conf.OpenStorage()
		if err != nil {
			return err
		}
		defer db.Close()
		store, err := azks.NewKVStore(db, e.conf.Storage.CacheSize)
		if err != nil {
			return err
		}
		if trees[i], err = azks.New(e.ctx, store, e.conf.DirectoryConfig().Tree,
			azks.WithLogger(e.logger)); err != nil {
			return err
		}
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	bits := trees[0].LabelBits()
	batches := make([][]azks.Element, epochs)
	var all []azks.Element
	for i := range batches {
		b := azks.RandomElements(r, names-names/2, bits)
		// rewrite earlier labels with fresh values
		for j := 0; j < names/2 && len(all) > 0; j++ {
			old := all[(i*names+j)%len(all)]
			b = append(b, azks.Element{Label: old.Label, Value: azks.RandomDigest(r)})
		}
		all = append(all, b[:names-names/2]...)
		batches[i] = dedupe(b)
	}

	roots := make([][]crypto.Digest, 2)
	for i, mode := range []azks.InsertMode{azks.BulkMode, azks.DirectoryMode} {
		start := time.Now()
		for _, b := range batches {
			root, err := trees[i].BatchInsert(e.ctx, b, mode)
			if err != nil {
				return err
			}
			roots[i] = append(roots[i], root)
		}
		report(mode.String(), epochs, time.Since(start))
	}
	for i := range roots[0] {
		if roots[0][i] != roots[1][i] {
			return fmt.Errorf("bulk and directory roots differ at epoch %d", i+1)
		}
	}
	e.logger.Info("bulk load", "epochs", epochs, "prunedThrough", trees[0].PrunedThrough(),
		"bulkNodes", trees[0].NumNodes(), "directoryNodes", trees[1].NumNodes())
	return nil
}

// dedupe keeps the first element of every label.
func dedupe(elems []azks.Element) []azks.Element {
	seen := make(map[label.Label]bool, len(elems))
	out := elems[:0]
	for _, el := range elems {
		if !seen[el.Label] {
			seen[el.Label] = true
			out = append(out, el)
		}
	}
	return out
}

func benchVRF(key vrf.PrivateKey, n int) {
	pk, _ := key.Public()
	proofs := make([][2][]byte, n)
	start := time.Now()
	for i := range proofs {
		out, proof := key.Prove([]byte(fmt.Sprintf("user%d", i)))
		proofs[i] = [2][]byte{out, proof}
	}
	report("vrf prove", n, time.Since(start))

	start = time.Now()
	for i, p := range proofs {
		if !pk.Verify([]byte(fmt.Sprintf("user%d", i)), p[0], p[1]) {
			panic("vrf proof does not verify")
		}
	}
	report("vrf verify", n, time.Since(start))
}

func report(op string, n int, d time.Duration) {
	if n == 0 {
		n = 1
	}
	fmt.Printf("%-10s %8d ops %12v %12v/op\n", op, n, d, d/time.Duration(n))
}
