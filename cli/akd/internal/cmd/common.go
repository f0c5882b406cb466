package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/coniks-sys/akd-go/application"
	"github.com/coniks-sys/akd-go/azks"
	"github.com/coniks-sys/akd-go/protocol"
	"github.com/coniks-sys/akd-go/protocol/auditor"
	"github.com/coniks-sys/akd-go/protocol/directory"
	"github.com/coniks-sys/akd-go/storage/kv"
	"github.com/coniks-sys/akd-go/utils/binutils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const configMissingUsage = `
Couldn't load the directory's config-file.

To create a valid config, first, run
  akd init
if you haven't done this already. This will create a configuration
and the directory's VRF key pair (by default in vrf.priv and vrf.pub).

akd looks for a file called 'config.toml' in its current working directory.
If you prefer the config-file to be named or stored somewhere different you can
specify where to look for the config with the --config flag. For example:
 akd lookup --config /etc/akd/config.toml alice
`

// env is the opened directory a command runs against.
type env struct {
	ctx     context.Context
	conf    *application.Config
	logger  *binutils.Logger
	db      kv.DB
	dir     *directory.Directory
	reg     *prometheus.Registry
	metrics string
}

func loadConfigOrExit(cmd *cobra.Command) *application.Config {
	conf, err := application.LoadConfig(cmd.Flag("config").Value.String())
	if err != nil {
		fmt.Println(err)
		fmt.Print(configMissingUsage)
		os.Exit(-1)
	}
	return conf
}

// openOrExit loads the config and opens the directory it describes.
// The caller must close the returned env.
func openOrExit(cmd *cobra.Command) *env {
	conf := loadConfigOrExit(cmd)
	e := &env{
		ctx:     context.Background(),
		conf:    conf,
		logger:  conf.NewLogger(),
		reg:     prometheus.NewRegistry(),
		metrics: cmd.Flag("metrics").Value.String(),
	}
	key, err := conf.LoadVRFKey()
	if err != nil {
		e.fatal("cannot load VRF key", err)
	}
	if e.db, err = conf.OpenStorage(); err != nil {
		e.fatal("cannot open storage", err)
	}
	e.dir, err = directory.New(e.ctx, e.db, key, conf.DirectoryConfig(),
		directory.WithLogger(e.logger),
		directory.WithMetrics(azks.PrometheusMetrics("akd", e.reg)))
	if err != nil {
		e.db.Close()
		e.fatal("cannot open directory", err)
	}
	e.logger.Debug("opened directory", "epoch", e.dir.LatestEpoch(),
		"backend", conf.Storage.Backend)
	return e
}

func (e *env) close() {
	if e.metrics != "" {
		if err := prometheus.WriteToTextfile(e.metrics, e.reg); err != nil {
			e.logger.Error("cannot write metrics", "path", e.metrics, "error", err)
		}
	}
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.logger.Error("cannot close storage", "error", err)
		}
	}
	e.logger.Sync()
}

func (e *env) fatal(msg string, err error) {
	e.logger.Error(msg, "error", err)
	e.logger.Sync()
	if e.db != nil {
		e.db.Close()
	}
	os.Exit(1)
}

// auditChain verifies every epoch from trusted up to the latest one and
// returns the auditor holding the verified roots.
func (e *env) auditChain(trusted protocol.EpochHash) (*auditor.Auditor, error) {
	aud, err := auditor.New(e.dir.Policies(), trusted)
	if err != nil {
		return nil, err
	}
	latest := e.dir.LatestEpoch()
	for epoch := trusted.Epoch + 1; epoch <= latest; epoch++ {
		p, err := e.dir.Audit(e.ctx, epoch-1, epoch)
		if err != nil {
			return nil, err
		}
		if err := aud.Update(p); err != nil {
			return nil, fmt.Errorf("epoch %d: %w", epoch, err)
		}
	}
	return aud, nil
}

// genesis returns the epoch hash of the empty tree.
func (e *env) genesis() protocol.EpochHash {
	eh, err := e.dir.EpochHash(e.ctx, 0)
	if err != nil {
		e.fatal("cannot read epoch 0", err)
	}
	return eh
}

func printEpochHash(eh protocol.EpochHash) {
	fmt.Printf("epoch %d root %s\n", eh.Epoch, eh.Root)
}

func saveProof[T application.Proof](e *env, cmd *cobra.Command, p *T) {
	out := cmd.Flag("out").Value.String()
	if out == "" {
		return
	}
	if err := application.MarshalProofToFile(p, out); err != nil {
		e.fatal("cannot write proof", err)
	}
	e.logger.Debug("wrote proof", "path", out)
}
