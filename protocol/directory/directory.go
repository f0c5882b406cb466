// This module implements the key directory a key server maintains.
// A directory is a publicly auditable, tamper-evident,
// privacy-preserving mapping from names to values (e.g. public keys),
// committed epoch by epoch in an append-only azks tree.
// It supports publishing new versions, latest-version and past lookups,
// proofs of absence, key histories and audits between epochs.

package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/coniks-sys/akd-go/azks"
	"github.com/coniks-sys/akd-go/crypto/hasher"
	"github.com/coniks-sys/akd-go/crypto/vrf"
	"github.com/coniks-sys/akd-go/label"
	"github.com/coniks-sys/akd-go/protocol"
	"github.com/coniks-sys/akd-go/storage/kv"
	"github.com/coniks-sys/akd-go/storage/kv/directorykv"
	"github.com/coniks-sys/akd-go/utils/binutils"
	"golang.org/x/sync/errgroup"
)

// DefaultCacheSize is the default number of tree nodes kept in memory.
const DefaultCacheSize = 1 << 16

// Config holds the parameters of a directory.
type Config struct {
	Tree azks.Config
	// CacheSize is the number of tree nodes cached; 0 disables the cache.
	CacheSize int
}

// DefaultConfig returns azks.DefaultConfig with a DefaultCacheSize cache.
func DefaultConfig() Config {
	return Config{Tree: azks.DefaultConfig(), CacheSize: DefaultCacheSize}
}

// Option configures a Directory.
type Option func(*Directory)

// WithLogger sets the logger of the directory and its tree.
func WithLogger(l *binutils.Logger) Option {
	return func(d *Directory) { d.logger = l }
}

// WithMetrics sets the metrics of the directory's tree.
func WithMetrics(m *azks.Metrics) Option {
	return func(d *Directory) { d.metrics = m }
}

// Update binds Name to Value in the next epoch.
type Update struct {
	Name  string
	Value []byte
}

// A Directory maintains the tree, the value states of every name and
// the policies (VRF key, hasher, label length) clients verify against.
// Publish calls are serialized; every other method may run concurrently
// with them.
type Directory struct {
	mu       sync.Mutex
	db       kv.DB
	tree     *azks.Azks
	th       *hasher.TreeHasher
	vrfKey   vrf.PrivateKey
	policies *protocol.Policies
	workers  int
	logger   *binutils.Logger
	metrics  *azks.Metrics
}

// New opens the directory stored in db, or creates an empty one.
// vrfKey and conf must match the ones the directory was created with,
// otherwise New returns protocol.ErrPoliciesMismatch or
// azks.ErrConfigMismatch.
func New(ctx context.Context, db kv.DB, vrfKey vrf.PrivateKey, conf Config,
	opts ...Option) (*Directory, error) {
	d := &Directory{
		db:      db,
		vrfKey:  vrfKey,
		workers: conf.Tree.Parallelism.Workers,
		logger:  binutils.NewNopLogger(),
		metrics: azks.NopMetrics(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers < 1 {
		d.workers = 1
	}
	pk, ok := vrfKey.Public()
	if !ok {
		return nil, vrf.ErrGetPubKey
	}

	store, err := azks.NewKVStore(db, conf.CacheSize)
	if err != nil {
		return nil, err
	}
	tree, err := azks.New(ctx, store, conf.Tree,
		azks.WithLogger(d.logger), azks.WithMetrics(d.metrics))
	if err != nil {
		return nil, err
	}
	d.tree = tree
	d.th = tree.Hasher()
	d.policies = protocol.NewPolicies(d.th.ID(), tree.LabelBits(), pk)

	stored, err := directorykv.LoadPolicies(db)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		if err := directorykv.StorePolicies(db, d.policies); err != nil {
			return nil, fmt.Errorf("store policies: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("load policies: %w", err)
	case !stored.Equal(d.policies):
		return nil, protocol.ErrPoliciesMismatch
	}
	return d, nil
}

// Policies returns the directory's public parameters.
func (d *Directory) Policies() *protocol.Policies {
	return d.policies
}

// LatestEpoch returns the latest published epoch.
func (d *Directory) LatestEpoch() uint64 {
	return d.tree.LatestEpoch()
}

// EpochHash returns the root digest published for epoch.
func (d *Directory) EpochHash(ctx context.Context, epoch uint64) (protocol.EpochHash, error) {
	root, err := d.tree.RootHash(ctx, epoch)
	if err != nil {
		return protocol.EpochHash{}, err
	}
	return protocol.EpochHash{Epoch: epoch, Root: root}, nil
}

// LatestEpochHash returns the root digest of the latest epoch.
func (d *Directory) LatestEpochHash(ctx context.Context) (protocol.EpochHash, error) {
	return d.EpochHash(ctx, d.tree.LatestEpoch())
}

func (d *Directory) computeLabel(name string) label.Label {
	return protocol.ComputeLabel(d.th, d.vrfKey.Compute([]byte(name)), d.tree.LabelBits())
}

func (d *Directory) proveLabel(name string) (label.Label, protocol.LabelProof) {
	out, proof := d.vrfKey.Prove([]byte(name))
	l := protocol.ComputeLabel(d.th, out, d.tree.LabelBits())
	return l, protocol.LabelProof{Output: out, Proof: proof}
}

// Publish writes a new version of every updated name as one new epoch
// and returns its epoch hash. A name may appear once per call.
func (d *Directory) Publish(ctx context.Context, updates []Update) (protocol.EpochHash, error) {
	if len(updates) == 0 {
		return protocol.EpochHash{}, protocol.ErrMalformedRequest
	}
	seen := make(map[string]bool, len(updates))
	for _, u := range updates {
		if len(u.Name) == 0 || u.Value == nil {
			return protocol.EpochHash{}, protocol.ErrMalformedRequest
		}
		if seen[u.Name] {
			return protocol.EpochHash{}, fmt.Errorf("%w: %q", protocol.ErrDuplicateName, u.Name)
		}
		seen[u.Name] = true
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// VRF evaluations dominate the cost of a publish
	labels := make([]label.Label, len(updates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i := range updates {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			labels[i] = d.computeLabel(updates[i].Name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return protocol.EpochHash{}, err
	}

	epoch := d.tree.LatestEpoch() + 1
	elems := make([]azks.Element, len(updates))
	records := make([]azks.Record, len(updates))
	for i, u := range updates {
		s := &protocol.ValueState{Name: u.Name, Version: 1, Epoch: epoch, Value: u.Value}
		prev, err := directorykv.LatestValueState(d.db, u.Name, epoch-1)
		switch {
		case errors.Is(err, kv.ErrNotFound):
		case err != nil:
			return protocol.EpochHash{}, fmt.Errorf("load value state of %q: %w", u.Name, err)
		default:
			s.Version = prev.Version + 1
			s.PrevEpoch = prev.Epoch
		}
		commit, err := protocol.NewValueCommit(d.th, labels[i], u.Value)
		if err != nil {
			return protocol.EpochHash{}, err
		}
		s.Salt = commit.Salt
		elems[i] = azks.Element{
			Label: labels[i],
			Value: protocol.LeafValue(d.th, commit.Value, s.Version, s.Epoch, s.PrevEpoch),
		}
		key, value := directorykv.ValueStateRecord(s)
		records[i] = azks.Record{Key: key, Value: value}
	}

	root, err := d.tree.BatchInsert(ctx, elems, azks.DirectoryMode, records...)
	if err != nil {
		d.logger.Warn("publish failed", "epoch", epoch, "updates", len(updates), "error", err)
		return protocol.EpochHash{}, err
	}
	d.logger.Info("published epoch", "epoch", epoch, "updates", len(updates), "root", root)
	return protocol.EpochHash{Epoch: epoch, Root: root}, nil
}

// Lookup proves the latest version of name at the latest epoch.
func (d *Directory) Lookup(ctx context.Context, name string) (*protocol.LookupProof, error) {
	return d.LookupInEpoch(ctx, name, d.tree.LatestEpoch())
}

// LookupInEpoch proves the version of name that was current at epoch.
// It returns protocol.ErrNameNotFound if name had no version yet; the
// absence can then be proven with ProveAbsenceInEpoch.
func (d *Directory) LookupInEpoch(ctx context.Context, name string,
	epoch uint64) (*protocol.LookupProof, error) {
	if len(name) == 0 || epoch > d.tree.LatestEpoch() {
		return nil, protocol.ErrMalformedRequest
	}
	s, err := directorykv.LatestValueState(d.db, name, epoch)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, protocol.ErrNameNotFound
	} else if err != nil {
		return nil, fmt.Errorf("load value state of %q: %w", name, err)
	}
	l, lp := d.proveLabel(name)
	mp, err := d.tree.GetMembershipProof(ctx, l, epoch)
	if err != nil {
		return nil, err
	}
	return &protocol.LookupProof{
		Epoch:      epoch,
		Name:       name,
		VRF:        lp,
		Update:     s.Update(),
		Membership: mp,
	}, nil
}

// ProveAbsence proves that name has no version at the latest epoch.
func (d *Directory) ProveAbsence(ctx context.Context, name string) (*protocol.AbsenceProof, error) {
	return d.ProveAbsenceInEpoch(ctx, name, d.tree.LatestEpoch())
}

// ProveAbsenceInEpoch proves that name had no version at epoch.
// It returns azks.ErrLabelPresent if it had one.
func (d *Directory) ProveAbsenceInEpoch(ctx context.Context, name string,
	epoch uint64) (*protocol.AbsenceProof, error) {
	if len(name) == 0 || epoch > d.tree.LatestEpoch() {
		return nil, protocol.ErrMalformedRequest
	}
	l, lp := d.proveLabel(name)
	nmp, err := d.tree.GetNonMembershipProof(ctx, l, epoch)
	if err != nil {
		return nil, err
	}
	return &protocol.AbsenceProof{Epoch: epoch, Name: name, VRF: lp, NonMembership: nmp}, nil
}

// KeyHistory proves the versions of name selected by params, as of the
// latest epoch.
func (d *Directory) KeyHistory(ctx context.Context, name string,
	params azks.HistoryParams) (*protocol.HistoryProof, error) {
	if len(name) == 0 {
		return nil, protocol.ErrMalformedRequest
	}
	l, lp := d.proveLabel(name)
	hp, err := d.tree.GetHistoryProof(ctx, l, params, d.tree.LatestEpoch())
	if errors.Is(err, azks.ErrLabelNotFound) {
		return nil, protocol.ErrNameNotFound
	} else if err != nil {
		return nil, err
	}
	states, err := directorykv.ValueStates(d.db, name)
	if err != nil {
		return nil, fmt.Errorf("load value states of %q: %w", name, err)
	}
	byEpoch := make(map[uint64]*protocol.ValueState, len(states))
	for _, s := range states {
		byEpoch[s.Epoch] = s
	}
	p := &protocol.HistoryProof{Name: name, VRF: lp, Tree: hp}
	for _, v := range hp.Versions {
		s, ok := byEpoch[v.Epoch]
		if !ok {
			return nil, fmt.Errorf("no value state of %q at epoch %d", name, v.Epoch)
		}
		p.Updates = append(p.Updates, s.Update())
	}
	return p, nil
}

// Audit proves that the tree at end extends the tree at start.
func (d *Directory) Audit(ctx context.Context, start, end uint64) (*protocol.AuditProof, error) {
	ap, err := d.tree.GetAppendOnlyProof(ctx, start, end)
	if err != nil {
		return nil, err
	}
	p := &protocol.AuditProof{Proof: ap}
	if p.Start, err = d.EpochHash(ctx, start); err != nil {
		return nil, err
	}
	if p.End, err = d.EpochHash(ctx, end); err != nil {
		return nil, err
	}
	return p, nil
}
