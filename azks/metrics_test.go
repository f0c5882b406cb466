package azks

import (
	"context"
	"math/rand"
	"testing"

	"github.com/coniks-sys/akd-go/label"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := PrometheusMetrics("akd", reg)
	a := NewTestAzks(t, NewTestDB(t), testConfig(), WithMetrics(m))
	r := rand.New(rand.NewSource(40))

	elems := RandomElements(r, 10, label.MaxBits)
	_, err := a.BatchInsert(ctx, elems, DirectoryMode)
	require.NoError(t, err)
	_, err = a.BatchInsert(ctx, RandomElements(r, 5, label.MaxBits), DirectoryMode)
	require.NoError(t, err)
	_, err = a.BatchInsert(ctx, nil, DirectoryMode)
	require.Error(t, err)

	require.Equal(t, float64(2), testutil.ToFloat64(m.Epoch))
	require.Equal(t, float64(a.NumNodes()), testutil.ToFloat64(m.Nodes))
	require.Equal(t, float64(15), testutil.ToFloat64(m.InsertedElements))
	require.Equal(t, float64(1), testutil.ToFloat64(m.FailedInsertions))
	require.Greater(t, testutil.ToFloat64(m.NodesWritten), float64(15))

	_, err = a.GetMembershipProof(ctx, elems[0].Label, 2)
	require.NoError(t, err)
	_, err = a.GetAppendOnlyProof(ctx, 1, 2)
	require.NoError(t, err)
	require.Equal(t, float64(1), testutil.ToFloat64(m.Proofs.WithLabelValues(proofMembership)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Proofs.WithLabelValues(proofAppendOnly)))

	// registered under the namespace
	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["akd_azks_epoch"])
	require.True(t, names["akd_azks_inserted_elements_total"])
}

func TestNopMetricsDoNotRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	PrometheusMetrics("akd", reg)
	// a second set on the same registry would panic, a nop set does not touch it
	require.NotPanics(t, func() { NopMetrics() })
	require.Panics(t, func() { PrometheusMetrics("akd", reg) })
}
