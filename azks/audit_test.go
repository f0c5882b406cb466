package azks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendOnlyProofs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 30, 5, 40)
	latest := f.a.LatestEpoch()
	for start := uint64(0); start < latest; start++ {
		for end := start + 1; end <= latest; end++ {
			p, err := f.a.GetAppendOnlyProof(ctx, start, end)
			require.NoError(t, err)
			require.NoError(t, f.v.VerifyAppendOnly(f.roots[start], f.roots[end], p),
				"%d -> %d", start, end)
		}
	}

	p, err := f.a.GetAppendOnlyProof(ctx, 0, 1)
	require.NoError(t, err)
	require.Empty(t, p.Unchanged)
	require.Empty(t, p.Updated)
	require.Len(t, p.Inserted, len(f.elems[0]))

	// the updates of batch 2 show up as updated leaves
	p, err = f.a.GetAppendOnlyProof(ctx, 1, 2)
	require.NoError(t, err)
	require.NotEmpty(t, p.Updated)
	require.NotEmpty(t, p.Unchanged)
	require.Equal(t, len(f.elems[1]), len(p.Updated)+len(p.Inserted))
}

func TestAppendOnlyOmissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 31, 3, 30)
	p, err := f.a.GetAppendOnlyProof(ctx, 1, 3)
	require.NoError(t, err)
	require.NotEmpty(t, p.Inserted)
	require.NotEmpty(t, p.Updated)
	start, end := f.roots[1], f.roots[3]

	forged := *p
	forged.Inserted = p.Inserted[1:]
	require.ErrorIs(t, f.v.VerifyAppendOnly(start, end, &forged), ErrRootMismatch)

	forged = *p
	forged.Updated = p.Updated[1:]
	require.Error(t, f.v.VerifyAppendOnly(start, end, &forged))

	// an update disguised as an insertion
	forged = *p
	forged.Updated = p.Updated[1:]
	forged.Inserted = append([]ChildRef{{Label: p.Updated[0].Label, Hash: p.Updated[0].New}}, p.Inserted...)
	require.ErrorIs(t, f.v.VerifyAppendOnly(start, end, &forged), ErrRootMismatch)

	// a rewritten old value
	forged = *p
	forged.Updated = append([]UpdatedLeaf(nil), p.Updated...)
	forged.Updated[0].Old = forged.Updated[0].New
	require.ErrorIs(t, f.v.VerifyAppendOnly(start, end, &forged), ErrRootMismatch)

	forged = *p
	forged.Inserted = append(append([]ChildRef(nil), p.Inserted...), p.Inserted[0])
	require.ErrorIs(t, f.v.VerifyAppendOnly(start, end, &forged), ErrMalformedProof)

	// an unchanged subtree replaced by its leaves' parent
	if len(p.Unchanged) > 0 {
		forged = *p
		forged.Unchanged = append(append([]ChildRef(nil), p.Unchanged...), ChildRef{
			Label: p.Unchanged[0].Label.Prefix(p.Unchanged[0].Label.Len - 1),
			Hash:  p.Unchanged[0].Hash,
		})
		require.ErrorIs(t, f.v.VerifyAppendOnly(start, end, &forged), ErrMalformedProof)
	}

	require.ErrorIs(t, f.v.VerifyAppendOnly(end, start, p), ErrRootMismatch)
	require.ErrorIs(t, f.v.VerifyAppendOnly(start, end, nil), ErrMalformedProof)
}

func TestAppendOnlyRequests(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 32, 2, 10)
	_, err := f.a.GetAppendOnlyProof(ctx, 2, 2)
	require.ErrorIs(t, err, ErrBadEpochRange)
	_, err = f.a.GetAppendOnlyProof(ctx, 2, 1)
	require.ErrorIs(t, err, ErrBadEpochRange)
	_, err = f.a.GetAppendOnlyProof(ctx, 1, 3)
	require.ErrorIs(t, err, ErrEpochNotFound)
	require.Equal(t, ProofError, KindOf(err))
}
