package reducedbasis

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func randomVec(rng *rand.Rand, dim int) *mat.VecDense {
	v := mat.NewVecDense(dim, nil)
	for i := 0; i < dim; i++ {
		v.SetVec(i, rng.NormFloat64())
	}
	return v
}

func assertOrthonormal(t *testing.T, b *Basis) {
	t.Helper()
	for i := 0; i < b.Len(); i++ {
		for j := 0; j < b.Len(); j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, b.InnerProduct(b.Vector(i), b.Vector(j)), 1e-10)
		}
	}
}

func TestExtendKeepsEuclideanOrthonormality(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b := NewBasis(20, nil)
	for k := 0; k < 5; k++ {
		require.True(t, b.Extend(randomVec(rng, 20)))
	}
	require.Equal(t, 5, b.Len())
	assertOrthonormal(t, b)
}

func TestExtendKeepsProductOrthonormality(t *testing.T) {
	dim := 12
	product := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		product.SetSym(i, i, 1+float64(i)/10)
	}
	rng := rand.New(rand.NewSource(2))
	b := NewBasis(dim, product)
	for k := 0; k < 4; k++ {
		require.True(t, b.Extend(randomVec(rng, dim)))
	}
	assertOrthonormal(t, b)

	// Bᵗ·P·B must be the identity.
	bm := b.Matrix()
	var pb, gram mat.Dense
	pb.Mul(product, bm)
	gram.Mul(bm.T(), &pb)
	for i := 0; i < b.Len(); i++ {
		for j := 0; j < b.Len(); j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, gram.At(i, j), 1e-10)
		}
	}
}

func TestExtendRejectsDuplicate(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	b := NewBasis(10, nil)
	v := randomVec(rng, 10)
	require.True(t, b.Extend(v))

	// The first basis vector itself has zero residual after
	// orthogonalization and must be rejected without touching the basis.
	dup := mat.NewVecDense(10, nil)
	dup.CopyVec(b.Vector(0))
	assert.False(t, b.Extend(dup))
	assert.Equal(t, 1, b.Len())
}

func TestExtendRejectsLinearCombination(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	b := NewBasis(10, nil)
	require.True(t, b.Extend(randomVec(rng, 10)))
	require.True(t, b.Extend(randomVec(rng, 10)))

	combo := mat.NewVecDense(10, nil)
	combo.AddScaledVec(combo, 2.5, b.Vector(0))
	combo.AddScaledVec(combo, -0.5, b.Vector(1))
	assert.False(t, b.Extend(combo))
	assert.Equal(t, 2, b.Len())
}

func TestExtendRejectsZeroVector(t *testing.T) {
	b := NewBasis(5, nil)
	assert.False(t, b.Extend(mat.NewVecDense(5, nil)))
	assert.Equal(t, 0, b.Len())
}
