package reducedbasis

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// rejectTol is the relative residual norm below which a new snapshot counts
// as numerically linearly dependent on the current basis.
const rejectTol = 1e-12

// Basis is an ordered, growing set of full-order coefficient vectors kept
// mutually orthonormal under a fixed inner product. It has exactly one
// writer, the greedy loop; reads and extensions never interleave.
type Basis struct {
	product *mat.SymDense // nil means Euclidean
	vectors []*mat.VecDense
	dim     int
}

// NewBasis creates an empty basis over full-order dimension dim,
// orthonormal under product (nil for the Euclidean inner product).
func NewBasis(dim int, product *mat.SymDense) *Basis {
	return &Basis{product: product, dim: dim}
}

// Len returns the number of basis vectors.
func (b *Basis) Len() int { return len(b.vectors) }

// Dim returns the full-order dimension.
func (b *Basis) Dim() int { return b.dim }

// Vector returns the i-th basis vector. Callers must not mutate it.
func (b *Basis) Vector(i int) *mat.VecDense { return b.vectors[i] }

// Matrix returns a dim×Len copy of the basis, vectors as columns.
func (b *Basis) Matrix() *mat.Dense {
	m := mat.NewDense(b.dim, len(b.vectors), nil)
	for j, v := range b.vectors {
		for i := 0; i < b.dim; i++ {
			m.Set(i, j, v.AtVec(i))
		}
	}
	return m
}

// InnerProduct computes ⟨u, v⟩ under the basis product.
func (b *Basis) InnerProduct(u, v mat.Vector) float64 {
	if b.product == nil {
		return mat.Dot(u, v)
	}
	return mat.Inner(u, b.product, v)
}

// Norm computes the product-induced norm of v.
func (b *Basis) Norm(v mat.Vector) float64 {
	return math.Sqrt(math.Max(b.InnerProduct(v, v), 0))
}

// Extend orthogonalizes v against every basis vector by modified
// Gram-Schmidt with one re-orthogonalization pass, normalizes the residual
// and appends it. When the residual norm falls below rejectTol relative to
// the original norm the snapshot is numerically dependent on the basis: the
// basis is left unchanged and Extend reports false.
func (b *Basis) Extend(v *mat.VecDense) bool {
	w := mat.NewVecDense(b.dim, nil)
	w.CopyVec(v)
	norm0 := b.Norm(w)
	if norm0 == 0 {
		return false
	}

	for pass := 0; pass < 2; pass++ {
		for _, q := range b.vectors {
			c := b.InnerProduct(q, w)
			w.AddScaledVec(w, -c, q)
		}
	}

	norm := b.Norm(w)
	if norm <= rejectTol*norm0 {
		return false
	}
	w.ScaleVec(1/norm, w)
	b.vectors = append(b.vectors, w)
	return true
}
