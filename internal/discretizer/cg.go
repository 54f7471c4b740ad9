package discretizer

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"thermalblock-rb/internal/domain"
)

// Discretization bundles the assembled full-order data handed to the
// reduced-basis layer: the affine operator, the right-hand side, the named
// inner products and the problem's parameter space.
type Discretization struct {
	Problem      *ThermalBlockProblem
	Operator     *domain.AffineOperator
	RHS          *domain.AffineVector
	Products     map[string]*mat.SymDense
	Space        domain.ParameterSpace
	CoercivityLB domain.Functional
	GridN        int
	Dim          int
}

// Local P1 stiffness on a right isosceles triangle with the right angle at
// vertex 0; independent of the mesh width in 2D.
var localStiffness = [3][3]float64{
	{1, -0.5, -0.5},
	{-0.5, 0.5, 0},
	{-0.5, 0, 0.5},
}

// DiscretizeEllipticCG assembles the thermal block problem with linear
// finite elements on a structured n×n square mesh, each cell split into two
// triangles, with homogeneous Dirichlet boundary conditions eliminated.
// Each block of the partition yields one stiffness component; the right-hand
// side is the load vector of the constant source f ≡ 1. The products map
// carries "l2" (mass matrix) and "h1" (stiffness at mu ≡ 1, the energy
// product). n must resolve the block partition exactly.
func DiscretizeEllipticCG(p *ThermalBlockProblem, n int, logger *zap.Logger) (*Discretization, error) {
	if n < 2 {
		return nil, fmt.Errorf("discretizer: grid n=%d too coarse", n)
	}
	if n%p.NX != 0 || n%p.NY != 0 {
		return nil, fmt.Errorf("discretizer: grid n=%d does not resolve %dx%d blocks", n, p.NX, p.NY)
	}

	h := 1.0 / float64(n)
	dim := (n - 1) * (n - 1)

	// Interior vertex numbering, bottom row first.
	index := func(i, j int) int {
		if i < 1 || i > n-1 || j < 1 || j > n-1 {
			return -1
		}
		return (j-1)*(n-1) + (i - 1)
	}

	components := make([]*mat.Dense, p.NumBlocks())
	functionals := make([]domain.Functional, p.NumBlocks())
	for x := 0; x < p.NX; x++ {
		for y := 0; y < p.NY; y++ {
			q := p.BlockIndex(x, y)
			components[q] = mat.NewDense(dim, dim, nil)
			functionals[q] = p.BlockFunctional(x, y)
		}
	}
	mass := mat.NewSymDense(dim, nil)
	load := mat.NewVecDense(dim, nil)

	// Scatter one triangle's local matrices into the global ones, dropping
	// rows and columns of eliminated boundary vertices.
	scatter := func(stiff *mat.Dense, verts [3][2]int) {
		var idx [3]int
		for v := 0; v < 3; v++ {
			idx[v] = index(verts[v][0], verts[v][1])
		}
		area := h * h / 2
		for a := 0; a < 3; a++ {
			if idx[a] < 0 {
				continue
			}
			load.SetVec(idx[a], load.AtVec(idx[a])+area/3)
			for b := 0; b < 3; b++ {
				if idx[b] < 0 {
					continue
				}
				stiff.Set(idx[a], idx[b], stiff.At(idx[a], idx[b])+localStiffness[a][b])
				m := area / 12
				if a == b {
					m *= 2
				}
				if idx[a] <= idx[b] {
					mass.SetSym(idx[a], idx[b], mass.At(idx[a], idx[b])+m)
				}
			}
		}
	}

	for cy := 0; cy < n; cy++ {
		for cx := 0; cx < n; cx++ {
			bx, by := p.BlockOf((float64(cx)+0.5)*h, (float64(cy)+0.5)*h)
			stiff := components[p.BlockIndex(bx, by)]
			// Lower-left triangle, right angle at (cx, cy).
			scatter(stiff, [3][2]int{{cx, cy}, {cx + 1, cy}, {cx, cy + 1}})
			// Upper-right triangle, right angle at (cx+1, cy+1).
			scatter(stiff, [3][2]int{{cx + 1, cy + 1}, {cx, cy + 1}, {cx + 1, cy}})
		}
	}

	h1 := mat.NewSymDense(dim, nil)
	for _, c := range components {
		for i := 0; i < dim; i++ {
			for j := i; j < dim; j++ {
				h1.SetSym(i, j, h1.At(i, j)+c.At(i, j))
			}
		}
	}

	ptype := p.ParameterType()
	op, err := domain.NewAffineOperator(ptype, components, functionals, nil)
	if err != nil {
		return nil, err
	}
	rhs := domain.ConstantVector(ptype, load)

	logger.Info("Discretized thermal block problem",
		zap.Int("grid_n", n),
		zap.Int("dim", dim),
		zap.Int("operator_components", p.NumBlocks()))

	return &Discretization{
		Problem:      p,
		Operator:     op,
		RHS:          rhs,
		Products:     map[string]*mat.SymDense{"l2": mass, "h1": h1},
		Space:        p.ParameterSpace(),
		CoercivityLB: p.CoercivityLowerBound(),
		GridN:        n,
		Dim:          dim,
	}, nil
}

// SolutionGrid reshapes an interior coefficient vector into the (n-1)×(n-1)
// grid of vertex values, bottom row first, together with the vertex
// coordinates along one axis.
func (d *Discretization) SolutionGrid(u mat.Vector) ([]float64, [][]float64) {
	n := d.GridN
	h := 1.0 / float64(n)
	coords := make([]float64, n-1)
	grid := make([][]float64, n-1)
	for j := 1; j <= n-1; j++ {
		coords[j-1] = float64(j) * h
		row := make([]float64, n-1)
		for i := 1; i <= n-1; i++ {
			row[i-1] = u.AtVec((j-1)*(n-1) + (i - 1))
		}
		grid[j-1] = row
	}
	return coords, grid
}
