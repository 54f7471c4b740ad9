package discretizer

import (
	"math"

	"thermalblock-rb/internal/domain"
)

// DiffusionComponent is the parameter component name carrying the per-block
// diffusion values.
const DiffusionComponent = "diffusion"

// ThermalBlockProblem describes diffusion on the unit square partitioned
// into NX×NY axis-aligned blocks. The diffusion coefficient is constant on
// each block and is read from the "diffusion" parameter component, an
// NY×NX array stored with row 0 at the top of the domain.
type ThermalBlockProblem struct {
	NX, NY             int
	ParamMin, ParamMax float64
}

func NewThermalBlockProblem(nx, ny int, paramMin, paramMax float64) *ThermalBlockProblem {
	return &ThermalBlockProblem{NX: nx, NY: ny, ParamMin: paramMin, ParamMax: paramMax}
}

// ParameterType returns {"diffusion": NY×NX}.
func (p *ThermalBlockProblem) ParameterType() domain.ParameterType {
	return domain.ParameterType{DiffusionComponent: {Rows: p.NY, Cols: p.NX}}
}

// ParameterSpace returns the admissible box for the diffusion values.
func (p *ThermalBlockProblem) ParameterSpace() domain.ParameterSpace {
	return domain.ParameterSpace{Type: p.ParameterType(), Min: p.ParamMin, Max: p.ParamMax}
}

// NumBlocks returns the number of affine operator components.
func (p *ThermalBlockProblem) NumBlocks() int { return p.NX * p.NY }

// BlockIndex maps block coordinates to the affine component index, x outer
// and y inner, matching the order BlockFunctional pairs are emitted in.
func (p *ThermalBlockProblem) BlockIndex(x, y int) int { return x*p.NY + y }

// BlockFunctional returns the weight functional for block (x, y), with x
// counted left to right and y bottom to top. The parameter array stores its
// top row first, so the row index is flipped: block (x, y) reads entry
// (NY-1-y, x). Getting this flip wrong feeds the wrong block the wrong
// diffusion value.
func (p *ThermalBlockProblem) BlockFunctional(x, y int) domain.Functional {
	return domain.Projection(DiffusionComponent, p.NY-1-y, x)
}

// BlockOf returns the block coordinates containing physical point (px, py).
func (p *ThermalBlockProblem) BlockOf(px, py float64) (x, y int) {
	x = int(px * float64(p.NX))
	if x >= p.NX {
		x = p.NX - 1
	}
	y = int(py * float64(p.NY))
	if y >= p.NY {
		y = p.NY - 1
	}
	return x, y
}

// CoercivityLowerBound returns the min-theta coercivity bound with respect
// to the energy product assembled at mu ≡ 1: every theta is a plain
// diffusion read and the components sum to the product operator, so the
// smallest diffusion entry bounds the coercivity constant from below.
func (p *ThermalBlockProblem) CoercivityLowerBound() domain.Functional {
	return domain.Generic(func(mu domain.Parameter) float64 {
		lb := math.Inf(1)
		for _, v := range mu.Component(DiffusionComponent) {
			if v < lb {
				lb = v
			}
		}
		return lb
	})
}
