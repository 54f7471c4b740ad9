package domain

import (
	"gonum.org/v1/gonum/floats"
)

// ParameterSpace is a box-constrained set of parameters: every scalar entry
// of every component lies in [Min, Max].
type ParameterSpace struct {
	Type ParameterType
	Min  float64
	Max  float64
}

// Contains reports whether every entry of mu lies inside the box.
func (s ParameterSpace) Contains(mu Parameter) bool {
	if err := s.Type.Check(mu); err != nil {
		return false
	}
	for _, name := range s.Type.ComponentNames() {
		for _, v := range mu.Component(name) {
			if v < s.Min || v > s.Max {
				return false
			}
		}
	}
	return true
}

// SampleUniformly returns the cartesian product of n-point grids over every
// scalar entry of the parameter type, n^TotalSize() parameters in total.
// Components are ordered by name and entries row-major within a component;
// the last entry varies fastest. The ordering is deterministic so that
// greedy tie-breaks and test runs are reproducible.
func (s ParameterSpace) SampleUniformly(n int) []Parameter {
	if n < 1 {
		return nil
	}
	steps := make([]float64, n)
	if n == 1 {
		steps[0] = s.Min
	} else {
		floats.Span(steps, s.Min, s.Max)
	}

	names := s.Type.ComponentNames()
	total := s.Type.TotalSize()
	counters := make([]int, total)
	count := 1
	for i := 0; i < total; i++ {
		count *= n
	}

	samples := make([]Parameter, 0, count)
	for {
		values := make(map[string][]float64, len(names))
		offset := 0
		for _, name := range names {
			size := s.Type[name].Size()
			data := make([]float64, size)
			for i := 0; i < size; i++ {
				data[i] = steps[counters[offset+i]]
			}
			values[name] = data
			offset += size
		}
		mu, err := NewParameter(s.Type, values)
		if err != nil {
			// The values are built from the type itself; a mismatch here
			// cannot happen.
			panic(err)
		}
		samples = append(samples, mu)

		k := total - 1
		for k >= 0 {
			counters[k]++
			if counters[k] < n {
				break
			}
			counters[k] = 0
			k--
		}
		if k < 0 {
			break
		}
	}
	return samples
}
