package design

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/samplemv"
)

// LatinHypercube draws an n x p space-filling design on the unit hypercube:
// every column has exactly one sample in each of the n equal-width strata.
func LatinHypercube(n, p int, src rand.Source) *mat.Dense {
	lhc := samplemv.LatinHypercube{
		Q:   distmv.NewUnitUniform(p, src),
		Src: src,
	}
	batch := mat.NewDense(n, p, nil)
	lhc.Sample(batch)
	return batch
}
