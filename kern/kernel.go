// Package kern builds the fixed radial-basis-function expansion that models
// the spatial discrepancy between simulator output and reality over the
// (time, angle) domain.
package kern

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	sep *Separable
	_   Kernel = sep // Check that Separable respects the Kernel interface.
)

// Kernel scores the affinity between a knot and a query location from their
// time separation and their wrap-aware angular separation.
type Kernel interface {
	Eval(dt, dphi float64) float64
}

// Separable is the product of a Gaussian density in time distance and a
// Gaussian density in angular distance.
type Separable struct {
	time distuv.Normal
	ang  distuv.Normal
}

func NewSeparable(timeSD, angSD float64) *Separable {
	return &Separable{
		time: distuv.Normal{Mu: 0, Sigma: timeSD},
		ang:  distuv.Normal{Mu: 0, Sigma: angSD},
	}
}

func (k *Separable) Eval(dt, dphi float64) float64 {
	return k.time.Prob(dt) * k.ang.Prob(dphi)
}

// AngularDist is the shortest-arc distance between two angles on the unit
// circle. Symmetric, range [0, pi].
func AngularDist(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}
