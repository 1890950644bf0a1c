package kern

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tmcnulty/emucal/utils"
)

var (
	// ErrNoKnots indicates a knot layout with no time or no angle knots.
	ErrNoKnots = errors.New("kern: knot layout needs at least one time and one angle knot")

	// ErrQueryShape indicates query coordinate slices of different lengths.
	ErrQueryShape = errors.New("kern: query coordinate slices differ in length")

	// ErrDegenerate indicates a grid basis whose Gram diagonal is zero, so
	// no normalization scale exists.
	ErrDegenerate = errors.New("kern: discrepancy basis is identically zero on the grid")
)

// AngBandwidth is the angular kernel's standard deviation: one-eighth of a
// revolution.
const AngBandwidth = 2 * math.Pi / 8

// Knots is a fixed layout of radial-basis knots over time x angle. Time
// knots span the experiment time range; angle knots are equally spaced over
// one full revolution. One basis column corresponds to each (time, angle)
// knot pair, ordered time-major: column it*len(Phi)+ip.
type Knots struct {
	Time   []float64
	Phi    []float64
	kernel Kernel
}

// NewKnots lays out nt time knots spanning [t0, t1] and nphi angle knots at
// multiples of 2*pi/nphi. The time bandwidth is one quarter of the knot
// spacing (one quarter of the span when nt == 1); the angular bandwidth is
// AngBandwidth.
func NewKnots(t0, t1 float64, nt, nphi int) (*Knots, error) {
	if nt < 1 || nphi < 1 {
		return nil, fmt.Errorf("%w: %d x %d", ErrNoKnots, nt, nphi)
	}
	spacing := t1 - t0
	if nt > 1 {
		spacing = (t1 - t0) / float64(nt-1)
	}
	phi := make([]float64, nphi)
	for i := range phi {
		phi[i] = 2 * math.Pi * float64(i) / float64(nphi)
	}
	return &Knots{
		Time:   utils.Linspace(t0, t1, nt),
		Phi:    phi,
		kernel: NewSeparable(spacing/4, AngBandwidth),
	}, nil
}

// Len is the number of basis columns.
func (k *Knots) Len() int { return len(k.Time) * len(k.Phi) }

// Design evaluates one basis column per knot at the query points, without
// normalization.
func (k *Knots) Design(time, phi []float64) (*mat.Dense, error) {
	if len(time) != len(phi) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrQueryShape, len(time), len(phi))
	}
	out := mat.NewDense(len(time), k.Len(), nil)
	for it, tk := range k.Time {
		for ip, pk := range k.Phi {
			col := it*len(k.Phi) + ip
			for i := range time {
				out.Set(i, col, k.kernel.Eval(time[i]-tk, AngularDist(phi[i], pk)))
			}
		}
	}
	return out, nil
}

// Basis couples the simulator-grid discrepancy design with the scale that
// normalizes the process to approximately unit marginal variance. The scale
// is the square root of the largest diagonal entry of the grid design's Gram
// matrix; both the grid design and every experiment design share it.
type Basis struct {
	Knots *Knots
	Sim   *mat.Dense // neta x Knots.Len(), normalized
	Scale float64
}

// NewBasis evaluates the knots on the full simulator (time x angle) grid,
// flattened time-fastest to match the ensemble layout, and fixes the
// normalization scale.
func NewBasis(knots *Knots, time, phi []float64) (*Basis, error) {
	neta := len(time) * len(phi)
	qt := make([]float64, neta)
	qp := make([]float64, neta)
	for iphi, pv := range phi {
		for it, tv := range time {
			qt[iphi*len(time)+it] = tv
			qp[iphi*len(time)+it] = pv
		}
	}
	d, err := knots.Design(qt, qp)
	if err != nil {
		return nil, err
	}

	// scale = sqrt(max_j (DᵀD)_jj) = sqrt(max_j ||D_j||²)
	maxDiag := 0.0
	col := make([]float64, neta)
	for j := 0; j < knots.Len(); j++ {
		mat.Col(col, j, d)
		if g := floats.Dot(col, col); g > maxDiag {
			maxDiag = g
		}
	}
	if maxDiag == 0 {
		return nil, ErrDegenerate
	}
	scale := math.Sqrt(maxDiag)
	d.Scale(1/scale, d)
	return &Basis{Knots: knots, Sim: d, Scale: scale}, nil
}

// At evaluates the normalized discrepancy design at an experiment's sample
// points.
func (b *Basis) At(time, phi []float64) (*mat.Dense, error) {
	d, err := b.Knots.Design(time, phi)
	if err != nil {
		return nil, err
	}
	d.Scale(1/b.Scale, d)
	return d, nil
}
