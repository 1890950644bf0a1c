// Package calib assembles the calibration preprocessing pipeline: it binds
// each experiment's observations to the shared simulator summary
// (interpolated mean and basis, discrepancy design) and estimates the
// per-experiment loadings.
package calib

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/tmcnulty/emucal/basis"
	"github.com/tmcnulty/emucal/fit"
	"github.com/tmcnulty/emucal/interp"
	"github.com/tmcnulty/emucal/kern"
)

// ErrExperimentShape indicates observed values and sample coordinates of
// different lengths, or an experiment with no observations.
var ErrExperimentShape = errors.New("calib: observation and coordinate lengths do not match")

// Experiment is one physical experiment's observed data, bound to a shared
// simulator summary. The summary is referenced read-only; binding and
// fitting only write to the experiment itself.
type Experiment struct {
	Name string
	X    []float64 // experiment-level input coordinates
	Y    []float64 // observed values
	Time []float64 // sample times, one per observation
	Phi  []float64 // sample angles, one per observation

	// Set by Bind.
	YMean []float64  // interpolated simulator mean at the sample points
	K     *mat.Dense // n x peta interpolated basis
	D     *mat.Dense // n x pv discrepancy design
	Y0    []float64  // centered and scaled observations

	// Set by Fit.
	Result *fit.Result
}

// Bind interpolates the summary's mean and basis fields onto the
// experiment's sample points, attaches the discrepancy design, and centers
// and scales the observations. Sample points must lie inside the summary's
// time and angle ranges.
func (e *Experiment) Bind(sum *basis.Summary, db *kern.Basis) error {
	n := len(e.Y)
	if n == 0 || len(e.Time) != n || len(e.Phi) != n {
		return fmt.Errorf("%w: %d observations, %d times, %d angles",
			ErrExperimentShape, n, len(e.Time), len(e.Phi))
	}

	grid, err := interp.NewGrid(sum.Time, sum.Phi, sum.MeanField())
	if err != nil {
		return fmt.Errorf("mean field: %w", err)
	}
	if e.YMean, err = grid.AtAll(e.Time, e.Phi); err != nil {
		return fmt.Errorf("mean field: %w", err)
	}

	e.K = mat.NewDense(n, sum.PEta, nil)
	for j := 0; j < sum.PEta; j++ {
		grid, err := interp.NewGrid(sum.Time, sum.Phi, sum.BasisField(j))
		if err != nil {
			return fmt.Errorf("basis component %d: %w", j, err)
		}
		vals, err := grid.AtAll(e.Time, e.Phi)
		if err != nil {
			return fmt.Errorf("basis component %d: %w", j, err)
		}
		e.K.SetCol(j, vals)
	}

	if e.D, err = db.At(e.Time, e.Phi); err != nil {
		return fmt.Errorf("discrepancy design: %w", err)
	}

	// y0 = (y - mean) / scale, with the scale interpolated per point under
	// columnwise standardization.
	sd := make([]float64, n)
	if f := sum.SDField(); f != nil {
		grid, err := interp.NewGrid(sum.Time, sum.Phi, f)
		if err != nil {
			return fmt.Errorf("scale field: %w", err)
		}
		if sd, err = grid.AtAll(e.Time, e.Phi); err != nil {
			return fmt.Errorf("scale field: %w", err)
		}
	} else {
		for i := range sd {
			sd[i] = sum.SD
		}
	}
	e.Y0 = make([]float64, n)
	for i := range e.Y0 {
		e.Y0[i] = (e.Y[i] - e.YMean[i]) / sd[i]
	}
	return nil
}

// Fit solves the ridge-regularized system for this experiment. Bind must
// have run first.
func (e *Experiment) Fit(ridge float64) error {
	r, err := fit.Solve(e.D, e.K, e.Y0, ridge)
	if err != nil {
		return err
	}
	e.Result = r
	return nil
}

// FitAll binds and fits every experiment against the shared summary and
// discrepancy basis. Experiments are independent, so they run in parallel on
// up to workers goroutines (NumCPU when workers <= 0). The first failure
// aborts the run, annotated with the failing experiment.
func FitAll(exps []*Experiment, sum *basis.Summary, db *kern.Basis, ridge float64, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, e := range exps {
		i, e := i, e
		g.Go(func() error {
			if err := e.Bind(sum, db); err != nil {
				return fmt.Errorf("experiment %d (%s): bind: %w", i, e.Name, err)
			}
			if err := e.Fit(ridge); err != nil {
				return fmt.Errorf("experiment %d (%s): fit: %w", i, e.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
