// Package emucal prepares simulation ensembles and experimental observations
// for Bayesian calibration of a computer model.
//
// The pipeline runs in one pass over fixed-size dense matrices:
//
//  1. design  — build a perturbed parameter matrix from a space-filling
//     design and evaluate the simulator at every row.
//  2. basis   — center and scale the ensemble outputs and reduce them to a
//     truncated empirical-orthogonal-function basis via SVD.
//  3. interp  — map the simulator mean and basis fields onto each
//     experiment's irregular (time, angle) sample locations.
//  4. kern    — build a fixed Gaussian radial-basis knot expansion for the
//     additive discrepancy between simulator and reality.
//  5. fit     — estimate per-experiment basis loadings by a ridge-regularized
//     least-squares solve.
//
// The calib package wires these together: it binds each experiment to the
// shared (immutable) ensemble summary and fits all experiments in parallel.
// The two result bundles, basis.Summary and the fitted calib.Experiment
// values, are the precomputed inputs of a downstream MCMC calibration.
package emucal
