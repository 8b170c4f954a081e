package transport

import (
	"context"

	"github.com/matzehuels/tipscan/pkg/device"
	errs "github.com/matzehuels/tipscan/pkg/errors"
)

// Solver computes scattering matrices for a finalized model.
type Solver interface {
	Solve(ctx context.Context, m *device.Model, energy float64, p device.Params) (SMatrix, error)
}

// SMatrix is a solved scattering problem.
type SMatrix interface {
	// NumLeads returns the number of leads of the solved model.
	NumLeads() int
	// Transmission returns the non-negative transmission from lead from
	// into lead to.
	Transmission(to, from int) (float64, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, m *device.Model, energy float64, p device.Params) (SMatrix, error)

// Solve calls f.
func (f SolverFunc) Solve(ctx context.Context, m *device.Model, energy float64, p device.Params) (SMatrix, error) {
	return f(ctx, m, energy, p)
}

// Transmission solves m and reads the transmission from lead from into
// lead to. Any failure of the solver or of reading the result is returned
// with code SOLVER_FAILURE; the original error stays in the chain.
func Transmission(ctx context.Context, s Solver, m *device.Model, energy float64, p device.Params, to, from int) (float64, error) {
	sm, err := s.Solve(ctx, m, energy, p)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeSolverFailure, err, "solve at E=%g", energy)
	}
	t, err := sm.Transmission(to, from)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeSolverFailure, err, "transmission %d->%d", from, to)
	}
	return t, nil
}
