// Package transport defines the boundary between a finalized device model
// and the numerical scattering solver, and ships a reference solver.
//
// A [Solver] turns (model, energy, parameters) into an [SMatrix], from which
// the transmission between two lead indices is read. Solvers must be pure:
// the same inputs give bit-identical results and the model is never
// modified, so one model may be solved from many goroutines at once.
//
// [Reference] computes transmission from retarded Green's functions. Lead
// self-energies of leads whose cells couple through a uniform hopping come
// from the closed-form Green's functions of their transverse modes, which
// stay exact at the band centre. Other leads fall back to the decimation
// algorithm of Lopez Sancho et al., checked against the Dyson equation of
// the lead. Transmission follows from the Caroli formula
// T = Tr[Γ_to G Γ_from G†]. The solver targets the small nearest-neighbour
// devices built by this module and makes no attempt at solver-side
// performance beyond a banded elimination.
package transport
