// Package device builds open quantum systems on a square lattice: a finite
// scattering region plus semi-infinite leads, with per-site and per-bond
// values that are either constants or functions of a parameter assignment.
//
// # Overview
//
// A [Builder] accepts an ordered sequence of assignment operations. Every
// operation expands a pattern into concrete sites or hoppings and binds a
// [Value] to each of them; a later assignment to the same site or hopping
// replaces the earlier one (last write wins over operation order):
//
//	lat := lattice.NewSquare("a", 1)
//	b := device.NewBuilder()
//	_ = b.SetSites(device.Column(lat, -1, -10, 11), device.Const(0))
//	_ = b.SetSites(device.Sites(lat.Site(0, 0)), device.OnsiteFunc("Pot", pot, device.Required("Vg")))
//	_ = b.SetSites(device.Column(lat, 1, -10, 11), device.Const(0))
//	_ = b.SetHoppings(device.Neighbors(lat), device.Const(-1))
//
// [Neighbors] only connects sites that are present when the operation runs;
// explicit [Pair] assignments override values set by a neighbour pattern.
//
// # Leads
//
// A [Lead] is a translation-invariant template: one unit cell of sites and
// the hoppings inside the cell and towards the next cell. [Builder.AttachLead]
// places the lead just outside the scattering region along its period,
// filling in any lead sites missing between the region and the lead, and
// returns the lead index (attachment order, from 0). [Lead.Reversed] yields
// the opposite contact from the same template.
//
// # Finalization
//
// [Builder.Finalize] validates the graph and freezes it into a [Model]:
// sites and leads receive stable indices and the structure becomes
// read-only. Values stay unevaluated until a solver asks for them through
// [Model.Hamiltonian] and [Model.LeadBlocks], so one Model serves a whole
// parameter sweep.
//
// # Errors
//
// Failures carry codes from the tipscan errors package:
//   - [ErrUnknownSite]: a hopping references sites that were never assigned
//   - [ErrLeadMismatch]: a lead does not line up with the scattering region
//   - [ErrIncompleteModel]: finalize-time validation failed
//   - [ErrMissingParameter]: a value function needs a parameter nobody set
//
// # Concurrency
//
// Builder and Lead are not safe for concurrent use. A Model is immutable and
// may be shared by any number of goroutines.
package device
