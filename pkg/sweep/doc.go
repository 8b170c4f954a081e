// Package sweep drives parameter sweeps over a finalized device model.
//
// A [Config] describes one transmission curve: a coupling strength held
// fixed, an independent variable swept over a range, and any further fixed
// parameters. [Driver.Run] evaluates every sample of every configuration
// against a transport solver and returns one [Series] per configuration, in
// configuration order and sample order regardless of how many workers ran.
//
// # Sampling
//
// Two policies exist and are kept distinct:
//
//   - Points > 0: Points evenly spaced samples over the closed range
//     [Low, High] (see [Linspace]).
//   - Divisor > 0: every k/Divisor for integer k from trunc(Low*Divisor) up
//     to but excluding trunc(High*Divisor) (see [Stepped]). High is never
//     sampled.
//
// Points takes precedence when both are set.
//
// # Parameters
//
// Each sample's assignment is built from, in increasing precedence: the
// model's declared defaults, Config.Fixed, the coupling strength and the
// swept variable.
//
// # Failures and cancellation
//
// By default the first solver failure cancels the run and is returned as
// an error with code SOLVER_FAILURE. With [Driver.Partial] set, a failure
// only stops its own configuration: the series keeps the samples before the
// failing one, records the error, and Run returns the result together with
// the joined failures.
//
// Cancelling the context is not an error. Run stops scheduling, waits for
// in-flight points and returns every series truncated to its longest
// completed prefix with [Result.Interrupted] set.
package sweep
