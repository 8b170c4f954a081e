package device

import (
	errs "github.com/matzehuels/tipscan/pkg/errors"
)

var (
	// ErrUnknownSite is returned when a hopping references a site that has
	// not been assigned a value.
	ErrUnknownSite = errs.New(errs.ErrCodeUnknownSite, "unknown site")

	// ErrLeadMismatch is returned by [Builder.AttachLead] when the lead does
	// not line up with any part of the scattering region.
	ErrLeadMismatch = errs.New(errs.ErrCodeLeadMismatch, "lead does not align with the scattering region")

	// ErrIncompleteModel is returned by [Builder.Finalize] when a site lacks
	// a value or a hopping has a missing endpoint.
	ErrIncompleteModel = errs.New(errs.ErrCodeIncompleteModel, "incomplete model")

	// ErrMissingParameter is returned when a value function declares a
	// parameter without default that the assignment does not provide.
	ErrMissingParameter = errs.New(errs.ErrCodeMissingParameter, "missing parameter")

	// ErrInvalidInput is returned for malformed operations such as
	// self-hoppings or values of the wrong kind.
	ErrInvalidInput = errs.New(errs.ErrCodeInvalidInput, "invalid input")
)
