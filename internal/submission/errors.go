package submission

import "errors"

// Flow usage errors. Validation and backend failures are not errors; they
// end up in the flow's View.
var (
	ErrInFlight     = errors.New("a submission is already in progress")
	ErrClosed       = errors.New("form is no longer active")
	ErrDiscarded    = errors.New("submission result discarded")
	ErrUnknownField = errors.New("unknown field")
)
