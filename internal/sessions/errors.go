package sessions

import "errors"

var (
	// ErrNoWorkspace means a handler reached for session state on a request
	// that never passed through Manager.Middleware. It is a wiring bug.
	ErrNoWorkspace = errors.New("no session workspace on request: handler not mounted behind sessions middleware")

	// ErrStaleForm means the submitted form instance has been replaced.
	ErrStaleForm = errors.New("form instance is no longer active")
)
