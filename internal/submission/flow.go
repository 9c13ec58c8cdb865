// Package submission runs one predictor form: validation, the backend call
// and recording the result in the session history.
package submission

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"covidrisk/internal/metrics"
	"covidrisk/internal/models"
	"covidrisk/internal/predictor"
	"covidrisk/internal/validation"
)

// User-facing messages.
const (
	MessageInvalid        = "Please fill in all fields with valid numbers."
	MessageUnexpected     = "Unexpected response format."
	MessageGenericFailure = "Something went wrong. Please try again."
)

// State is a step of a submission attempt.
type State int

// Submission states
const (
	Idle State = iota
	Validating
	Invalid
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Invalid:
		return "invalid"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Predictor classifies validated input.
type Predictor interface {
	Predict(ctx context.Context, in models.PredictionInput) (models.Risk, error)
}

// Recorder stores successful predictions.
type Recorder interface {
	Add(in models.PredictionInput, risk models.Risk) models.PredictionRecord
}

// View is a snapshot of the form for rendering.
type View struct {
	ID      uuid.UUID
	Values  validation.FormInput
	Errors  validation.FieldErrors
	Loading bool
	Risk    models.Risk
	Message string
	State   State // Idle or Submitting
	Outcome State // result of the last attempt, Idle if none
}

// Result describes how one Submit call ended.
type Result struct {
	AttemptID uuid.UUID
	State     State
	Risk      models.Risk
	Message   string
	Errors    validation.FieldErrors
	Record    *models.PredictionRecord
}

// Flow is one predictor form instance. At most one attempt is in flight.
type Flow struct {
	id        uuid.UUID
	predictor Predictor
	store     Recorder

	mu      sync.Mutex
	values  validation.FormInput
	errors  validation.FieldErrors
	risk    models.Risk
	message string
	state   State
	outcome State
	attempt uuid.UUID
	closed  bool
}

// New creates an idle form instance.
func New(p Predictor, store Recorder) *Flow {
	return &Flow{
		id:        uuid.New(),
		predictor: p,
		store:     store,
	}
}

// ID identifies the form instance.
func (f *Flow) ID() uuid.UUID {
	return f.id
}

// Edit updates one raw field. While idle it also clears that field's error
// flag and the last message.
func (f *Flow) Edit(field, value string) error {
	if !validation.IsField(field) {
		return ErrUnknownField
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	f.values = f.values.With(field, value)
	if f.state != Submitting {
		f.errors = f.errors.Clear(field)
		f.message = ""
	}
	return nil
}

// Submit validates in and, when every field is valid, asks the predictor
// for a classification. The backend call runs to completion even if ctx
// ends; its result is then discarded and ErrDiscarded returned. The same
// happens when the flow is closed while the call is in flight.
func (f *Flow) Submit(ctx context.Context, in validation.FormInput) (Result, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return Result{}, ErrClosed
	}
	if f.state == Submitting {
		f.mu.Unlock()
		return Result{}, ErrInFlight
	}

	attempt := uuid.New()
	f.values = in
	f.risk = ""
	f.message = ""
	f.state = Validating

	input, errs, ok := validation.ValidateForm(in)
	f.errors = errs
	if !ok {
		f.message = MessageInvalid
		f.state = Idle
		f.outcome = Invalid
		f.mu.Unlock()

		metrics.RecordSubmission(Invalid.String())
		return Result{AttemptID: attempt, State: Invalid, Message: MessageInvalid, Errors: errs}, nil
	}

	f.state = Submitting
	f.attempt = attempt
	f.mu.Unlock()

	start := time.Now()
	risk, err := f.predictor.Predict(context.WithoutCancel(ctx), input)
	metrics.ObservePredictorCall(time.Since(start))

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.attempt != attempt || ctx.Err() != nil {
		if !f.closed && f.attempt == attempt {
			f.attempt = uuid.Nil
			f.state = Idle
		}
		slog.Debug("discarding late prediction result", "form", f.id, "attempt", attempt)
		metrics.RecordSubmission("discarded")
		return Result{AttemptID: attempt}, ErrDiscarded
	}

	f.attempt = uuid.Nil
	f.state = Idle

	if err != nil {
		f.message = MessageFor(err)
		f.outcome = Failed
		slog.Warn("prediction failed", "form", f.id, "attempt", attempt, "error", err)
		metrics.RecordSubmission(Failed.String())
		return Result{AttemptID: attempt, State: Failed, Message: f.message}, nil
	}

	rec := f.store.Add(input, risk)
	f.risk = risk
	f.outcome = Succeeded
	slog.Info("prediction recorded", "form", f.id, "attempt", attempt, "id", rec.ID, "risk", risk)
	metrics.RecordSubmission(Succeeded.String())
	metrics.RecordPrediction(risk)
	return Result{AttemptID: attempt, State: Succeeded, Risk: risk, Record: &rec}, nil
}

// Close tears the form instance down. Any in-flight result is discarded.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.attempt = uuid.Nil
}

// Closed reports whether the form instance was torn down.
func (f *Flow) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// View returns a snapshot for rendering.
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return View{
		ID:      f.id,
		Values:  f.values,
		Errors:  f.errors,
		Loading: f.state == Submitting,
		Risk:    f.risk,
		Message: f.message,
		State:   f.state,
		Outcome: f.outcome,
	}
}

// MessageFor converts a predictor error into the text shown to the user.
func MessageFor(err error) string {
	if errors.Is(err, predictor.ErrUnexpectedFormat) {
		return MessageUnexpected
	}
	var se *predictor.StatusError
	if errors.As(err, &se) {
		return se.Error()
	}
	return MessageGenericFailure
}
