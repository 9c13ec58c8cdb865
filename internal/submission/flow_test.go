package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"covidrisk/internal/models"
	"covidrisk/internal/predictions"
	"covidrisk/internal/predictor"
	"covidrisk/internal/validation"
)

// fakePredictor returns canned answers and records what it was asked.
type fakePredictor struct {
	mu      sync.Mutex
	calls   []models.PredictionInput
	risk    models.Risk
	err     error
	gate    chan struct{} // when set, Predict blocks until it is closed
	entered chan struct{}
}

func (p *fakePredictor) Predict(ctx context.Context, in models.PredictionInput) (models.Risk, error) {
	p.mu.Lock()
	p.calls = append(p.calls, in)
	gate, entered := p.gate, p.entered
	risk, err := p.risk, p.err
	p.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return risk, err
}

func (p *fakePredictor) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func validForm() validation.FormInput {
	return validation.FormInput{CasesPer100k: "450", MedianAge: "38", Aged65Above: "16.5"}
}

func TestSubmit_Success(t *testing.T) {
	fp := &fakePredictor{risk: models.RiskMedium}
	store := predictions.NewStore()
	flow := New(fp, store)

	res, err := flow.Submit(context.Background(), validForm())
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if res.State != Succeeded || res.Risk != models.RiskMedium {
		t.Fatalf("result = %+v", res)
	}

	want := models.PredictionInput{CasesPer100k: 450, MedianAge: 38, Aged65Above: 16.5}
	if fp.callCount() != 1 || fp.calls[0] != want {
		t.Errorf("predictor calls = %+v, want one call with %+v", fp.calls, want)
	}

	list := store.List()
	if len(list) != 1 {
		t.Fatalf("store has %d records, want 1", len(list))
	}
	if list[0].Input() != want || list[0].Risk != models.RiskMedium || list[0].Timestamp.IsZero() {
		t.Errorf("record = %+v", list[0])
	}
	if res.Record == nil || res.Record.ID != list[0].ID {
		t.Errorf("result record = %+v", res.Record)
	}

	view := flow.View()
	if view.Risk.Label() != "MEDIUM" || view.Message != "" || view.Loading || view.Outcome != Succeeded {
		t.Errorf("view = %+v", view)
	}
}

func TestSubmit_InvalidField(t *testing.T) {
	fp := &fakePredictor{risk: models.RiskLow}
	store := predictions.NewStore()
	flow := New(fp, store)

	in := validForm()
	in.MedianAge = "-5"
	res, err := flow.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if res.State != Invalid || res.Message != MessageInvalid {
		t.Errorf("result = %+v", res)
	}
	if res.Errors != (validation.FieldErrors{MedianAge: true}) {
		t.Errorf("field errors = %+v", res.Errors)
	}
	if fp.callCount() != 0 {
		t.Error("predictor must not be called for invalid input")
	}
	if store.Len() != 0 {
		t.Error("store must be unchanged")
	}

	view := flow.View()
	if view.State != Idle || !view.Errors.MedianAge || view.Message != MessageInvalid {
		t.Errorf("view = %+v", view)
	}
}

func TestSubmit_BackendFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"detail", &predictor.StatusError{Code: 503, Detail: "model unavailable"}, "model unavailable"},
		{"status only", &predictor.StatusError{Code: 500}, "Server returned 500"},
		{"missing risk", predictor.ErrUnexpectedFormat, MessageUnexpected},
		{"transport", fmt.Errorf("prediction request failed: %w", errors.New("connection refused")), MessageGenericFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := predictions.NewStore()
			flow := New(&fakePredictor{err: tt.err}, store)

			res, err := flow.Submit(context.Background(), validForm())
			if err != nil {
				t.Fatalf("Submit() error: %v", err)
			}
			if res.State != Failed || res.Message != tt.wantMsg {
				t.Errorf("result = %+v, want message %q", res, tt.wantMsg)
			}
			if store.Len() != 0 {
				t.Error("store must be unchanged on failure")
			}
			view := flow.View()
			if view.State != Idle || view.Risk != "" || view.Message != tt.wantMsg {
				t.Errorf("view = %+v", view)
			}
		})
	}
}

func TestSubmit_TwoInSequence(t *testing.T) {
	fp := &fakePredictor{risk: models.RiskLow}
	store := predictions.NewStore()
	flow := New(fp, store)

	if _, err := flow.Submit(context.Background(), validForm()); err != nil {
		t.Fatal(err)
	}
	fp.mu.Lock()
	fp.risk = models.RiskHigh
	fp.mu.Unlock()
	if _, err := flow.Submit(context.Background(), validForm()); err != nil {
		t.Fatal(err)
	}

	list := store.List()
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Risk != models.RiskHigh || list[1].Risk != models.RiskLow {
		t.Errorf("order = %v, %v; want High then Low", list[0].Risk, list[1].Risk)
	}
	if list[0].ID <= list[1].ID {
		t.Errorf("ids not increasing: %d then %d", list[1].ID, list[0].ID)
	}
}

func TestSubmit_RejectsConcurrentAttempt(t *testing.T) {
	fp := &fakePredictor{risk: models.RiskLow, gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	flow := New(fp, predictions.NewStore())

	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(context.Background(), validForm())
		done <- err
	}()
	<-fp.entered

	if !flow.View().Loading {
		t.Error("expected view to report loading while submitting")
	}
	if _, err := flow.Submit(context.Background(), validForm()); !errors.Is(err, ErrInFlight) {
		t.Errorf("second Submit() error = %v, want ErrInFlight", err)
	}

	close(fp.gate)
	if err := <-done; err != nil {
		t.Errorf("first Submit() error: %v", err)
	}
	if fp.callCount() != 1 {
		t.Errorf("predictor called %d times, want 1", fp.callCount())
	}
}

func TestSubmit_DiscardsResultAfterClose(t *testing.T) {
	fp := &fakePredictor{risk: models.RiskHigh, gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	store := predictions.NewStore()
	flow := New(fp, store)

	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(context.Background(), validForm())
		done <- err
	}()
	<-fp.entered

	flow.Close()
	close(fp.gate)

	if err := <-done; !errors.Is(err, ErrDiscarded) {
		t.Errorf("Submit() error = %v, want ErrDiscarded", err)
	}
	if store.Len() != 0 {
		t.Error("late result must not reach the store")
	}
	if _, err := flow.Submit(context.Background(), validForm()); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit() on closed flow = %v, want ErrClosed", err)
	}
}

func TestSubmit_DiscardsResultAfterContextEnds(t *testing.T) {
	fp := &fakePredictor{risk: models.RiskHigh, gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	store := predictions.NewStore()
	flow := New(fp, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(ctx, validForm())
		done <- err
	}()
	<-fp.entered

	cancel()
	close(fp.gate)

	if err := <-done; !errors.Is(err, ErrDiscarded) {
		t.Errorf("Submit() error = %v, want ErrDiscarded", err)
	}
	if store.Len() != 0 {
		t.Error("late result must not reach the store")
	}

	// The form stays usable for a new attempt.
	fp.mu.Lock()
	fp.gate, fp.entered = nil, nil
	fp.mu.Unlock()
	res, err := flow.Submit(context.Background(), validForm())
	if err != nil || res.State != Succeeded {
		t.Errorf("retry = %+v, %v", res, err)
	}
}

func TestEdit(t *testing.T) {
	flow := New(&fakePredictor{}, predictions.NewStore())

	in := validation.FormInput{CasesPer100k: "x", MedianAge: "", Aged65Above: "1"}
	if _, err := flow.Submit(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	if err := flow.Edit(validation.FieldCasesPer100k, "450"); err != nil {
		t.Fatalf("Edit() error: %v", err)
	}
	view := flow.View()
	if view.Errors.CasesPer100k {
		t.Error("edited field should be unflagged")
	}
	if !view.Errors.MedianAge {
		t.Error("other fields keep their flags")
	}
	if view.Message != "" {
		t.Errorf("message = %q, want cleared", view.Message)
	}
	if view.Values.CasesPer100k != "450" || view.Values.Aged65Above != "1" {
		t.Errorf("values = %+v", view.Values)
	}

	if err := flow.Edit("risk", "High"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Edit(unknown) = %v, want ErrUnknownField", err)
	}
}

func TestEdit_WhileSubmittingKeepsMessage(t *testing.T) {
	fp := &fakePredictor{risk: models.RiskLow, gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	flow := New(fp, predictions.NewStore())

	done := make(chan struct{})
	go func() {
		flow.Submit(context.Background(), validForm())
		close(done)
	}()
	<-fp.entered

	if err := flow.Edit(validation.FieldMedianAge, "40"); err != nil {
		t.Fatalf("Edit() error: %v", err)
	}
	if got := flow.View().Values.MedianAge; got != "40" {
		t.Errorf("value = %q, want 40", got)
	}

	close(fp.gate)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("submission did not finish")
	}
}

func TestMessageFor(t *testing.T) {
	if got := MessageFor(fmt.Errorf("wrapped: %w", predictor.ErrUnexpectedFormat)); got != MessageUnexpected {
		t.Errorf("MessageFor(unexpected) = %q", got)
	}
	if got := MessageFor(&predictor.StatusError{Code: 404}); got != "Server returned 404" {
		t.Errorf("MessageFor(404) = %q", got)
	}
	if got := MessageFor(errors.New("boom")); got != MessageGenericFailure {
		t.Errorf("MessageFor(other) = %q", got)
	}
}

func TestStateString(t *testing.T) {
	if Submitting.String() != "submitting" || State(99).String() != "unknown" {
		t.Error("String() mismatch")
	}
}
