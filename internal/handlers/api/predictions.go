package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"

	"covidrisk/internal/models"
	"covidrisk/internal/predictions"
	"covidrisk/internal/sessions"
	"covidrisk/internal/submission"
	"covidrisk/internal/validation"
)

// PredictionHandler exposes the session's predictions via JSON API.
type PredictionHandler struct{}

// NewPredictionHandler creates a new API prediction handler.
func NewPredictionHandler() *PredictionHandler {
	return &PredictionHandler{}
}

// List returns the session history, most recent first.
func (h *PredictionHandler) List(c fiber.Ctx) error {
	store, err := sessions.StoreFrom(c)
	if err != nil {
		return err
	}
	return jsonSuccess(c, store.List())
}

// Summary returns counts, the risk distribution and input means.
func (h *PredictionHandler) Summary(c fiber.Ctx) error {
	store, err := sessions.StoreFrom(c)
	if err != nil {
		return err
	}
	return jsonSuccess(c, predictions.Summarize(store.List()))
}

// Create submits a prediction through the session's current form.
func (h *PredictionHandler) Create(c fiber.Ctx) error {
	ws, err := sessions.FromContext(c)
	if err != nil {
		return err
	}

	var body models.PredictRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	in := validation.FormInput{
		CasesPer100k: string(body.CasesPer100k),
		MedianAge:    string(body.MedianAge),
		Aged65Above:  string(body.Aged65Above),
	}

	res, err := ws.Form().Submit(c.Context(), in)
	switch {
	case errors.Is(err, submission.ErrInFlight):
		return jsonError(c, fiber.StatusConflict, "a prediction is already in progress")
	case errors.Is(err, submission.ErrDiscarded), errors.Is(err, submission.ErrClosed):
		return jsonError(c, fiber.StatusConflict, "prediction was cancelled")
	case err != nil:
		return err
	}

	resp := models.SubmissionAPIResponse{
		AttemptID:   res.AttemptID,
		State:       res.State.String(),
		Risk:        res.Risk,
		Message:     res.Message,
		FieldErrors: res.Errors.Map(),
		Record:      res.Record,
	}

	switch res.State {
	case submission.Invalid:
		return jsonErrorWithData(c, fiber.StatusUnprocessableEntity, res.Message, resp)
	case submission.Failed:
		return jsonErrorWithData(c, fiber.StatusBadGateway, res.Message, resp)
	}
	return jsonCreated(c, resp)
}
