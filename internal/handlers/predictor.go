package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"covidrisk/internal/config"
	"covidrisk/internal/sessions"
	"covidrisk/internal/submission"
	"covidrisk/internal/validation"
)

// StaleFormMessage is shown when a submit arrives for a replaced form.
const StaleFormMessage = "This form was reopened elsewhere. Please submit again."

// FormField is one input of the predictor form as rendered.
type FormField struct {
	Key         string
	Label       string
	Placeholder string
	Value       string
	Invalid     bool
}

// PredictorHandler serves the predictor page and its form submissions.
type PredictorHandler struct {
	cfg *config.Config
	ui  *config.UIConfig
}

// NewPredictorHandler creates a new predictor handler.
func NewPredictorHandler(cfg *config.Config, ui *config.UIConfig) *PredictorHandler {
	return &PredictorHandler{cfg: cfg, ui: ui}
}

// Index renders the predictor page with a fresh form instance.
func (h *PredictorHandler) Index(c fiber.Ctx) error {
	ws, err := sessions.FromContext(c)
	if err != nil {
		return err
	}

	flow := ws.NewForm()
	return c.Render("index", MergeLayout(c, h.formData(flow.View(), ""), h.cfg, h.ui))
}

// Submit validates the posted form and runs a prediction.
func (h *PredictorHandler) Submit(c fiber.Ctx) error {
	ws, err := sessions.FromContext(c)
	if err != nil {
		return err
	}

	flow, err := h.lookupForm(ws, c.FormValue("form_id"))
	if err != nil {
		fresh := ws.NewForm()
		return h.render(c, fresh.View(), StaleFormMessage)
	}

	in := validation.FormInput{
		CasesPer100k: c.FormValue(validation.FieldCasesPer100k),
		MedianAge:    c.FormValue(validation.FieldMedianAge),
		Aged65Above:  c.FormValue(validation.FieldAged65Above),
	}

	_, err = flow.Submit(c.Context(), in)
	switch {
	case err == nil, errors.Is(err, submission.ErrInFlight):
		return h.render(c, flow.View(), "")
	case errors.Is(err, submission.ErrDiscarded), errors.Is(err, submission.ErrClosed):
		return c.SendStatus(fiber.StatusNoContent)
	default:
		return err
	}
}

// Edit records a single field change and returns the refreshed feedback area.
func (h *PredictorHandler) Edit(c fiber.Ctx) error {
	ws, err := sessions.FromContext(c)
	if err != nil {
		return err
	}

	flow, err := h.lookupForm(ws, c.FormValue("form_id"))
	if err != nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	field := c.FormValue("field")
	if err := flow.Edit(field, c.FormValue(field)); err != nil {
		if errors.Is(err, submission.ErrUnknownField) {
			return fiber.NewError(fiber.StatusBadRequest, "unknown field")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}

	return c.Render("partials/form_feedback", fiber.Map{"Message": flow.View().Message}, "")
}

func (h *PredictorHandler) lookupForm(ws *sessions.Workspace, rawID string) (*submission.Flow, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, sessions.ErrStaleForm
	}
	return ws.FormByID(id)
}

func (h *PredictorHandler) render(c fiber.Ctx, view submission.View, notice string) error {
	data := h.formData(view, notice)
	if isHTMX(c) {
		return c.Render("partials/predictor_form", data, "")
	}
	return c.Render("index", MergeLayout(c, data, h.cfg, h.ui))
}

func (h *PredictorHandler) formData(view submission.View, notice string) fiber.Map {
	fields := make([]FormField, 0, len(h.ui.Fields))
	for _, f := range h.ui.Fields {
		fields = append(fields, FormField{
			Key:         f.Key,
			Label:       f.Label,
			Placeholder: f.Placeholder,
			Value:       view.Values.Get(f.Key),
			Invalid:     view.Errors.Has(f.Key),
		})
	}

	message := view.Message
	if notice != "" {
		message = notice
	}

	return fiber.Map{
		"Title":   "Predictor",
		"FormID":  view.ID.String(),
		"Fields":  fields,
		"Loading": view.Loading,
		"Risk":    view.Risk,
		"Message": message,
	}
}
