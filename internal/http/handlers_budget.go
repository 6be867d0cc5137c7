package http

import (
	"context"
	"errors"
	"net/http"

	"familybudget/internal/core"
	"familybudget/internal/log"
)

const persistFailedMessage = "The change was applied but could not be saved. Please try again."

// parseBody parses the request body, writing a 400 on failure.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Invalid request body",
			log.FieldError, err,
			log.FieldPath, r.URL.Path)
		if errors.Is(err, errBodyTooLarge) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "Request body too large").Write(w)
			return nil, false
		}
		BadRequestError("Invalid request format").Write(w)
		return nil, false
	}
	return p, true
}

// amountField reads the "amount" value, writing a 422 when it is missing,
// blank, not a scalar or not a plain decimal.
func amountField(w http.ResponseWriter, p *RequestBodyParser) (core.Money, bool) {
	if !p.HasValue("amount") {
		UnprocessableEntityError("Amount is required").Write(w)
		return core.Zero, false
	}
	amount, err := core.ParseMoney(p.Get("amount"))
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return core.Zero, false
	}
	return amount, true
}

// persistFailed reports a mutation whose store write failed. The
// controller already logged the cause.
func persistFailed(w http.ResponseWriter, r *http.Request, op string, err error) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Budget change not persisted",
		log.FieldOperation, op,
		log.FieldError, err)
	InternalServerError(persistFailedMessage).Write(w)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	JSONResponse(http.StatusOK, s.budget.Snapshot()).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	JSONResponse(http.StatusOK, map[string][]string{
		"categories": categoryLabels(core.KnownCategories()),
	}).Write(w)
}

func (s *Server) handleSetIncome(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	amount, ok := amountField(w, p)
	if !ok {
		return
	}
	if err := s.budget.SetIncome(r.Context(), amount); err != nil {
		persistFailed(w, r, log.OpSetIncome, err)
		return
	}
	JSONResponse(http.StatusOK, s.budget.Snapshot().Totals).Write(w)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	exp, err := s.budget.AddExpense(r.Context(), p.Get("category"))
	switch {
	case errors.Is(err, core.ErrEmptyCategory):
		UnprocessableEntityError("Category is required").Write(w)
		return
	case err != nil:
		persistFailed(w, r, log.OpAddExpense, err)
		return
	}
	JSONResponse(http.StatusCreated, exp).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	var patch core.ExpensePatch
	if p.Has("amount") {
		amount, ok := amountField(w, p)
		if !ok {
			return
		}
		patch.Amount = &amount
	}
	if p.Has("dueDate") {
		due := p.Get("dueDate")
		patch.DueDate = &due
	}
	if patch.IsEmpty() {
		UnprocessableEntityError("Nothing to update: send amount or dueDate").Write(w)
		return
	}

	if err := s.budget.UpdateExpense(r.Context(), r.PathValue("id"), patch); err != nil {
		persistFailed(w, r, log.OpUpdateExpense, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.budget.RemoveExpense(r.Context(), r.PathValue("id")); err != nil {
		persistFailed(w, r, log.OpRemoveExpense, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetVision(w http.ResponseWriter, r *http.Request) {
	s.setText(w, r, "text", log.OpSetVision, s.budget.SetVision)
}

func (s *Server) handleSetMission(w http.ResponseWriter, r *http.Request) {
	s.setText(w, r, "text", log.OpSetMission, s.budget.SetMission)
}

func (s *Server) handleSetCredential(w http.ResponseWriter, r *http.Request) {
	s.setText(w, r, "key", log.OpSetCredential, s.budget.SetNarrationCredential)
}

// setText stores a free-text field exactly as sent.
func (s *Server) setText(w http.ResponseWriter, r *http.Request, key, op string, set func(context.Context, string) error) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	if err := set(r.Context(), p.Value(key)); err != nil {
		persistFailed(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	JSONResponse(http.StatusOK, map[string]any{
		"historicalData": s.budget.History(),
	}).Write(w)
}

func (s *Server) handleSaveMonth(w http.ResponseWriter, r *http.Request) {
	snap, message, err := s.budget.SaveCurrentMonth(r.Context())
	if err != nil {
		persistFailed(w, r, log.OpSaveMonth, err)
		return
	}
	JSONResponse(http.StatusOK, map[string]any{
		"month":   snap,
		"message": message,
	}).Write(w)
}
