package http

import (
	"errors"
	"net/http"
	"strconv"

	"familybudget/internal/budget"
	"familybudget/internal/log"
	"familybudget/internal/report"
)

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	text, err := s.budget.RequestAdvice(r.Context())
	if errors.Is(err, budget.ErrAdviceFailed) {
		if text == "" {
			text = budget.AdviceFailedMessage
		}
		BadGatewayError(text).Write(w)
		return
	}
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Advice request failed", log.FieldError, err)
		InternalServerError(budget.AdviceFailedMessage).Write(w)
		return
	}
	JSONResponse(http.StatusOK, map[string]string{"adviceText": text}).Write(w)
}

func (s *Server) handleNarration(w http.ResponseWriter, r *http.Request) {
	res, err := s.budget.RequestNarration(r.Context())
	switch {
	case errors.Is(err, budget.ErrMissingNarrationCredential):
		BadRequestError(budget.MissingCredentialMessage).Write(w)
	case errors.Is(err, budget.ErrNarrationFailed):
		BadGatewayError(budget.NarrationFailedMessage).Write(w)
	case err != nil:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Narration request failed", log.FieldError, err)
		InternalServerError(budget.NarrationFailedMessage).Write(w)
	default:
		JSONResponse(http.StatusOK, res).Write(w)
	}
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	clip, ok := s.budget.Clip(r.PathValue("id"))
	if !ok {
		NotFoundError("Audio clip not found or expired").Write(w)
		return
	}
	NewResponse().
		Header("Content-Length", strconv.Itoa(len(clip.Data))).
		Body(clip.ContentType, clip.Data).
		Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region == "" {
		region = report.RegionFull
	}

	doc, err := s.budget.ExportReport(r.Context(), region)
	switch {
	case errors.Is(err, report.ErrRegionNotFound):
		NotFoundError("Unknown report region: " + region).Write(w)
		return
	case errors.Is(err, budget.ErrExportUnavailable):
		ServiceUnavailableError("Report export is not available").Write(w)
		return
	case err != nil:
		InternalServerError("Failed to generate the report").Write(w)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Report exported",
		log.FieldRegion, region,
		"pages", doc.Pages,
		"bytes", len(doc.Data))
	NewResponse().
		Header("Content-Disposition", attachment(doc.Name)).
		Header("Content-Length", strconv.Itoa(len(doc.Data))).
		Body(doc.ContentType, doc.Data).
		Write(w)
}
