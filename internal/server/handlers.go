package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/KaramelBytes/tabloom-cli/internal/crosstab"
	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/KaramelBytes/tabloom-cli/internal/detect"
	apperrors "github.com/KaramelBytes/tabloom-cli/internal/errors"
	"github.com/KaramelBytes/tabloom-cli/internal/openend"
	"github.com/KaramelBytes/tabloom-cli/internal/report"
	"github.com/KaramelBytes/tabloom-cli/internal/validation"
)

// DatasetPayload is an in-line table: a header row and records of strings, numbers or nulls.
type DatasetPayload struct {
	Headers []string `json:"headers" validate:"required,min=1"`
	Rows    [][]any  `json:"rows"`
}

func (p DatasetPayload) dataset() *dataset.Dataset {
	return dataset.FromRecords(p.Headers, p.Rows)
}

// DetectRequest asks for a dataset profile and a starter analysis config.
type DetectRequest struct {
	Dataset DatasetPayload `json:"dataset"`
	Banners []string       `json:"banners,omitempty"`
}

// DetectResponse carries the profile and the config derived from it.
type DetectResponse struct {
	Profile *detect.Profile `json:"profile"`
	Config  crosstab.Config `json:"config"`
}

// CrossTabRequest runs an analysis config against a dataset.
type CrossTabRequest struct {
	Dataset DatasetPayload    `json:"dataset"`
	Config  crosstab.Config   `json:"config"`
	Coding  *openend.Settings `json:"coding,omitempty"`
	// Format is "json" (default) or "markdown".
	Format string          `json:"format,omitempty" validate:"omitempty,oneof=json markdown"`
	Report *report.Options `json:"report,omitempty"`
}

// CodeRequest codes a list of open-ended responses.
type CodeRequest struct {
	Column    string            `json:"column"`
	Responses []string          `json:"responses" validate:"required,min=1"`
	Settings  *openend.Settings `json:"settings,omitempty"`
}

type errorBody struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if !s.decode(w, r, &req) {
		return
	}
	ds := req.Dataset.dataset()
	for _, b := range req.Banners {
		if !ds.Has(b) {
			s.fail(w, r, apperrors.NewValidationError("banner "+b+" is not a column"))
			return
		}
	}
	p := detect.BuildProfile(ds, s.opts.Profile)
	render.JSON(w, r, DetectResponse{Profile: p, Config: crosstab.ConfigFromProfile(p, req.Banners)})
}

func (s *Server) handleCrossTabs(w http.ResponseWriter, r *http.Request) {
	var req CrossTabRequest
	if !s.decode(w, r, &req) {
		return
	}
	coding := s.opts.Coding
	if req.Coding != nil {
		coding = *req.Coding
	}
	run, err := crosstab.Generate(r.Context(), req.Dataset.dataset(), req.Config, coding)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Format == "markdown" {
		opts := s.opts.Report
		if req.Report != nil {
			opts = *req.Report
		}
		if err := opts.Validate(); err != nil {
			s.fail(w, r, err)
			return
		}
		render.PlainText(w, r, report.Markdown(run.Results, run.Banners, opts))
		return
	}
	render.JSON(w, r, run)
}

func (s *Server) handleCode(w http.ResponseWriter, r *http.Request) {
	var req CodeRequest
	if !s.decode(w, r, &req) {
		return
	}
	settings := s.opts.Coding
	if req.Settings != nil {
		settings = *req.Settings
	}
	column := req.Column
	if column == "" {
		column = "responses"
	}
	coding, err := openend.Code(r.Context(), column, req.Responses, settings)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, coding)
}

// decode reads and validates a JSON body, writing a 400 response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		s.fail(w, r, apperrors.NewValidationError("invalid JSON body: "+err.Error()))
		return false
	}
	if err := validation.Struct(v); err != nil {
		s.fail(w, r, err)
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, apperrors.ErrUnsupported):
		return http.StatusNotImplemented
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation, apperrors.KindLoad, apperrors.KindConfig:
		return http.StatusBadRequest
	case apperrors.KindUnsupported:
		return http.StatusNotImplemented
	case apperrors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	kind := string(apperrors.KindOf(err))
	if kind == "" {
		kind = "INTERNAL"
	}
	msg := err.Error()
	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	reqID := middleware.GetReqID(r.Context())
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.log.Log(r.Context(), level, "request failed",
		slog.String("request_id", reqID),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	)
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: errorBody{Kind: kind, Message: msg, RequestID: reqID}})
}
