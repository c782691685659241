package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Sergiu-D/dataforge/internal/codec"
	"github.com/Sergiu-D/dataforge/internal/download"
	"github.com/Sergiu-D/dataforge/internal/engine"
	"github.com/Sergiu-D/dataforge/internal/schema"
	"github.com/Sergiu-D/dataforge/internal/session"
)

type validateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

type moveRequest struct {
	Fields []schema.PayloadField `json:"fields"`
	From   int                   `json:"from"`
	To     int                   `json:"to"`
}

type generateResponse struct {
	Rows     int      `json:"rows"`
	Warnings []string `json:"warnings"`
	CSV      string   `json:"csv"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	if s.engine != nil {
		resp["engine"] = s.engine.State().String()
	}
	st, _ := s.session.Status()
	resp["session"] = st.String()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.session.Types(r.Context())
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.decodeSchema(w, r)
	if !ok {
		return
	}
	errs := schema.Validate(sc.Fields)
	if errs == nil {
		errs = []string{}
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: len(errs) == 0, Errors: errs})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sc, err := schema.FromPayload(schema.Payload{Fields: req.Fields})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	moved, err := schema.MoveField(sc.Fields, req.From, req.To)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, schema.ToPayload(schema.Schema{Fields: moved}))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.decodeSchema(w, r)
	if !ok {
		return
	}
	if sc.Rows == 0 {
		sc.Rows = schema.DefaultRows
	}

	res, err := s.session.Generate(r.Context(), sc.Fields, sc.Rows)
	switch {
	case errors.Is(err, session.ErrBusy):
		writeError(w, r, http.StatusConflict, err)
		return
	case errors.Is(err, session.ErrNoFields):
		writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	case errors.Is(err, engine.ErrGenerationFailed):
		writeError(w, r, http.StatusInternalServerError, errors.New("data generation failed, the previous dataset is unchanged"))
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusOK, generateResponse{Rows: res.Rows, Warnings: warnings, CSV: res.Dataset})
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	dataset, ok := s.session.Dataset()
	if !ok {
		writeError(w, r, http.StatusNotFound, download.ErrNoDataset)
		return
	}

	switch view := strings.ToLower(r.URL.Query().Get("view")); view {
	case "", "csv":
		w.Header().Set("Content-Type", download.CSVMimeType)
		fmt.Fprint(w, dataset)
	case "json":
		writeJSON(w, http.StatusOK, codec.ToRecords(codec.Decode(dataset)))
	case "table":
		header, rows := codec.Decode(dataset)
		out, err := codec.RenderTable(header, rows, s.cfg.PreviewRows)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, out)
	default:
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("unknown view %q (want csv, json or table)", view))
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	dataset, _ := s.session.Dataset()

	a, err := download.Build(chi.URLParam(r, "format"), dataset)
	switch {
	case errors.Is(err, download.ErrNoDataset):
		writeError(w, r, http.StatusNotFound, err)
		return
	case errors.Is(err, download.ErrUnknownFormat):
		writeError(w, r, http.StatusBadRequest, err)
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", a.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, a.Filename))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	fmt.Fprint(w, a.Content)
}

// decodeSchema reads an exchange payload and converts it, answering 400 on failure.
func (s *Server) decodeSchema(w http.ResponseWriter, r *http.Request) (schema.Schema, bool) {
	var p schema.Payload
	if !decodeBody(w, r, &p) {
		return schema.Schema{}, false
	}
	sc, err := schema.FromPayload(p)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return schema.Schema{}, false
	}
	return sc, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}
