package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flowatlas/flowatlas/pkg/buildinfo"
	"github.com/flowatlas/flowatlas/pkg/dataset"
	"github.com/flowatlas/flowatlas/pkg/errors"
	"github.com/flowatlas/flowatlas/pkg/flow"
	"github.com/flowatlas/flowatlas/pkg/pipeline"
)

// AllOption is the sentinel prepended to every dropdown list.
const AllOption = "all"

type optionsResponse struct {
	Field   string   `json:"field"`
	Options []string `json:"options"`
}

type yearsResponse struct {
	Years []string `json:"years"`
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	f, err := dataset.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if f == dataset.FieldValue {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "value is not a dropdown field"))
		return
	}
	if f == dataset.FieldAsylum && !s.ds.Schema.HasAsylum() {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "dataset has no asylum column"))
		return
	}
	writeJSON(w, http.StatusOK, optionsResponse{
		Field:   f.String(),
		Options: append([]string{AllOption}, s.ds.Options(f)...),
	})
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, yearsResponse{Years: s.mapDS.Years(s.opts.MinYear, s.opts.MaxYear)})
}

func (s *Server) handleFlow(w http.ResponseWriter, r *http.Request) {
	if !s.ds.Schema.HasAsylum() {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "flow graphs need a dataset with an asylum column"))
		return
	}
	q := r.URL.Query()
	opts := s.requestOptions(r)
	opts.Year = q.Get("year")
	opts.Origin = q.Get("origin")
	opts.Asylum = q.Get("asylum")
	if v := q.Get("min_value"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid min_value: %q", v))
			return
		}
		opts.MinValue = flow.Threshold(n)
	}
	format := formatParam(r, pipeline.FormatJSON)
	opts.Formats = []string{format}

	result, err := s.runner.ExecuteFlow(r.Context(), s.ds, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, format, result.Artifacts[format])
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	if len(s.regions) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no map geometry loaded"))
		return
	}
	opts := s.requestOptions(r)
	opts.Year = chi.URLParam(r, "year")
	format := formatParam(r, pipeline.FormatJSON)
	opts.Formats = []string{format}

	result, err := s.runner.ExecuteMap(r.Context(), s.mapDS, s.regions, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, format, result.Artifacts[format])
}

type sessionResponse struct {
	ID        string       `json:"id"`
	Years     []string     `json:"years"`
	Year      string       `json:"year,omitempty"`
	State     string       `json:"state"`
	Filters   flow.Filters `json:"filters"`
	CreatedAt string       `json:"created_at"`
	ExpiresAt string       `json:"expires_at"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil || sess == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "session %q not found", chi.URLParam(r, "id")))
		return
	}
	st := sess.Controller.State()
	writeJSON(w, http.StatusOK, sessionResponse{
		ID:        sess.ID,
		Years:     st.Years,
		Year:      st.Year(),
		State:     sess.Sequencer.State().String(),
		Filters:   st.Filters.Normalize(),
		CreatedAt: sess.CreatedAt.UTC().Format(timeLayout),
		ExpiresAt: sess.ExpiresAt().UTC().Format(timeLayout),
	})
}

const timeLayout = "2006-01-02T15:04:05Z"

// requestOptions copies the server defaults for one request.
func (s *Server) requestOptions(r *http.Request) pipeline.Options {
	o := s.opts
	o.Formats = nil
	o.Refresh = r.URL.Query().Get("refresh") == "true"
	return o
}

func formatParam(r *http.Request, def string) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	return def
}
