package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/comic-con-museum/fan-forge/internal/domain"
)

// surveyRequest is the optional JSON body of a support request.
type surveyRequest struct {
	Visits      int             `json:"visits"`
	Rating      int             `json:"rating"`
	Populations map[string]bool `json:"populations"`
}

// supportExhibit handles PUT /support/exhibit/{exhibitID}. The toggle is
// idempotent at the storage layer; at the HTTP boundary a redundant toggle
// is a client error so callers notice their state is stale.
func (s *Server) supportExhibit(w http.ResponseWriter, r *http.Request) {
	id, ok := exhibitIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "exhibit id must be an integer")
		return
	}

	survey, ok := s.decodeSurvey(w, r)
	if !ok {
		return
	}

	created, err := s.assembler.Support(r.Context(), userFromContext(r.Context()), id, survey)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if !created {
		writeError(w, http.StatusBadRequest, "already supporting this exhibit")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// unsupportExhibit handles DELETE /support/exhibit/{exhibitID}.
func (s *Server) unsupportExhibit(w http.ResponseWriter, r *http.Request) {
	id, ok := exhibitIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "exhibit id must be an integer")
		return
	}

	removed, err := s.assembler.Unsupport(r.Context(), userFromContext(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if !removed {
		writeError(w, http.StatusBadRequest, "not supporting this exhibit")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeSurvey parses the optional survey body. An empty body means the
// supporter skipped the survey. On failure it writes the error response
// and reports false.
func (s *Server) decodeSurvey(w http.ResponseWriter, r *http.Request) (*domain.Survey, bool) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, true
	}

	var req surveyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return nil, false
	}

	return &domain.Survey{
		Visits:      req.Visits,
		Rating:      req.Rating,
		Populations: req.Populations,
	}, true
}
