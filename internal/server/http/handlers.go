package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/comic-con-museum/fan-forge/internal/domain"
)

// maxRequestBodySize limits request bodies to 1 MB.
const maxRequestBodySize = 1 << 20

// exhibitWriteRequest is the JSON request body for creating or updating an
// exhibit. Pointer fields distinguish a missing key from a zero value: a
// request without "tags" is rejected, while "tags": [] is a deliberate
// empty list and passes.
type exhibitWriteRequest struct {
	Title       *string   `json:"title" validate:"required"`
	Description *string   `json:"description" validate:"required"`
	Tags        *[]string `json:"tags" validate:"required"`
	Featured    bool      `json:"featured"`
}

// getFeed handles GET /feed/{feedType}?startIdx=N.
func (s *Server) getFeed(w http.ResponseWriter, r *http.Request) {
	feedType, ok := domain.ParseFeedType(chi.URLParam(r, "feedType"))
	if !ok {
		// An unknown feed name is a missing resource, not bad input.
		writeError(w, http.StatusNotFound, "no such feed")
		return
	}

	startIdx := 0
	if raw := r.URL.Query().Get("startIdx"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "startIdx must be an integer")
			return
		}
		startIdx = parsed
	}

	page, err := s.assembler.Feed(r.Context(), userFromContext(r.Context()), feedType, startIdx)
	if err != nil {
		s.logger.Error().Err(err).Str("feed_type", string(feedType)).Msg("failed to assemble feed")
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, feedPageToResponse(page))
}

// getExhibit handles GET /exhibit/{exhibitID}.
func (s *Server) getExhibit(w http.ResponseWriter, r *http.Request) {
	id, ok := exhibitIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "exhibit id must be an integer")
		return
	}

	detail, err := s.assembler.Detail(r.Context(), userFromContext(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detailToResponse(detail))
}

// createExhibit handles POST /exhibit.
func (s *Server) createExhibit(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeExhibitWrite(w, r)
	if !ok {
		return
	}

	exhibit := &domain.Exhibit{
		Title:       *req.Title,
		Description: *req.Description,
		Tags:        *req.Tags,
		Featured:    req.Featured,
	}

	id, err := s.assembler.Create(r.Context(), userFromContext(r.Context()), exhibit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createExhibitResponse{ID: id})
}

// updateExhibit handles PUT /exhibit/{exhibitID}. The response is the
// refreshed detail view, read in the same transaction as the write.
func (s *Server) updateExhibit(w http.ResponseWriter, r *http.Request) {
	id, ok := exhibitIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "exhibit id must be an integer")
		return
	}

	req, ok := s.decodeExhibitWrite(w, r)
	if !ok {
		return
	}

	exhibit := &domain.Exhibit{
		ID:          id,
		Title:       *req.Title,
		Description: *req.Description,
		Tags:        *req.Tags,
		Featured:    req.Featured,
	}

	detail, err := s.assembler.Update(r.Context(), userFromContext(r.Context()), exhibit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detailToResponse(detail))
}

// deleteExhibit handles DELETE /exhibit/{exhibitID}.
func (s *Server) deleteExhibit(w http.ResponseWriter, r *http.Request) {
	id, ok := exhibitIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "exhibit id must be an integer")
		return
	}

	if err := s.assembler.Delete(r.Context(), userFromContext(r.Context()), id); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeExhibitWrite parses and validates an exhibit write body. On failure
// it writes the error response and reports false.
func (s *Server) decodeExhibitWrite(w http.ResponseWriter, r *http.Request) (*exhibitWriteRequest, bool) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}

	var req exhibitWriteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return nil, false
	}

	if err := s.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("%s is required", strings.ToLower(verrs[0].Field())))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	return &req, true
}

// exhibitIDFromPath parses the exhibitID path parameter.
func exhibitIDFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "exhibitID"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "resource already exists")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
