package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/suhtechpvtltdbuisness-collab/leadGenerationToolBackend/internal/leads"
)

const maxLeadBodyBytes = 1 << 20

type createLeadsResponse struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	InsertedCount int      `json:"insertedCount"`
	InsertedIDs   []string `json:"insertedIds"`
}

type listLeadsResponse struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Leads   []leads.Lead `json:"leads"`
}

func (s *Server) handleCreateLeads(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxLeadBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failure{Error: "Request body too large or unreadable"})
		return
	}

	inputs, err := leads.DecodeInputs(body)
	if err != nil {
		s.writeLeadError(w, r, err)
		return
	}
	batch, err := leads.Prepare(inputs, time.Now().UTC())
	if err != nil {
		s.writeLeadError(w, r, err)
		return
	}
	if err := s.leads.Insert(r.Context(), batch); err != nil {
		s.writeLeadError(w, r, err)
		return
	}

	ids := make([]string, 0, len(batch))
	for _, l := range batch {
		ids = append(ids, l.ID)
	}
	zerolog.Ctx(r.Context()).Info().Int("count", len(ids)).Msg("Saved leads")
	writeJSON(w, http.StatusCreated, createLeadsResponse{
		Success:       true,
		Message:       "Leads saved successfully",
		InsertedCount: len(ids),
		InsertedIDs:   ids,
	})
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	list, err := s.leads.List(r.Context())
	if err != nil {
		s.writeLeadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listLeadsResponse{Success: true, Count: len(list), Leads: list})
}

func (s *Server) writeLeadError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *leads.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, failure{Error: verr.Message})
	case errors.Is(err, leads.ErrNotInitialized):
		writeJSON(w, http.StatusServiceUnavailable, failure{Error: "Database not initialized"})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Lead store failure")
		writeJSON(w, http.StatusInternalServerError, failure{Error: "Failed to process leads"})
	}
}
