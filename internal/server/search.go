package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/suhtechpvtltdbuisness-collab/leadGenerationToolBackend/internal/listing"
)

type searchResponse struct {
	Success    bool             `json:"success"`
	TotalFound int              `json:"total_found"`
	Count      int              `json:"count"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
	Data       []listing.Record `json:"data"`
}

type queryError struct {
	Error string `json:"error"`
}

type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

var (
	errQueryRequired = errors.New("Query parameter is required")
	errBadLimit      = errors.New("limit must be a positive integer")
	errBadOffset     = errors.New("offset must be a non-negative integer")
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, queryError{Error: err.Error()})
		return
	}

	log := zerolog.Ctx(r.Context())
	log.Info().
		Str("query", q.Text).
		Int("limit", q.Limit).
		Int("offset", q.Offset).
		Msg("Searching listings")

	page, err := s.search(r.Context(), q)
	if err != nil {
		log.Error().Err(err).Str("query", q.Text).Msg("Scraping failed")
		writeJSON(w, http.StatusInternalServerError, failure{Error: "Failed to scrape data"})
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Success:    true,
		TotalFound: page.TotalFound,
		Count:      len(page.Items),
		Limit:      page.Limit,
		Offset:     page.Offset,
		Data:       page.Items,
	})
}

// search runs one request-scoped session. The session is closed on every
// path once it has been opened.
func (s *Server) search(ctx context.Context, q listing.Query) (listing.Page, error) {
	sess, err := s.opener.Open(ctx)
	if err != nil {
		return listing.Page{}, fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("Failed to close browser session")
		}
	}()

	if err := sess.Load(ctx, q.Text); err != nil {
		return listing.Page{}, fmt.Errorf("load results: %w", err)
	}
	records, err := s.converger.Converge(ctx, sess, q.Target())
	if err != nil {
		return listing.Page{}, err
	}
	return listing.Paginate(records, q.Offset, q.Limit), nil
}

func (s *Server) parseQuery(values url.Values) (listing.Query, error) {
	q := listing.Query{
		Text:  strings.TrimSpace(values.Get("query")),
		Limit: s.opts.DefaultLimit,
	}
	if q.Text == "" {
		return q, errQueryRequired
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return q, errBadLimit
		}
		q.Limit = n
	}
	if q.Limit > s.opts.MaxLimit {
		q.Limit = s.opts.MaxLimit
	}

	if raw := strings.TrimSpace(values.Get("offset")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return q, errBadOffset
		}
		q.Offset = n
	}
	return q, nil
}
