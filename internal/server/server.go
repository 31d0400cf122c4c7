package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/suhtechpvtltdbuisness-collab/leadGenerationToolBackend/internal/leads"
	"github.com/suhtechpvtltdbuisness-collab/leadGenerationToolBackend/internal/listing"
)

const healthMessage = "hii from lead generation backend"

// Session is one exclusive rendering session for a single request.
type Session interface {
	listing.Feed
	Load(ctx context.Context, query string) error
	Close() error
}

type SessionOpener interface {
	Open(ctx context.Context) (Session, error)
}

type OpenerFunc func(ctx context.Context) (Session, error)

func (f OpenerFunc) Open(ctx context.Context) (Session, error) {
	return f(ctx)
}

// LeadRepository is the persistence collaborator behind /api/leads.
type LeadRepository interface {
	Insert(ctx context.Context, batch []leads.Lead) error
	List(ctx context.Context) ([]leads.Lead, error)
}

type Options struct {
	DefaultLimit int
	MaxLimit     int
	AllowOrigin  string
}

type Server struct {
	opts      Options
	log       zerolog.Logger
	opener    SessionOpener
	converger *listing.Converger
	leads     LeadRepository
}

func New(opts Options, log zerolog.Logger, opener SessionOpener, converger *listing.Converger, repo LeadRepository) *Server {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 20
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 100
	}
	if opts.AllowOrigin == "" {
		opts.AllowOrigin = "*"
	}
	return &Server{
		opts:      opts,
		log:       log,
		opener:    opener,
		converger: converger,
		leads:     repo,
	}
}

// Handler returns the routed handler with logging, recovery and CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/search-hospitals", s.handleSearch)
	mux.HandleFunc("POST /api/leads", s.handleCreateLeads)
	mux.HandleFunc("GET /api/leads", s.handleListLeads)

	return chain(mux,
		s.withLogging,
		withRecover,
		s.withCORS,
	)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(healthMessage))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
