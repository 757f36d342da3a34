// Package api exposes the try-on journey over HTTP. Each
// authenticated user gets their own session machine; handlers are
// thin adapters over its stage transitions.
package api

import (
	"net/http"
	"sync"

	"github.com/venuslab/glowup/pkg/catalog"
	"github.com/venuslab/glowup/pkg/client"
	"github.com/venuslab/glowup/pkg/history"
	"github.com/venuslab/glowup/pkg/landmark"
	"github.com/venuslab/glowup/pkg/processing"
	"github.com/venuslab/glowup/pkg/session"
	"github.com/venuslab/glowup/pkg/types"
)

// Options configures a Server.
type Options struct {
	Analyzer    client.FaceAnalyzer
	Planner     client.PlanGenerator
	Transformer client.ImageTransformer
	Consultant  client.ConsultationModel
	Landmarks   *landmark.Adapter
	Catalog     catalog.Store
	History     history.Store
	JWTSecret   string
	Language    types.Language
	OutputDir   string
}

// Server holds the shared collaborators and the per-user machines.
type Server struct {
	opts      Options
	jwtSecret []byte
	proc      *processing.Processor

	mu       sync.Mutex
	machines map[string]*session.Machine
}

// NewServer creates a Server.
func NewServer(opts Options) *Server {
	if opts.Language == "" {
		opts.Language = types.LangEnglish
	}
	return &Server{
		opts:      opts,
		jwtSecret: []byte(opts.JWTSecret),
		proc:      processing.NewProcessor(),
		machines:  make(map[string]*session.Machine),
	}
}

// machineFor returns the user's machine, creating it on first use.
// The X-Language header on the creating request picks the journey
// language; it cannot change mid-journey.
func (s *Server) machineFor(userID string, r *http.Request) *session.Machine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.machines[userID]; ok {
		return m
	}
	lang := s.opts.Language
	if h := types.Language(r.Header.Get("X-Language")); h == types.LangEnglish || h == types.LangChinese {
		lang = h
	}
	m := session.NewMachine(session.Config{
		Analyzer:    s.opts.Analyzer,
		Planner:     s.opts.Planner,
		Transformer: s.opts.Transformer,
		Consultant:  s.opts.Consultant,
		Landmarks:   s.opts.Landmarks,
		Catalog:     s.opts.Catalog,
		Language:    lang,
	})
	s.machines[userID] = m
	return m
}

// Routes builds the HTTP mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/guest", s.GuestHandler)
	mux.HandleFunc("/api/chat", s.authMiddleware(s.ChatHandler))
	mux.HandleFunc("/api/capture", s.authMiddleware(s.CaptureHandler))
	mux.HandleFunc("/api/styles", s.authMiddleware(s.StylesHandler))
	mux.HandleFunc("/api/styles/next", s.authMiddleware(s.NextStylesHandler))
	mux.HandleFunc("/api/style", s.authMiddleware(s.SelectStyleHandler))
	mux.HandleFunc("/api/session", s.authMiddleware(s.SessionHandler))
	mux.HandleFunc("/api/closeup", s.authMiddleware(s.CloseUpHandler))
	mux.HandleFunc("/api/navigate", s.authMiddleware(s.NavigateHandler))
	mux.HandleFunc("/api/restart", s.authMiddleware(s.RestartHandler))
	mux.HandleFunc("/api/history", s.authMiddleware(s.HistoryHandler))

	if s.opts.OutputDir != "" {
		mux.Handle("/results/", http.StripPrefix("/results/", http.FileServer(http.Dir(s.opts.OutputDir))))
	}

	return CORSMiddleware(LatencyMiddleware(mux))
}
