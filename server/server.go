package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"banner_agent/config"
	"banner_agent/design"
	"banner_agent/generator"
	"banner_agent/publisher"
	"banner_agent/render"
	"banner_agent/store"
)

// Archive persists finished runs. *store.Store implements it.
type Archive interface {
	SaveRun(ctx context.Context, res generator.Result) error
	GetRun(ctx context.Context, id string) (generator.Result, error)
}

type Server struct {
	agent    *generator.Agent
	cfg      config.Config
	sessions *sessionStore
	archive  Archive
	raster   render.Rasterizer
	log      logrus.FieldLogger
	timeout  time.Duration
}

// Option configures a Server.
type Option func(*Server)

func WithArchive(a Archive) Option { return func(s *Server) { s.archive = a } }

func WithRasterizer(r render.Rasterizer) Option { return func(s *Server) { s.raster = r } }

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// sessionEntry serializes requests on one session.
type sessionEntry struct {
	mu   sync.Mutex
	sess *generator.Session
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*sessionEntry)}
}

func (s *sessionStore) set(id string, sess *generator.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &sessionEntry{sess: sess}
}

func (s *sessionStore) get(id string) (*sessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	return e, ok
}

func New(agent *generator.Agent, cfg config.Config, opts ...Option) (*Server, error) {
	if agent == nil {
		return nil, errors.New("generator agent required")
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	s := &Server{
		agent:    agent,
		cfg:      cfg,
		sessions: newStore(),
		raster:   render.NopRasterizer{},
		log:      logrus.StandardLogger(),
		timeout:  timeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/banners", s.handleCreate)
	mux.HandleFunc("GET /api/banners/{id}", s.handleGet)
	mux.HandleFunc("POST /api/banners/{id}/review", s.handleReview)
	mux.HandleFunc("GET /api/banners/{id}/svg", s.handleSVG)
	return s.logMiddleware(mux)
}

// --- Handlers ---

type createReq struct {
	Request       string `json:"request"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	MaxIterations int    `json:"max_iterations"`
	// Logo is a base64 data URI.
	Logo string `json:"logo"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Request) == "" {
		http.Error(w, "request is required", http.StatusBadRequest)
		return
	}

	brief := generator.Brief{Request: req.Request, Canvas: s.cfg.Canvas}
	if req.Width != 0 || req.Height != 0 {
		brief.Canvas = design.Canvas{Width: req.Width, Height: req.Height}
	}
	if err := brief.Canvas.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	maxIter := req.MaxIterations
	if maxIter == 0 {
		maxIter = s.cfg.MaxIterations
	}
	if maxIter < 1 {
		http.Error(w, generator.ErrInvalidIterations.Error(), http.StatusBadRequest)
		return
	}
	if req.Logo != "" {
		logo, err := generator.ParseDataURI(req.Logo)
		if err != nil {
			http.Error(w, "logo: "+err.Error(), http.StatusBadRequest)
			return
		}
		brief.Logo = &logo
	}

	id := uuid.NewString()
	sess := generator.NewSession(id, brief, s.agent,
		generator.WithRasterizer(s.raster),
		generator.WithStrict(s.cfg.Strict),
	)
	ctx, cancel := s.requestContext(r)
	defer cancel()
	res, err := sess.Run(ctx, maxIter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.sessions.set(id, sess)
	s.save(r.Context(), res)

	w.Header().Set("Location", "/api/banners/"+id)
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if e, ok := s.sessions.get(id); ok {
		e.mu.Lock()
		res := e.sess.Result()
		e.mu.Unlock()
		writeJSON(w, http.StatusOK, res)
		return
	}
	res, err := s.load(r.Context(), id)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, ok := s.sessions.get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	ctx, cancel := s.requestContext(r)
	defer cancel()
	if err := e.sess.Refine(ctx, 1); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	res := e.sess.Result()
	s.save(r.Context(), res)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var svg string
	if e, ok := s.sessions.get(id); ok {
		e.mu.Lock()
		svg = e.sess.SVG()
		e.mu.Unlock()
	} else {
		res, err := s.load(r.Context(), id)
		if err != nil {
			writeLoadError(w, err)
			return
		}
		svg = publisher.SVG(res)
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write([]byte(svg))
}

// --- Helpers ---

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.timeout)
}

func (s *Server) save(ctx context.Context, res generator.Result) {
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveRun(ctx, res); err != nil {
		s.log.WithError(err).WithField("run_id", res.RunID).Warn("archive save failed")
	}
}

func (s *Server) load(ctx context.Context, id string) (generator.Result, error) {
	if s.archive == nil {
		return generator.Result{}, store.ErrNotFound
	}
	return s.archive.GetRun(ctx, id)
}

func writeLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "banner not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).Round(time.Millisecond).String(),
		}).Info("http request")
	})
}
