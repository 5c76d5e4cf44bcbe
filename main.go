package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jsnanigans/retime/pkg/retime"
)

// server wires the alignment engine to its persistence collaborator: it
// stores baseline documents keyed by id, reruns the engine on every text
// edit, and keeps confirmation ranges attached across edits.
type server struct {
	store    *Store
	logger   *slog.Logger
	validate *validator.Validate
	opts     retime.Options
}

type createDocumentRequest struct {
	Document retime.Document `json:"document"`
}

type createDocumentResponse struct {
	ID       string          `json:"id"`
	Document retime.Document `json:"document"`
}

// editRequest carries an edited text plus the client's edit sequence number.
// Alignment calls for one document must be serialized and stale results
// discarded; the sequence number is how the boundary enforces that.
type editRequest struct {
	Text string `json:"text"`
	Seq  int64  `json:"seq" validate:"gt=0"`
}

type editResponse struct {
	Document retime.Document    `json:"document"`
	Issues   []string           `json:"issues,omitempty"`
	Ranges   []retime.CharRange `json:"ranges"`
	Seq      int64              `json:"seq"`
}

type rangesRequest struct {
	Ranges []retime.CharRange `json:"ranges" validate:"required"`
}

var errStaleEdit = errors.New("stale edit sequence")

func main() {
	configPath := flag.String("config", "retime.yaml", "path to the YAML config file")
	flag.Parse()

	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	cfg, err := loadConfig(*configPath, explicit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	store, err := OpenStore(cfg.DataDir, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	srv := &server{
		store:    store,
		logger:   logger,
		validate: validator.New(),
		opts:     retime.Options{WindowSec: cfg.WindowSec, Epsilon: cfg.EpsilonSec},
	}

	logger.Info("listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv.routes()); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/v1/documents", func(r chi.Router) {
		r.Post("/", s.handleCreateDocument)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetDocument)
			r.Put("/text", s.handleEditText)
			r.Get("/ranges", s.handleGetRanges)
			r.Put("/ranges", s.handlePutRanges)
		})
	})
	return r
}

// handleCreateDocument stores a baseline document and mints an id for it.
func (s *server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if err := checkDocument(req.Document); err != nil {
		s.error(w, http.StatusUnprocessableEntity, err)
		return
	}

	id := uuid.NewString()
	doc := normalizeDocument(req.Document)
	if err := s.store.SaveBaseline(id, doc); err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}

	s.logger.Info("document created", "id", id, "segments", len(doc.Segments))
	s.respond(w, http.StatusCreated, createDocumentResponse{ID: id, Document: doc})
}

// handleGetDocument returns the latest realigned document, falling back to
// the baseline when the document was never edited.
func (s *server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.store.GetCurrent(id)
	if errors.Is(err, ErrNotFound) {
		doc, err = s.store.GetBaseline(id)
	}
	if errors.Is(err, ErrNotFound) {
		s.error(w, http.StatusNotFound, fmt.Errorf("document %s: %w", id, err))
		return
	}
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	s.respond(w, http.StatusOK, doc)
}

// handleEditText reruns the engine for an edited text against the stored
// baseline, persists the result, and carries confirmation ranges over onto
// the new text.
func (s *server) handleEditText(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.error(w, http.StatusUnprocessableEntity, err)
		return
	}

	baseline, err := s.store.GetBaseline(id)
	if errors.Is(err, ErrNotFound) {
		s.error(w, http.StatusNotFound, fmt.Errorf("document %s: %w", id, err))
		return
	}
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}

	lastSeq, err := s.store.LastSeq(id)
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	if req.Seq <= lastSeq {
		s.logger.Warn("stale edit rejected", "id", id, "seq", req.Seq, "last", lastSeq)
		s.error(w, http.StatusConflict, fmt.Errorf("%w: got %d, last applied %d", errStaleEdit, req.Seq, lastSeq))
		return
	}

	prev, err := s.store.GetCurrent(id)
	if errors.Is(err, ErrNotFound) {
		prev = baseline
	} else if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}

	tokens := retime.Realign(retime.DocumentToTokens(baseline), req.Text, s.opts)
	report := retime.Validate(tokens, s.opts)
	doc := retime.TokensToDocument(tokens)

	ranges, err := s.store.GetRanges(id)
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	ranges = retime.ReattachRanges(prev.Text, doc.Text, ranges)

	if err := s.store.SaveCurrent(id, doc); err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.store.SaveRanges(id, ranges); err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.store.SetSeq(id, req.Seq); err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}

	s.logger.Debug("edit applied", "id", id, "seq", req.Seq, "issues", len(report.Issues))
	s.respond(w, http.StatusOK, editResponse{
		Document: doc,
		Issues:   report.Issues,
		Ranges:   ranges,
		Seq:      req.Seq,
	})
}

func (s *server) handleGetRanges(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ok, err := s.store.HasBaseline(id)
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		s.error(w, http.StatusNotFound, fmt.Errorf("document %s: %w", id, ErrNotFound))
		return
	}

	ranges, err := s.store.GetRanges(id)
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	if ranges == nil {
		ranges = []retime.CharRange{}
	}
	s.respond(w, http.StatusOK, ranges)
}

func (s *server) handlePutRanges(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req rangesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.error(w, http.StatusUnprocessableEntity, err)
		return
	}
	for _, cr := range req.Ranges {
		if cr.Start < 0 || cr.End < cr.Start {
			s.error(w, http.StatusUnprocessableEntity, fmt.Errorf("invalid range %d..%d", cr.Start, cr.End))
			return
		}
	}

	ok, err := s.store.HasBaseline(id)
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		s.error(w, http.StatusNotFound, fmt.Errorf("document %s: %w", id, ErrNotFound))
		return
	}

	if err := s.store.SaveRanges(id, req.Ranges); err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

// checkDocument rejects documents whose word timings are malformed beyond
// what the engine is expected to heal.
func checkDocument(doc retime.Document) error {
	if len(doc.Segments) == 0 {
		return errors.New("document has no segments")
	}
	for i, seg := range doc.Segments {
		for j, w := range seg.Words {
			if w.Word == "" {
				return fmt.Errorf("segment %d word %d: empty text", i, j)
			}
			if w.Start < 0 || w.End < w.Start {
				return fmt.Errorf("segment %d word %d %q: bad span %v..%v", i, j, w.Word, w.Start, w.End)
			}
		}
	}
	return nil
}

// normalizeDocument recomputes the document's flat text from its segments so
// the stored baseline is internally consistent even if the client sent a
// mismatched text field.
func normalizeDocument(doc retime.Document) retime.Document {
	texts := make([]string, len(doc.Segments))
	for i, seg := range doc.Segments {
		var b strings.Builder
		for _, w := range seg.Words {
			b.WriteString(w.Word)
		}
		texts[i] = b.String()
		doc.Segments[i].Text = texts[i]
	}
	doc.Text = strings.Join(texts, "\n")
	return doc
}

func (s *server) respond(w http.ResponseWriter, status int, body any) {
	if body == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("write response", "error", err)
	}
}

func (s *server) error(w http.ResponseWriter, status int, err error) {
	if status >= 500 {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	s.respond(w, status, map[string]string{"error": err.Error()})
}
