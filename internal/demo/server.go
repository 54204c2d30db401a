package demo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/feedmill/feedadmin/internal/logging"
	"github.com/feedmill/feedadmin/internal/models"
)

// Server is the embedded demo feed service.
type Server struct {
	store  *Store
	sim    *Simulator
	router chi.Router
	parser *gofeed.Parser
	log    zerolog.Logger
}

// Options configures the demo server.
type Options struct {
	// RunDuration is how long simulated runs take.
	RunDuration time.Duration
	// Seed populates sample data on first start.
	Seed bool
}

// NewServer builds the demo service on top of an open store.
func NewServer(store *Store, opts Options) (*Server, error) {
	s := &Server{
		store:  store,
		sim:    NewSimulator(store, opts.RunDuration),
		parser: gofeed.NewParser(),
		log:    logging.Component("demo.server"),
	}
	if opts.Seed {
		if err := s.seed(); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}
	s.setupRoutes()
	return s, nil
}

// Handler returns the HTTP handler, for mounting or for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close stops the simulator. The store is owned by the caller.
func (s *Server) Close() {
	s.sim.Stop()
}

// ListenAndServe serves until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info().Str("addr", addr).Msg("demo service listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.Close()
		return nil
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/feeds", func(r chi.Router) {
			r.Get("/", s.handleListFeeds)
			r.Post("/", s.handleCreateFeed)
			r.Post("/batch-delete", s.handleBatchDeleteFeeds)
			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", s.handleUpdateFeed)
				r.Delete("/", s.handleDeleteFeed)
				r.Post("/run", s.handleRunFeed)
			})
		})
		r.Get("/runs/{runID}", s.handleGetRun)

		r.Route("/sources", func(r chi.Router) {
			r.Get("/", s.handleListSources)
			r.Post("/", s.handleCreateSource)
			r.Post("/preview", s.handlePreviewSource)
			r.Patch("/{id}", s.handleUpdateSource)
			r.Delete("/{id}", s.handleDeleteSource)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.handleListTags)
			r.Post("/", s.handleCreateTag)
			r.Patch("/{id}", s.handleUpdateTag)
			r.Delete("/{id}", s.handleDeleteTag)
		})

		r.Route("/connections", func(r chi.Router) {
			r.Get("/", s.handleListConnections)
			r.Post("/", s.handleCreateConnection)
			r.Patch("/{id}", s.handleUpdateConnection)
			r.Delete("/{id}", s.handleDeleteConnection)
		})

		r.Route("/exporters", func(r chi.Router) {
			r.Get("/", s.handleListExporters)
			r.Post("/", s.handleCreateExporter)
			r.Patch("/{id}", s.handleUpdateExporter)
			r.Delete("/{id}", s.handleDeleteExporter)
		})

		r.Get("/schemas/{kind}/{type}", s.handleGetSchema)
	})

	s.router = r
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.log.Error().Err(err).Msg("store operation failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func decodeBody(r *http.Request, dest any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

// feedInput mirrors the console's PATCH payload: absent fields keep their
// stored value.
type feedInput struct {
	Name            *string  `json:"name"`
	SourceID        *int64   `json:"source_id"`
	Tags            []string `json:"tags"`
	IntervalMinutes *int     `json:"interval_minutes"`
	Active          *bool    `json:"active"`
}

func (in feedInput) apply(feed *models.Feed) {
	if in.Name != nil {
		feed.Name = *in.Name
	}
	if in.SourceID != nil {
		feed.SourceID = *in.SourceID
	}
	if in.Tags != nil {
		feed.Tags = in.Tags
	}
	if in.IntervalMinutes != nil {
		feed.IntervalMinutes = *in.IntervalMinutes
	}
	if in.Active != nil {
		feed.Active = *in.Active
	}
}

func (s *Server) validateFeed(feed models.Feed) string {
	if feed.Name == "" {
		return "name is required"
	}
	if feed.SourceID == 0 {
		return "source_id is required"
	}
	if _, err := s.store.GetSource(feed.SourceID); err != nil {
		return "source does not exist"
	}
	if feed.IntervalMinutes < 5 || feed.IntervalMinutes > 1440 {
		return "interval_minutes must be between 5 and 1440"
	}
	return ""
}

// --- feeds ---

func (s *Server) handleListFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.store.ListFeeds()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feeds)
}

func (s *Server) handleCreateFeed(w http.ResponseWriter, r *http.Request) {
	var in feedInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	feed := models.Feed{IntervalMinutes: 60, Active: true}
	in.apply(&feed)
	if msg := s.validateFeed(feed); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	saved, err := s.store.CreateFeed(feed)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateFeed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	feed, err := s.store.GetFeed(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	var in feedInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	in.apply(&feed)
	if msg := s.validateFeed(feed); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	saved, err := s.store.UpdateFeed(feed)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteFeed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.store.DeleteFeed(id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBatchDeleteFeeds(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IDs []int64 `json:"ids"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	if len(in.IDs) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "ids is required")
		return
	}
	if err := s.store.DeleteFeeds(in.IDs); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRunFeed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	feed, err := s.store.GetFeed(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if !feed.Active {
		writeError(w, http.StatusConflict, "feed is not active")
		return
	}
	runID, err := s.sim.Trigger(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": runID})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(chi.URLParam(r, "runID"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// --- sources ---

type sourceInput struct {
	Name   *string        `json:"name"`
	Type   *string        `json:"type"`
	URL    *string        `json:"url"`
	Config map[string]any `json:"config"`
}

func (in sourceInput) apply(src *models.Source) {
	if in.Name != nil {
		src.Name = *in.Name
	}
	if in.Type != nil {
		src.Type = *in.Type
	}
	if in.URL != nil {
		src.URL = *in.URL
	}
	if in.Config != nil {
		src.Config = in.Config
	}
}

func validateSource(src models.Source) string {
	if src.Name == "" {
		return "name is required"
	}
	if _, ok := lookupSchema("source", src.Type); !ok {
		return "unknown source type"
	}
	return ""
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.store.ListSources()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

func (s *Server) handleCreateSource(w http.ResponseWriter, r *http.Request) {
	var in sourceInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	var src models.Source
	in.apply(&src)
	if msg := validateSource(src); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	saved, err := s.store.CreateSource(src)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	schema, _ := lookupSchema("source", saved.Type)
	s.log.Debug().Int64("id", saved.ID).Str("type", saved.Type).
		Interface("config", logging.RedactConfig(schema, saved.Config)).
		Msg("source created")
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateSource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	src, err := s.store.GetSource(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	var in sourceInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	in.apply(&src)
	if msg := validateSource(src); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	saved, err := s.store.UpdateSource(src)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.store.DeleteSource(id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePreviewSource(w http.ResponseWriter, r *http.Request) {
	var in struct {
		URL string `json:"url"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	if in.URL == "" {
		writeError(w, http.StatusUnprocessableEntity, "url is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	parsed, err := s.parser.ParseURLWithContext(in.URL, ctx)
	if err != nil {
		writeError(w, http.StatusBadGateway, "could not parse feed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title":      parsed.Title,
		"item_count": len(parsed.Items),
		"kind":       parsed.FeedType,
	})
}

// --- tags ---

type tagInput struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.store.ListTags()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var in tagInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	var tag models.Tag
	if in.Name != nil {
		tag.Name = *in.Name
	}
	if in.Color != nil {
		tag.Color = *in.Color
	}
	if tag.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	saved, err := s.store.CreateTag(tag)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	tag, err := s.store.GetTag(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	var in tagInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	if in.Name != nil {
		tag.Name = *in.Name
	}
	if in.Color != nil {
		tag.Color = *in.Color
	}
	if tag.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	saved, err := s.store.UpdateTag(tag)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.store.DeleteTag(id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- connections ---

type connectionInput struct {
	Name   *string        `json:"name"`
	Type   *string        `json:"type"`
	Config map[string]any `json:"config"`
}

func (in connectionInput) apply(conn *models.Connection) {
	if in.Name != nil {
		conn.Name = *in.Name
	}
	if in.Type != nil {
		conn.Type = *in.Type
	}
	if in.Config != nil {
		conn.Config = in.Config
	}
}

func validateConnection(conn models.Connection) string {
	if conn.Name == "" {
		return "name is required"
	}
	if _, ok := lookupSchema("connection", conn.Type); !ok {
		return "unknown connection type"
	}
	return ""
}

func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := s.store.ListConnections()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conns)
}

func (s *Server) handleCreateConnection(w http.ResponseWriter, r *http.Request) {
	var in connectionInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	var conn models.Connection
	in.apply(&conn)
	if msg := validateConnection(conn); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	saved, err := s.store.CreateConnection(conn)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	schema, _ := lookupSchema("connection", saved.Type)
	s.log.Debug().Int64("id", saved.ID).Str("type", saved.Type).
		Interface("config", logging.RedactConfig(schema, saved.Config)).
		Msg("connection created")
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateConnection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	conn, err := s.store.GetConnection(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	var in connectionInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	in.apply(&conn)
	if msg := validateConnection(conn); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	saved, err := s.store.UpdateConnection(conn)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteConnection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.store.DeleteConnection(id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- exporters ---

type exporterInput struct {
	Name    *string        `json:"name"`
	Type    *string        `json:"type"`
	Enabled *bool          `json:"enabled"`
	Config  map[string]any `json:"config"`
}

func (in exporterInput) apply(exp *models.Exporter) {
	if in.Name != nil {
		exp.Name = *in.Name
	}
	if in.Type != nil {
		exp.Type = *in.Type
	}
	if in.Enabled != nil {
		exp.Enabled = *in.Enabled
	}
	if in.Config != nil {
		exp.Config = in.Config
	}
}

func validateExporter(exp models.Exporter) string {
	if exp.Name == "" {
		return "name is required"
	}
	if _, ok := lookupSchema("exporter", exp.Type); !ok {
		return "unknown exporter type"
	}
	return ""
}

func (s *Server) handleListExporters(w http.ResponseWriter, r *http.Request) {
	exporters, err := s.store.ListExporters()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exporters)
}

func (s *Server) handleCreateExporter(w http.ResponseWriter, r *http.Request) {
	var in exporterInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	exp := models.Exporter{Enabled: true}
	in.apply(&exp)
	if msg := validateExporter(exp); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	saved, err := s.store.CreateExporter(exp)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	schema, _ := lookupSchema("exporter", saved.Type)
	s.log.Debug().Int64("id", saved.ID).Str("type", saved.Type).
		Interface("config", logging.RedactConfig(schema, saved.Config)).
		Msg("exporter created")
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateExporter(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	exp, err := s.store.GetExporter(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	var in exporterInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	in.apply(&exp)
	if msg := validateExporter(exp); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	saved, err := s.store.UpdateExporter(exp)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteExporter(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.store.DeleteExporter(id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- schemas ---

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	typ := chi.URLParam(r, "type")
	schema, ok := lookupSchema(kind, typ)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no schema for %s/%s", kind, typ))
		return
	}
	writeJSON(w, http.StatusOK, schema)
}
