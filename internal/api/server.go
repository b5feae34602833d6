// Package api exposes the admin HTTP surface: triggering crawl runs
// and polling their outcome.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sporhub/newscrawler/internal/config"
	"github.com/sporhub/newscrawler/internal/news"
	"github.com/sporhub/newscrawler/internal/scrape"
)

// triggerDelay separates the 202 response from the start of the run so
// the client never blocks on scraping.
const triggerDelay = 100 * time.Millisecond

// ScrapeRunner executes crawl runs and reports on them.
type ScrapeRunner interface {
	Run(ctx context.Context, family string) (*news.RunResult, error)
	Running() bool
	LastResult() *news.RunResult
}

// AdminLogger records administrative actions for auditing.
type AdminLogger interface {
	LogAdminAction(ctx context.Context, actorID, actionType, description string)
}

// Job tracks one triggered crawl run through its lifecycle.
type Job struct {
	ID          string          `json:"id"`
	Family      string          `json:"family"`
	Status      string          `json:"status"`
	RequestedBy string          `json:"requested_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
	Result      *news.RunResult `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// Server is the admin HTTP server.
type Server struct {
	mux    *http.ServeMux
	srv    *http.Server
	runner ScrapeRunner
	audit  AdminLogger
	logger *slog.Logger

	jobs   map[string]*Job
	jobsMu sync.RWMutex
}

// NewServer creates the admin API server.
func NewServer(cfg config.APIConfig, runner ScrapeRunner, audit AdminLogger, logger *slog.Logger) *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		runner: runner,
		audit:  audit,
		logger: logger.With("component", "api_server"),
		jobs:   make(map[string]*Job),
	}
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.mux,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/scrape", s.handleScrape)
	s.mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	s.mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
}

// Handler returns the route mux, for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Start begins serving in the background.
func (s *Server) Start() {
	s.logger.Info("api server starting", "addr", s.srv.Addr)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("api server error", "error", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"running":  s.runner.Running(),
		"last_run": s.runner.LastResult(),
	})
}

// handleScrape triggers one crawl run without waiting for it. The
// response carries a job id the caller polls for the outcome.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	family := r.URL.Query().Get("source")
	if family == "" {
		family = scrape.FamilyAll
	}
	if !scrape.KnownFamily(family) {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("unknown source %q", family),
		})
		return
	}

	actor := r.Header.Get("X-Admin-ID")
	job := &Job{
		ID:          uuid.NewString(),
		Family:      family,
		Status:      "pending",
		RequestedBy: actor,
		CreatedAt:   time.Now(),
	}
	s.jobsMu.Lock()
	s.jobs[job.ID] = job
	s.jobsMu.Unlock()

	s.audit.LogAdminAction(r.Context(), actor, "run_news_scraper",
		fmt.Sprintf("news scraper triggered for %s", family))
	s.logger.Info("scrape triggered", "job", job.ID, "family", family, "actor", actor)

	go s.runJob(job)

	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"status": "started",
		"job_id": job.ID,
		"source": family,
	})
}

// runJob executes a triggered run and records its outcome on the job.
func (s *Server) runJob(job *Job) {
	time.Sleep(triggerDelay)

	s.setJobStatus(job.ID, "running")
	ctx := context.Background()
	res, err := s.runner.Run(ctx, job.Family)

	now := time.Now()
	s.jobsMu.Lock()
	job.FinishedAt = &now
	if err != nil {
		job.Status = "failed"
		job.Error = err.Error()
	} else {
		job.Status = "completed"
		job.Result = res
	}
	s.jobsMu.Unlock()

	if err != nil {
		s.audit.LogAdminAction(ctx, job.RequestedBy, "scraper_error", err.Error())
		s.logger.Error("triggered run failed", "job", job.ID, "error", err)
		return
	}
	s.audit.LogAdminAction(ctx, job.RequestedBy, "scraper_completed",
		fmt.Sprintf("%d processed, %d added", res.Processed, res.Added))
	s.logger.Info("triggered run finished", "job", job.ID, "processed", res.Processed, "added", res.Added)
}

func (s *Server) setJobStatus(id, status string) {
	s.jobsMu.Lock()
	if job, ok := s.jobs[id]; ok {
		job.Status = status
	}
	s.jobsMu.Unlock()
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	jobs := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.jsonResponse(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Copy the job while holding the lock: runJob mutates the stored
	// struct when the run finishes, so encoding the live pointer races
	// with concurrent polls.
	s.jobsMu.RLock()
	job, ok := s.jobs[id]
	var snapshot Job
	if ok {
		snapshot = *job
	}
	s.jobsMu.RUnlock()

	if !ok {
		s.jsonResponse(w, http.StatusNotFound, map[string]string{"error": "job not found"})
		return
	}
	s.jsonResponse(w, http.StatusOK, &snapshot)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
