package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/storage/postgres"
	"golang.org/x/sync/errgroup"
)

const checkTimeout = 2 * time.Second

// HealthCheck is the body of the detailed /health endpoint.
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MigrationReporter reads the applied schema version.
type MigrationReporter interface {
	MigrationState(ctx context.Context) (version int64, dirty bool, err error)
}

type HealthChecker struct {
	db         Pinger
	migrations MigrationReporter
	version    string
	gitCommit  string
	now        func() time.Time
}

func NewHealthChecker(db Pinger, migrations MigrationReporter, version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		db:         db,
		migrations: migrations,
		version:    version,
		gitCommit:  gitCommit,
		now:        time.Now,
	}
}

// Healthz is the liveness probe. It never touches the database.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ok")
	})
}

// Readyz answers 503 until every check passes.
func (h *HealthChecker) Readyz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checks := h.run(r.Context())
		for _, check := range checks {
			if check.Status != "pass" {
				respondHealth(w, http.StatusServiceUnavailable, "not_ready")
				return
			}
		}
		respondHealth(w, http.StatusOK, "ready")
	})
}

// Health reports every check with latency and the build it is running.
func (h *HealthChecker) Health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			respondHealth(w, http.StatusServiceUnavailable, "shutting_down")
			return
		default:
		}

		checks := h.run(r.Context())
		status, code := "healthy", http.StatusOK
		for _, check := range checks {
			if check.Status == "fail" {
				status, code = "unhealthy", http.StatusServiceUnavailable
				break
			}
		}

		writeJSON(w, code, HealthCheck{
			Status:    status,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: h.now().UTC().Format(time.RFC3339),
		})
	})
}

// run executes the checks concurrently. Each check has its own timeout so a
// slow database cannot starve the others.
func (h *HealthChecker) run(ctx context.Context) map[string]CheckResult {
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult, 2)
	)
	record := func(name string, result CheckResult) {
		mu.Lock()
		checks[name] = result
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		record("database", h.checkDatabase(ctx))
		return nil
	})
	g.Go(func() error {
		record("migrations", h.checkMigrations(ctx))
		return nil
	})
	_ = g.Wait()
	return checks
}

func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	if h.db == nil {
		return CheckResult{Status: "fail", Message: "database not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		message := "database ping failed"
		if errors.Is(err, context.DeadlineExceeded) {
			message = fmt.Sprintf("database ping timed out after %s", checkTimeout)
		}
		return CheckResult{Status: "fail", Message: message, LatencyMs: latency}
	}
	return CheckResult{Status: "pass", Message: "PostgreSQL connection successful", LatencyMs: latency}
}

func (h *HealthChecker) checkMigrations(ctx context.Context) CheckResult {
	if h.migrations == nil {
		return CheckResult{Status: "fail", Message: "database not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	version, dirty, err := h.migrations.MigrationState(ctx)
	latency := time.Since(start).Milliseconds()
	switch {
	case errors.Is(err, postgres.ErrNoMigrations):
		return CheckResult{
			Status:    "fail",
			Message:   "no migrations applied",
			LatencyMs: latency,
			Details:   map[string]any{"remediation": "run: server migrate up"},
		}
	case err != nil:
		return CheckResult{Status: "fail", Message: "failed to read migration version", LatencyMs: latency}
	case dirty:
		return CheckResult{
			Status:    "fail",
			Message:   "database in dirty migration state",
			LatencyMs: latency,
			Details:   map[string]any{"version": version, "dirty": true},
		}
	}
	return CheckResult{
		Status:    "pass",
		Message:   fmt.Sprintf("migrations applied (version %d)", version),
		LatencyMs: latency,
		Details:   map[string]any{"version": version, "dirty": false},
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

func respondHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: value})
}
