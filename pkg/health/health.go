// Package health exposes liveness and readiness endpoints. Readiness fans
// out to every registered dependency check and reports per-check results.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// checkTimeout bounds the whole readiness probe, not each individual check.
const checkTimeout = 5 * time.Second

// Checker probes a single dependency. A nil return means healthy.
type Checker func(ctx context.Context) error

// Status is the reported state of the process or one of its dependencies.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Response is the body of both health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Handler holds the registered dependency checks and serves the endpoints.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

func NewHandler() *Handler {
	return &Handler{checkers: make(map[string]Checker)}
}

// Register adds a dependency check under the given name. Registering the
// same name twice replaces the earlier check.
func (h *Handler) Register(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// LivenessHandler answers 200 whenever the process can serve HTTP at all.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs every registered check concurrently and answers 503
// when any dependency is down.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		h.mu.RLock()
		names := make([]string, 0, len(h.checkers))
		checkers := make([]Checker, 0, len(h.checkers))
		for name, c := range h.checkers {
			names = append(names, name)
			checkers = append(checkers, c)
		}
		h.mu.RUnlock()

		results := make([]CheckResult, len(checkers))
		var wg sync.WaitGroup
		for i, check := range checkers {
			wg.Add(1)
			go func(i int, check Checker) {
				defer wg.Done()
				if err := check(ctx); err != nil {
					results[i] = CheckResult{Status: StatusDown, Error: err.Error()}
				} else {
					results[i] = CheckResult{Status: StatusUp}
				}
			}(i, check)
		}
		wg.Wait()

		overall := StatusUp
		checks := make(map[string]CheckResult, len(names))
		for i, name := range names {
			checks[name] = results[i]
			if results[i].Status == StatusDown {
				overall = StatusDown
			}
		}

		code := http.StatusOK
		if overall == StatusDown {
			code = http.StatusServiceUnavailable
		}
		writeResponse(w, code, Response{
			Status:    overall,
			Timestamp: time.Now().UTC(),
			Checks:    checks,
		})
	}
}

func writeResponse(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}
