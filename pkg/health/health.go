package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Checker is a function that checks the health of a dependency.
type Checker func(ctx context.Context) error

// Status represents the health status of a component.
type Status string

const (
	StatusUp      Status = "up"
	StatusDown    Status = "down"
	StatusUnknown Status = "unknown"
)

// Response is the JSON response returned by the health endpoint.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the result of a single health check.
type CheckResult struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Handler provides HTTP health check endpoints.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewHandler creates a new health check handler.
func NewHandler() *Handler {
	return &Handler{
		checkers: make(map[string]Checker),
	}
}

// Register adds a named health checker.
func (h *Handler) Register(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// LivenessHandler always answers 200 while the process runs.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler checks all registered dependencies and returns 200/503.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		resp := h.Check(ctx)
		status := http.StatusOK
		if resp.Status == StatusDown {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

// Check runs every registered checker once.
func (h *Handler) Check(ctx context.Context) Response {
	h.mu.RLock()
	checkers := make(map[string]Checker, len(h.checkers))
	for k, v := range h.checkers {
		checkers[k] = v
	}
	h.mu.RUnlock()

	checks := make(map[string]CheckResult, len(checkers))
	overall := StatusUp
	for name, checker := range checkers {
		if err := checker(ctx); err != nil {
			checks[name] = CheckResult{Status: StatusDown, Error: err.Error()}
			overall = StatusDown
		} else {
			checks[name] = CheckResult{Status: StatusUp}
		}
	}

	return Response{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Monitor polls a single checker on an interval and reports transitions
// between up and down. It backs the connectivity guard in front of the
// storefront backend.
type Monitor struct {
	name     string
	check    Checker
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	onChange func(Status)

	mu     sync.RWMutex
	status Status
}

// NewMonitor creates a monitor in the unknown state.
func NewMonitor(name string, check Checker, interval time.Duration, logger *slog.Logger) *Monitor {
	return &Monitor{
		name:     name,
		check:    check,
		interval: interval,
		timeout:  5 * time.Second,
		logger:   logger,
		status:   StatusUnknown,
	}
}

// OnChange registers fn to be called on every transition.
func (m *Monitor) OnChange(fn func(Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Status returns the last observed status.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Checker exposes the monitor's last observation as a readiness checker.
func (m *Monitor) Checker() Checker {
	return func(context.Context) error {
		if m.Status() == StatusDown {
			return errDown
		}
		return nil
	}
}

// Probe runs the checker once and records the result.
func (m *Monitor) Probe(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	next := StatusUp
	err := m.check(ctx)
	if err != nil {
		next = StatusDown
	}

	m.mu.Lock()
	prev := m.status
	m.status = next
	fn := m.onChange
	m.mu.Unlock()

	if prev != next {
		if next == StatusDown {
			m.logger.WarnContext(ctx, "dependency unreachable",
				slog.String("dependency", m.name),
				slog.String("error", err.Error()),
			)
		} else {
			m.logger.InfoContext(ctx, "dependency reachable", slog.String("dependency", m.name))
		}
		if fn != nil {
			fn(next)
		}
	}
	return next
}

// Run probes immediately and then on every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.Probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

type downError struct{}

func (downError) Error() string { return "dependency down" }

var errDown error = downError{}
