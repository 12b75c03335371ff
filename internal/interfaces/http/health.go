package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/nseweekly/engine/internal/cache"
	"github.com/nseweekly/engine/internal/persistence"
)

// HealthHandler reports service health: the database, the cache, and
// whether the weekly pipeline has actually produced a recent card set.
type HealthHandler struct {
	repoHealth persistence.RepositoryHealth
	cache      cache.Cache
	repo       *persistence.Repository
	startTime  time.Time
	version    string
	buildStamp string
	staleAfter time.Duration
}

// NewHealthHandler builds a health handler over the database health
// probe, the cache, and the repository used to check pipeline staleness.
func NewHealthHandler(repoHealth persistence.RepositoryHealth, c cache.Cache, repo *persistence.Repository, version, buildStamp string) *HealthHandler {
	return &HealthHandler{
		repoHealth: repoHealth,
		cache:      c,
		repo:       repo,
		startTime:  time.Now(),
		version:    version,
		buildStamp: buildStamp,
		staleAfter: 9 * 24 * time.Hour,
	}
}

// HealthResponse is the health check response body.
type HealthResponse struct {
	Status     string                  `json:"status"` // "healthy", "degraded", "unhealthy"
	Timestamp  time.Time               `json:"timestamp"`
	Uptime     string                  `json:"uptime"`
	Version    string                  `json:"version"`
	BuildStamp string                  `json:"build_stamp"`
	System     SystemInfo              `json:"system"`
	Database   persistence.HealthCheck `json:"database"`
	Checks     map[string]CheckResult  `json:"checks"`
}

// SystemInfo is system-level runtime information.
type SystemInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	MemAlloc      uint64 `json:"mem_alloc_bytes"`
	MemSys        uint64 `json:"mem_sys_bytes"`
	NumGC         uint32 `json:"num_gc"`
}

// CheckResult is one named health check's outcome.
type CheckResult struct {
	Status    string        `json:"status"` // "pass", "warn", "fail"
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	response := h.gatherHealthInfo(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	switch response.Status {
	case "healthy", "degraded":
		w.WriteHeader(http.StatusOK)
	case "unhealthy":
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}

	response.Checks["health_endpoint"] = CheckResult{
		Status:    "pass",
		Message:   "Health endpoint responding",
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *HealthHandler) gatherHealthInfo(ctx context.Context) HealthResponse {
	now := time.Now()

	response := HealthResponse{
		Timestamp:  now,
		Uptime:     time.Since(h.startTime).String(),
		Version:    h.version,
		BuildStamp: h.buildStamp,
		System:     h.getSystemInfo(),
		Checks:     make(map[string]CheckResult),
	}

	if h.repoHealth != nil {
		response.Database = h.repoHealth.Health(ctx)
		h.addDatabaseCheck(&response)
	}

	h.addCacheCheck(ctx, &response)
	h.addPipelineCheck(ctx, &response)
	h.addSystemChecks(&response)

	response.Status = h.calculateOverallStatus(response.Checks)
	return response
}

func (h *HealthHandler) getSystemInfo() SystemInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return SystemInfo{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		MemAlloc:      memStats.Alloc,
		MemSys:        memStats.Sys,
		NumGC:         memStats.NumGC,
	}
}

func (h *HealthHandler) addDatabaseCheck(response *HealthResponse) {
	if response.Database.Healthy {
		response.Checks["database"] = CheckResult{
			Status:    "pass",
			Message:   fmt.Sprintf("database responding in %dms", response.Database.ResponseTimeMS),
			Timestamp: time.Now(),
		}
		return
	}
	response.Checks["database"] = CheckResult{
		Status:    "fail",
		Message:   fmt.Sprintf("database unhealthy: %v", response.Database.Errors),
		Timestamp: time.Now(),
	}
}

func (h *HealthHandler) addCacheCheck(ctx context.Context, response *HealthResponse) {
	if h.cache == nil {
		response.Checks["cache"] = CheckResult{
			Status:    "warn",
			Message:   "no cache configured",
			Timestamp: time.Now(),
		}
		return
	}

	start := time.Now()
	probeKey := "healthcheck:probe"
	h.cache.Set(ctx, probeKey, []byte("ok"), time.Minute)
	val, ok := h.cache.Get(ctx, probeKey)
	duration := time.Since(start)

	if !ok || string(val) != "ok" {
		response.Checks["cache"] = CheckResult{
			Status:    "warn",
			Message:   "cache round-trip failed",
			Duration:  duration,
			Timestamp: time.Now(),
		}
		return
	}
	response.Checks["cache"] = CheckResult{
		Status:    "pass",
		Message:   "cache round-trip succeeded",
		Duration:  duration,
		Timestamp: time.Now(),
	}
}

// addPipelineCheck flags a stalled system: a weekly run that never
// landed a recommendation card set within staleAfter is the clearest
// sign the scheduler or a provider has silently stopped working.
func (h *HealthHandler) addPipelineCheck(ctx context.Context, response *HealthResponse) {
	if h.repo == nil || h.repo.Recommendations == nil {
		return
	}
	recent, err := h.repo.Recommendations.ListRecent(ctx, 1)
	if err != nil {
		response.Checks["pipeline"] = CheckResult{
			Status:    "fail",
			Message:   fmt.Sprintf("could not read recommendation history: %v", err),
			Timestamp: time.Now(),
		}
		return
	}
	if len(recent) == 0 {
		response.Checks["pipeline"] = CheckResult{
			Status:    "warn",
			Message:   "no recommendation has ever been produced",
			Timestamp: time.Now(),
		}
		return
	}

	age := time.Since(recent[0].CreatedAt)
	if age > h.staleAfter {
		response.Checks["pipeline"] = CheckResult{
			Status:    "fail",
			Message:   fmt.Sprintf("last run was %s ago, older than %s", age.Round(time.Hour), h.staleAfter),
			Timestamp: time.Now(),
		}
		return
	}
	response.Checks["pipeline"] = CheckResult{
		Status:    "pass",
		Message:   fmt.Sprintf("last run completed %s ago", age.Round(time.Hour)),
		Timestamp: time.Now(),
	}
}

func (h *HealthHandler) addSystemChecks(response *HealthResponse) {
	memUsagePercent := float64(response.System.MemAlloc) / float64(response.System.MemSys) * 100

	switch {
	case memUsagePercent > 90:
		response.Checks["memory"] = CheckResult{Status: "fail", Message: fmt.Sprintf("Memory usage critical: %.1f%%", memUsagePercent), Timestamp: time.Now()}
	case memUsagePercent > 75:
		response.Checks["memory"] = CheckResult{Status: "warn", Message: fmt.Sprintf("Memory usage high: %.1f%%", memUsagePercent), Timestamp: time.Now()}
	default:
		response.Checks["memory"] = CheckResult{Status: "pass", Message: fmt.Sprintf("Memory usage normal: %.1f%%", memUsagePercent), Timestamp: time.Now()}
	}

	if response.System.NumGoroutines > 1000 {
		response.Checks["goroutines"] = CheckResult{Status: "warn", Message: fmt.Sprintf("High goroutine count: %d", response.System.NumGoroutines), Timestamp: time.Now()}
	} else {
		response.Checks["goroutines"] = CheckResult{Status: "pass", Message: fmt.Sprintf("Goroutine count normal: %d", response.System.NumGoroutines), Timestamp: time.Now()}
	}
}

func (h *HealthHandler) calculateOverallStatus(checks map[string]CheckResult) string {
	for _, check := range checks {
		if check.Status == "fail" {
			return "unhealthy"
		}
	}
	for _, check := range checks {
		if check.Status == "warn" {
			return "degraded"
		}
	}
	return "healthy"
}
