package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Component names
const (
	ComponentECS       = "ecs"
	ComponentScheduler = "scheduler"
)

// CriticalComponents must be registered and healthy for the process to be ready
var CriticalComponents = []string{ComponentECS, ComponentScheduler}

// HealthStatus is the body of the /health and /ready responses
type HealthStatus struct {
	Status     string            `json:"status"` // healthy, unhealthy, ready, not_ready
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
	Message    string            `json:"message,omitempty"`
	Version    string            `json:"version,omitempty"`
	Uptime     string            `json:"uptime,omitempty"`
	StartTime  time.Time         `json:"-"`
}

// ComponentHealth tracks the health of a single component
type ComponentHealth struct {
	Name    string
	Healthy bool
	Message string
	Updated time.Time
	// StaleAfter marks the component unhealthy when it has not reported for
	// this long. Zero disables the check.
	StaleAfter time.Duration
}

// state returns whether the component is healthy at now, and why not
func (c ComponentHealth) state(now time.Time) (bool, string) {
	if !c.Healthy {
		return false, c.Message
	}
	if c.StaleAfter > 0 && now.Sub(c.Updated) > c.StaleAfter {
		return false, "no report since " + c.Updated.Format(time.RFC3339)
	}
	return true, ""
}

// HealthChecker is the registry of component health
type HealthChecker struct {
	mu         sync.RWMutex
	components map[string]ComponentHealth
	startTime  time.Time
	version    string
}

var healthChecker = &HealthChecker{
	components: make(map[string]ComponentHealth),
	startTime:  time.Now(),
}

// SetVersion sets the version string for health responses
func SetVersion(version string) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()
	healthChecker.version = version
}

// RegisterComponent records the health of a component, keeping any
// staleness limit set earlier.
func RegisterComponent(name string, healthy bool, message string) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()

	comp := healthChecker.components[name]
	comp.Name = name
	comp.Healthy = healthy
	comp.Message = message
	comp.Updated = time.Now()
	healthChecker.components[name] = comp
}

// UpdateComponent updates the health status of a component
func UpdateComponent(name string, healthy bool, message string) {
	RegisterComponent(name, healthy, message)
}

// SetStaleAfter sets how long a component may go without reporting
func SetStaleAfter(name string, d time.Duration) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()

	comp := healthChecker.components[name]
	comp.Name = name
	comp.StaleAfter = d
	if comp.Updated.IsZero() {
		comp.Updated = time.Now()
	}
	healthChecker.components[name] = comp
}

// GetHealth reports unhealthy as soon as one registered component is
func GetHealth() HealthStatus {
	healthChecker.mu.RLock()
	defer healthChecker.mu.RUnlock()

	now := time.Now()
	status := "healthy"
	components := make(map[string]string)

	for name, comp := range healthChecker.components {
		if ok, why := comp.state(now); ok {
			components[name] = "healthy"
		} else {
			status = "unhealthy"
			components[name] = "unhealthy: " + why
		}
	}

	return HealthStatus{
		Status:     status,
		Timestamp:  now,
		Components: components,
		Version:    healthChecker.version,
		Uptime:     time.Since(healthChecker.startTime).String(),
		StartTime:  healthChecker.startTime,
	}
}

// GetReadiness reports ready once every critical component is registered and healthy
func GetReadiness() HealthStatus {
	healthChecker.mu.RLock()
	defer healthChecker.mu.RUnlock()

	now := time.Now()
	status := "ready"
	message := ""
	components := make(map[string]string)

	for _, name := range CriticalComponents {
		comp, exists := healthChecker.components[name]
		if !exists {
			status = "not_ready"
			message = "waiting for " + name + " initialization"
			components[name] = "not registered"
			continue
		}
		if ok, why := comp.state(now); ok {
			components[name] = "ready"
		} else {
			status = "not_ready"
			message = "waiting for " + name
			components[name] = "not ready: " + why
		}
	}

	return HealthStatus{
		Status:     status,
		Timestamp:  now,
		Components: components,
		Message:    message,
		Version:    healthChecker.version,
		Uptime:     time.Since(healthChecker.startTime).String(),
		StartTime:  healthChecker.startTime,
	}
}

func writeStatus(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// HealthHandler returns an HTTP handler for the /health endpoint
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := GetHealth()
		code := http.StatusOK
		if health.Status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		writeStatus(w, code, health)
	}
}

// ReadyHandler returns an HTTP handler for the /ready endpoint
func ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		readiness := GetReadiness()
		code := http.StatusOK
		if readiness.Status != "ready" {
			code = http.StatusServiceUnavailable
		}
		writeStatus(w, code, readiness)
	}
}

// LivenessHandler returns 200 as long as the process is serving
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "alive",
			"uptime": time.Since(healthChecker.startTime).String(),
		})
	}
}
