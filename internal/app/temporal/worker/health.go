package worker

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthStatus represents the worker health status
type HealthStatus struct {
	mu sync.RWMutex

	WorkerID  string           `json:"worker_id"`
	TaskQueue string           `json:"task_queue"`
	Status    string           `json:"status"`
	Uptime    string           `json:"uptime"`
	StartedAt time.Time        `json:"started_at"`
	Temporal  ConnectionStatus `json:"temporal"`
}

// ConnectionStatus represents a connection status
type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	Endpoint  string `json:"endpoint"`
	Error     string `json:"error,omitempty"`
}

// NewHealthStatus creates a status for a connected worker
func NewHealthStatus(workerID, taskQueue, endpoint string) *HealthStatus {
	return &HealthStatus{
		WorkerID:  workerID,
		TaskQueue: taskQueue,
		Status:    "running",
		StartedAt: time.Now(),
		Temporal:  ConnectionStatus{Connected: true, Endpoint: endpoint},
	}
}

// SetTemporal records the current connection state
func (h *HealthStatus) SetTemporal(connected bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Temporal.Connected = connected
	h.Temporal.Error = ""
	if err != nil {
		h.Temporal.Error = err.Error()
	}
}

func (h *HealthStatus) ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.Temporal.Connected
}

// HealthHandler serves /health, /live and /ready
func HealthHandler(status *HealthStatus) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status.mu.Lock()
		status.Uptime = time.Since(status.StartedAt).Round(time.Second).String()
		status.mu.Unlock()

		status.mu.RLock()
		defer status.mu.RUnlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	})

	mux.HandleFunc("/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if status.ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("READY"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("NOT READY"))
	})

	return mux
}
