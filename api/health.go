package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"
)

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Memory    MemoryStats       `json:"memory"`
	OCR       ServiceStatus     `json:"ocr"`
	Database  ServiceStatus     `json:"database"`
	Storage   ServiceStatus     `json:"storage"`
	Config    map[string]string `json:"config"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var (
	// healthCheckTimeout bounds all dependency probes of one /health call
	healthCheckTimeout = 2 * time.Second

	startTime = time.Now()
)

// Health reports process stats and the state of each dependency. Only the
// OCR engine is critical; the database and archive are optional.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	ocrStatus := h.checkOCR(ctx)

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		OCR:      ocrStatus,
		Database: h.checkDatabase(ctx),
		Storage:  h.checkStorage(ctx),
		Config: map[string]string{
			"ocrEngine":   h.ocr.EngineName(),
			"ocrLanguage": h.config.OCR.Language,
			"ocrTimeout":  h.config.OCR.Timeout.String(),
			"auth":        fmt.Sprintf("%t", h.config.Auth.JWTSecret != ""),
		},
	}

	if !ocrStatus.Available {
		response.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// checkOCR verifies the OCR engine can run on this host
func (h *Handler) checkOCR(ctx context.Context) ServiceStatus {
	version, err := h.ocr.EngineVersion(ctx)
	if err != nil {
		return ServiceStatus{
			Available: false,
			Error:     err.Error(),
		}
	}
	return ServiceStatus{
		Available: true,
		Version:   version,
	}
}

// checkDatabase pings the extraction log store
func (h *Handler) checkDatabase(ctx context.Context) ServiceStatus {
	if h.store == nil {
		return ServiceStatus{
			Available: false,
			Error:     "database not configured",
		}
	}
	if err := h.store.Ping(ctx); err != nil {
		return ServiceStatus{
			Available: false,
			Error:     err.Error(),
		}
	}
	return ServiceStatus{
		Available: true,
		Version:   "PostgreSQL",
	}
}

// checkStorage verifies the image archive bucket is reachable
func (h *Handler) checkStorage(ctx context.Context) ServiceStatus {
	if h.archive == nil {
		return ServiceStatus{
			Available: false,
			Error:     "storage not configured",
		}
	}
	if err := h.archive.Available(ctx); err != nil {
		return ServiceStatus{
			Available: false,
			Error:     err.Error(),
		}
	}
	return ServiceStatus{
		Available: true,
		Version:   "MinIO S3",
	}
}
