package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
	Error       string `json:"error,omitempty"`
}

// MetricsSummary is returned by GET /v1/metrics/summary.
type MetricsSummary struct {
	StoreRequests  int64            `json:"storeRequests"`
	StoreErrors    int64            `json:"storeErrors"`
	StoreErrorRate float64          `json:"storeErrorRate"`
	Aggregations   map[string]int64 `json:"aggregations"`
	Period         string           `json:"period"`
}
