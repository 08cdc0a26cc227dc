package dto

// HealthResponse is returned by the probe endpoints. Checks maps each
// dependency to "ok" or its error.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
