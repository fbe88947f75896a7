package model

import "time"

// HealthStatus represents the health check status
type HealthStatus struct {
	Status      string    `json:"status"`
	Service     string    `json:"service"`
	Version     string    `json:"version"`
	Datasets    int       `json:"datasets"`
	RefreshedAt time.Time `json:"refreshed_at,omitzero"`
}
