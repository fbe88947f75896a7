package model

import "time"

// RegistryAction is the action reported by a registry webhook
type RegistryAction string

const (
	ActionCreate RegistryAction = "create"
	ActionUpdate RegistryAction = "update"
	ActionDelete RegistryAction = "delete"
	ActionMove   RegistryAction = "move"
)

// RegistryEvent represents a webhook event received from the dataset registry
type RegistryEvent struct {
	ID         string         // Retrieved from X-Registry-Delivery header, generated when absent
	Action     RegistryAction // Event action (e.g., create, update)
	Scope      string         // Event scope (e.g., repo, repo.content)
	RepoType   string         // Repository type (dataset, model, space)
	RepoName   string         // Repository name, the dataset ID for dataset repos
	ReceivedAt time.Time      // Time when the event was received
	RawPayload []byte         // Raw JSON payload
}

// TriggersRefresh checks if the event changes the dataset catalog
func (e *RegistryEvent) TriggersRefresh() bool {
	if e.RepoType != "dataset" {
		return false
	}
	switch e.Action {
	case ActionCreate, ActionUpdate, ActionDelete, ActionMove:
		return true
	default:
		return false
	}
}
