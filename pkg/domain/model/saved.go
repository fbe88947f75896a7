package model

import "time"

// SavedDataset is a dataset bookmarked by a user
type SavedDataset struct {
	ID        string    `json:"id" firestore:"id"`
	User      string    `json:"user" firestore:"user"`
	DatasetID string    `json:"dataset_id" firestore:"dataset_id"`
	SavedAt   time.Time `json:"saved_at" firestore:"saved_at"`
}
