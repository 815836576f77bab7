package models

// ProgressUpdate is broadcast to websocket clients while the enrichment worker runs.
type ProgressUpdate struct {
	JobID    string  `json:"jobId"`
	Message  string  `json:"message"`
	Progress float64 `json:"progress"`
	UserID   string  `json:"userId,omitempty"`
	ListID   string  `json:"listId,omitempty"`
	ItemID   string  `json:"itemId,omitempty"`
	Status   string  `json:"status"` // "running", "enriched", "failed", "stopped", "completed"
	Done     bool    `json:"done"`
}
