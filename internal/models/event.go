package models

// BroadcastEvent is published to the broker when a broadcast media item
// goes live and consumed by the notifier worker.
type BroadcastEvent struct {
	MediaID     string `json:"mediaId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
}
