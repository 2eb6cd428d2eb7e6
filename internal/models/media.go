package models

import "time"

// Media types accepted by the catalog.
const (
	MediaArticle = "article"
	MediaVideo   = "video"
	MediaBanner  = "banner"
	MediaUpdate  = "update"
	MediaAlert   = "alert"
)

// Media is an awareness-content item managed by admins. Deletion is a
// soft delete: IsActive is flipped and the row stays in place.
type Media struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Type         string     `json:"type"`
	Content      string     `json:"content"`
	MediaURL     string     `json:"mediaUrl,omitempty"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
	Tags         []string   `json:"tags"`
	IsPublished  bool       `json:"isPublished"`
	IsBroadcast  bool       `json:"isBroadcast"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
	ViewCount    int        `json:"viewCount"`
	CreatedBy    string     `json:"createdBy"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// MediaTypeCount is one bucket of the per-type dashboard aggregation.
type MediaTypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}
