package models

import "time"

// GeneratedContentItem is a piece of AI-written content kept for the owner.
type GeneratedContentItem struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Platform  string    `json:"platform"`
	Prompt    string    `json:"prompt"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
