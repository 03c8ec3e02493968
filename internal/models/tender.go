package models

import "time"

// Tender represents a normalized tender record scraped from an external source
type Tender struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Reference string     `json:"reference"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	SourceURL string     `json:"source_url"`
	Format    string     `json:"format"`
	Source    string     `json:"source"`
	CreatedAt time.Time  `json:"created_at,omitempty"`
}
