package models

// SearchTerm represents a keyword used to filter scraped tenders
type SearchTerm struct {
	ID   int    `json:"id"`
	Term string `json:"term"`
}

// SearchTermRequest represents the body of add and edit search term requests
type SearchTermRequest struct {
	Term string `json:"term"`
}

// BulkSearchTermRequest represents the body of the bulk add request
type BulkSearchTermRequest struct {
	Terms []string `json:"terms"`
}

// BulkEditSearchTermRequest represents the body of the bulk edit request
type BulkEditSearchTermRequest struct {
	Terms []SearchTerm `json:"terms"`
}
