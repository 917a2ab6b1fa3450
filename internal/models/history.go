package models

// SavedAtLayout is the fixed-width UTC format used for the saved_at
// column. Fixed width keeps lexicographic order equal to chronological
// order on every storage dialect.
const SavedAtLayout = "2006-01-02T15:04:05.000000Z"

// HistoryItem is a saved interpretation event belonging to a user.
// Thoughts and Details are optional; Details always holds the already
// serialized text form of whatever the caller submitted.
type HistoryItem struct {
	ID       int     `json:"id"`
	UserID   int     `json:"userId"`
	Time     string  `json:"time"`
	Type     string  `json:"type"`
	Thoughts *string `json:"thoughts"`
	Details  *string `json:"details"`
	SavedAt  string  `json:"saved_at"`
}
