package internal

import "time"

// RunRecord describes one translation pass over a catalog file.
type RunRecord struct {
	ID          string    `json:"id"`
	CatalogPath string    `json:"catalog_path"`
	Language    string    `json:"language"`
	Provider    string    `json:"provider"`
	Budget      int       `json:"budget"`
	Candidates  int       `json:"candidates"`
	Applied     int       `json:"applied"`
	StopIndex   int       `json:"stop_index"` // -1 when the budget was not reached
	Timestamp   time.Time `json:"timestamp"`
}
