package study

import "time"

// DatasetRef points at a study's data file.
type DatasetRef struct {
	Path    string    `json:"path"`
	Sheet   string    `json:"sheet,omitempty"`
	Rows    int       `json:"rows"`
	Columns int       `json:"columns"`
	AddedAt time.Time `json:"added_at"`
}

// Run records one cross-tab run.
type Run struct {
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
	Tables int       `json:"tables"`
	Output string    `json:"output"`
}
