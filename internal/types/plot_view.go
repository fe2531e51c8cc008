package types

import "time"

// PlotView is the last plot query a user had open for a project, kept so the
// console can restore the selection on the next start.
type PlotView struct {
	Project   string    `json:"project"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
