package app

import (
	"time"

	"perfdeck/internal/types"
	"perfdeck/internal/urlstate"
)

type dimensionsMsg struct {
	kind    types.DimensionKind
	params  types.ListParams
	records []types.Record
	err     error
}

type resourceMsg struct {
	target   urlstate.ManageTarget
	resource types.Resource
	err      error
}

// deleteFinishedMsg reports that a ConfirmDelete call returned. sent is false
// when a precondition failed and no request went out.
type deleteFinishedMsg struct {
	sent bool
}

type plotSavedMsg struct {
	project string
	err     error
}

type tickMsg time.Time
