package types

import "strings"

const (
	DefaultPerPage = 8
	MaxPerPage     = 255
)

// ListParams is the transient view of one dimension list: which page, how
// many rows per page and the active search term.
type ListParams struct {
	Page    int
	PerPage int
	Search  string
}

func (p ListParams) Normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

// WithSearch changes the search term and, when it differs, goes back to the
// first page.
func (p ListParams) WithSearch(search string) ListParams {
	search = strings.TrimSpace(search)
	if search != strings.TrimSpace(p.Search) {
		p.Page = 1
	}
	p.Search = search
	return p.Normalized()
}
