// Package urlstate encodes the plot selection and list view state as console
// URL query parameters.
package urlstate

import (
	"net/url"
	"strconv"
	"strings"

	"perfdeck/internal/types"
)

const (
	KeyTab  = "tab"
	KeyBack = "back"

	suffixPage    = "_page"
	suffixPerPage = "_per_page"
	suffixSearch  = "_search"
)

// PlotQuery is the decoded form of a perf page query string. Checked holds
// the ordered uuids per kind; Lists holds the page/per_page/search of each
// kind's list.
type PlotQuery struct {
	Tab     types.DimensionKind
	Checked map[types.DimensionKind][]string
	Lists   map[types.DimensionKind]types.ListParams
	Extra   url.Values
}

func NewPlotQuery() PlotQuery {
	return PlotQuery{
		Tab:     types.DimensionBranch,
		Checked: map[types.DimensionKind][]string{},
		Lists:   map[types.DimensionKind]types.ListParams{},
		Extra:   url.Values{},
	}
}

// ParsePlotQuery decodes a raw query string. Unknown keys are kept in Extra
// and survive re-encoding. Checked ids are opaque: blanks and duplicates are
// dropped and uuids are lowercased, everything else is kept verbatim.
func ParsePlotQuery(raw string) (PlotQuery, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return NewPlotQuery(), err
	}
	return FromValues(values), nil
}

func FromValues(values url.Values) PlotQuery {
	q := NewPlotQuery()
	known := map[string]struct{}{KeyTab: {}}
	if tab, err := types.ParseDimensionKind(values.Get(KeyTab)); err == nil {
		q.Tab = tab
	}
	for _, kind := range types.DimensionKinds() {
		plural := kind.Plural()
		known[plural] = struct{}{}
		known[plural+suffixPage] = struct{}{}
		known[plural+suffixPerPage] = struct{}{}
		known[plural+suffixSearch] = struct{}{}

		if checked := SplitUUIDs(values.Get(plural)); len(checked) > 0 {
			q.Checked[kind] = checked
		}
		params := types.ListParams{
			Page:    atoi(values.Get(plural + suffixPage)),
			PerPage: atoi(values.Get(plural + suffixPerPage)),
			Search:  values.Get(plural + suffixSearch),
		}
		if params != (types.ListParams{}) {
			q.Lists[kind] = params.Normalized()
		}
	}
	for key, vals := range values {
		if _, ok := known[key]; ok {
			continue
		}
		q.Extra[key] = append([]string{}, vals...)
	}
	return q
}

func (q PlotQuery) Values() url.Values {
	values := url.Values{}
	for key, vals := range q.Extra {
		values[key] = append([]string{}, vals...)
	}
	if q.Tab.IsValid() {
		values.Set(KeyTab, string(q.Tab))
	}
	for _, kind := range types.DimensionKinds() {
		plural := kind.Plural()
		if checked := q.Checked[kind]; len(checked) > 0 {
			values.Set(plural, JoinUUIDs(checked))
		}
		params, ok := q.Lists[kind]
		if !ok {
			continue
		}
		params = params.Normalized()
		if params.Page > 1 {
			values.Set(plural+suffixPage, strconv.Itoa(params.Page))
		}
		if params.PerPage != types.DefaultPerPage {
			values.Set(plural+suffixPerPage, strconv.Itoa(params.PerPage))
		}
		if params.Search != "" {
			values.Set(plural+suffixSearch, params.Search)
		}
	}
	return values
}

// Encode returns the query string with keys in sorted order.
func (q PlotQuery) Encode() string {
	return q.Values().Encode()
}

func (q PlotQuery) CheckedFor(kind types.DimensionKind) []string {
	return append([]string{}, q.Checked[kind]...)
}

// WithChecked replaces the checked uuids of one kind. Other kinds are left
// as they are.
func (q PlotQuery) WithChecked(kind types.DimensionKind, uuids []string) PlotQuery {
	next := q.clone()
	cleaned := types.NormalizeIDs(uuids)
	if len(cleaned) == 0 {
		delete(next.Checked, kind)
		return next
	}
	next.Checked[kind] = cleaned
	return next
}

func (q PlotQuery) ListFor(kind types.DimensionKind) types.ListParams {
	return q.Lists[kind].Normalized()
}

func (q PlotQuery) WithList(kind types.DimensionKind, params types.ListParams) PlotQuery {
	next := q.clone()
	next.Lists[kind] = params.Normalized()
	return next
}

// WithSearch sets the search term of one kind's list, going back to page 1
// when the term changes. The checked uuids are untouched.
func (q PlotQuery) WithSearch(kind types.DimensionKind, search string) PlotQuery {
	return q.WithList(kind, q.ListFor(kind).WithSearch(search))
}

func (q PlotQuery) WithTab(kind types.DimensionKind) PlotQuery {
	next := q.clone()
	if kind.IsValid() {
		next.Tab = kind
	}
	return next
}

// IsEmpty reports whether no dimension is checked in any kind.
func (q PlotQuery) IsEmpty() bool {
	for _, kind := range types.DimensionKinds() {
		if len(q.Checked[kind]) > 0 {
			return false
		}
	}
	return true
}

func (q PlotQuery) clone() PlotQuery {
	next := PlotQuery{
		Tab:     q.Tab,
		Checked: make(map[types.DimensionKind][]string, len(q.Checked)),
		Lists:   make(map[types.DimensionKind]types.ListParams, len(q.Lists)),
		Extra:   url.Values{},
	}
	for kind, uuids := range q.Checked {
		next.Checked[kind] = append([]string{}, uuids...)
	}
	for kind, params := range q.Lists {
		next.Lists[kind] = params
	}
	for key, vals := range q.Extra {
		next.Extra[key] = append([]string{}, vals...)
	}
	return next
}

// SplitUUIDs parses a comma-joined id list, keeping the first occurrence of
// each id in order.
func SplitUUIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return types.NormalizeIDs(strings.Split(raw, ","))
}

func JoinUUIDs(uuids []string) string {
	return strings.Join(types.NormalizeIDs(uuids), ",")
}

func atoi(raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return value
}
