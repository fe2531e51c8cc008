// Package selection keeps the ordered set of checked dimension uuids for one
// tab consistent with the page of records currently on screen.
//
// The checked flag of a row is always computed from the checked set at render
// time. Records are never annotated, so a refetch that changes the page can
// not leave a stale flag behind.
package selection

import "perfdeck/internal/types"

// Row is one rendered line of a dimension list.
type Row struct {
	Index       int
	Ref         types.DimensionRef
	Checked     bool
	Placeholder bool
}

// Interactive reports whether the row can be toggled. Placeholder rows have
// no record behind them.
func (r Row) Interactive() bool {
	return !r.Placeholder && r.Ref.UUID != ""
}

// Change describes the effect of a single toggle.
type Change struct {
	Ref     types.DimensionRef
	Slug    string
	Checked bool
}

type Reconciler struct {
	kind    types.DimensionKind
	checked []string
	records []types.Record
	params  types.ListParams
	loading bool
	removed removal
}

// removal remembers where the last toggled-off uuid sat so that toggling it
// straight back on restores the previous order.
type removal struct {
	uuid string
	pos  int
}

// New seeds a reconciler for one tab, usually from the uuids decoded out of
// the plot URL. Uuids are keyed by types.NormalizeID, so blank and repeated
// values are dropped and the first occurrence wins.
func New(kind types.DimensionKind, checked []string) *Reconciler {
	return &Reconciler{
		kind:    kind,
		checked: types.NormalizeIDs(checked),
		params:  types.ListParams{}.Normalized(),
		loading: true,
	}
}

func (r *Reconciler) Kind() types.DimensionKind {
	return r.kind
}

// Checked returns a copy of the checked uuids in insertion order.
func (r *Reconciler) Checked() []string {
	return append([]string{}, r.checked...)
}

func (r *Reconciler) IsChecked(uuid string) bool {
	return indexOf(r.checked, types.NormalizeID(uuid)) >= 0
}

func (r *Reconciler) Params() types.ListParams {
	return r.params
}

func (r *Reconciler) Loading() bool {
	return r.loading
}

// BeginFetch switches the list into loading. Until Resolve is called the
// rows are placeholders and Toggle is a no-op.
func (r *Reconciler) BeginFetch(params types.ListParams) {
	r.params = params.Normalized()
	r.loading = true
	r.removed = removal{}
}

// Resolve installs the page returned by the most recent fetch to complete.
func (r *Reconciler) Resolve(records []types.Record) {
	r.records = append([]types.Record{}, records...)
	r.loading = false
}

func (r *Reconciler) Records() []types.Record {
	return append([]types.Record{}, r.records...)
}

func (r *Reconciler) Rows() []Row {
	return Render(r.records, r.checked, r.loading, r.params.PerPage)
}

// NothingFound is true when a fetch has resolved with no records.
func (r *Reconciler) NothingFound() bool {
	return !r.loading && len(r.records) == 0
}

// CanClear reports whether there is anything for Clear to remove.
func (r *Reconciler) CanClear() bool {
	return len(r.checked) > 0
}

// Toggle flips the record at index of the current page. A checked uuid is
// removed; an unchecked one is appended to the end, unless it is the uuid
// removed by the immediately preceding toggle, which goes back to its old
// position. Identity is the uuid; slug is only handed back to the caller.
func (r *Reconciler) Toggle(index int, slug string) (Change, bool) {
	if r.loading || index < 0 || index >= len(r.records) {
		return Change{}, false
	}
	record := r.records[index]
	if record == nil {
		return Change{}, false
	}
	ref := record.Ref()
	id := types.NormalizeID(ref.UUID)
	if id == "" {
		return Change{}, false
	}
	change := Change{Ref: ref, Slug: slug}
	if pos := indexOf(r.checked, id); pos >= 0 {
		next := make([]string, 0, len(r.checked)-1)
		next = append(next, r.checked[:pos]...)
		next = append(next, r.checked[pos+1:]...)
		r.checked = next
		r.removed = removal{uuid: id, pos: pos}
		return change, true
	}
	pos := len(r.checked)
	if r.removed.uuid == id && r.removed.pos < pos {
		pos = r.removed.pos
	}
	next := make([]string, 0, len(r.checked)+1)
	next = append(next, r.checked[:pos]...)
	next = append(next, id)
	next = append(next, r.checked[pos:]...)
	r.checked = next
	r.removed = removal{}
	change.Checked = true
	return change, true
}

// Clear empties the checked set for this tab.
func (r *Reconciler) Clear() bool {
	changed := len(r.checked) > 0
	r.checked = []string{}
	r.removed = removal{}
	return changed
}

// Render merges records with the checked set. While loading it returns
// perPage placeholder rows instead so the list keeps its height.
func Render(records []types.Record, checked []string, loading bool, perPage int) []Row {
	if loading {
		if perPage <= 0 {
			perPage = types.DefaultPerPage
		}
		rows := make([]Row, perPage)
		for i := range rows {
			rows[i] = Row{Index: i, Placeholder: true}
		}
		return rows
	}
	set := make(map[string]struct{}, len(checked))
	for _, uuid := range checked {
		set[types.NormalizeID(uuid)] = struct{}{}
	}
	rows := make([]Row, 0, len(records))
	for i, record := range records {
		if record == nil {
			continue
		}
		ref := record.Ref()
		_, ok := set[types.NormalizeID(ref.UUID)]
		rows = append(rows, Row{Index: i, Ref: ref, Checked: ok})
	}
	return rows
}

func indexOf(values []string, value string) int {
	for i, v := range values {
		if v == value {
			return i
		}
	}
	return -1
}
