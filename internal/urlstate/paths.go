package urlstate

import (
	"errors"
	"net/url"
	"path"
	"strings"

	"perfdeck/internal/types"
)

const consoleProjectsRoot = "/console/projects"

func ProjectPath(project string) string {
	return consoleProjectsRoot + "/" + url.PathEscape(strings.TrimSpace(project))
}

// PlotPath is the perf page of a project with the given query.
func PlotPath(project string, q PlotQuery) string {
	p := ProjectPath(project) + "/perf"
	if encoded := q.Encode(); encoded != "" {
		return p + "?" + encoded
	}
	return p
}

// ListPath is the console page listing every dimension of one kind.
func ListPath(project string, kind types.DimensionKind) string {
	return ProjectPath(project) + "/" + kind.Plural()
}

// ManagePath is the console page of one dimension. back is the path to
// return to and is carried as an encoded query parameter.
func ManagePath(project string, kind types.DimensionKind, slug, back string) string {
	p := ListPath(project, kind) + "/" + url.PathEscape(strings.TrimSpace(slug))
	if strings.TrimSpace(back) == "" {
		return p
	}
	return p + "?" + url.Values{KeyBack: []string{back}}.Encode()
}

// ManageTarget is a parsed manage path.
type ManageTarget struct {
	Project string
	Kind    types.DimensionKind
	Slug    string
	Back    string
}

func ParseManagePath(raw string) (ManageTarget, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ManageTarget{}, err
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 5 || parts[0] != "console" || parts[1] != "projects" {
		return ManageTarget{}, errors.New("not a dimension manage path")
	}
	kind, err := types.ParseDimensionKind(parts[3])
	if err != nil {
		return ManageTarget{}, err
	}
	return ManageTarget{
		Project: parts[2],
		Kind:    kind,
		Slug:    parts[4],
		Back:    u.Query().Get(KeyBack),
	}, nil
}

// AfterDeletePath is where to go once the resource at currentPath is gone:
// the back path when one was given, else the parent list.
func AfterDeletePath(currentPath string) string {
	u, err := url.Parse(strings.TrimSpace(currentPath))
	if err != nil {
		return consoleProjectsRoot
	}
	if back := strings.TrimSpace(u.Query().Get(KeyBack)); back != "" {
		return back
	}
	parent := path.Dir(strings.TrimRight(u.Path, "/"))
	if parent == "." || parent == "/" {
		return consoleProjectsRoot
	}
	return parent
}
