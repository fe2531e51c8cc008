package types

import (
	"fmt"
	"strings"
)

type DimensionKind string

const (
	DimensionBranch    DimensionKind = "branch"
	DimensionTestbed   DimensionKind = "testbed"
	DimensionBenchmark DimensionKind = "benchmark"
	DimensionMeasure   DimensionKind = "measure"
)

var dimensionKinds = []DimensionKind{
	DimensionBranch,
	DimensionTestbed,
	DimensionBenchmark,
	DimensionMeasure,
}

// DimensionKinds returns every kind in tab order.
func DimensionKinds() []DimensionKind {
	return append([]DimensionKind{}, dimensionKinds...)
}

func ParseDimensionKind(raw string) (DimensionKind, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	for _, kind := range dimensionKinds {
		if value == string(kind) || value == kind.Plural() {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown dimension kind %q", raw)
}

func (k DimensionKind) IsValid() bool {
	switch k {
	case DimensionBranch, DimensionTestbed, DimensionBenchmark, DimensionMeasure:
		return true
	}
	return false
}

// Plural is the collection name used in API paths and plot query keys.
func (k DimensionKind) Plural() string {
	switch k {
	case DimensionBranch:
		return "branches"
	case DimensionTestbed:
		return "testbeds"
	case DimensionBenchmark:
		return "benchmarks"
	case DimensionMeasure:
		return "measures"
	default:
		return ""
	}
}

func (k DimensionKind) Title() string {
	value := string(k)
	if value == "" {
		return ""
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

func (k DimensionKind) Index() int {
	for i, kind := range dimensionKinds {
		if kind == k {
			return i
		}
	}
	return -1
}

// Next cycles through the kinds in tab order.
func (k DimensionKind) Next(delta int) DimensionKind {
	idx := k.Index()
	if idx < 0 {
		return dimensionKinds[0]
	}
	n := len(dimensionKinds)
	return dimensionKinds[((idx+delta)%n+n)%n]
}

// DimensionRef is the projection shared by every record kind.
type DimensionRef struct {
	Kind DimensionKind `json:"kind"`
	UUID string        `json:"uuid"`
	Slug string        `json:"slug"`
	Name string        `json:"name"`
}

func (r DimensionRef) IsZero() bool {
	return r.UUID == ""
}
