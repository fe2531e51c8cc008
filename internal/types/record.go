package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Record is one fetched dimension. The set of implementations is closed:
// Branch, Testbed, Benchmark and Measure.
type Record interface {
	Ref() DimensionRef
	record()
}

type Branch struct {
	UUID       string            `json:"uuid"`
	Project    string            `json:"project,omitempty"`
	Name       string            `json:"name"`
	Slug       string            `json:"slug"`
	StartPoint *BranchStartPoint `json:"start_point,omitempty"`
	Created    time.Time         `json:"created"`
	Modified   time.Time         `json:"modified"`
}

type BranchStartPoint struct {
	Branch  string `json:"branch"`
	Version int    `json:"version,omitempty"`
	Hash    string `json:"hash,omitempty"`
}

type Testbed struct {
	UUID     string    `json:"uuid"`
	Project  string    `json:"project,omitempty"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

type Benchmark struct {
	UUID     string    `json:"uuid"`
	Project  string    `json:"project,omitempty"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

type Measure struct {
	UUID     string    `json:"uuid"`
	Project  string    `json:"project,omitempty"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Units    string    `json:"units"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

func (b Branch) Ref() DimensionRef {
	return DimensionRef{Kind: DimensionBranch, UUID: b.UUID, Slug: b.Slug, Name: b.Name}
}

func (t Testbed) Ref() DimensionRef {
	return DimensionRef{Kind: DimensionTestbed, UUID: t.UUID, Slug: t.Slug, Name: t.Name}
}

func (b Benchmark) Ref() DimensionRef {
	return DimensionRef{Kind: DimensionBenchmark, UUID: b.UUID, Slug: b.Slug, Name: b.Name}
}

func (m Measure) Ref() DimensionRef {
	return DimensionRef{Kind: DimensionMeasure, UUID: m.UUID, Slug: m.Slug, Name: m.Name}
}

func (Branch) record()    {}
func (Testbed) record()   {}
func (Benchmark) record() {}
func (Measure) record()   {}

// DecodeRecords decodes a JSON array of records of the given kind.
func DecodeRecords(kind DimensionKind, data []byte) ([]Record, error) {
	switch kind {
	case DimensionBranch:
		return decodeAs[Branch](data)
	case DimensionTestbed:
		return decodeAs[Testbed](data)
	case DimensionBenchmark:
		return decodeAs[Benchmark](data)
	case DimensionMeasure:
		return decodeAs[Measure](data)
	default:
		return nil, fmt.Errorf("unknown dimension kind %q", kind)
	}
}

// DecodeRecord decodes a single JSON object of the given kind.
func DecodeRecord(kind DimensionKind, data []byte) (Record, error) {
	if len(data) == 0 {
		return nil, errors.New("record payload is empty")
	}
	switch kind {
	case DimensionBranch:
		return decodeOne[Branch](data)
	case DimensionTestbed:
		return decodeOne[Testbed](data)
	case DimensionBenchmark:
		return decodeOne[Benchmark](data)
	case DimensionMeasure:
		return decodeOne[Measure](data)
	default:
		return nil, fmt.Errorf("unknown dimension kind %q", kind)
	}
}

func decodeOne[T Record](data []byte) (Record, error) {
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return item, nil
}

func decodeAs[T Record](data []byte) ([]Record, error) {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out, nil
}

// NewRecord builds a record of the given kind from the shared projection.
func NewRecord(ref DimensionRef) (Record, error) {
	switch ref.Kind {
	case DimensionBranch:
		return Branch{UUID: ref.UUID, Slug: ref.Slug, Name: ref.Name}, nil
	case DimensionTestbed:
		return Testbed{UUID: ref.UUID, Slug: ref.Slug, Name: ref.Name}, nil
	case DimensionBenchmark:
		return Benchmark{UUID: ref.UUID, Slug: ref.Slug, Name: ref.Name}, nil
	case DimensionMeasure:
		return Measure{UUID: ref.UUID, Slug: ref.Slug, Name: ref.Name}, nil
	default:
		return nil, fmt.Errorf("unknown dimension kind %q", ref.Kind)
	}
}
