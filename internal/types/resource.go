package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Resource is the raw JSON object of the single resource being viewed.
type Resource map[string]any

func (r Resource) Field(key string) string {
	if r == nil {
		return ""
	}
	value, ok := r[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprintf("%v", value)
}

func (r Resource) UUID() string { return r.Field("uuid") }
func (r Resource) Slug() string { return r.Field("slug") }
func (r Resource) Name() string { return r.Field("name") }

// ResourceFromRecord converts a typed record into its raw payload form.
func ResourceFromRecord(record Record) (Resource, error) {
	if record == nil {
		return nil, fmt.Errorf("record is required")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	out := Resource{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
