package app

import (
	"context"

	"perfdeck/internal/types"
)

// DimensionAPI is the subset of the API client the console needs. Both the
// HTTP client and the offline fixture source satisfy it.
type DimensionAPI interface {
	ListDimensions(ctx context.Context, project string, kind types.DimensionKind, params types.ListParams) ([]types.Record, error)
	GetDimension(ctx context.Context, project string, kind types.DimensionKind, slug string) (types.Resource, error)
	DimensionURL(project string, kind types.DimensionKind, slug string) string
	Delete(ctx context.Context, rawURL, token string) error
}

// PlotViewStore persists the last plot query per project.
type PlotViewStore interface {
	Get(ctx context.Context, project string) (*types.PlotView, bool, error)
	Save(ctx context.Context, view *types.PlotView) (*types.PlotView, error)
}
