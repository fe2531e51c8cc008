package app

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"perfdeck/internal/deletion"
	"perfdeck/internal/types"
	"perfdeck/internal/urlstate"
)

const requestTimeout = 10 * time.Second

func fetchDimensionsCmd(api DimensionAPI, project string, kind types.DimensionKind, params types.ListParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		records, err := api.ListDimensions(ctx, project, kind, params)
		return dimensionsMsg{kind: kind, params: params, records: records, err: err}
	}
}

func fetchResourceCmd(api DimensionAPI, target urlstate.ManageTarget) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resource, err := api.GetDimension(ctx, target.Project, target.Kind, target.Slug)
		return resourceMsg{target: target, resource: resource, err: err}
	}
}

func confirmDeleteCmd(ctrl *deletion.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return deleteFinishedMsg{sent: ctrl.ConfirmDelete(ctx)}
	}
}

func savePlotViewCmd(store PlotViewStore, project string, query urlstate.PlotQuery) tea.Cmd {
	if store == nil || project == "" {
		return nil
	}
	encoded := query.Encode()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, err := store.Save(ctx, &types.PlotView{Project: project, Query: encoded})
		return plotSavedMsg{project: project, err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
