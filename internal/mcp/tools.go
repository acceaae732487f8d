package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/zonetile/internal/ipc"
)

func (s *Server) handleListLayouts(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListLayoutsInput) (*mcpsdk.CallToolResult, ListLayoutsOutput, error) {
	layouts, err := s.client.ListLayouts()
	if err != nil {
		return nil, ListLayoutsOutput{}, err
	}
	out := ListLayoutsOutput{Layouts: make([]LayoutSummary, 0, len(layouts))}
	for _, l := range layouts {
		out.Layouts = append(out.Layouts, LayoutSummary{
			ID:        l.ID,
			Name:      l.Name,
			ZoneCount: len(l.Zones),
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args GetLayoutInput) (*mcpsdk.CallToolResult, GetLayoutOutput, error) {
	l, err := s.client.GetLayout(args.LayoutID)
	if err != nil {
		return nil, GetLayoutOutput{}, err
	}
	out := GetLayoutOutput{ID: l.ID, Name: l.Name, Zones: make([]ZoneDetail, 0, len(l.Zones))}
	for _, z := range l.Zones {
		out.Zones = append(out.Zones, ZoneDetail{
			ID:     z.ID,
			Number: z.DisplayIndex,
			X:      z.Rect.X,
			Y:      z.Rect.Y,
			W:      z.Rect.W,
			H:      z.Rect.H,
		})
	}
	return nil, out, nil
}

func (s *Server) handleGenerateLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args GenerateLayoutInput) (*mcpsdk.CallToolResult, GenerateLayoutOutput, error) {
	switch args.Kind {
	case "columns", "rows", "grid":
	default:
		return nil, GenerateLayoutOutput{}, fmt.Errorf("unknown generator kind %q; available: columns, rows, grid", args.Kind)
	}
	l, err := s.client.GenerateLayout(ipc.GenerateLayoutPayload{
		Kind:  args.Kind,
		Count: args.Count,
		Cols:  args.Cols,
		Rows:  args.Rows,
	})
	if err != nil {
		return nil, GenerateLayoutOutput{}, err
	}
	return nil, GenerateLayoutOutput{
		LayoutID:  l.ID,
		Name:      l.Name,
		ZoneCount: len(l.Zones),
	}, nil
}

func (s *Server) handleSnapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args SnapWindowInput) (*mcpsdk.CallToolResult, SnapWindowOutput, error) {
	var (
		res *ipc.SnapResult
		err error
	)
	switch {
	case len(args.ZoneIDs) > 0:
		res, err = s.client.Snap(args.WindowID, args.ZoneIDs)
	case args.Number > 0:
		res, err = s.client.SnapNumber(args.WindowID, args.Number)
	default:
		return nil, SnapWindowOutput{}, fmt.Errorf("either zone_ids or number is required")
	}
	if err != nil {
		return nil, SnapWindowOutput{}, err
	}
	return nil, SnapWindowOutput{WindowID: res.WindowID, Target: res.Target}, nil
}

func (s *Server) handleNavigateWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args NavigateWindowInput) (*mcpsdk.CallToolResult, NavigateWindowOutput, error) {
	moved, err := s.client.Navigate(args.WindowID, args.Direction)
	if err != nil {
		return nil, NavigateWindowOutput{}, err
	}
	return nil, NavigateWindowOutput{Moved: moved}, nil
}

func (s *Server) handleToggleFloat(_ context.Context, _ *mcpsdk.CallToolRequest, args ToggleFloatInput) (*mcpsdk.CallToolResult, ToggleFloatOutput, error) {
	res, err := s.client.ToggleFloat(args.WindowID)
	if err != nil {
		return nil, ToggleFloatOutput{}, err
	}
	return nil, ToggleFloatOutput{WindowID: res.WindowID, Target: res.Target}, nil
}

func (s *Server) handleQueryWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args QueryWindowInput) (*mcpsdk.CallToolResult, QueryWindowOutput, error) {
	data, err := s.client.QueryWindow(args.WindowID)
	if err != nil {
		return nil, QueryWindowOutput{}, err
	}
	return nil, QueryWindowOutput{
		WindowID: data.WindowID,
		ZoneIDs:  data.ZoneIDs,
		LayoutID: data.LayoutID,
		ScreenID: data.ScreenID,
		Stale:    data.Stale,
	}, nil
}

func (s *Server) handleZoneOccupants(_ context.Context, _ *mcpsdk.CallToolRequest, args ZoneOccupantsInput) (*mcpsdk.CallToolResult, ZoneOccupantsOutput, error) {
	data, err := s.client.Occupants(args.LayoutID)
	if err != nil {
		return nil, ZoneOccupantsOutput{}, err
	}
	return nil, ZoneOccupantsOutput{
		LayoutID:  data.LayoutID,
		Occupants: data.Occupants,
	}, nil
}

func (s *Server) handleBindContext(_ context.Context, _ *mcpsdk.CallToolRequest, args BindContextInput) (*mcpsdk.CallToolResult, BindContextOutput, error) {
	err := s.client.BindContext(ipc.BindContextPayload{
		Screen:   args.Screen,
		Desktop:  args.Desktop,
		Activity: args.Activity,
		LayoutID: args.LayoutID,
	})
	if err != nil {
		return nil, BindContextOutput{}, err
	}
	return nil, BindContextOutput{Bound: true}, nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{
		LayoutCount:    status.LayoutCount,
		TrackedWindows: status.TrackedWindows,
		UptimeSeconds:  status.UptimeSeconds,
	}, nil
}
