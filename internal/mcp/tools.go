package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleBarrierStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ BarrierStatusInput) (*mcpsdk.CallToolResult, BarrierStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, BarrierStatusOutput{}, err
	}
	return nil, *status, nil
}

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	displays, err := s.client.GetDisplays()
	if err != nil {
		return nil, ListDisplaysOutput{}, err
	}
	return nil, *displays, nil
}

func (s *Server) handleRecomputeBarrier(_ context.Context, _ *mcpsdk.CallToolRequest, _ RecomputeBarrierInput) (*mcpsdk.CallToolResult, RecomputeBarrierOutput, error) {
	if err := s.client.Recompute(); err != nil {
		return nil, RecomputeBarrierOutput{}, err
	}

	// Recomputation is synchronous on the daemon side, so a follow-up
	// status read reflects the new barrier.
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, RecomputeBarrierOutput{}, err
	}

	out := RecomputeBarrierOutput{
		BarrierActive:  status.BarrierActive,
		BarrierVisible: status.BarrierVisible,
		Barrier:        status.Barrier,
		DisplayCount:   status.DisplayCount,
	}
	return nil, out, nil
}

func (s *Server) handlePauseGuardian(_ context.Context, _ *mcpsdk.CallToolRequest, args PauseGuardianInput) (*mcpsdk.CallToolResult, PauseGuardianOutput, error) {
	if err := s.client.SetPaused(args.Paused); err != nil {
		return nil, PauseGuardianOutput{}, err
	}
	return nil, PauseGuardianOutput{Paused: args.Paused}, nil
}

func (s *Server) handleSetHighlight(_ context.Context, _ *mcpsdk.CallToolRequest, args SetHighlightInput) (*mcpsdk.CallToolResult, SetHighlightOutput, error) {
	if err := s.client.SetHighlight(args.Enabled, args.Persist); err != nil {
		return nil, SetHighlightOutput{}, err
	}
	return nil, SetHighlightOutput{Enabled: args.Enabled}, nil
}

func (s *Server) handleCorrectionHistory(_ context.Context, _ *mcpsdk.CallToolRequest, args CorrectionHistoryInput) (*mcpsdk.CallToolResult, CorrectionHistoryOutput, error) {
	history, err := s.client.GetHistory(args.Limit)
	if err != nil {
		return nil, CorrectionHistoryOutput{}, err
	}
	return nil, *history, nil
}
