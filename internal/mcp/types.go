package mcp

import "github.com/dockguard/dockguard/internal/ipc"

// BarrierStatusInput is the input for the barrier_status tool.
type BarrierStatusInput struct{}

// BarrierStatusOutput mirrors the daemon's GET_STATUS response.
type BarrierStatusOutput = ipc.StatusData

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// ListDisplaysOutput mirrors the daemon's GET_DISPLAYS response.
type ListDisplaysOutput = ipc.DisplaysData

// RecomputeBarrierInput is the input for the recompute_barrier tool.
type RecomputeBarrierInput struct{}

// RecomputeBarrierOutput reports the barrier that resulted from the
// recomputation.
type RecomputeBarrierOutput struct {
	BarrierActive  bool         `json:"barrier_active"`
	BarrierVisible bool         `json:"barrier_visible"`
	Barrier        ipc.RectInfo `json:"barrier"`
	DisplayCount   int          `json:"display_count"`
}

// PauseGuardianInput is the input for the pause_guardian tool.
type PauseGuardianInput struct {
	Paused bool `json:"paused" jsonschema:"required,True to suspend window corrections; false to resume them"`
}

// PauseGuardianOutput is the output for the pause_guardian tool.
type PauseGuardianOutput struct {
	Paused bool `json:"paused"`
}

// SetHighlightInput is the input for the set_highlight tool.
type SetHighlightInput struct {
	Enabled bool `json:"enabled" jsonschema:"required,True to tint the barrier strip with the debug color"`
	Persist bool `json:"persist,omitempty" jsonschema:"When true, also write debug_highlight to the config file"`
}

// SetHighlightOutput is the output for the set_highlight tool.
type SetHighlightOutput struct {
	Enabled bool `json:"enabled"`
}

// CorrectionHistoryInput is the input for the correction_history tool.
type CorrectionHistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of corrections to return (default: 20, max: 500)"`
}

// CorrectionHistoryOutput mirrors the daemon's GET_HISTORY response.
type CorrectionHistoryOutput = ipc.HistoryData
