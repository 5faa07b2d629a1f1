package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dockguard/dockguard/internal/ipc"
)

// fakeClient records calls and serves canned daemon responses.
type fakeClient struct {
	status   ipc.StatusData
	displays ipc.DisplaysData
	history  ipc.HistoryData

	failStatus bool

	recomputes   int
	pausedWith   []bool
	highlightArg []bool
	persistArg   []bool
	historyLimit int
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if f.failStatus {
		return nil, errors.New("daemon not running")
	}
	status := f.status
	return &status, nil
}

func (f *fakeClient) GetDisplays() (*ipc.DisplaysData, error) {
	displays := f.displays
	return &displays, nil
}

func (f *fakeClient) Recompute() error {
	f.recomputes++
	return nil
}

func (f *fakeClient) SetPaused(paused bool) error {
	f.pausedWith = append(f.pausedWith, paused)
	return nil
}

func (f *fakeClient) SetHighlight(enabled, persist bool) error {
	f.highlightArg = append(f.highlightArg, enabled)
	f.persistArg = append(f.persistArg, persist)
	return nil
}

func (f *fakeClient) GetHistory(limit int) (*ipc.HistoryData, error) {
	f.historyLimit = limit
	history := f.history
	return &history, nil
}

func newTestServer() (*Server, *fakeClient) {
	client := &fakeClient{
		status: ipc.StatusData{
			InstanceID:     "test-instance",
			BarrierActive:  true,
			BarrierVisible: true,
			Barrier:        ipc.RectInfo{X: 0, Y: 920, Width: 1000, Height: 80},
			DisplayCount:   2,
			Ticks:          120,
			Corrections:    3,
		},
		displays: ipc.DisplaysData{
			Displays: []ipc.DisplayInfo{
				{ID: 0, Name: "DP-1", Primary: true},
				{ID: 1, Name: "HDMI-1", BottomInset: 80},
			},
		},
		history: ipc.HistoryData{
			Corrections: []ipc.CorrectionRecord{
				{At: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), WindowID: 42, Overlap: 10},
			},
		},
	}
	return NewServerWithClient(client), client
}

func TestBarrierStatusTool(t *testing.T) {
	s, _ := newTestServer()

	_, out, err := s.handleBarrierStatus(context.Background(), nil, BarrierStatusInput{})
	if err != nil {
		t.Fatal(err)
	}
	if !out.BarrierActive || !out.BarrierVisible {
		t.Errorf("expected active visible barrier, got %+v", out)
	}
	if out.Barrier.Y != 920 || out.Barrier.Height != 80 {
		t.Errorf("expected barrier at y=920 h=80, got %+v", out.Barrier)
	}
}

func TestBarrierStatusToolPropagatesError(t *testing.T) {
	s, client := newTestServer()
	client.failStatus = true

	_, _, err := s.handleBarrierStatus(context.Background(), nil, BarrierStatusInput{})
	if err == nil {
		t.Fatal("expected error when daemon is unreachable")
	}
}

func TestListDisplaysTool(t *testing.T) {
	s, _ := newTestServer()

	_, out, err := s.handleListDisplays(context.Background(), nil, ListDisplaysInput{})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Displays) != 2 {
		t.Fatalf("expected 2 displays, got %d", len(out.Displays))
	}
	if !out.Displays[0].Primary {
		t.Error("expected first display to be primary")
	}
	if out.Displays[1].BottomInset != 80 {
		t.Errorf("expected bottom inset 80, got %d", out.Displays[1].BottomInset)
	}
}

func TestRecomputeBarrierTool(t *testing.T) {
	s, client := newTestServer()

	_, out, err := s.handleRecomputeBarrier(context.Background(), nil, RecomputeBarrierInput{})
	if err != nil {
		t.Fatal(err)
	}
	if client.recomputes != 1 {
		t.Errorf("expected 1 recompute call, got %d", client.recomputes)
	}
	if !out.BarrierActive || out.DisplayCount != 2 {
		t.Errorf("expected post-recompute status in output, got %+v", out)
	}
}

func TestPauseGuardianTool(t *testing.T) {
	s, client := newTestServer()

	_, out, err := s.handlePauseGuardian(context.Background(), nil, PauseGuardianInput{Paused: true})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Paused {
		t.Error("expected paused output")
	}
	if len(client.pausedWith) != 1 || !client.pausedWith[0] {
		t.Errorf("expected SetPaused(true), got %v", client.pausedWith)
	}
}

func TestSetHighlightToolForwardsPersist(t *testing.T) {
	s, client := newTestServer()

	_, _, err := s.handleSetHighlight(context.Background(), nil, SetHighlightInput{Enabled: true, Persist: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(client.highlightArg) != 1 || !client.highlightArg[0] {
		t.Errorf("expected SetHighlight(true, ...), got %v", client.highlightArg)
	}
	if !client.persistArg[0] {
		t.Error("expected persist flag forwarded")
	}
}

func TestCorrectionHistoryTool(t *testing.T) {
	s, client := newTestServer()

	_, out, err := s.handleCorrectionHistory(context.Background(), nil, CorrectionHistoryInput{Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if client.historyLimit != 5 {
		t.Errorf("expected limit 5 forwarded, got %d", client.historyLimit)
	}
	if len(out.Corrections) != 1 || out.Corrections[0].WindowID != 42 {
		t.Errorf("expected window 42 in history, got %+v", out.Corrections)
	}
}
