package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dockguard/dockguard/internal/ipc"
	"github.com/dockguard/dockguard/internal/palette"
)

func runMenu(args []string) int {
	fs := flag.NewFlagSet("menu", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	backendName := fs.String("backend", "auto", "Menu backend: auto, rofi, fuzzel, wofi, dmenu")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockguard menu [--backend NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show a quick-action menu for the running daemon. Bind this to a")
		fmt.Fprintln(os.Stderr, "desktop keyboard shortcut for mouse-free control.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "menu takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	backend, err := palette.NewBackend(*backendName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	item, err := backend.Show("dockguard", buildMenuItems(status), buildMenuMessage(status))
	if err != nil {
		if errors.Is(err, palette.ErrCancelled) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return executeMenuAction(client, item.Action)
}

func buildMenuItems(status *ipc.StatusData) []palette.Item {
	items := make([]palette.Item, 0, 8)

	if status.BarrierActive {
		items = append(items, palette.Item{
			Label:    fmt.Sprintf("Barrier active %s", formatRect(status.Barrier)),
			Action:   "noop",
			Icon:     "security-high",
			IsHeader: true,
		})
	} else {
		items = append(items, palette.Item{
			Label:    "Barrier inactive",
			Action:   "noop",
			Icon:     "security-low",
			IsHeader: true,
			IsUrgent: true,
		})
	}

	if status.Paused {
		items = append(items, palette.Item{
			Label:    "Resume guardian",
			Action:   "resume",
			Icon:     "media-playback-start",
			Meta:     "resume unpause enforce corrections",
			IsActive: true,
		})
	} else {
		items = append(items, palette.Item{
			Label:  "Pause guardian",
			Action: "pause",
			Icon:   "media-playback-pause",
			Meta:   "pause stop corrections",
		})
	}

	if status.Highlight {
		items = append(items, palette.Item{
			Label:    "Highlight off",
			Action:   "highlight:off",
			Icon:     "color-select-symbolic",
			Meta:     "highlight tint debug hide",
			IsActive: true,
		})
	} else {
		items = append(items, palette.Item{
			Label:  "Highlight on",
			Action: "highlight:on",
			Icon:   "color-select-symbolic",
			Meta:   "highlight tint debug show",
		})
	}

	items = append(items,
		palette.Item{
			Label:  "Recompute barrier",
			Action: "recompute",
			Icon:   "view-refresh",
			Meta:   "recompute refresh barrier displays",
		},
		palette.Item{
			Label:  "Reload config",
			Action: "reload",
			Icon:   "document-revert",
			Meta:   "reload refresh config configuration",
		},
		palette.Item{
			Label:  "Snapshot barrier",
			Action: "snapshot",
			Icon:   "camera-photo",
			Meta:   "snapshot screenshot capture png",
		},
	)

	return items
}

func buildMenuMessage(status *ipc.StatusData) string {
	parts := []string{
		fmt.Sprintf("%d displays", status.DisplayCount),
		fmt.Sprintf("%d corrections", status.Corrections),
	}
	if status.Paused {
		parts = append(parts, "paused")
	}
	return strings.Join(parts, " • ")
}

func executeMenuAction(client *ipc.Client, action string) int {
	switch action {
	case "noop":
		return 0

	case "pause":
		if err := client.SetPaused(true); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "resume":
		if err := client.SetPaused(false); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "highlight:on", "highlight:off":
		enabled := action == "highlight:on"
		if err := client.SetHighlight(enabled, false); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "recompute":
		if err := client.Recompute(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "reload":
		if err := client.Reload(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "snapshot":
		return runSnapshot(nil)

	default:
		fmt.Fprintf(os.Stderr, "menu: unknown action %q\n", action)
		return 1
	}
}
