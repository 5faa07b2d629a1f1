package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dockguard/dockguard/internal/autostart"
	"github.com/dockguard/dockguard/internal/config"
	"github.com/dockguard/dockguard/internal/daemon"
	"github.com/dockguard/dockguard/internal/ipc"
	"github.com/dockguard/dockguard/internal/tui"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "pause":
		os.Exit(runPause(os.Args[2:], true))
	case "resume":
		os.Exit(runPause(os.Args[2:], false))
	case "highlight":
		os.Exit(runHighlight(os.Args[2:]))
	case "recompute":
		os.Exit(runRecompute(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "history":
		os.Exit(runHistory(os.Args[2:]))
	case "watch":
		os.Exit(runWatch(os.Args[2:]))
	case "menu":
		os.Exit(runMenu(os.Args[2:]))
	case "snapshot":
		os.Exit(runSnapshot(os.Args[2:]))
	case "autostart":
		os.Exit(runAutostart(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dockguard <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the dockguard daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon and barrier status")
	fmt.Fprintln(w, "  displays            List displays as the daemon sees them")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  pause               Pause window corrections")
	fmt.Fprintln(w, "  resume              Resume window corrections")
	fmt.Fprintln(w, "  highlight           Toggle the debug highlight tint")
	fmt.Fprintln(w, "  recompute           Force a barrier recomputation")
	fmt.Fprintln(w, "  reload              Reload configuration from disk")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  history             Show recent window corrections")
	fmt.Fprintln(w, "  watch               Live status view in the terminal")
	fmt.Fprintln(w, "  menu                Quick-action menu (rofi/dmenu)")
	fmt.Fprintln(w, "  snapshot            Capture the barrier region as a PNG")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  autostart enable    Install a login autostart entry")
	fmt.Fprintln(w, "  autostart disable   Remove the login autostart entry")
	fmt.Fprintln(w, "  autostart status    Show autostart state")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'dockguard <command> --help' for command-specific options.")
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/dockguard/config.yaml)")
	tray := fs.Bool("tray", false, "Show a system tray icon")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockguard daemon [--config PATH] [--tray]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the barrier daemon in the foreground.")
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
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	if err := daemon.Run(daemon.Options{ConfigPath: *configPath, Tray: *tray}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockguard status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
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
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	fmt.Printf("barrier_active:  %v\n", status.BarrierActive)
	fmt.Printf("barrier_visible: %v\n", status.BarrierVisible)
	if status.BarrierActive {
		fmt.Printf("barrier_rect:    %s\n", formatRect(status.Barrier))
	}
	fmt.Printf("highlight:       %v\n", status.Highlight)
	fmt.Printf("paused:          %v\n", status.Paused)
	fmt.Printf("display_count:   %d\n", status.DisplayCount)
	fmt.Printf("ticks:           %d\n", status.Ticks)
	fmt.Printf("corrections:     %d\n", status.Corrections)
	if status.LastCorrection != "" {
		fmt.Printf("last_correction: %s\n", status.LastCorrection)
	}
	return 0
}

func runDisplays(args []string) int {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output displays as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockguard displays [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List attached displays with bounds, usable area and bottom inset.")
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
		fmt.Fprintln(os.Stderr, "displays takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	data, err := client.GetDisplays()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	for _, d := range data.Displays {
		marker := "  "
		if d.Primary {
			marker = "* "
		}
		fmt.Printf("%s%s: %s usable %s inset %d\n",
			marker, d.Name, formatRect(d.Bounds), formatRect(d.Usable), d.BottomInset)
	}
	return 0
}

func runPause(args []string, paused bool) int {
	name := "resume"
	if paused {
		name = "pause"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dockguard %s\n", name)
		fmt.Fprintln(os.Stderr, "")
		if paused {
			fmt.Fprintln(os.Stderr, "Pause the guardian: the barrier stays visible but windows")
			fmt.Fprintln(os.Stderr, "are no longer resized away from it.")
		} else {
			fmt.Fprintln(os.Stderr, "Resume window corrections.")
		}
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.SetPaused(paused); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if paused {
		fmt.Println("guardian paused")
	} else {
		fmt.Println("guardian resumed")
	}
	return 0
}

func runHighlight(args []string) int {
	fs := flag.NewFlagSet("highlight", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	persist := fs.Bool("persist", false, "Write the setting to the config file")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockguard highlight [--persist] <on|off>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Tint the barrier for debugging so its position is obvious.")
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
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "highlight requires exactly one argument: on or off")
		fs.Usage()
		return 2
	}

	var enabled bool
	switch fs.Arg(0) {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		fmt.Fprintf(os.Stderr, "invalid argument %q: expected on or off\n", fs.Arg(0))
		return 2
	}

	client := ipc.NewClient()
	if err := client.SetHighlight(enabled, *persist); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if enabled {
		fmt.Println("highlight on")
	} else {
		fmt.Println("highlight off")
	}
	return 0
}

func runRecompute(args []string) int {
	fs := flag.NewFlagSet("recompute", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockguard recompute")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Recompute and reapply the barrier from the current display layout.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "recompute takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.Recompute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("barrier recomputed")
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockguard reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Reload the daemon's configuration from disk.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("configuration reloaded")
	return 0
}

func runHistory(args []string) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	limit := fs.Int("limit", 20, "Maximum number of corrections to show")
	jsonOut := fs.Bool("json", false, "Output history as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockguard history [--limit N] [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show recent window corrections, newest first.")
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
		fmt.Fprintln(os.Stderr, "history takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	data, err := client.GetHistory(*limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	if len(data.Corrections) == 0 {
		fmt.Println("no corrections recorded")
		return 0
	}
	for _, rec := range data.Corrections {
		name := rec.Class
		if name == "" {
			name = fmt.Sprintf("window %d", rec.WindowID)
		}
		fmt.Printf("%s  %-20s overlap %dpx, %d -> %d\n",
			rec.At.Local().Format("2006-01-02 15:04:05"),
			name, rec.Overlap, rec.OldHeight, rec.NewHeight)
	}
	return 0
}

func runWatch(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: dockguard watch")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Live barrier and guardian status, refreshed every second.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  p         Toggle guardian pause")
		fmt.Fprintln(os.Stderr, "  b         Toggle debug highlight")
		fmt.Fprintln(os.Stderr, "  r         Recompute the barrier")
		fmt.Fprintln(os.Stderr, "  q, Esc    Quit")
		fmt.Fprintln(os.Stderr, "  Ctrl+C    Quit")
		return 0
	}
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "watch takes no arguments")
		return 2
	}

	w := tui.New(ipc.NewClient())
	if err := w.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runAutostart(args []string) int {
	usage := func(w io.Writer) {
		fmt.Fprintln(w, "Usage:")
		fmt.Fprintln(w, "  dockguard autostart enable")
		fmt.Fprintln(w, "  dockguard autostart disable")
		fmt.Fprintln(w, "  dockguard autostart status")
	}
	if len(args) == 0 {
		usage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "enable":
		if err := autostart.Enable(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		path, _ := autostart.Path()
		fmt.Printf("autostart enabled: %s\n", path)
		return 0
	case "disable":
		if err := autostart.Disable(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("autostart disabled")
		return 0
	case "status":
		enabled, err := autostart.Enabled()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if enabled {
			fmt.Println("autostart: enabled")
		} else {
			fmt.Println("autostart: disabled")
		}
		return 0
	case "help", "-h", "--help":
		usage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown autostart subcommand: %s\n", args[0])
		usage(os.Stderr)
		return 2
	}
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  dockguard config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  dockguard config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/dockguard/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var err error
		if *path == "" {
			_, err = config.Load()
		} else {
			_, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/dockguard/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var cfg *config.Config
		if *printDefaults {
			cfg = config.DefaultConfig()
		} else {
			var err error
			if *path == "" {
				cfg, err = config.Load()
			} else {
				cfg, err = config.LoadFromPath(*path)
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func formatRect(r ipc.RectInfo) string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}
