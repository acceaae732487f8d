package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/daemon"
	"github.com/1broseidon/zonetile/internal/drag"
	"github.com/1broseidon/zonetile/internal/engine"
	"github.com/1broseidon/zonetile/internal/hotkeys"
	"github.com/1broseidon/zonetile/internal/ipc"
	"github.com/1broseidon/zonetile/internal/mcp"
	"github.com/1broseidon/zonetile/internal/overlay"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/tui"
	"github.com/1broseidon/zonetile/internal/zone"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: zonetile daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: zonetile daemon")
			os.Exit(2)
		}
		runDaemon()
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "screens":
		os.Exit(runScreens(os.Args[2:]))
	case "layout":
		os.Exit(runLayout(os.Args[2:]))
	case "snap":
		os.Exit(runSnap(os.Args[2:]))
	case "navigate":
		os.Exit(runNavigate(os.Args[2:]))
	case "float":
		os.Exit(runFloat(os.Args[2:]))
	case "query":
		os.Exit(runQuery(os.Args[2:]))
	case "occupants":
		os.Exit(runOccupants(os.Args[2:]))
	case "bind":
		os.Exit(runBind(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
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
	fmt.Fprintln(w, "Usage: zonetile <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the zonetile daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  reload              Reload the config file in the running daemon")
	fmt.Fprintln(w, "  screens             List screens and their usable areas")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  layout list         List layouts")
	fmt.Fprintln(w, "  layout show         Show a layout's zones")
	fmt.Fprintln(w, "  layout create       Create a layout from a YAML file")
	fmt.Fprintln(w, "  layout delete       Delete a layout")
	fmt.Fprintln(w, "  layout generate     Generate a layout (columns/rows/grid)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  snap                Snap a window into one or more zones")
	fmt.Fprintln(w, "  navigate            Move a snapped window to an adjacent zone")
	fmt.Fprintln(w, "  float               Toggle a window between its zone and floating")
	fmt.Fprintln(w, "  query               Show a window's zone assignment")
	fmt.Fprintln(w, "  occupants           Show which windows occupy a layout's zones")
	fmt.Fprintln(w, "  bind                Bind a layout to a screen/desktop/activity context")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open the interactive layout browser")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'zonetile <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
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
	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("layout_count:    %d\n", status.LayoutCount)
	fmt.Printf("tracked_windows: %d\n", status.TrackedWindows)
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile reload")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	if err := client.Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("reload requested")
	return 0
}

func runScreens(args []string) int {
	fs := flag.NewFlagSet("screens", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile screens")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List screens with their usable areas (struts applied).")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	screens, err := client.GetScreens()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, s := range screens {
		fmt.Printf("%s\t%dx%d+%d+%d\n", s.ID, s.Width, s.Height, s.X, s.Y)
	}
	return 0
}

func printLayoutUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  zonetile layout list [--json]")
	fmt.Fprintln(w, "  zonetile layout show <layout-id>")
	fmt.Fprintln(w, "  zonetile layout create --file <path>")
	fmt.Fprintln(w, "  zonetile layout delete <layout-id>")
	fmt.Fprintln(w, "  zonetile layout generate <columns|rows|grid> [--count N] [--cols N] [--rows N]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'zonetile layout <command> --help' for command-specific options.")
}

func runLayout(args []string) int {
	if len(args) == 0 {
		printLayoutUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printLayoutUsage(os.Stdout)
		return 0
	}

	client := ipc.NewClient()

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: zonetile layout list [--json]")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
		jsonOut := fs.Bool("json", false, "Output full layout details as JSON")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 0 {
			fmt.Fprintln(os.Stderr, "layout list takes no arguments")
			fs.Usage()
			return 2
		}

		layouts, err := client.ListLayouts()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(layouts); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			return 0
		}
		for _, l := range layouts {
			fmt.Printf("%s\t%s\t%d zones\n", l.ID, l.Name, len(l.Zones))
		}
		return 0

	case "show":
		fs := flag.NewFlagSet("show", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: zonetile layout show <layout-id>")
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fs.Usage()
			return 2
		}

		l, err := client.GetLayout(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("%s (%s)\n", l.ID, l.Name)
		for _, z := range l.Zones {
			fmt.Printf("  %-12s x=%.3f y=%.3f w=%.3f h=%.3f", z.ID, z.Rect.X, z.Rect.Y, z.Rect.W, z.Rect.H)
			if z.DisplayIndex > 0 {
				fmt.Printf("  #%d", z.DisplayIndex)
			}
			fmt.Println()
		}
		return 0

	case "create":
		fs := flag.NewFlagSet("create", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: zonetile layout create --file <path>")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "The file holds one layout in the config file's layout format.")
		}
		file := fs.String("file", "", "YAML file with the layout definition")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if *file == "" {
			fmt.Fprintln(os.Stderr, "--file is required")
			fs.Usage()
			return 2
		}

		raw, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		var l zone.Layout
		if err := yaml.Unmarshal(raw, &l); err != nil {
			fmt.Fprintf(os.Stderr, "parse %s: %v\n", *file, err)
			return 1
		}
		created, err := client.CreateLayout(l)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("created %s (%d zones)\n", created.ID, len(created.Zones))
		return 0

	case "delete":
		fs := flag.NewFlagSet("delete", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: zonetile layout delete <layout-id>")
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fs.Usage()
			return 2
		}

		if err := client.DeleteLayout(fs.Arg(0)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("deleted %s\n", fs.Arg(0))
		return 0

	case "generate":
		fs := flag.NewFlagSet("generate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: zonetile layout generate <columns|rows|grid> [--count N] [--cols N] [--rows N]")
		}
		count := fs.Int("count", 2, "Zone count for columns/rows")
		cols := fs.Int("cols", 2, "Column count for grid")
		rows := fs.Int("rows", 2, "Row count for grid")
		// Kind comes before the flags: generate columns --count 3
		if len(args) < 2 {
			fs.Usage()
			return 2
		}
		kind := args[1]
		if err := fs.Parse(args[2:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}

		l, err := client.GenerateLayout(ipc.GenerateLayoutPayload{
			Kind:  kind,
			Count: *count,
			Cols:  *cols,
			Rows:  *rows,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("created %s (%d zones)\n", l.ID, len(l.Zones))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown layout command: %s\n\n", args[0])
		printLayoutUsage(os.Stderr)
		return 2
	}
}

func runSnap(args []string) int {
	fs := flag.NewFlagSet("snap", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile snap [--window ID] [--number N] [zone-id ...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Snap a window into zones of the layout active on its screen.")
		fmt.Fprintln(os.Stderr, "Multiple zone ids span the union of the zones. Without --window")
		fmt.Fprintln(os.Stderr, "the focused window is used.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	window := fs.String("window", "", "Target window id (default: focused window)")
	number := fs.Int("number", 0, "Snap to the zone with this number instead of zone ids")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	var (
		res *ipc.SnapResult
		err error
	)
	switch {
	case fs.NArg() > 0:
		res, err = client.Snap(*window, fs.Args())
	case *number > 0:
		res, err = client.SnapNumber(*window, *number)
	default:
		fmt.Fprintln(os.Stderr, "either zone ids or --number is required")
		fs.Usage()
		return 2
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%s -> %dx%d+%d+%d\n", res.WindowID,
		res.Target.Width, res.Target.Height, res.Target.X, res.Target.Y)
	return 0
}

func runNavigate(args []string) int {
	fs := flag.NewFlagSet("navigate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile navigate [--window ID] <up|down|left|right>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	window := fs.String("window", "", "Target window id (default: focused window)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	moved, err := client.Navigate(*window, fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !moved {
		fmt.Printf("no zone %s of the current one\n", fs.Arg(0))
	}
	return 0
}

func runFloat(args []string) int {
	fs := flag.NewFlagSet("float", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile float [--window ID]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Toggle a window between its zone and its remembered floating")
		fmt.Fprintln(os.Stderr, "geometry.")
	}
	window := fs.String("window", "", "Target window id (default: focused window)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	res, err := client.ToggleFloat(*window)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%s -> %dx%d+%d+%d\n", res.WindowID,
		res.Target.Width, res.Target.Height, res.Target.X, res.Target.Y)
	return 0
}

func runQuery(args []string) int {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile query [--window ID]")
	}
	window := fs.String("window", "", "Target window id (default: focused window)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	data, err := client.QueryWindow(*window)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("window:  %s\n", data.WindowID)
	fmt.Printf("layout:  %s\n", data.LayoutID)
	fmt.Printf("screen:  %s\n", data.ScreenID)
	fmt.Printf("zones:   %v\n", data.ZoneIDs)
	if data.Stale {
		fmt.Println("stale:   true (layout changed since the window was snapped)")
	}
	return 0
}

func runOccupants(args []string) int {
	fs := flag.NewFlagSet("occupants", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile occupants <layout-id>")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	data, err := client.Occupants(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for zoneID, windows := range data.Occupants {
		fmt.Printf("%s\t%v\n", zoneID, windows)
	}
	return 0
}

func runBind(args []string) int {
	fs := flag.NewFlagSet("bind", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile bind --screen ID [--desktop D] [--activity A] <layout-id>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "More specific bindings win over less specific ones; a binding with")
		fmt.Fprintln(os.Stderr, "neither desktop nor activity becomes the screen default.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	screen := fs.String("screen", "", "Screen id the binding applies to")
	desktop := fs.String("desktop", "", "Virtual desktop (empty matches any)")
	activity := fs.String("activity", "", "Activity (empty matches any)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 || *screen == "" {
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	err := client.BindContext(ipc.BindContextPayload{
		Screen:   *screen,
		Desktop:  *desktop,
		Activity: *activity,
		LayoutID: fs.Arg(0),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("bound %s\n", fs.Arg(0))
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: zonetile config <validate|print> [--config path]")
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/zonetile/config.yaml)")
	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
	} else {
		cfg, err = config.Load()
	}

	switch args[0] {
	case "validate":
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
			return 1
		}
		fmt.Println("ok")
		return 0
	case "print":
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		os.Stdout.Write(out)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile tui [--config path]")
	}
	configPath := fs.String("config", "", "Config file path (default: ~/.config/zonetile/config.yaml)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if err := tui.Run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runMCP(args []string) int {
	if len(args) == 0 || args[0] != "serve" {
		fmt.Fprintln(os.Stderr, "Usage: zonetile mcp serve")
		return 2
	}

	server, err := mcp.NewServer()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := server.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runDaemon() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (default layout: %s, trigger: %dpx)",
		cfg.DefaultLayout, cfg.GetTriggerDistance())

	// Connect to display server
	comp, err := platform.NewLinuxCompositorFromDisplay()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer comp.Disconnect()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	// Zone overlay shown while a drag runs. Events fire inside the
	// engine's lock, so they only nudge the painter, which repaints on
	// its own goroutine in request order.
	ov := overlay.NewManager(comp.Connection().XUtil, comp.Connection().Root)
	defer ov.Cleanup()

	var eng *engine.Engine
	painter := overlay.NewPainter(
		func(screenID string) { renderDragOverlay(eng, ov, screenID, cfg.GetShowNumbers()) },
		ov.HideAll,
	)
	events := drag.Events{
		OnArmed:             func(screenID, _ string) { painter.Show(screenID) },
		OnCandidatesChanged: func(screenID string, _ []string) { painter.Show(screenID) },
		OnCommitted:         func(string, drag.Commit) { painter.Hide() },
		OnCancelled:         func(string, string) { painter.Hide() },
	}

	// Build the engine and seed it from config
	store := zone.NewStore()
	eng = engine.New(store, comp, cfg.DefaultLayout, daemon.EngineOptions(cfg), events)
	if err := daemon.ApplyConfig(eng, cfg, events); err != nil {
		log.Fatalf("Failed to apply configuration: %v", err)
	}
	log.Printf("Engine initialized with %d layouts", len(eng.ListLayouts()))

	// Register global hotkeys
	hk, err := hotkeys.NewHandler(comp, eng)
	if err != nil {
		log.Printf("Warning: hotkeys unavailable: %v", err)
	} else if err := hk.RegisterAll(hotkeys.DefaultBindings()); err != nil {
		log.Printf("Warning: failed to register hotkeys: %v", err)
	}

	// Create config reload channel
	reloadChan := make(chan struct{}, 1)

	// Start IPC server
	ipcServer, err := ipc.NewServer(eng, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go painter.Run(ctx)

	// Reconciler drops tracked windows that no longer exist
	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: 10 * time.Second,
		Logger:   logger,
	}, eng, comp.ListWindows)
	go reconciler.Run(ctx)

	// Hotkey events need the X event loop
	go comp.Connection().EventLoop()

	// Setup signal handlers
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				log.Println("Received SIGHUP, reloading config...")
				select {
				case reloadChan <- struct{}{}:
				default:
				}
			case os.Interrupt, syscall.SIGTERM:
				log.Println("Shutting down zonetile daemon...")
				cancel()
				return
			}
		}
	}()

	// Poll loop (blocking)
	d := daemon.New(daemon.Config{
		PollInterval: time.Duration(cfg.GetPollIntervalMS()) * time.Millisecond,
		Events:       events,
		Logger:       logger,
	}, eng, comp, reloadChan)
	d.Run(ctx)
}

// renderDragOverlay redraws the zone overlay from the screen's live
// session, or hides it when the session is gone or not yet armed.
func renderDragOverlay(eng *engine.Engine, ov *overlay.Manager, screenID string, showNumbers bool) {
	s, ok := eng.DragSession(screenID)
	if !ok || (s.State != drag.StateArmed && s.State != drag.StateSpanning) {
		ov.HideAll()
		return
	}
	zones := s.Zones()
	boxes := make([]overlay.ZoneBox, 0, len(zones))
	for _, z := range zones {
		boxes = append(boxes, overlay.ZoneBox{
			Rect:      z.Rect,
			Number:    z.DisplayIndex,
			Candidate: s.IsCandidate(z.ID),
		})
	}
	if err := ov.Render(boxes, showNumbers); err != nil {
		log.Printf("Overlay render failed: %v", err)
	}
}
