//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/himanishpuri/FoodLens/pkg/foodlens"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/frame"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/scan"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/session"
	"github.com/himanishpuri/FoodLens/pkg/logger"
	"github.com/himanishpuri/FoodLens/pkg/utils"
)

// Global flags
var (
	dbPath     string
	configPath string
)

func init() {
	flag.StringVar(&dbPath, "db", getEnvOrDefault("FOODLENS_DB_PATH", "foodlens.sqlite3"), "Path to the SQLite scan journal")
	flag.StringVar(&configPath, "config", getEnvOrDefault("FOODLENS_CONFIG", ""), "Path to a YAML config file")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadFileConfig returns the parsed config file, or an empty one when no
// file was given.
func loadFileConfig() (*foodlens.FileConfig, error) {
	if configPath == "" {
		return &foodlens.FileConfig{}, nil
	}
	return foodlens.LoadConfigFile(configPath)
}

func openJournal() (foodlens.Journal, error) {
	return foodlens.NewSQLiteJournal(dbPath)
}

func main() {
	log := logger.GetLogger()

	flag.Usage = printUsage
	flag.Parse()

	printBanner()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	log.Infof("Executing command: %s", command)

	switch command {
	case "replay":
		handleReplay(args[1:])
	case "scans":
		handleScans(args[1:])
	case "delete":
		handleDelete(args[1:])
	case "validate":
		handleValidate(args[1:])
	case "frame":
		handleFrame(args[1:])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
 _____               _ _
|  ___|__   ___   __| | |    ___ _ __  ___
| |_ / _ \ / _ \ / _' | |   / _ \ '_ \/ __|
|  _| (_) | (_) | (_| | |__|  __/ | | \__ \
|_|  \___/ \___/ \__,_|_____\___|_| |_|___/

        Camera Capture Session Tool
`
	fmt.Println(banner)
}

// splitPositional separates leading positional arguments from flags so that
// "replay file.jsonl --persist" and "replay --persist file.jsonl" both work.
func splitPositional(args []string) (positional, flagArgs []string) {
	for i, arg := range args {
		if strings.HasPrefix(arg, "-") {
			return positional, args[i:]
		}
		positional = append(positional, arg)
	}
	return positional, nil
}

func handleReplay(args []string) {
	log := logger.GetLogger()

	positional, flagArgs := splitPositional(args)
	replayCmd := flag.NewFlagSet("replay", flag.ExitOnError)
	persist := replayCmd.Bool("persist", false, "Journal accepted scans and captures to the database")
	verbose := replayCmd.Bool("verbose", false, "Print every event, not only the ones that did something")
	replayCmd.Parse(flagArgs)
	positional = append(positional, replayCmd.Args()...)

	if len(positional) < 1 {
		fmt.Println("Usage: foodlens replay <session.jsonl> [--persist] [--verbose]")
		os.Exit(1)
	}
	logPath := positional[0]

	f, err := os.Open(logPath)
	if err != nil {
		fmt.Printf("❌ Failed to open session log: %v\n", err)
		log.Errorf("Open %s failed: %v", logPath, err)
		os.Exit(1)
	}
	events, err := session.Decode(f)
	f.Close()
	if err != nil {
		fmt.Printf("❌ Failed to read session log: %v\n", err)
		log.Errorf("Decode %s failed: %v", logPath, err)
		os.Exit(1)
	}

	fc, err := loadFileConfig()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		log.Errorf("Config load failed: %v", err)
		os.Exit(1)
	}

	rec := session.NewRecorder()
	opts := append(fc.Options(), rec.Options()...)
	if *persist {
		opts = append(opts, foodlens.WithDBPath(dbPath))
	} else {
		opts = append(opts, foodlens.WithDBPath(""))
	}

	fmt.Println("\n🔧 Initializing coordinator...")
	coord, err := foodlens.NewCoordinator(opts...)
	if err != nil {
		fmt.Printf("❌ Failed to create coordinator: %v\n", err)
		log.Errorf("Coordinator initialization failed: %v", err)
		os.Exit(1)
	}
	defer coord.Close()

	fmt.Printf("🎬 Replaying %d event(s) from %s\n", len(events), logPath)
	fmt.Printf("   Session: %s\n\n", coord.ID())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	outcomes := session.Replay(ctx, coord, rec, events)
	for _, o := range outcomes {
		if line := describeOutcome(o); line != "" {
			fmt.Printf("%4d  %s\n", o.Index+1, line)
		} else if *verbose {
			fmt.Printf("%4d  %-11s zoom=%.3f\n", o.Index+1, o.Kind, o.Zoom)
		}
	}

	sum := session.Summarize(outcomes)
	fmt.Printf("\n✅ Replay complete\n")
	fmt.Printf("   Events:   %d\n", sum.Events)
	fmt.Printf("   Scans:    %d accepted, %d rejected\n", sum.Accepted, sum.Rejected)
	fmt.Printf("   Zoom:     %d change(s), %d haptic pulse(s), final %.3f\n", sum.Zooms, sum.Haptics, coord.Zoom())
	fmt.Printf("   Captures: %d\n", sum.Captures)
	if sum.Errors > 0 {
		fmt.Printf("   Errors:   %d\n", sum.Errors)
	}
	if *persist {
		fmt.Printf("   Journal:  %s\n", dbPath)
	}
	log.Infof("Replayed %d events (%d accepted scans)", sum.Events, sum.Accepted)
}

func describeOutcome(o session.Outcome) string {
	switch {
	case o.Err != "":
		return fmt.Sprintf("⚠️  %s: %s", o.Kind, o.Err)
	case o.Gesture != "":
		haptic := ""
		if o.Feedback {
			haptic = " (haptic)"
		}
		return fmt.Sprintf("🔎 %s %+.3f -> zoom %.3f%s", o.Gesture, o.Change, o.Zoom, haptic)
	case o.Decision == "accept":
		for _, cmd := range o.Commands {
			if cmd.Kind == session.CmdScanAccepted && cmd.Scan != nil {
				return fmt.Sprintf("✅ scan %s %q", cmd.Scan.Type, cmd.Scan.Data)
			}
		}
		return "✅ scan accepted"
	case o.Decision == "reject":
		return fmt.Sprintf("🚫 scan rejected: %s", o.Reason)
	case o.Kind == session.KindCapture:
		if o.Crop == nil {
			return fmt.Sprintf("📸 capture at zoom %.3f, uncropped", o.Zoom)
		}
		return fmt.Sprintf("📸 capture at zoom %.3f, crop %s", o.Zoom, o.Crop)
	}
	return ""
}

func handleScans(args []string) {
	log := logger.GetLogger()

	scansCmd := flag.NewFlagSet("scans", flag.ExitOnError)
	limit := scansCmd.Int("limit", 20, "Maximum number of scans to show")
	sessionID := scansCmd.String("session", "", "Only show scans from this session, oldest first")
	scansCmd.Parse(args)

	journal, err := openJournal()
	if err != nil {
		fmt.Printf("❌ Failed to open journal: %v\n", err)
		log.Errorf("Journal open failed: %v", err)
		os.Exit(1)
	}
	defer journal.Close()

	var scans []foodlens.ScanRecord
	if *sessionID != "" {
		scans, err = journal.ListScansBySession(*sessionID)
	} else {
		scans, err = journal.ListScans(*limit)
	}
	if err != nil {
		fmt.Printf("❌ Failed to list scans: %v\n", err)
		log.Errorf("List scans failed: %v", err)
		os.Exit(1)
	}

	if len(scans) == 0 {
		fmt.Println("\n📭 No scans in journal")
		log.Info("No scans in journal")
		return
	}

	fmt.Printf("\n📚 Found %d scan(s):\n\n", len(scans))
	for i, s := range scans {
		fmt.Printf("%d. %s %q\n", i+1, s.Symbology, s.Payload)
		fmt.Printf("   ID: %s | Session: %s\n", s.ID, s.SessionID)
		fmt.Printf("   Accepted %s\n", humanize.Time(s.AcceptedAt))
		fmt.Println()
	}

	if stats, err := journal.Stats(); err == nil {
		fmt.Printf("Journal holds %s scan(s) and %s capture(s)\n",
			humanize.Comma(stats.Scans), humanize.Comma(stats.Captures))
	}
	log.Infof("Listed %d scans", len(scans))
}

func handleDelete(args []string) {
	log := logger.GetLogger()

	if len(args) < 1 {
		fmt.Println("Usage: foodlens delete <scan_id>")
		os.Exit(1)
	}
	scanID := args[0]
	if !utils.IsUUID(scanID) {
		fmt.Printf("❌ Invalid scan ID: %s\n", scanID)
		log.Errorf("Invalid scan ID: %s", scanID)
		os.Exit(1)
	}

	journal, err := openJournal()
	if err != nil {
		fmt.Printf("❌ Failed to open journal: %v\n", err)
		log.Errorf("Journal open failed: %v", err)
		os.Exit(1)
	}
	defer journal.Close()

	rec, err := journal.GetScan(scanID)
	if err != nil {
		fmt.Printf("❌ Scan not found (ID: %s)\n", scanID)
		log.Warnf("Scan %s not found: %v", scanID, err)
		os.Exit(1)
	}

	if err := journal.DeleteScan(scanID); err != nil {
		fmt.Printf("❌ Failed to delete scan: %v\n", err)
		log.Errorf("DeleteScan failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("\n✅ Successfully deleted scan:\n")
	fmt.Printf("   ID:        %s\n", rec.ID)
	fmt.Printf("   Symbology: %s\n", rec.Symbology)
	fmt.Printf("   Payload:   %s\n", rec.Payload)
	log.Infof("Deleted scan ID=%s (%s %q)", rec.ID, rec.Symbology, rec.Payload)
}

func handleValidate(args []string) {
	log := logger.GetLogger()

	if len(args) < 2 {
		fmt.Println("Usage: foodlens validate <type> <payload>")
		os.Exit(1)
	}
	e := scan.Event{Type: args[0], Data: args[1]}

	fc, err := loadFileConfig()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		log.Errorf("Config load failed: %v", err)
		os.Exit(1)
	}
	allowed, err := scan.NewSet(fc.Scan.Symbologies...)
	if err != nil {
		fmt.Printf("❌ Invalid symbologies in config: %v\n", err)
		os.Exit(1)
	}

	if err := scan.Validate(e, allowed); err != nil {
		fmt.Printf("🚫 Rejected: %v\n", err)
		switch {
		case errors.Is(err, scan.ErrUnsupportedSymbology):
			fmt.Printf("   Enabled symbologies: %s\n", strings.Join(allowed.Names(), ", "))
		case errors.Is(err, scan.ErrMalformedPayload):
			fmt.Printf("   Payload has %d character(s)\n", len(e.Data))
		}
		os.Exit(2)
	}

	sym, _ := scan.ParseSymbology(e.Type)
	fmt.Printf("✅ Valid %s payload %q\n", sym, e.Data)
}

func handleFrame(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: foodlens frame <x,y,w,h of viewfinder> <x,y,w,h of camera surface>")
		os.Exit(1)
	}

	viewfinder, err := parseRect(args[0])
	if err != nil {
		fmt.Printf("❌ Invalid viewfinder rect: %v\n", err)
		os.Exit(1)
	}
	surface, err := parseRect(args[1])
	if err != nil {
		fmt.Printf("❌ Invalid surface rect: %v\n", err)
		os.Exit(1)
	}

	rel := frame.ComputeRelativeFrame(&viewfinder, &surface)
	fmt.Printf("Viewfinder: %s\n", viewfinder)
	fmt.Printf("Surface:    %s\n", surface)
	fmt.Printf("Crop:       %s\n", rel)
}

// parseRect parses "x,y,w,h".
func parseRect(s string) (frame.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return frame.Rect{}, fmt.Errorf("want x,y,w,h, got %q", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return frame.Rect{}, fmt.Errorf("component %d: %w", i+1, err)
		}
		v[i] = f
	}
	return frame.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

func printUsage() {
	fmt.Println("FoodLens - Camera Capture Session CLI")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  --db <path>        Path to SQLite scan journal (env: FOODLENS_DB_PATH, default: foodlens.sqlite3)")
	fmt.Println("  --config <path>    YAML config file (env: FOODLENS_CONFIG)")
	fmt.Println("\nUsage:")
	fmt.Println("  foodlens [global-options] replay <session.jsonl> [--persist] [--verbose]")
	fmt.Println("  foodlens [global-options] scans [--limit <n>] [--session <id>]")
	fmt.Println("  foodlens [global-options] delete <scan_id>")
	fmt.Println("  foodlens [global-options] validate <type> <payload>")
	fmt.Println("  foodlens frame <x,y,w,h> <x,y,w,h>")
	fmt.Println("\nExamples:")
	fmt.Println("  # Replay a recorded session and journal its scans")
	fmt.Println("  foodlens --db scans.sqlite3 replay session.jsonl --persist")
	fmt.Println()
	fmt.Println("  # Check a barcode payload")
	fmt.Println("  foodlens validate ean13 4006381333931")
	fmt.Println()
	fmt.Println("  # Crop rectangle of a viewfinder inside the camera surface")
	fmt.Println("  foodlens frame 40,200,300,300 0,100,380,700")
}
