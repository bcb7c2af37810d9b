package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	dataDir    string
	presetName string
	themeName  string
	bandCount  int
	sourceKind string
	sessionID  string
	logLevel   string
	backendURL string
	scriptFile string
	frameRate  int
	plain      bool
	noScript   bool
	// frame / export-svg
	stateName string
	volumes   string
	atTime    string
	highlight int
	noColor   bool
	outFile   string
	cellSize  float64
)

// main registers the commands and runs the live view when no subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:           "voxgrid",
		Short:         "audio grid visualizer for voice agents",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&dataDir, "data", "", "data directory (default ~/.voxgrid/data)")
	pf.StringVar(&presetName, "preset", "", "use preset configuration")
	pf.StringVar(&themeName, "theme", "", "color theme")
	pf.IntVar(&bandCount, "bands", 0, "number of frequency bands")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&backendURL, "backend", "", "analysis backend url")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the live grid in the terminal",
		RunE:  runLive,
	}
	addSourceFlags(liveCmd)
	addSourceFlags(rootCmd)
	liveCmd.Flags().BoolVar(&plain, "plain", false, "plain ANSI output instead of the full-screen view")
	rootCmd.Flags().BoolVar(&plain, "plain", false, "plain ANSI output instead of the full-screen view")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run the live grid in a desktop window",
		RunE:  runGUI,
	}
	addSourceFlags(guiCmd)

	frameCmd := &cobra.Command{
		Use:   "frame",
		Short: "render a single frame and print it",
		RunE:  runFrame,
	}
	addFrameFlags(frameCmd)
	frameCmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI colors")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded sessions",
		RunE:  listSessions,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [session_id]",
		Short: "play back a recorded session",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplay,
	}
	replayCmd.Flags().BoolVar(&plain, "plain", false, "plain ANSI output instead of the full-screen view")

	plotCmd := &cobra.Command{
		Use:   "plot [session_id]",
		Short: "plot intensity and band levels of a session",
		Args:  cobra.ExactArgs(1),
		RunE:  plotSession,
	}

	exportCmd := &cobra.Command{
		Use:   "export [session_id]",
		Short: "export a session as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSession,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg",
		Short: "export a frame, or a session's intensity with --session, as svg",
		RunE:  exportSVG,
	}
	addFrameFlags(exportSVGCmd)
	exportSVGCmd.Flags().StringVar(&sessionID, "session", "", "plot this session's intensity instead of a frame")
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().Float64Var(&cellSize, "cell", 24, "cell size in pixels")

	uploadCmd := &cobra.Command{
		Use:   "upload [images...]",
		Short: "upload images to the analysis backend",
		Args:  cobra.MinimumNArgs(1),
		RunE:  uploadImages,
	}

	apiKeyCmd := &cobra.Command{
		Use:   "apikey [key]",
		Short: "set the backend api key (reads stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  setAPIKey,
	}

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "check the analysis backend",
		RunE:  pingBackend,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets and themes",
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.ExactArgs(1),
		RunE:  writeConfig,
	}

	rootCmd.AddCommand(liveCmd, guiCmd, frameCmd, listCmd, replayCmd, plotCmd,
		exportCmd, exportSVGCmd, uploadCmd, apiKeyCmd, pingCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sourceKind, "source", "", "band source: synthetic, mic or replay")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id for the replay source")
	cmd.Flags().StringVar(&scriptFile, "script", "", "agent scenario file (yaml)")
	cmd.Flags().BoolVar(&noScript, "manual", false, "drive the agent state from keys only")
	cmd.Flags().IntVar(&frameRate, "fps", 0, "frame rate")
}

func addFrameFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&stateName, "state", "speaking", "agent state")
	cmd.Flags().StringVar(&volumes, "volumes", "", "comma separated band levels in dB")
	cmd.Flags().StringVar(&atTime, "at", "1s", "synthetic source offset when --volumes is empty")
	cmd.Flags().IntVar(&highlight, "highlight", -1, "highlighted cell index")
}
