package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/voxgrid/internal/audio"
	"github.com/san-kum/voxgrid/internal/config"
	"github.com/san-kum/voxgrid/internal/export"
	"github.com/san-kum/voxgrid/internal/gui"
	"github.com/san-kum/voxgrid/internal/storage"
	"github.com/san-kum/voxgrid/internal/tui"
	"github.com/san-kum/voxgrid/internal/visualizer"
	"github.com/san-kum/voxgrid/internal/viz"
)

func runLive(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, states, cleanup, err := a.source()
	if err != nil {
		return err
	}
	defer cleanup()
	if states == nil {
		feed, err := a.feed(ctx)
		if err != nil {
			return err
		}
		states = feed
	}

	st, err := a.store()
	if err != nil {
		return err
	}
	a.log.Info().Str("source", a.cfg.Source.Kind).Str("theme", a.cfg.Theme).Msg("live view started")

	if plain {
		return runPlain(ctx, a.cfg, src, states)
	}
	return viz.Run(viz.Session{
		Source:        src,
		Bands:         a.cfg.Visualizer.Bands,
		States:        states,
		Geometry:      a.cfg.Options(),
		Path:          a.cfg.Path(),
		Theme:         a.cfg.Theme,
		SourceName:    a.cfg.Source.Kind,
		Store:         st,
		FrameInterval: a.cfg.FrameInterval(),
		Logger:        a.logger,
	})
}

// runPlain drives the animator itself and writes ANSI frames to stdout.
func runPlain(ctx context.Context, cfg *config.Config, src audio.Source, states viz.StateSource) error {
	opts := viz.GetTheme(cfg.Theme).Apply(cfg.Options())
	src = audio.Hold(src, cfg.Visualizer.Bands)
	cols := len(src.Bands())
	animator := visualizer.NewAnimator(opts.Rows(cols), cols, opts.Animation, cfg.Path())
	defer animator.Stop()

	r := tui.NewLiveRenderer(os.Stdout, cfg.FrameRate, true)
	err := r.Run(ctx, func() (visualizer.Grid, visualizer.AgentState) {
		state := states.State()
		animator.Update(ctx, state)
		bands := src.Bands()
		animator.Resize(opts.Rows(len(bands)), len(bands))
		return visualizer.Render(state, visualizer.NormalizeFrequencies(bands), animator.Index(), opts), state
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runGUI(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, states, cleanup, err := a.source()
	if err != nil {
		return err
	}
	defer cleanup()
	if states == nil {
		feed, err := a.feed(ctx)
		if err != nil {
			return err
		}
		states = feed
	}

	gui.Run(gui.Session{
		Source:   src,
		Bands:    a.cfg.Visualizer.Bands,
		States:   states,
		Geometry: a.cfg.Options(),
		Path:     a.cfg.Path(),
		Theme:    a.cfg.Theme,
		Logger:   a.logger.Zerolog(),
	})
	return nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	st, err := a.store()
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(meta.ID)
	if err != nil {
		return err
	}
	replay := storage.NewReplay(frames, true)
	a.log.Info().Str("session", meta.ID).Int("frames", len(frames)).Msg("replay started")

	if plain {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runPlain(ctx, a.cfg, replay, replay)
	}
	return viz.Run(viz.Session{
		Source:        replay,
		Bands:         meta.Bands,
		States:        replay,
		Geometry:      a.cfg.Options(),
		Path:          a.cfg.Path(),
		Theme:         a.cfg.Theme,
		SourceName:    "replay",
		Store:         st,
		FrameInterval: a.cfg.FrameInterval(),
		Logger:        a.logger,
	})
}

// frameInput resolves the --state, --volumes and --at flags.
func frameInput(bands int) (visualizer.AgentState, []float64, error) {
	state, err := visualizer.ParseAgentState(stateName)
	if err != nil {
		return "", nil, err
	}
	if volumes != "" {
		levels, err := parseLevels(volumes)
		if err != nil {
			return "", nil, err
		}
		return state, levels, nil
	}
	at, err := time.ParseDuration(atTime)
	if err != nil {
		return "", nil, fmt.Errorf("invalid --at: %w", err)
	}
	return state, audio.NewSynthetic(bands).BandsAt(at), nil
}

// parseLevels reads comma separated dB values; "-inf" or "silence" mark a
// silent band.
func parseLevels(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		switch strings.ToLower(p) {
		case "-inf", "silence":
			out = append(out, visualizer.Silence)
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid band level %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func renderFrame(cfg *config.Config) (visualizer.Grid, error) {
	state, levels, err := frameInput(cfg.Visualizer.Bands)
	if err != nil {
		return visualizer.Grid{}, err
	}
	opts := viz.GetTheme(cfg.Theme).Apply(cfg.Options())
	return visualizer.Render(state, visualizer.NormalizeFrequencies(levels), highlight, opts), nil
}

func runFrame(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	grid, err := renderFrame(a.cfg)
	if err != nil {
		return err
	}
	fmt.Println(tui.Frame(grid, !noColor))
	fmt.Printf("\nintensity %.3f  lit %d/%d\n", grid.Intensity, grid.OnCount(), grid.Rows*grid.Cols)
	return nil
}

func listSessions(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	st, err := a.store()
	if err != nil {
		return err
	}
	sessions, err := st.List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("no sessions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tDURATION\tFRAMES\tBANDS")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%d\t%d\n",
			s.ID,
			s.Source,
			s.Timestamp.Format("2006-01-02 15:04:05"),
			s.Duration,
			s.Frames,
			s.Bands,
		)
	}
	return w.Flush()
}

func plotSession(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	st, err := a.store()
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(meta.ID)
	if err != nil {
		return err
	}
	if len(frames) < 2 {
		return fmt.Errorf("not enough frames to plot")
	}

	fmt.Printf("session: %s\n", meta.ID)
	fmt.Printf("source: %s\n", meta.Source)
	fmt.Printf("frames: %d\n\n", len(frames))

	fmt.Println(asciigraph.Plot(storage.IntensitySeries(frames),
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.Caption("intensity vs time")))
	fmt.Println()

	maxPlots := min(meta.Bands, 6)
	for band := 0; band < maxPlots; band++ {
		data := make([]float64, len(frames))
		for i, f := range frames {
			if band < len(f.Bands) {
				data[i] = visualizer.NormalizeDb(f.Bands[band])
			}
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(5),
			asciigraph.Width(70),
			asciigraph.LowerBound(0),
			asciigraph.UpperBound(1),
			asciigraph.Caption(fmt.Sprintf("band %d level", band))))
		fmt.Println()
	}

	fmt.Println("states:")
	for _, s := range visualizer.AgentStates {
		if n := meta.States[s]; n > 0 {
			fmt.Printf("  %-12s %d frames\n", s, n)
		}
	}
	return nil
}

func exportSession(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	st, err := a.store()
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(meta.ID)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := storage.ExportJSON(&buf, *meta, frames); err != nil {
		return err
	}
	return writeOutput(outFile, buf.Bytes())
}

func exportSVG(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	theme := viz.GetTheme(a.cfg.Theme)
	var svg string
	if sessionID != "" {
		st, err := a.store()
		if err != nil {
			return err
		}
		frames, err := st.LoadFrames(sessionID)
		if err != nil {
			return err
		}
		svg = export.IntensityToSVG(storage.IntensitySeries(frames), 800, 200, string(theme.Primary))
	} else {
		grid, err := renderFrame(a.cfg)
		if err != nil {
			return err
		}
		svg = export.GridToSVG(grid, cellSize, cellSize/4, string(theme.Background))
	}
	if svg == "" {
		return fmt.Errorf("nothing to export")
	}
	if outFile != "" {
		fmt.Fprintf(os.Stderr, "wrote %s\n", outFile)
	}
	return writeOutput(outFile, []byte(svg))
}

func uploadImages(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	results, err := a.client().Upload(cmd.Context(), args)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
			fmt.Printf("✗ %s\n", r.Error)
			continue
		}
		fmt.Printf("✓ %s -> %s\n", r.OriginalFilename, r.FilePath)
		if r.Analysis != "" {
			fmt.Printf("  %s\n", r.Analysis)
		}
	}
	fmt.Printf("\n%d of %d images uploaded\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d uploads failed", failed)
	}
	return nil
}

func setAPIKey(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		fmt.Fprint(os.Stderr, "api key: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read api key: %w", err)
		}
		key = strings.TrimSpace(line)
	}

	if err := a.client().SetAPIKey(cmd.Context(), key); err != nil {
		return err
	}
	fmt.Println("API key set successfully")
	return nil
}

func pingBackend(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	c := a.client()
	start := time.Now()
	if err := c.Ping(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("%s is up (%s)\n", a.cfg.Backend.URL, time.Since(start).Round(time.Millisecond))

	status, err := c.Status(cmd.Context())
	if err != nil {
		a.log.Debug().Err(err).Msg("status unavailable")
		return nil
	}
	fmt.Printf("status: %s\n", status)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tTHEME\tBANDS\tROWS\tPATH\tINTERVAL")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		rows := "auto"
		if p.Visualizer.Rows > 0 {
			rows = strconv.Itoa(p.Visualizer.Rows)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			name, p.Theme, p.Visualizer.Bands, rows, p.Visualizer.Path, p.Visualizer.Interval)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nthemes: %s\n", strings.Join(viz.ThemeNames(), ", "))
	return nil
}

func writeConfig(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); err == nil {
		return fmt.Errorf("%s already exists", args[0])
	}
	if err := config.Save(args[0], config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
