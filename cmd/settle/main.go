package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/milk9111/physlayout/config"
	"github.com/milk9111/physlayout/logging"
	"github.com/spf13/cobra"
)

var (
	configFile string
	width      float64
	height     float64
	elements   int
	duration   time.Duration
	seed       uint64
	plot       bool
	logLevel   string
)

var (
	title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dim   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	red   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "settle",
		Short:        "run a layout headless and report where the elements came to rest",
		SilenceUsage: true,
		RunE:         runSettle,
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.Flags().Float64Var(&width, "width", 800, "container width")
	rootCmd.Flags().Float64Var(&height, "height", 600, "container height")
	rootCmd.Flags().IntVar(&elements, "elements", 0, "use this many random boxes instead of the config's element sets")
	rootCmd.Flags().DurationVar(&duration, "duration", 5*time.Second, "simulated time")
	rootCmd.Flags().Uint64Var(&seed, "seed", 0, "placement seed (0 picks a random one)")
	rootCmd.Flags().BoolVar(&plot, "plot", false, "plot mean body height over time")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSettle(cmd *cobra.Command, _ []string) error {
	logger, err := logging.New(logging.Options{Level: logLevel})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}

	r, err := simulate(cfg, runOptions{Width: width, Height: height, Elements: elements, Duration: duration}, logger)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), r, plot)
	return nil
}

func printReport(w io.Writer, r report, withPlot bool) {
	fmt.Fprintln(w, title.Render(fmt.Sprintf("settle: set %q, %d frames", r.Set, r.Frames)))
	fmt.Fprintln(w, dim.Render(fmt.Sprintf("session %s  steps %d  force ticks %d  recovered %d",
		r.Session, r.Stats.Steps, r.Stats.ForceTicks, r.Stats.Recovered)))

	if r.Settled() {
		fmt.Fprintln(w, green.Render(fmt.Sprintf("settled after frame %d", r.SettledAt)))
	} else {
		fmt.Fprintln(w, red.Render("still moving at the end of the run"))
	}

	fmt.Fprintf(w, "\n%-12s %9s %9s %8s %7s %7s\n", "element", "x", "y", "angle°", "w", "h")
	for i, t := range r.Final {
		fmt.Fprintf(w, "%-12s %9.1f %9.1f %8.1f %7.0f %7.0f\n",
			r.Labels[i], t.X, t.Y, t.Angle*180/math.Pi, t.Width, t.Height)
	}

	if withPlot && len(r.Samples) > 0 {
		data := make([]float64, len(r.Samples))
		for i, s := range r.Samples {
			data[i] = s.MeanY
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("mean body y (px, down is larger)"),
		))
	}
	fmt.Fprintln(w, dim.Render(strings.Repeat("-", 52)))
}
