package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/isecsim/internal/config"
	"github.com/san-kum/isecsim/internal/isec"
	"github.com/san-kum/isecsim/internal/material"
	"github.com/san-kum/isecsim/internal/metrics"
	"github.com/san-kum/isecsim/internal/shape"
	"github.com/san-kum/isecsim/internal/sim"
	"github.com/san-kum/isecsim/internal/storage"
	"github.com/san-kum/isecsim/internal/viz"
)

var (
	dataDir       string
	logLevel      string
	materialsFile string
	configFile    string
	preset        string
	timeStep      float64
	steps         int
	outputFile    string
	combined      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "isecsim",
		Short:         "layered heat conduction column simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".isecsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&materialsFile, "materials", "", "extra material catalogue (ini)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a column and save the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a column with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot layer temperatures of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&combined, "combined", false, "plot all layers on one graph")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run history to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and history to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	materialsCmd := &cobra.Command{
		Use:   "materials [name]",
		Short: "list materials or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showMaterials,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, presetsCmd, materialsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "run file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a named preset")
	cmd.Flags().Float64Var(&timeStep, "time-step", config.DefaultTimeStep, "time step (s)")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
}

func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

// loadRunConfig resolves the run file. A config file takes precedence over a
// preset; explicit flags override both.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	default:
		return nil, fmt.Errorf("a --config file or --preset is required (presets: %v)", config.ListPresets())
	}

	if cmd.Flags().Changed("time-step") {
		cfg.TimeStep = timeStep
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("materials") {
		cfg.MaterialsFile = materialsFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildColumn(cfg *config.Config, logger log.FieldLogger) (*isec.Stack, error) {
	cat, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	stack, err := cfg.BuildStack(cat, logger)
	if err != nil {
		return nil, err
	}
	if crit := stack.CriticalTimeStep(); cfg.TimeStep > crit {
		logger.WithFields(log.Fields{
			"time_step": cfg.TimeStep,
			"critical":  crit,
		}).Warn("time step exceeds the explicit stability limit, expect oscillation")
	}
	return stack, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	logger := log.StandardLogger()
	stack, err := buildColumn(cfg, logger)
	if err != nil {
		return err
	}
	fmt.Println(stack)

	driver := sim.New(stack, sim.WithLogger(logger))
	for _, m := range metrics.Defaults() {
		driver.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s for %d steps of %gs...\n", cfg.Name, cfg.Steps, cfg.TimeStep)
	start := time.Now()

	simCfg := cfg.SimConfig()
	result, err := driver.Run(ctx, simCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg.Name, simCfg, stack, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)

	final := result.Final()
	fmt.Println("\nfinal temperatures:")
	for i := len(final.Temperatures) - 1; i >= 0; i-- {
		fmt.Printf("  %d %-24s %10.4f C  %+10.4f W\n", i, stack.Layer(i), final.Temperatures[i], final.Fluxes[i])
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	// the alt screen owns the terminal; only problems go to stderr
	logger := log.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(log.WarnLevel)

	stack, err := buildColumn(cfg, logger)
	if err != nil {
		return err
	}
	driver := sim.New(stack, sim.WithLogger(logger))
	return viz.Run(viz.NewModel(driver, cfg.SimConfig(), cfg.InitialTemperatures(), cfg.Name))
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tLAYERS\tDT\tSTEPS\tPEAK")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%gs\t%d\t%.2f\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Layers),
			run.TimeStep,
			run.Steps,
			run.Metrics["peak_temperature"],
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}
	if len(history) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(history))

	series := make([][]float64, len(meta.Layers))
	for i := range series {
		series[i] = make([]float64, len(history))
		for j, snap := range history {
			if i < len(snap.Temperatures) {
				series[i][j] = snap.Temperatures[i]
			}
		}
	}

	if combined {
		fmt.Println(asciigraph.PlotMany(series,
			asciigraph.Height(15),
			asciigraph.Width(70),
			asciigraph.Caption("all layers (C) vs time"),
		))
		return nil
	}

	for i, data := range series {
		caption := fmt.Sprintf("layer %d %s %s (C) vs time", i, meta.Layers[i].Material, meta.Layers[i].Kind)
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption(caption),
		))
		fmt.Println()
	}
	return nil
}

func openOutput() (io.WriteCloser, error) {
	if outputFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outputFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	history, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}

	out, err := openOutput()
	if err != nil {
		return err
	}
	defer out.Close()

	if err := storage.WriteCSV(out, history); err != nil {
		return err
	}
	if outputFile != "" {
		fmt.Printf("exported %d rows to %s\n", len(history), outputFile)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}

	out, err := openOutput()
	if err != nil {
		return err
	}
	defer out.Close()

	if err := storage.ExportJSON(out, meta, history); err != nil {
		return err
	}
	if outputFile != "" {
		fmt.Printf("exported to %s\n", outputFile)
	}
	return nil
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tLAYERS\tDT\tSTEPS\tSIMULATED")
		for _, name := range config.ListPresets() {
			p := config.GetPreset(name)
			fmt.Fprintf(w, "%s\t%d\t%gs\t%d\t%gs\n", name, len(p.Layers), p.TimeStep, p.Steps, p.TimeStep*float64(p.Steps))
		}
		return w.Flush()
	}

	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	if cmd.Flags().Changed("materials") {
		cfg.MaterialsFile = materialsFile
	}
	logger := log.New()
	logger.SetOutput(io.Discard)
	stack, err := buildColumn(cfg, logger)
	if err != nil {
		return err
	}
	fmt.Printf("preset: %s\n", cfg.Name)
	fmt.Printf("time step: %gs (critical %.4gs)\n", cfg.TimeStep, stack.CriticalTimeStep())
	fmt.Printf("steps: %d\n\n", cfg.Steps)
	fmt.Println(stack)
	for i, lc := range cfg.Layers {
		sh, err := shape.New(lc.Shape)
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		fmt.Printf("layer %d (%s %s)\n%s", i, lc.Kind, lc.Material, shape.Describe(sh))
	}
	return nil
}

func showMaterials(cmd *cobra.Command, args []string) error {
	cat := material.DefaultCatalog()
	if materialsFile != "" {
		if err := cat.LoadINI(materialsFile); err != nil {
			return err
		}
	}

	if len(args) == 1 {
		m, err := cat.Lookup(args[0])
		if err != nil {
			return err
		}
		fmt.Print(material.Describe(m))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDENSITY\tSPECIFIC HEAT\tCONDUCTIVITY")
	for _, name := range cat.Names() {
		m, err := cat.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\n", m.Name, m.Density, m.SpecificHeat, m.Conductivity)
	}
	return w.Flush()
}
