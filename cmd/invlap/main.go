package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/invlap/internal/config"
	"github.com/san-kum/invlap/internal/experiment"
	"github.com/san-kum/invlap/internal/export"
	"github.com/san-kum/invlap/internal/forward"
	"github.com/san-kum/invlap/internal/storage"
	"github.com/san-kum/invlap/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	n          int
	dim        int
	stencil    string
	solution   string
	noiseLevel float64
	lambdaReg  float64
	numModes   int
	numSV      int
	seed       int64
	draws      int
	workers    int
	method     string

	figuresDir string
	format     string
	figuresOut string
	jsonOut    string
	fieldName  string
	runs       int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "invlap",
		Short:         "inverse problems lab for the discrete Laplacian",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".invlap", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [experiment]",
		Short: "run an experiment",
		Args:  cobra.ExactArgs(1),
		RunE:  runExperiment,
	}
	addRunFlags(runCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [experiment]",
		Short: "repeat an experiment over consecutive seeds",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&runs, "runs", 10, "number of seeds")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print the report of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run series in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&fieldName, "field", "", "also plot the middle row of this field")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "write figures of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  exportFigures,
	}
	exportCmd.Flags().StringVar(&figuresOut, "out", ".", "output directory")
	exportCmd.Flags().StringVar(&format, "format", "png", "figure format (png, svg, pdf)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&jsonOut, "out", "", "output file (stdout if empty)")

	presetsCmd := &cobra.Command{
		Use:   "presets [experiment]",
		Short: "list available presets for an experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for experiment: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	experimentsCmd := &cobra.Command{
		Use:   "experiments",
		Short: "list experiments and true solutions",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("experiments:")
			for _, name := range experiment.NewRegistry().List() {
				fmt.Printf("  %s\n", name)
			}
			fmt.Println("solutions:")
			for _, name := range forward.ListSolutions() {
				fmt.Printf("  %s\n", name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, ensembleCmd, listCmd, showCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, presetsCmd, experimentsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&n, "n", config.DefaultN, "grid resolution")
	cmd.Flags().IntVar(&dim, "dim", 2, "dimension (1 or 2)")
	cmd.Flags().StringVar(&stencil, "stencil", "kron", "stencil (kron, standard)")
	cmd.Flags().StringVar(&solution, "solution", "sinsin", "true solution")
	cmd.Flags().Float64Var(&noiseLevel, "noise", config.DefaultNoiseLevel, "measurement noise level")
	cmd.Flags().Float64Var(&lambdaReg, "lambda", config.DefaultLambdaReg, "tikhonov weight")
	cmd.Flags().IntVar(&numModes, "modes", config.DefaultNumModes, "eigenmodes (spectrum)")
	cmd.Flags().IntVar(&numSV, "sv", config.DefaultNumSV, "singular values per end (conditioning)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().IntVar(&draws, "draws", config.DefaultDraws, "noise draws per level (conditioning)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel solves (lambda-sweep)")
	cmd.Flags().StringVar(&method, "method", "auto", "spectral method (auto, dense, subspace)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&figuresDir, "figures", "", "also write figures to this directory")
	cmd.Flags().StringVar(&format, "format", "png", "figure format (png, svg, pdf)")
}

// resolveConfig layers defaults, preset, config file and changed flags, in
// that order.
func resolveConfig(cmd *cobra.Command, name string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(name, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(name))
		}
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	cfg.Experiment = name

	flags := cmd.Flags()
	if flags.Changed("n") {
		cfg.N = n
	}
	if flags.Changed("dim") {
		cfg.Dim = dim
	}
	if flags.Changed("stencil") {
		cfg.Stencil = stencil
	}
	if flags.Changed("solution") {
		cfg.Solution = solution
	}
	if flags.Changed("noise") {
		cfg.NoiseLevel = noiseLevel
	}
	if flags.Changed("lambda") {
		cfg.LambdaReg = lambdaReg
	}
	if flags.Changed("modes") {
		cfg.NumModes = numModes
	}
	if flags.Changed("sv") {
		cfg.NumSV = numSV
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("draws") {
		cfg.Draws = draws
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("method") {
		cfg.Spectral.Method = method
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, nil
}

func runExperiment(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	return execute(cfg, experiment.NewRegistry().Run)
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("ensemble of %d runs\n", runs)
	return execute(cfg, experiment.NewEnsemble(experiment.NewRegistry(), runs, cfg.Workers).Run)
}

// execute runs cfg, stores the result and prints its report.
func execute(cfg *config.Config, run experiment.Runner) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s experiment (N=%d, dim=%d, seed=%d)...\n", cfg.Experiment, cfg.N, cfg.Dim, cfg.Seed)
	start := time.Now()

	result, err := run(ctx, cfg)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n\n", runID)
	if err := viz.Report(os.Stdout, result); err != nil {
		return err
	}

	if figuresDir != "" {
		if err := os.MkdirAll(figuresDir, 0755); err != nil {
			return err
		}
		paths, err := export.Result(figuresDir, result, format)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Printf("wrote %s\n", p)
		}
	}
	return nil
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
	fmt.Fprintln(w, "ID\tKIND\tTIME\tN\tDIM\tSTENCIL\tNOISE\tLAMBDA")

	for _, run := range runs {
		stencilName, noise, lambda := "-", 0.0, 0.0
		if run.Config != nil {
			stencilName, noise, lambda = run.Config.Stencil, run.Config.NoiseLevel, run.Config.LambdaReg
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%.1e\t%.1e\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Grid.N,
			run.Grid.Dim,
			stencilName,
			noise,
			lambda,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("time: %s\n", meta.Timestamp.Format(time.RFC3339))
	fmt.Printf("seed: %d\n\n", meta.Seed)
	return viz.Report(os.Stdout, result)
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	if len(result.Series) == 0 && fieldName == "" {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("kind: %s\n\n", meta.Kind)

	names := make([]string, 0, len(result.Series))
	for name := range result.Series {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		graph, err := viz.SeriesChart(result, name, 80, 10)
		if err != nil {
			continue
		}
		fmt.Println(graph)
		fmt.Println()
	}

	if fieldName != "" {
		f, ok := result.Fields[fieldName]
		if !ok {
			return fmt.Errorf("no field %q in run %s", fieldName, meta.ID)
		}
		row, err := viz.Profile(result.Grid, f)
		if err != nil {
			return err
		}
		graph, err := viz.Chart(row, fieldName+" (middle row)", viz.ChartOptions{Width: 80, Height: 15})
		if err != nil {
			return err
		}
		fmt.Println(graph)
	}
	return nil
}

func exportFigures(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	_, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(figuresOut, 0755); err != nil {
		return err
	}
	paths, err := export.Result(figuresOut, result, format)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Printf("wrote %s\n", p)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	names := make([]string, 0, len(series))
	rows := 0
	for name, s := range series {
		names = append(names, name)
		rows = max(rows, len(s))
	}
	sort.Strings(names)

	if err := w.Write(append([]string{"index"}, names...)); err != nil {
		return err
	}
	for i := 0; i < rows; i++ {
		row := []string{strconv.Itoa(i)}
		for _, name := range names {
			if i < len(series[name]) {
				row = append(row, strconv.FormatFloat(series[name][i], 'e', 8, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	if jsonOut == "" {
		return storage.ExportJSONStdout(meta, result)
	}
	if err := storage.ExportJSON(jsonOut, meta, result); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", jsonOut)
	return nil
}
