package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/go-logr/logr"
	"github.com/san-kum/molsim/internal/config"
	"github.com/san-kum/molsim/internal/dynamo"
	"github.com/san-kum/molsim/internal/logging"
	"github.com/san-kum/molsim/internal/metrics"
	"github.com/san-kum/molsim/internal/molecules"
	"github.com/san-kum/molsim/internal/sim"
	"github.com/san-kum/molsim/internal/storage"
	"github.com/san-kum/molsim/internal/topology"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	configFile  string
	preset      string
	size        float64
	steps       int
	timestepFs  float64
	substeps    int
	temperature float64
	seed        int64
	noHMR       bool
	cutoff      float64
	stretch     string
	paramsFile  string
	replicas    int
	jsonOut     string
	speedLimit  float64
	verbosity   int
	development bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "molsim",
		Short:         "MM4 hydrocarbon molecular mechanics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".molsim", "data directory")
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbosity", "v", 0, "log verbosity (0 info, 1 debug, 2 trace)")
	rootCmd.PersistentFlags().BoolVar(&development, "dev", false, "human readable development logs")
	rootCmd.PersistentFlags().StringVar(&paramsFile, "params", "", "parameter table (yaml)")

	runCmd := &cobra.Command{
		Use:   "run [molecule]",
		Short: "run a simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().Float64Var(&size, "size", 0, "carbon count or separation in nm, molecule dependent")
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "outer steps")
	runCmd.Flags().Float64Var(&timestepFs, "dt", config.DefaultTimestepFs, "outer timestep in fs")
	runCmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubsteps, "fast substeps per outer step")
	runCmd.Flags().Float64Var(&temperature, "temperature", config.DefaultTemperature, "initial temperature in K")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	runCmd.Flags().BoolVar(&noHMR, "no-hmr", false, "disable hydrogen mass repartitioning")
	runCmd.Flags().Float64Var(&cutoff, "cutoff", 0, "nonbonded cutoff in nm, 0 for none")
	runCmd.Flags().StringVar(&stretch, "stretch", "", "bond stretch potential: sextic or morse")
	runCmd.Flags().IntVar(&replicas, "replicas", 1, "independent replicas with consecutive seeds")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "export the result as JSON to a file, - for stdout")
	runCmd.Flags().Float64Var(&speedLimit, "speed-limit", 50, "atom speed in nm/ps counted as unstable")

	classifyCmd := &cobra.Command{
		Use:   "classify [molecule]",
		Short: "show bonded relationships and force field terms",
		Args:  cobra.ExactArgs(1),
		RunE:  classifyMolecule,
	}
	classifyCmd.Flags().Float64Var(&size, "size", 0, "carbon count or separation in nm, molecule dependent")
	classifyCmd.Flags().Float64Var(&cutoff, "cutoff", 0, "nonbonded cutoff in nm, 0 for none")
	classifyCmd.Flags().StringVar(&stretch, "stretch", "", "bond stretch potential: sextic or morse")

	moleculesCmd := &cobra.Command{
		Use:   "molecules",
		Short: "list built-in molecules",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range molecules.NewRegistry().List() {
				fmt.Println(name)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energy and temperature of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the temperature series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [molecule]",
		Short: "list available presets for a molecule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for molecule: %s\n", args[0])
				return nil
			}
			fmt.Println(heading.Render("presets for " + args[0]))
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTEPS\tTEMP")
			for _, p := range presets {
				cfg := config.GetPreset(args[0], p)
				fmt.Fprintf(w, "%s\t%d\t%.0fK\n", p, cfg.Steps, cfg.Temperature)
			}
			return w.Flush()
		},
	}

	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "print the parameter table as yaml",
		RunE:  dumpParams,
	}

	rootCmd.AddCommand(runCmd, classifyCmd, moleculesCmd, listCmd, plotCmd, exportCmd, analyzeCmd, presetsCmd, paramsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failure.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func newLogger() logr.Logger {
	log, err := logging.New(verbosity, development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
	}
	return log
}

// resolveConfig layers defaults, preset, config file and explicit flags,
// in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Molecule = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Molecule, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Molecule))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Molecule = args[0]
			cfg.Topology = nil
		}
	}

	flags := cmd.Flags()
	if flags.Changed("size") {
		cfg.Size = size
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("dt") {
		cfg.TimestepFs = timestepFs
	}
	if flags.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if flags.Changed("temperature") {
		cfg.Temperature = temperature
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if noHMR {
		cfg.Repartition.Enabled = false
	}
	if flags.Changed("cutoff") {
		cfg.Nonbonded.Cutoff = cutoff
	}
	if flags.Changed("stretch") {
		cfg.Stretch.Potential = stretch
	}
	if paramsFile != "" {
		cfg.Parameters = paramsFile
	}
	if flags.Changed("verbosity") {
		cfg.Log.Verbosity = verbosity
	}
	if flags.Changed("dev") {
		cfg.Log.Development = development
	}
	verbosity = cfg.Log.Verbosity
	development = cfg.Log.Development

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	log := newLogger()

	top, err := cfg.BuildTopology()
	if err != nil {
		return err
	}
	table, err := cfg.Table()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []sim.Option{sim.WithLogger(log), sim.WithTable(table)}
	if replicas > 1 {
		return runEnsemble(ctx, cfg, top, opts)
	}

	opts = append(opts, sim.WithMetric(metrics.NewEnergy()), sim.WithMetric(metrics.NewStability(speedLimit)))
	engine, err := sim.New(top, cfg.EngineConfig(), opts...)
	if err != nil {
		return err
	}

	fmt.Println(heading.Render(fmt.Sprintf("running %s (%d atoms, %d groups)", cfg.Name(), top.NumAtoms(), engine.Groups().Len())))
	start := time.Now()

	result, runErr := engine.RunContext(ctx, cfg.Steps)
	elapsed := time.Since(start)
	if runErr != nil && !errors.Is(runErr, context.Canceled) && result.StepsTaken == 0 {
		return runErr
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	info := storage.RunInfo{
		Molecule:    cfg.Name(),
		Atoms:       top.NumAtoms(),
		Seed:        cfg.Seed,
		TimestepFs:  cfg.TimestepFs,
		Substeps:    cfg.Substeps,
		Temperature: cfg.Temperature,
		Parameters:  table.Name(),
	}
	runID, err := st.Save(info, result)
	if err != nil {
		return err
	}
	if jsonOut != "" {
		if err := storage.ExportJSON(jsonOut, info, result); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (%.3f ps)\n", result.StepsTaken, result.Time)
	fmt.Printf("evaluations: fast %d, slow %d\n", engine.Evaluations(dynamo.Fast), engine.Evaluations(dynamo.Slow))
	printMetrics(result.Metrics)

	if runErr != nil {
		fmt.Println(failure.Render("aborted: ") + runErr.Error())
		return runErr
	}
	fmt.Println(success.Render("ok"))
	return nil
}

func runEnsemble(ctx context.Context, cfg *config.Config, top *topology.Topology, opts []sim.Option) error {
	fmt.Println(heading.Render(fmt.Sprintf("running %d replicas of %s", replicas, cfg.Name())))
	start := time.Now()

	results, err := sim.NewEnsemble(top, cfg.EngineConfig(), replicas, opts...).Run(ctx, cfg.Steps)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", time.Since(start))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tINITIAL\tFINAL\tMAX DRIFT\tTEMP")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.4f\t%.4f\t%.4g\t%.1fK\n",
			cfg.Seed+int64(i),
			r.StepsTaken,
			r.InitialEnergy,
			r.FinalEnergy,
			r.MaxDrift,
			r.Metrics["temperature"],
		)
	}
	return w.Flush()
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}
