package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"dipctl/internal/analysis"
	"dipctl/internal/config"
	"dipctl/internal/dynamo"
	"dipctl/internal/export"
	"dipctl/internal/integrators"
	"dipctl/internal/metrics"
	"dipctl/internal/plant"
	"dipctl/internal/pso"
	"dipctl/internal/sim"
	"dipctl/internal/smc"
	"dipctl/internal/storage"
	"dipctl/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string

	dt       float64
	duration float64
	seed     int64

	pos    float64
	theta1 float64
	theta2 float64
	vel    float64
	omega1 float64
	omega2 float64

	gainsFlag     string
	fmax          float64
	beta          float64
	switching     string
	boundaryLayer float64
	feedforward   bool

	swarmSize int
	maxIter   int
	workers   int
	timeout   float64
	robust    bool
	live      bool

	xAxis int
	yAxis int

	outDir       string
	settlingTo   float64
	chatterCutHz float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dipctl",
		Short: "sliding-mode control lab for the double inverted pendulum",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dipctl", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [variant]",
		Short: "run a closed-loop simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	tuneCmd := &cobra.Command{
		Use:   "tune [variant]",
		Short: "search controller gains with a particle swarm",
		Args:  cobra.ExactArgs(1),
		RunE:  runTuning,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	tuneCmd.Flags().IntVar(&swarmSize, "swarm", 40, "swarm size")
	tuneCmd.Flags().IntVar(&maxIter, "iterations", 200, "maximum iterations")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "parallel evaluations (0 = NumCPU)")
	tuneCmd.Flags().Float64Var(&timeout, "timeout", 0, "wall-clock limit in seconds (0 = none)")
	tuneCmd.Flags().BoolVar(&robust, "robust", false, "average fitness over perturbation scenarios")
	tuneCmd.Flags().BoolVar(&live, "live", false, "show live progress view")

	gainsCmd := &cobra.Command{
		Use:   "gains",
		Short: "gain vector utilities",
	}
	validateCmd := &cobra.Command{
		Use:   "validate [variant] [g1,g2,...]",
		Short: "check a gain vector against its variant's bounds",
		Args:  cobra.ExactArgs(2),
		RunE:  validateGains,
	}
	gainsCmd.AddCommand(validateCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [variant]",
		Short: "list available presets for a variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for variant: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range names {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs and tunings",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", dynamo.Theta1, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", dynamo.Omega1, "state index for y-axis")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "decay rate, settling time, and chattering of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&settlingTo, "band", 0.05, "settling band on theta1")
	analyzeCmd.Flags().Float64Var(&chatterCutHz, "chatter-cutoff", 10.0, "chatter cutoff frequency in Hz")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as PNG figures",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outDir, "out", "figures", "output directory")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run every variant's nominal preset on the same disturbance",
		RunE:  compareVariants,
	}
	compareCmd.Flags().Float64Var(&theta1, "theta1", 0.15, "initial link-1 angle")
	compareCmd.Flags().Float64Var(&theta2, "theta2", 0.10, "initial link-2 angle")
	compareCmd.Flags().Float64Var(&duration, "time", 10.0, "duration")

	rootCmd.AddCommand(runCmd, tuneCmd, gainsCmd, presetsCmd, listCmd, plotCmd, phaseCmd, analyzeCmd, exportCmd, exportJSONCmd, compareCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	cmd.Flags().Float64Var(&duration, "time", 10.0, "duration")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().Float64Var(&pos, "pos", 0.0, "initial cart position")
	cmd.Flags().Float64Var(&theta1, "theta1", 0.1, "initial link-1 angle")
	cmd.Flags().Float64Var(&theta2, "theta2", 0.05, "initial link-2 angle")
	cmd.Flags().Float64Var(&vel, "vel", 0.0, "initial cart velocity")
	cmd.Flags().Float64Var(&omega1, "omega1", 0.0, "initial link-1 angular velocity")
	cmd.Flags().Float64Var(&omega2, "omega2", 0.0, "initial link-2 angular velocity")
	cmd.Flags().StringVar(&gainsFlag, "gains", "", "comma-separated gain vector")
	cmd.Flags().Float64Var(&fmax, "fmax", config.DefaultFmax, "actuator force limit")
	cmd.Flags().Float64Var(&beta, "beta", config.DefaultBeta, "actuation efficiency")
	cmd.Flags().StringVar(&switching, "switch", "tanh", "switching function: tanh or linear")
	cmd.Flags().Float64Var(&boundaryLayer, "boundary-layer", 0.02, "boundary layer width")
	cmd.Flags().BoolVar(&feedforward, "feedforward", true, "enable equivalent-control feedforward")
}

// buildConfig resolves preset, config file, and flags in that order.
func buildConfig(cmd *cobra.Command, variant string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(variant, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(variant))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	cfg.Variant = variant

	flagSet := func(name string) bool { return cmd.Flags().Changed(name) }
	if flagSet("dt") {
		cfg.Dt = dt
	}
	if flagSet("time") {
		cfg.Duration = duration
	}
	if flagSet("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flagSet("pos") {
		cfg.InitState.Pos = pos
	}
	if flagSet("theta1") {
		cfg.InitState.Theta1 = theta1
	}
	if flagSet("theta2") {
		cfg.InitState.Theta2 = theta2
	}
	if flagSet("vel") {
		cfg.InitState.Vel = vel
	}
	if flagSet("omega1") {
		cfg.InitState.Omega1 = omega1
	}
	if flagSet("omega2") {
		cfg.InitState.Omega2 = omega2
	}
	if flagSet("fmax") {
		cfg.Control.Fmax = fmax
	}
	if flagSet("beta") {
		cfg.Control.Beta = beta
	}
	if flagSet("switch") {
		cfg.Control.Switch = switching
	}
	if flagSet("boundary-layer") {
		cfg.Control.BoundaryLayer = boundaryLayer
	}
	if flagSet("feedforward") {
		cfg.Control.Feedforward = feedforward
	}
	if flagSet("gains") {
		gains, err := parseGains(gainsFlag)
		if err != nil {
			return nil, err
		}
		cfg.Gains = gains
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseGains(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	gains := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad gain %q: %w", p, err)
		}
		gains = append(gains, v)
	}
	return gains, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if len(cfg.Gains) == 0 {
		return fmt.Errorf("no gains: pass --gains, --preset, or a config file")
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	dip := plant.NewDoubleInvertedPendulum()
	law, err := smc.New(smc.Variant(cfg.Variant), cfg.Gains, cfg.GainBounds(), cfg.ControlOptions(dip))
	if err != nil {
		return err
	}
	runner := smc.NewRunner(law)

	simulator := sim.New(dip, integrators.NewRK4(), runner)
	simCfg := cfg.SimConfig()
	attachMetrics(simulator, simCfg.Dt, law)

	fmt.Printf("running %s controller...\n", cfg.Variant)
	start := time.Now()
	result, err := simulator.Run(context.Background(), cfg.GetInitState(), simCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.SaveRun(cfg.Variant, cfg.Gains, cfg.Dt, cfg.Duration, cfg.Seed, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(result.States))
	if result.Diverged {
		fmt.Printf("DIVERGED at t=%.3fs\n", result.FailTime)
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	if sigma := runner.Trace()["sigma"]; len(sigma) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(sigma,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("sliding surface sigma(t)"),
		))
	}
	return nil
}

func attachMetrics(s *sim.Simulator, dt float64, law smc.Law) {
	s.AddMetric(metrics.NewTrackingError(dt))
	s.AddMetric(metrics.NewControlEffort(dt))
	s.AddMetric(metrics.NewControlRate(dt))
	s.AddMetric(metrics.NewSurfaceEnergy(dt, law.Sigma))
}

func runTuning(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("swarm") {
		cfg.Tuner.SwarmSize = swarmSize
	}
	if cmd.Flags().Changed("iterations") {
		cfg.Tuner.MaxIterations = maxIter
	}
	if cmd.Flags().Changed("workers") {
		cfg.Tuner.Workers = workers
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Tuner.TimeoutSeconds = timeout
	}
	if robust {
		cfg.Tuner.Robust = true
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	dip := plant.NewDoubleInvertedPendulum()
	evaluator := &pso.Evaluator{
		Variant:   smc.Variant(cfg.Variant),
		Bounds:    cfg.GainBounds(),
		Options:   cfg.ControlOptions(dip),
		Plant:     dip,
		Cfg:       cfg.SimConfig(),
		Weights:   pso.DefaultWeights(),
		Norms:     pso.DefaultNorms(),
		Scenarios: cfg.Scenarios(),
		Initial:   cfg.GetInitState(),
	}

	opt, err := pso.NewOptimizer(cfg.TunerConfig(), evaluator.Evaluate)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var outcome *pso.Outcome
	var runErr error
	start := time.Now()

	if live {
		outcome, runErr = runTuningLive(ctx, cancel, cfg.Variant, opt)
	} else {
		opt.OnIteration = func(iter int, bestCost float64, _ []float64) {
			if iter%10 == 0 {
				fmt.Printf("iter %4d  best %.6g\n", iter, bestCost)
			}
		}
		outcome, runErr = opt.Run(ctx)
	}
	if outcome == nil {
		return runErr
	}
	elapsed := time.Since(start)

	runID, err := st.SaveTuning(cfg.Variant, cfg.Seed, cfg.Tuner.Robust, outcome)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s after %d iterations in %v\n", outcome.Termination, outcome.Iterations, elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("best cost: %.6g\n", outcome.Cost)
	fmt.Printf("best gains: %s\n", formatGainVector(outcome.Best))
	if runErr != nil {
		fmt.Printf("stopped early: %v\n", runErr)
	}

	if len(outcome.History) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(outcome.History,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("best cost per iteration"),
		))
	}
	return nil
}

func runTuningLive(ctx context.Context, cancel func(), variant string, opt *pso.Optimizer) (*pso.Outcome, error) {
	events := make(chan tea.Msg, 64)
	opt.OnIteration = tui.Attach(events)

	type searchResult struct {
		outcome *pso.Outcome
		err     error
	}
	resultCh := make(chan searchResult, 1)
	go func() {
		outcome, err := opt.Run(ctx)
		events <- tui.DoneMsg{Outcome: outcome, Err: err}
		resultCh <- searchResult{outcome, err}
	}()

	program := tea.NewProgram(tui.NewModel(variant, events, cancel))
	if _, err := program.Run(); err != nil {
		cancel()
	}
	r := <-resultCh
	return r.outcome, r.err
}

func validateGains(cmd *cobra.Command, args []string) error {
	variant := smc.Variant(args[0])
	gains, err := parseGains(args[1])
	if err != nil {
		return err
	}
	if err := smc.Validate(variant, gains, smc.DefaultBounds(variant)); err != nil {
		return err
	}
	fmt.Printf("valid %s gain vector: %s\n", variant, formatGainVector(gains))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	runs, err := st.ListRuns()
	if err != nil {
		return err
	}
	tunings, err := st.ListTunings()
	if err != nil {
		return err
	}
	if len(runs) == 0 && len(tunings) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if len(runs) > 0 {
		fmt.Fprintln(w, "ID\tVARIANT\tTIME\tDURATION\tDT\tDIVERGED")
		for _, run := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%v\n",
				run.ID, run.Variant,
				run.Timestamp.Format("2006-01-02 15:04:05"),
				run.Duration, run.Dt, run.Diverged)
		}
	}
	if len(tunings) > 0 {
		fmt.Fprintln(w, "\nID\tVARIANT\tTIME\tITERS\tCOST\tEND")
		for _, run := range tunings {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.6g\t%s\n",
				run.ID, run.Variant,
				run.Timestamp.Format("2006-01-02 15:04:05"),
				run.Iterations, run.Cost, run.Termination)
		}
	}
	return w.Flush()
}

var stateCaptions = []string{
	"cart position", "link-1 angle", "link-2 angle",
	"cart velocity", "link-1 angular velocity", "link-2 angular velocity",
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID := args[0]

	if history, err := st.LoadHistory(runID); err == nil {
		fmt.Printf("tuning run: %s\n\n", runID)
		fmt.Println(asciigraph.Plot(history,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("best cost per iteration"),
		))
		return nil
	}

	meta, err := st.LoadRun(runID)
	if err != nil {
		return err
	}
	states, forces, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("variant: %s\n", meta.Variant)
	fmt.Printf("samples: %d\n\n", len(states))

	for idx := 0; idx < dynamo.StateDim; idx++ {
		data := make([]float64, len(states))
		for i := range states {
			data[i] = states[i][idx]
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(stateCaptions[idx]),
		))
		fmt.Println()
	}

	fmt.Println(asciigraph.Plot(forces,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("control force"),
	))
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	states, _, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	result := &dynamo.Result{Times: times}
	for _, s := range states {
		result.States = append(result.States, dynamo.State(s))
	}

	portrait := analysis.NewPhasePortrait(result, xAxis, yAxis)
	if portrait == nil {
		return fmt.Errorf("cannot build portrait for axes %d,%d", xAxis, yAxis)
	}
	fmt.Printf("phase portrait: x=%d y=%d\n\n", xAxis, yAxis)
	fmt.Print(portrait.ASCII(78, 24))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID := args[0]

	meta, err := st.LoadRun(runID)
	if err != nil {
		return err
	}
	states, forces, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data")
	}

	angle1 := make([]float64, len(states))
	for i := range states {
		angle1[i] = states[i][dynamo.Theta1]
	}

	fmt.Printf("analysis: %s (%s)\n\n", meta.ID, meta.Variant)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "decay rate (theta1)\t%.4f /s\n", analysis.DecayRate(times, angle1))
	if settle := analysis.SettlingTime(times, angle1, settlingTo); settle >= 0 {
		fmt.Fprintf(w, "settling time (|theta1| < %.3g)\t%.3fs\n", settlingTo, settle)
	} else {
		fmt.Fprintf(w, "settling time\tnever\n")
	}
	fmt.Fprintf(w, "chatter index\t%.2f N/s\n", analysis.ChatterIndex(times, forces))
	fmt.Fprintf(w, "overshoot after entry\t%.4f rad\n", analysis.PeakOvershoot(angle1, settlingTo))
	if spec := analysis.ControlSpectrum(forces, meta.Dt); spec != nil {
		fmt.Fprintf(w, "dominant force frequency\t%.2f Hz\n", spec.DominantFrequency())
		fmt.Fprintf(w, "force power above %g Hz\t%.1f%%\n", chatterCutHz, 100*spec.HighFrequencyFraction(chatterCutHz))
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID := args[0]

	if history, err := st.LoadHistory(runID); err == nil {
		if err := export.SaveConvergencePlot(outDir, history); err != nil {
			return err
		}
		fmt.Printf("wrote %s/convergence.png\n", outDir)
		return nil
	}

	states, forces, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	result := &dynamo.Result{Times: times}
	for i, s := range states {
		result.States = append(result.States, dynamo.State(s))
		result.Controls = append(result.Controls, dynamo.Control{forces[i]})
	}
	if err := export.SaveRunPlots(outDir, result, nil); err != nil {
		return err
	}
	fmt.Printf("wrote figures to %s/\n", outDir)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	if meta, err := st.LoadTuning(args[0]); err == nil && meta.Termination != "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}
	meta, err := st.LoadRun(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func compareVariants(cmd *cobra.Command, args []string) error {
	dip := plant.NewDoubleInvertedPendulum()
	initial := dynamo.State{0, theta1, theta2, 0, 0, 0}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tISE\tEFFORT\tCHATTER\tDIVERGED")

	for _, variant := range []string{"classical", "adaptive", "sta", "hybrid"} {
		cfg := config.GetPreset(variant, "nominal")
		if cfg == nil {
			continue
		}
		cfg.Duration = duration

		law, err := smc.New(smc.Variant(variant), cfg.Gains, cfg.GainBounds(), cfg.ControlOptions(dip))
		if err != nil {
			return err
		}
		runner := smc.NewRunner(law)
		simulator := sim.New(dip, integrators.NewRK4(), runner)
		simCfg := cfg.SimConfig()
		attachMetrics(simulator, simCfg.Dt, law)

		result, err := simulator.Run(context.Background(), initial, simCfg)
		if err != nil {
			return err
		}

		force := make([]float64, len(result.Controls))
		for i, c := range result.Controls {
			force[i] = c.Force()
		}
		chatter := analysis.ChatterIndex(result.Times[:len(force)], force)
		fmt.Fprintf(w, "%s\t%.4f\t%.1f\t%.1f\t%v\n",
			variant, result.Metrics["ise"], result.Metrics["effort"], chatter, result.Diverged)
	}
	return w.Flush()
}

func formatGainVector(gains []float64) string {
	parts := make([]string, len(gains))
	for i, g := range gains {
		parts[i] = fmt.Sprintf("%.4f", g)
	}
	return strings.Join(parts, ", ")
}
