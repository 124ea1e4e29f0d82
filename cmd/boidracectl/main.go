package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"boidrace/internal/storage"
	"boidrace/internal/track"
	"boidrace/pkg/boidrace"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "track":
		return runTrack(ctx, args[1:])
	case "champion":
		return runChampion(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "stats":
		return runStats(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "import":
		return runImport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func storeFlags(fs *flag.FlagSet) (storeKind, dbPath *string) {
	storeKind = fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath = fs.String("db-path", "boidrace.db", "sqlite database path")
	return storeKind, dbPath
}

func openClient(storeKind, dbPath string) (*boidrace.Client, error) {
	return boidrace.NewClient(boidrace.Options{StoreKind: storeKind, DBPath: dbPath})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := openClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := openClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Reset(ctx); err != nil {
		return err
	}
	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	profilePath := fs.String("profile", "", "optional INI run profile path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	generations := fs.Int("gens", 10, "generation count")
	population := fs.Int("pop", 50, "population size")
	mutationRate := fs.Float64("mutation-rate", 0.05, "per-parameter mutation probability")
	eliteCount := fs.Int("elites", 4, "unmodified top agents carried per generation")
	tournamentSize := fs.Int("tournament", 5, "tournament selection size")
	maxLifespan := fs.Int("max-lifespan", 3000, "generation tick budget")
	seed := fs.Int64("seed", 1, "rng seed")
	trackSeed := fs.Int64("track-seed", 0, "track seed (0 uses rng seed)")
	width := fs.Float64("width", 800, "arena width")
	height := fs.Float64("height", 600, "arena height")
	trackWidth := fs.Float64("track-width", 60, "distance between inner and outer walls")
	controlPoints := fs.Int("control-points", 10, "spline control point count")
	segmentsPerCurve := fs.Int("segments-per-curve", 12, "spline samples per control point")
	radiusVariance := fs.Float64("radius-variance", 0.4, "control point radius variance")
	cornerTightness := fs.Float64("corner-tightness", 0.6, "control point angle jitter")
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := boidrace.RunRequest{
		RunID:          *runID,
		Generations:    *generations,
		Population:     *population,
		MutationRate:   mutationRate,
		EliteCount:     eliteCount,
		TournamentSize: *tournamentSize,
		MaxLifespan:    *maxLifespan,
		Seed:           *seed,
		TrackSeed:      *trackSeed,
		Width:          *width,
		Height:         *height,
		TrackParams: track.Params{
			TrackWidth:       *trackWidth,
			NumControlPoints: *controlPoints,
			SegmentsPerCurve: *segmentsPerCurve,
			RadiusVariance:   *radiusVariance,
			CornerTightness:  *cornerTightness,
		},
	}
	if *profilePath != "" {
		profile, err := loadRunProfile(*profilePath)
		if err != nil {
			return err
		}
		req = profile.apply(req)
	}

	client, err := openClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run=%s generations=%d best=%.2f\n", summary.RunID, summary.GenerationsCompleted, summary.BestFitness)
	for i, fitness := range summary.FitnessHistory {
		fmt.Printf("  gen %3d best=%.2f\n", i+1, fitness)
	}
	return nil
}

func runTrack(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("track", flag.ContinueOnError)
	seed := fs.Int64("seed", 1, "track seed")
	width := fs.Float64("width", 800, "arena width")
	height := fs.Float64("height", 600, "arena height")
	trackWidth := fs.Float64("track-width", 60, "distance between inner and outer walls")
	controlPoints := fs.Int("control-points", 10, "spline control point count")
	segmentsPerCurve := fs.Int("segments-per-curve", 12, "spline samples per control point")
	radiusVariance := fs.Float64("radius-variance", 0.4, "control point radius variance")
	cornerTightness := fs.Float64("corner-tightness", 0.6, "control point angle jitter")
	asJSON := fs.Bool("json", false, "emit full geometry as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t := track.New(*width, *height, *seed, track.Params{
		TrackWidth:       *trackWidth,
		NumControlPoints: *controlPoints,
		SegmentsPerCurve: *segmentsPerCurve,
		RadiusVariance:   *radiusVariance,
		CornerTightness:  *cornerTightness,
	})

	if *asJSON {
		data, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("seed=%d control-points=%d wall-segments=%d checkpoints=%d\n",
		t.Seed, len(t.ControlPoints), len(t.InnerWalls)+len(t.OuterWalls), len(t.Checkpoints))
	fmt.Printf("start=(%.2f, %.2f) angle=%.4f\n", t.StartPoint.X, t.StartPoint.Y, t.StartAngle)
	return nil
}

func runChampion(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("champion", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := openClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	champion, ok, err := client.Champion(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no champion stored")
	}

	data, err := json.MarshalIndent(champion, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("fitness requires -run-id")
	}

	client, err := openClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, ok, err := client.FitnessHistory(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no fitness history for run: %s", *runID)
	}

	for i, fitness := range history {
		fmt.Printf("gen %3d best=%.2f\n", i+1, fitness)
	}
	return nil
}

func runStats(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("stats requires -run-id")
	}

	client, err := openClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	stats, ok, err := client.GenerationStats(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no generation stats for run: %s", *runID)
	}

	for _, s := range stats {
		fmt.Printf("gen %3d survivors=%d best=%.2f diversity=%.4f ticks=%d\n",
			s.Generation, s.Survivors, s.BestFitness, s.Diversity, s.Ticks)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	outPath := fs.String("out", "", "output file path (default stdout)")
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("export requires -run-id")
	}

	client, err := openClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	data, err := client.ExportSession(ctx, *runID)
	if err != nil {
		return err
	}
	if *outPath == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("exported run=%s to %s\n", *runID, *outPath)
	return nil
}

func runImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	inPath := fs.String("in", "", "champion document path")
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return usageError("import requires -in")
	}

	data, err := os.ReadFile(*inPath)
	if err != nil {
		return err
	}

	client, err := openClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	if err := client.ImportChampion(ctx, data); err != nil {
		return err
	}
	fmt.Println("champion imported")
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: boidracectl <init|reset|run|track|champion|fitness|stats|export|import> [flags]", msg)
}
