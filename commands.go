package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/phytolab/phyto.signal/internal/classify"
	"github.com/phytolab/phyto.signal/internal/dataset"
	"github.com/phytolab/phyto.signal/internal/featuredb"
	"github.com/phytolab/phyto.signal/internal/plotting"
	"github.com/phytolab/phyto.signal/internal/signal"
)

// electrodeChannels is the channel count of every recording this tool
// handles: one pair of electrodes per plant.
const electrodeChannels = 2

func runProcess(args []string) {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	dataDir := fs.String("data", "", "Directory tree of block-directory recordings")
	outCSV := fs.String("out", "data.csv", "Datapoint CSV output path (empty to skip)")
	dbPath := fs.String("db", "", "Feature database path (empty to skip)")
	baseline := fs.Int("baseline", signal.DefaultWindowOffset, "Baseline points kept before each stimulus")
	windowOffset := fs.Int("window-offset", signal.DefaultWindowOffset, "Response points kept after each stimulus")
	fs.Parse(args)

	if *dataDir == "" {
		log.Fatal("process: -data directory is required")
	}

	log.Printf("loading recordings from %s", *dataDir)
	recordings, err := dataset.LoadAll(*dataDir)
	if err != nil {
		log.Fatalf("failed to load recordings: %v", err)
	}
	log.Printf("loaded %d recordings", len(recordings))

	points, err := dataset.SegmentAll(recordings, *baseline, *windowOffset)
	if err != nil {
		log.Fatalf("failed to segment recordings: %v", err)
	}
	log.Printf("segmented %d datapoints", len(points))
	logClassCounts(points)

	if *outCSV != "" {
		if err := dataset.SaveDatapoints(*outCSV, points, electrodeChannels); err != nil {
			log.Fatalf("failed to save datapoints: %v", err)
		}
		log.Printf("wrote %s", *outCSV)
	}
	if *dbPath != "" {
		db, err := featuredb.Open(*dbPath)
		if err != nil {
			log.Fatalf("failed to open feature database: %v", err)
		}
		defer db.Close()
		if err := db.InsertDatapoints(points); err != nil {
			log.Fatalf("failed to store datapoints: %v", err)
		}
		log.Printf("stored %d datapoints in %s", len(points), *dbPath)
	}
}

func runLearn(args []string) {
	fs := flag.NewFlagSet("learn", flag.ExitOnError)
	dataCSV := fs.String("data", "data.csv", "Datapoint CSV produced by 'process'")
	configPath := fs.String("config", "", "Pipeline config JSON (defaults when empty)")
	labelList := fs.String("labels", "null,ozone", "Comma-separated stimulus classes to learn")
	trainFrac := fs.Float64("train-frac", 0.75, "Fraction of datapoints used for training")
	seed := fs.Int64("seed", 1, "Seed for shuffling and balancing")
	dropBad := fs.Bool("drop-bad", true, "Drop degenerate datapoints instead of aborting")
	workers := fs.Int("workers", 0, "Extraction workers (0 = one per CPU)")
	dbPath := fs.String("db", "", "Record the extraction run in this feature database")
	fs.Parse(args)

	points := loadPoints(*dataCSV)
	labels := splitList(*labelList)

	points = dataset.FilterTypes(points, labels)
	if len(points) == 0 {
		log.Fatalf("no datapoints with labels %v", labels)
	}
	rng := rand.New(rand.NewSource(*seed))
	points = dataset.Balance(points, rng)
	log.Printf("balanced to %d datapoints", len(points))
	logClassCounts(points)

	trainPoints, validPoints, err := classify.SplitTrainValid(points, *trainFrac, rng)
	if err != nil {
		log.Fatalf("failed to split dataset: %v", err)
	}
	log.Printf("datapoints in training set: %d", len(trainPoints))
	log.Printf("datapoints in validation set: %d", len(validPoints))

	pipeline := buildPipeline(*configPath)

	trainBatch, trainLabels := dataset.Split(trainPoints)
	validBatch, validLabels := dataset.Split(validPoints)

	// The scaler stage learns its statistics here, on training data only.
	if err := pipeline.Fit(trainBatch, trainLabels); err != nil {
		log.Fatalf("failed to fit pipeline: %v", err)
	}

	policy := signal.PropagateError
	if *dropBad {
		policy = signal.DropBad
	}
	extractor, err := signal.NewExtractor(pipeline, policy, *workers)
	if err != nil {
		log.Fatalf("failed to build extractor: %v", err)
	}

	trainX, trainY, err := extractor.Extract(trainBatch, trainLabels)
	if err != nil {
		log.Fatalf("training extraction failed: %v", err)
	}
	validX, validY, err := extractor.Extract(validBatch, validLabels)
	if err != nil {
		log.Fatalf("validation extraction failed: %v", err)
	}
	if dropped := len(trainBatch) + len(validBatch) - len(trainX) - len(validX); dropped > 0 {
		log.Printf("dropped %d degenerate datapoints", dropped)
	}
	if len(trainX) == 0 {
		log.Fatal("no training datapoints survived extraction")
	}
	log.Printf("extracted %d-dimensional features (pipeline: %s)", len(trainX[0]), strings.Join(pipeline.Describe(), " -> "))

	model := classify.NewNearestCentroid()
	if err := model.Fit(trainX, trainY); err != nil {
		log.Fatalf("failed to fit classifier: %v", err)
	}
	ev, err := classify.Evaluate(model, validX, validY)
	if err != nil {
		log.Fatalf("failed to evaluate classifier: %v", err)
	}
	log.Printf("validation accuracy: %.4f (%d/%d)", ev.Accuracy, ev.Correct, ev.Total)
	logConfusion(ev)

	if *dbPath != "" {
		db, err := featuredb.Open(*dbPath)
		if err != nil {
			log.Fatalf("failed to open feature database: %v", err)
		}
		defer db.Close()
		runID, err := db.RecordRun(pipeline.Describe(), trainX, trainY)
		if err != nil {
			log.Fatalf("failed to record extraction run: %v", err)
		}
		log.Printf("recorded extraction run %s", runID)
	}
}

func runPlot(args []string) {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	dataCSV := fs.String("data", "data.csv", "Datapoint CSV produced by 'process'")
	configPath := fs.String("config", "", "Pipeline config JSON (defaults when empty)")
	outDir := fs.String("out", "plots", "Output directory")
	traceCount := fs.Int("traces", 4, "Number of datapoints to render as trace PNGs")
	f1 := fs.Int("f1", 3, "First feature index for the scatter chart")
	f2 := fs.Int("f2", 4, "Second feature index for the scatter chart")
	feature := fs.Int("feature", 3, "Feature index for the histogram")
	bins := fs.Int("bins", 40, "Histogram bin count")
	fs.Parse(args)

	points := loadPoints(*dataCSV)
	batch, labels := dataset.Split(points)

	if err := saveTraces(*outDir, points, *traceCount); err != nil {
		log.Fatalf("failed to render traces: %v", err)
	}

	pipeline := buildPipeline(*configPath)
	if err := pipeline.Fit(batch, labels); err != nil {
		log.Fatalf("failed to fit pipeline: %v", err)
	}
	extractor, err := signal.NewExtractor(pipeline, signal.DropBad, 0)
	if err != nil {
		log.Fatalf("failed to build extractor: %v", err)
	}
	features, featLabels, err := extractor.Extract(batch, labels)
	if err != nil {
		log.Fatalf("extraction failed: %v", err)
	}

	scatterPath := filepath.Join(*outDir, "feature_scatter.html")
	if err := plotting.SaveFeatureScatter(scatterPath, features, featLabels, *f1, *f2); err != nil {
		log.Fatalf("failed to render scatter: %v", err)
	}
	histPath := filepath.Join(*outDir, "feature_histogram.html")
	if err := plotting.SaveFeatureHistogram(histPath, features, featLabels, *feature, *bins); err != nil {
		log.Fatalf("failed to render histogram: %v", err)
	}
	log.Printf("wrote %s and %s", scatterPath, histPath)
}

func runDB(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dbPath := fs.String("file", "features.db", "Feature database path")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: phyto db [-file features.db] <up|down|version|force N>")
		os.Exit(1)
	}

	db, err := featuredb.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open feature database: %v", err)
	}
	defer db.Close()

	switch fs.Arg(0) {
	case "up":
		if err := db.MigrateUp(); err != nil {
			log.Fatalf("migrate up failed: %v", err)
		}
		log.Print("migrations applied")
	case "down":
		if err := db.MigrateDown(); err != nil {
			log.Fatalf("migrate down failed: %v", err)
		}
		log.Print("rolled back one migration")
	case "version":
		version, dirty, err := db.MigrateVersion()
		if err != nil {
			log.Fatalf("migrate version failed: %v", err)
		}
		log.Printf("schema version %d (dirty=%v)", version, dirty)
	case "force":
		if fs.NArg() < 2 {
			log.Fatal("usage: phyto db force <version>")
		}
		version, err := strconv.Atoi(fs.Arg(1))
		if err != nil {
			log.Fatalf("bad version %q: %v", fs.Arg(1), err)
		}
		if err := db.MigrateForce(version); err != nil {
			log.Fatalf("migrate force failed: %v", err)
		}
		log.Printf("forced schema version %d", version)
	default:
		log.Fatalf("unknown db action %q", fs.Arg(0))
	}
}

// saveTraces renders the raw, detrended and post-stimulus views of the
// first few datapoints.
func saveTraces(outDir string, points []dataset.Datapoint, count int) error {
	if count > len(points) {
		count = len(points)
	}

	avg := signal.NewElectrodeAvg()
	detrend, err := signal.NewDetrend(signal.DefaultWindowOffset)
	if err != nil {
		return err
	}
	post, err := signal.NewPostStimulus(0, signal.DefaultWindowOffset)
	if err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		batch := []signal.Sample{points[i].Sample}
		raw, err := avg.Apply(batch)
		if err != nil {
			return err
		}
		detrended, err := detrend.Apply(raw)
		if err != nil {
			return err
		}
		response, err := post.Apply(detrended)
		if err != nil {
			return err
		}

		path := filepath.Join(outDir, fmt.Sprintf("trace_%03d_%s.png", i, points[i].Label))
		series := []plotting.TraceSeries{
			{Name: "raw (electrode avg)", Values: raw[0][0]},
			{Name: "detrended", Values: detrended[0][0]},
			{Name: "post-stimulus", Values: response[0][0]},
		}
		if err := plotting.SaveTracePNG(path, points[i].Label, series); err != nil {
			return err
		}
	}
	log.Printf("wrote %d trace plots to %s", count, outDir)
	return nil
}

func loadPoints(path string) []dataset.Datapoint {
	points, err := dataset.LoadDatapoints(path, electrodeChannels)
	if err != nil {
		log.Fatalf("failed to load datapoints from %s: %v", path, err)
	}
	if len(points) == 0 {
		log.Fatalf("no datapoints in %s", path)
	}
	log.Printf("loaded %d datapoints from %s", len(points), path)
	return points
}

func buildPipeline(configPath string) *signal.Pipeline {
	cfg := &signal.PipelineConfig{}
	if configPath != "" {
		loaded, err := signal.LoadPipelineConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load pipeline config: %v", err)
		}
		cfg = loaded
	}
	pipeline, err := cfg.Build()
	if err != nil {
		log.Fatalf("failed to build pipeline: %v", err)
	}
	return pipeline
}

func splitList(list string) []string {
	var out []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func logClassCounts(points []dataset.Datapoint) {
	counts := make(map[string]int)
	for _, p := range points {
		counts[p.Label]++
	}
	classes := make([]string, 0, len(counts))
	for class := range counts {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	for _, class := range classes {
		log.Printf("  %-12s %d", class, counts[class])
	}
}

func logConfusion(ev *classify.Evaluation) {
	actuals := make([]string, 0, len(ev.Confusion))
	for actual := range ev.Confusion {
		actuals = append(actuals, actual)
	}
	sort.Strings(actuals)
	for _, actual := range actuals {
		predictions := ev.Confusion[actual]
		predicted := make([]string, 0, len(predictions))
		for p := range predictions {
			predicted = append(predicted, p)
		}
		sort.Strings(predicted)
		parts := make([]string, 0, len(predicted))
		for _, p := range predicted {
			parts = append(parts, fmt.Sprintf("%s=%d", p, predictions[p]))
		}
		log.Printf("  actual %-12s -> %s", actual, strings.Join(parts, " "))
	}
}
