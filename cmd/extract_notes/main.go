package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/athapong/notegraph/pkg/extract"
	"github.com/athapong/notegraph/pkg/graph"
	"github.com/athapong/notegraph/pkg/graph/algorithms"
	"github.com/athapong/notegraph/pkg/graph/metrics"
	"github.com/athapong/notegraph/pkg/graph/processors"
	"github.com/athapong/notegraph/pkg/graph/storage"
	"github.com/athapong/notegraph/services"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	inputDir   = flag.String("input", "", "Directory containing notes (.txt, .md, .html, .pdf)")
	outputFile = flag.String("output", "entities.json", "Output file for per-note extraction reports")
	graphFile  = flag.String("graph", "", "Output file for the relationship graph (skipped when empty)")
	useAI      = flag.Bool("ai", false, "Merge AI-suggested entities (needs OPENAI_API_KEY)")
	related    = flag.String("related", "", "Print nodes related to this label")
	depth      = flag.Int("depth", 2, "Traversal depth for -related")
	batchSize  = flag.Int("batch-size", 10, "Number of notes processed concurrently")
	envFile    = flag.String("env", ".env", "Path to environment file")
	logLevel   = flag.String("log-level", "info", "Logging level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatalf("Invalid log level: %v", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if err := godotenv.Load(*envFile); err != nil {
		logger.Debugf("No env file loaded from %s: %v", *envFile, err)
	}

	if *inputDir == "" {
		logger.Fatal("Input directory must be specified")
	}

	files, err := readInputFiles(*inputDir)
	if err != nil {
		logger.Fatalf("Failed to read input directory: %v", err)
	}
	if len(files) == 0 {
		logger.Fatal("No input files found")
	}

	logger.Infof("Processing %d notes...", len(files))

	extractor := extract.New(extract.WithLogger(logger))
	pipeline := graph.NewPipeline(extractor)
	pipeline.SetLogger(logger)
	pipeline.SetBatchSize(*batchSize)
	pipeline.AddProcessor(processors.NewTextProcessor())
	pipeline.AddProcessor(processors.NewHTMLProcessor())
	pipeline.AddProcessor(processors.NewPDFProcessor())

	if *useAI {
		if suggester := services.NewSuggesterFromEnv(); suggester != nil {
			pipeline.SetSuggester(suggester)
		} else {
			logger.Warn("OPENAI_API_KEY is not set, running deterministic extraction only")
		}
	}

	notes := make([]*graph.Note, 0, len(files))
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			logger.Errorf("Failed to read file %s: %v", file, err)
			continue
		}

		notes = append(notes, &graph.Note{
			ID:          uuid.New().String(),
			Path:        file,
			ContentType: processors.ContentTypeFor(filepath.Ext(file)),
			Content:     content,
		})
	}

	ctx := context.Background()
	if err := pipeline.BatchProcess(ctx, notes); err != nil {
		// Failed notes carry no result and are left out below.
		logger.Errorf("Some notes failed: %v", err)
	}
	metrics.UpdateSystemMetrics()

	reports := make([]storage.Report, 0, len(notes))
	generator := graph.NewGraphGenerator()
	for _, note := range notes {
		report := storage.NewReport(note)
		if report == nil {
			continue
		}
		reports = append(reports, *report)

		if err := generator.AddNote(note); err != nil {
			logger.Errorf("Failed to add note to graph: %v", err)
		}
	}

	if err := storage.NewJSONReportStore(*outputFile).StoreReports(ctx, reports); err != nil {
		logger.Fatalf("Failed to store reports: %v", err)
	}
	logger.Infof("Extraction reports for %d notes saved to %s", len(reports), *outputFile)

	relationshipGraph := generator.Generate()
	logger.Infof("Relationship graph has %d nodes and %d edges",
		len(relationshipGraph.Nodes), len(relationshipGraph.Edges))

	if *graphFile != "" {
		if err := storage.NewJSONGraphStore(*graphFile).StoreGraph(ctx, relationshipGraph); err != nil {
			logger.Fatalf("Failed to store relationship graph: %v", err)
		}
		logger.Infof("Relationship graph saved to %s", *graphFile)
	}

	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		storeInNeo4j(ctx, logger, uri, relationshipGraph)
	}

	if *related != "" {
		nodes, err := algorithms.Related(relationshipGraph, *related, *depth)
		if err != nil {
			logger.Errorf("Failed to find related nodes: %v", err)
			return
		}
		for _, n := range nodes {
			fmt.Printf("%-10s %s\n", n.Type, n.Label)
		}
	}
}

func storeInNeo4j(ctx context.Context, logger *logrus.Logger, uri string, data *graph.KnowledgeGraphData) {
	store, err := storage.NewNeo4jStore(uri, os.Getenv("NEO4J_USERNAME"), os.Getenv("NEO4J_PASSWORD"))
	if err != nil {
		logger.Errorf("Failed to connect to Neo4j: %v", err)
		return
	}
	defer store.Close()

	if err := store.Verify(ctx); err != nil {
		logger.Errorf("Neo4j is unreachable: %v", err)
		return
	}
	if err := store.StoreGraph(ctx, data); err != nil {
		logger.Errorf("Failed to store graph in Neo4j: %v", err)
	}
}

// readInputFiles lists note files under inputDir in a stable order
func readInputFiles(inputDir string) ([]string, error) {
	var files []string
	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && processors.ContentTypeFor(strings.ToLower(filepath.Ext(path))) != "" {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files, err
}
