// Package cli wires the sampling and inference pipeline behind a cobra
// command.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oneiriq/cosmiq-graphql/internal/config"
	"github.com/oneiriq/cosmiq-graphql/internal/docfilter"
	"github.com/oneiriq/cosmiq-graphql/internal/logging"
	"github.com/oneiriq/cosmiq-graphql/internal/metrics"
	"github.com/oneiriq/cosmiq-graphql/internal/schemacache"
	"github.com/oneiriq/cosmiq-graphql/internal/source"
	"github.com/oneiriq/cosmiq-graphql/pkg/cosmos"
	"github.com/oneiriq/cosmiq-graphql/pkg/export"
	"github.com/oneiriq/cosmiq-graphql/pkg/inference"
	"github.com/oneiriq/cosmiq-graphql/pkg/sdl"
)

var (
	inputPath   string
	rootType    string
	sampleSize  int
	strategy    string
	jqFilter    string
	naming      string
	emit        string
	selfCheck   bool
	noCache     bool
	database    string
	containerID string
)

var rootCmd = &cobra.Command{
	Use:   "cosmiq",
	Short: "Infer GraphQL type definitions from schemaless document samples.",
	Long: `cosmiq samples documents from a schemaless document store and infers a
structured, nullability-aware type system from them, emitting GraphQL SDL,
CRUD input types or a JSON Schema.

Documents are read from an NDJSON or JSON-array dump (use "-" for stdin);
the same pipeline runs against a live container when embedded as a library.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "NDJSON or JSON-array document dump, or - for stdin (required)")
	rootCmd.Flags().StringVarP(&rootType, "root-type", "t", "Document", "name of the root GraphQL type")
	rootCmd.Flags().IntVarP(&sampleSize, "sample-size", "n", 0, "number of documents to sample (default from SAMPLE_SIZE)")
	rootCmd.Flags().StringVar(&strategy, "strategy", "", "sample strategy: top, recent or random (default from SAMPLE_STRATEGY)")
	rootCmd.Flags().StringVar(&jqFilter, "filter", "", "jq projection applied to each document before analysis")
	rootCmd.Flags().StringVar(&naming, "naming", "", "nested type naming: hierarchical, flat or short (default from NAMING_STRATEGY)")
	rootCmd.Flags().StringVar(&emit, "emit", "sdl", "output format: sdl, inputs or jsonschema")
	rootCmd.Flags().BoolVar(&selfCheck, "self-check", false, "validate the sampled documents against the exported JSON Schema")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the schema result cache")
	rootCmd.Flags().StringVar(&database, "database", "local", "database label for the cache key")
	rootCmd.Flags().StringVar(&containerID, "container", "", "container label for the cache key (default: input file name)")
	rootCmd.MarkFlagRequired("input")
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func run(ctx context.Context) error {
	// A missing .env is fine; explicit env always wins.
	_ = godotenv.Load()
	cfg := config.Load()

	cleanup, err := logging.Setup(cfg.LoggingConfig())
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer cleanup()

	runID := uuid.NewString()
	log := slog.With("run_id", runID)

	if sampleSize <= 0 {
		sampleSize = cfg.SampleSize
	}
	sampleStrategy := cfg.SampleStrategy
	if strategy != "" {
		sampleStrategy = cosmos.SampleStrategy(strategy)
	}
	if containerID == "" {
		containerID = filepath.Base(inputPath)
	}

	container, err := source.Load(inputPath)
	if err != nil {
		return err
	}
	log.Info("loaded document dump", "path", inputPath, "documents", container.Len())

	retryCfg := cfg.RetryConfig()
	retryCfg.OnRetry = metrics.RetryObserver()

	start := time.Now()
	sample, err := cosmos.Sample(ctx, container, sampleSize, sampleStrategy, retryCfg)
	if err != nil {
		return err
	}
	metrics.SampleDuration.Observe(time.Since(start).Seconds())
	log.Info("sample captured", "documents", len(sample.Documents), "request_charge", sample.RequestCharge)

	docs := sample.Documents
	if jqFilter != "" {
		filter, err := docfilter.New(jqFilter)
		if err != nil {
			return err
		}
		docs, err = filter.Apply(docs)
		if err != nil {
			return err
		}
		log.Info("applied projection", "expr", jqFilter, "documents", len(docs))
	}

	icfg := cfg.InferenceConfig()
	if naming != "" {
		icfg.NamingStrategy = inference.NamingStrategy(naming)
	}
	infer := func() (*inference.InferredTypes, error) {
		return inference.Infer(docs, rootType, icfg)
	}

	var types *inference.InferredTypes
	if noCache || cfg.CacheDisabled {
		types, err = infer()
	} else {
		cache := schemacache.New(cfg.CacheMaxEntries, cfg.CacheTTL)
		key := schemacache.Key{
			Database:   database,
			Container:  containerID,
			SampleSize: sampleSize,
			ConfigHash: schemacache.HashConfig(icfg),
		}
		var hit bool
		types, hit, err = cache.GetOrCompute(key, infer)
		if hit {
			log.Debug("cache hit", "key", key.String())
		}
	}
	if err != nil {
		return err
	}

	if selfCheck {
		if err := runSelfCheck(types, docs, log); err != nil {
			return err
		}
	}

	return emitOutput(types)
}

func runSelfCheck(types *inference.InferredTypes, docs []map[string]any, log *slog.Logger) error {
	results, err := export.ValidateDocuments(export.ToJSONSchema(types), docs)
	if err != nil {
		return err
	}
	invalid := 0
	for _, r := range results {
		if !r.Valid {
			invalid++
			log.Warn("document does not satisfy inferred schema", "document", r.Document, "errors", r.Errors)
		}
	}
	log.Info("self-check finished", "documents", len(results), "invalid", invalid)
	return nil
}

func emitOutput(types *inference.InferredTypes) error {
	switch emit {
	case "sdl":
		fmt.Print(sdl.Render(types, sdl.DefaultOptions()))
	case "inputs":
		fmt.Print(sdl.RenderInputs(types))
	case "jsonschema":
		raw, err := json.MarshalIndent(export.ToJSONSchema(types), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(raw))
	default:
		return fmt.Errorf("unknown emit format %q (want sdl, inputs or jsonschema)", emit)
	}
	return nil
}
