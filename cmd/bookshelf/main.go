package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dwoolworth/bookshelf"
	"github.com/dwoolworth/bookshelf/internal/config"
	"github.com/dwoolworth/bookshelf/internal/logging"
	"github.com/dwoolworth/bookshelf/internal/metrics"
	"github.com/dwoolworth/bookshelf/internal/queries"
	"github.com/dwoolworth/bookshelf/models"
)

var (
	cfgFile string
	v       = viper.New()
	cfg     config.Config
	logger  = slog.Default()
)

var localFlagKeys = map[string]string{
	"page":      config.KeyPage,
	"page-size": config.KeyPageSize,
	"author":    config.KeyAuthor,
}

var rootCmd = &cobra.Command{
	Use:           "bookshelf",
	Short:         "bookshelf — MongoDB bookstore queries",
	Long:          "Runs a fixed catalog of filter, projection, sort, pagination, aggregation, index and explain queries against a bookstore collection.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Subcommands share keys such as explain_author, so their local
		// flags are bound only for the command actually running.
		for name, key := range localFlagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return err
				}
			}
		}

		var err error
		cfg, err = config.Load(v, config.Options{File: cfgFile})
		if err != nil {
			return err
		}
		logger, err = logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return models.Register(cfg.Collection)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./bookshelf.yaml or $HOME/.bookshelf/bookshelf.yaml)")
	pf.String("uri", "", "MongoDB connection URI (default mongodb://localhost:27017)")
	pf.String("db", "", "database name (default plp_bookstore)")
	pf.String("collection", "", "collection name (default books)")
	pf.StringP("output", "o", "", "output format: text, table, json, yaml (default text)")
	pf.String("log-format", "", "log format: text or json (default text)")
	pf.String("log-level", "", "log level: debug, info, warn, error (default info)")
	pf.Duration("timeout", 0, "overall deadline for the command (default 60s)")
	pf.String("metrics-file", "", "write Prometheus metrics to this file when the command finishes")

	bindFlag(config.KeyURI, "uri")
	bindFlag(config.KeyDatabase, "db")
	bindFlag(config.KeyCollection, "collection")
	bindFlag(config.KeyOutput, "output")
	bindFlag(config.KeyLogFormat, "log-format")
	bindFlag(config.KeyLogLevel, "log-level")
	bindFlag(config.KeyTimeout, "timeout")
	bindFlag(config.KeyMetricsFile, "metrics-file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(indexesCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func bindFlag(key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// instrument installs the logging middleware and, when a metrics file is
// configured, a Recorder whose middleware counts every operation.
func instrument() *metrics.Recorder {
	bookshelf.Use(logging.Middleware(logger))
	if cfg.MetricsFile == "" {
		return nil
	}
	rec := metrics.NewRecorder()
	bookshelf.Use(rec.Middleware())
	return rec
}

func flushMetrics(rec *metrics.Recorder) {
	if rec == nil {
		return
	}
	if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Warn("could not write metrics", "err", err)
		return
	}
	logger.Debug("metrics written", "path", cfg.MetricsFile)
}

// withConnection connects, calls fn and always disconnects.
func withConnection(ctx context.Context, fn func(ctx context.Context, db *mongo.Database) error) error {
	conn := queries.MongoConnector{URI: cfg.URI, Database: cfg.Database}
	return queries.WithConnection(ctx, conn, logger, fn)
}
